package intake

import (
	"fmt"
	"path/filepath"
	"strings"
)

// CandidateFile is the metadata of one uploaded file during intake.
type CandidateFile struct {
	Name      string `json:"name"`
	SizeBytes int64  `json:"size_bytes"`
	MediaType string `json:"media_type,omitempty"`
}

type Rejection struct {
	File   CandidateFile `json:"file"`
	Reason string        `json:"reason"`
}

// ValidationResult partitions incoming candidates. Skipped holds name
// duplicates, which are dropped without being reported as errors.
type ValidationResult struct {
	Accepted []CandidateFile `json:"accepted"`
	Rejected []Rejection     `json:"rejected"`
	Skipped  []CandidateFile `json:"skipped,omitempty"`
}

// Validate applies the intake rules to candidates in input order.
// The quantity guard is all-or-nothing: when alreadyAccepted plus the
// incoming set would exceed maxFiles, the whole incoming set is rejected
// with a single aggregate reason before any per-file checks run.
// alreadyAccepted is never mutated.
func Validate(candidates, alreadyAccepted []CandidateFile, maxFiles, maxSizeMB int) ValidationResult {
	res := ValidationResult{Accepted: []CandidateFile{}, Rejected: []Rejection{}}
	if len(candidates) == 0 {
		return res
	}
	if len(alreadyAccepted)+len(candidates) > maxFiles {
		res.Rejected = append(res.Rejected, Rejection{
			Reason: fmt.Sprintf("cannot add %d files: at most %d files per extraction (%d already added)",
				len(candidates), maxFiles, len(alreadyAccepted)),
		})
		return res
	}

	existing := make(map[string]struct{}, len(alreadyAccepted))
	for _, f := range alreadyAccepted {
		existing[f.Name] = struct{}{}
	}

	maxBytes := int64(maxSizeMB) << 20
	for _, f := range candidates {
		if !isPDF(f) {
			res.Rejected = append(res.Rejected, Rejection{File: f, Reason: fmt.Sprintf("%s is not a PDF file", f.Name)})
			continue
		}
		if f.SizeBytes > maxBytes {
			res.Rejected = append(res.Rejected, Rejection{File: f, Reason: fmt.Sprintf("%s exceeds the %dMB file size limit", f.Name, maxSizeMB)})
			continue
		}
		if _, dup := existing[f.Name]; dup {
			res.Skipped = append(res.Skipped, f)
			continue
		}
		existing[f.Name] = struct{}{}
		res.Accepted = append(res.Accepted, f)
	}
	return res
}

func isPDF(f CandidateFile) bool {
	switch strings.ToLower(strings.TrimSpace(f.MediaType)) {
	case "application/pdf":
		return true
	case "", "application/octet-stream":
		return strings.EqualFold(filepath.Ext(f.Name), ".pdf")
	default:
		return false
	}
}
