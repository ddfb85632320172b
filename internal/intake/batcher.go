package intake

// Batch is an ordered, non-empty group of files dispatched to the
// extraction service in one request. SizeBytes may exceed the ceiling only
// when the batch is a single oversized file, since splitting one file is
// not supported.
type Batch struct {
	Files     []CandidateFile `json:"files"`
	SizeBytes int64           `json:"size_bytes"`
}

// Partition greedily groups files into batches whose cumulative size stays
// within maxBatchBytes, preserving input order. Every file lands in exactly
// one batch; a file is only blocked from joining a non-empty batch, so an
// oversized file always becomes its own batch. Deterministic for a given
// input order and ceiling.
func Partition(files []CandidateFile, maxBatchBytes int64) []Batch {
	out := []Batch{}
	var cur Batch
	for _, f := range files {
		if len(cur.Files) > 0 && cur.SizeBytes+f.SizeBytes > maxBatchBytes {
			out = append(out, cur)
			cur = Batch{}
		}
		cur.Files = append(cur.Files, f)
		cur.SizeBytes += f.SizeBytes
	}
	if len(cur.Files) > 0 {
		out = append(out, cur)
	}
	return out
}
