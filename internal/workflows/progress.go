package workflows

import "brochureflow/internal/models"

// Phase is the intake run's finite state machine. Per-file statuses and
// the 0–100 progress value are pure projections of the phase, so no file
// state is ever mutated from more than one place.
type Phase string

const (
	PhaseValidating Phase = "validating"
	PhaseRunning    Phase = "running"
	PhaseMerging    Phase = "merging"
	PhaseSucceeded  Phase = "succeeded"
	PhaseFailed     Phase = "failed"
	PhaseCancelled  Phase = "cancelled"
)

// Explicit progress weights: batch dispatch spans 0–80, the merge and
// render-track join publish a fixed 90, terminal success is 100.
const (
	progressBatchBudget = 80
	progressMerging     = 90
	progressDone        = 100
)

// OverallProgress is the run-level progress value for a phase.
func OverallProgress(phase Phase, doneBatches, totalBatches int) int {
	switch phase {
	case PhaseValidating:
		return 0
	case PhaseMerging:
		return progressMerging
	case PhaseSucceeded:
		return progressDone
	}
	if totalBatches <= 0 {
		return 0
	}
	return doneBatches * progressBatchBudget / totalBatches
}

// ProjectFiles derives the observable per-file snapshot. Batches, not
// files, are the unit of progress granularity: files in a completed batch
// share that batch's progress number, and on failure every file flips to
// error carrying the run's message regardless of which batch failed.
func ProjectFiles(phase Phase, filenames []string, batchOfFile []int, doneBatches, totalBatches int, errMsg string) []FileProgress {
	out := make([]FileProgress, len(filenames))
	for i, name := range filenames {
		fp := FileProgress{Filename: name}
		switch phase {
		case PhaseValidating:
			fp.Status = models.FileStatusPending
		case PhaseRunning:
			fp.Status = models.FileStatusUploading
			fp.Progress = fileBatchProgress(batchOfFile, i, doneBatches, totalBatches)
		case PhaseMerging:
			fp.Status = models.FileStatusUploading
			fp.Progress = progressMerging
		case PhaseSucceeded:
			fp.Status = models.FileStatusSuccess
			fp.Progress = progressDone
		case PhaseFailed, PhaseCancelled:
			fp.Status = models.FileStatusError
			fp.Progress = fileBatchProgress(batchOfFile, i, doneBatches, totalBatches)
			fp.ErrorMessage = errMsg
		}
		out[i] = fp
	}
	return out
}

func fileBatchProgress(batchOfFile []int, fileIdx, doneBatches, totalBatches int) int {
	if totalBatches <= 0 || fileIdx >= len(batchOfFile) {
		return 0
	}
	b := batchOfFile[fileIdx]
	if b >= doneBatches {
		return 0
	}
	return (b + 1) * progressBatchBudget / totalBatches
}
