package workflows

import (
	"errors"
	"strings"
	"time"

	"brochureflow/internal/activities"
	"brochureflow/internal/config"
	"brochureflow/internal/extract"
	"brochureflow/internal/intake"
	"brochureflow/internal/merge"
	"brochureflow/internal/models"
	"brochureflow/internal/render"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const QueryGetIntakeProgress = "GetIntakeProgress"

const genericExtractionFailure = "brochure extraction failed"

// BrochureIntakeWorkflow runs one extraction invocation: it partitions the
// validated files into size-bounded batches, starts the image track as a
// child workflow, dispatches batches to the extraction service one at a
// time, then joins both tracks and merges. Extraction failure is terminal
// and discards partial batch results; the image track can never fail the
// run.
func BrochureIntakeWorkflow(ctx workflow.Context, input IntakeInput) (string, error) {
	logger := workflow.GetLogger(ctx)

	maxBatchBytes := input.MaxBatchBytes
	if maxBatchBytes <= 0 {
		maxBatchBytes = config.MaxBatchBytes
	}
	candidates := make([]intake.CandidateFile, 0, len(input.Files))
	filenames := make([]string, 0, len(input.Files))
	for _, f := range input.Files {
		candidates = append(candidates, intake.CandidateFile{Name: f.Name, SizeBytes: f.SizeBytes})
		filenames = append(filenames, f.Name)
	}
	batches := intake.Partition(candidates, maxBatchBytes)
	totalBatches := len(batches)
	batchOfFile := mapFilesToBatches(filenames, batches)

	phase := PhaseValidating
	doneBatches := 0
	errMsg := ""
	if err := workflow.SetQueryHandler(ctx, QueryGetIntakeProgress, func() (IntakeProgress, error) {
		return IntakeProgress{
			RunID:        input.RunID,
			Phase:        string(phase),
			Progress:     OverallProgress(phase, doneBatches, totalBatches),
			TotalBatches: totalBatches,
			DoneBatches:  doneBatches,
			Files:        ProjectFiles(phase, filenames, batchOfFile, doneBatches, totalBatches, errMsg),
			ErrorMessage: errMsg,
		}, nil
	}); err != nil {
		return "", err
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)
	// One attempt per batch: a failed batch aborts the run, no automatic retry.
	extractCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	})

	if totalBatches == 0 {
		errMsg = "no files to extract"
		phase = PhaseFailed
		_ = workflow.ExecuteActivity(ctx, "UpdateRunStatusActivity", activities.UpdateRunStatusInput{
			RunID: input.RunID, Status: models.RunStatusFailed, ErrorMessage: errMsg,
		}).Get(ctx, nil)
		return string(PhaseFailed), nil
	}

	phase = PhaseRunning
	_ = workflow.ExecuteActivity(ctx, "UpdateRunStatusActivity", activities.UpdateRunStatusInput{
		RunID: input.RunID, Status: models.RunStatusRunning,
	}).Get(ctx, nil)
	_ = workflow.ExecuteActivity(ctx, "UpdateBrochureStatusesActivity", activities.UpdateBrochureStatusesInput{
		RunID: input.RunID, Status: models.FileStatusUploading, Progress: 0,
	}).Get(ctx, nil)

	// Image track runs concurrently with extraction; neither waits on the
	// other until the explicit join below.
	imgCtx := workflow.WithChildOptions(ctx, workflow.ChildWorkflowOptions{
		WorkflowID: "images-" + input.RunID,
	})
	imageFuture := workflow.ExecuteChildWorkflow(imgCtx, BrochureImageWorkflow, ImageTrackInput{
		RunID:         input.RunID,
		Files:         input.Files,
		TotalMaxPages: input.PageRenderCap,
		Scale:         input.RenderScale,
		Quality:       input.RenderQuality,
	})

	results := make([]extract.BatchResult, 0, totalBatches)
	for i, batch := range batches {
		var out activities.ExtractBatchOutput
		err := workflow.ExecuteActivity(extractCtx, "ExtractBatchActivity", activities.ExtractBatchInput{
			RunID: input.RunID,
			Files: batchFileRefs(input.Files, batch),
		}).Get(extractCtx, &out)
		if err != nil {
			if temporal.IsCanceledError(err) {
				return finishCancelled(ctx, input.RunID, &phase, &errMsg)
			}
			errMsg = serviceMessage(err)
			phase = PhaseFailed
			logger.Error("batch extraction failed", "run_id", input.RunID, "batch", i, "error", err)
			_ = workflow.ExecuteActivity(ctx, "UpdateBrochureStatusesActivity", activities.UpdateBrochureStatusesInput{
				RunID: input.RunID, Status: models.FileStatusError,
				Progress: OverallProgress(PhaseRunning, doneBatches, totalBatches), ErrorMessage: errMsg,
			}).Get(ctx, nil)
			_ = workflow.ExecuteActivity(ctx, "UpdateRunStatusActivity", activities.UpdateRunStatusInput{
				RunID: input.RunID, Status: models.RunStatusFailed, ErrorMessage: errMsg,
			}).Get(ctx, nil)
			return string(PhaseFailed), nil
		}
		results = append(results, out.Result)
		doneBatches = i + 1
		_ = workflow.ExecuteActivity(ctx, "UpdateBrochureStatusesActivity", activities.UpdateBrochureStatusesInput{
			RunID:     input.RunID,
			Filenames: batchFilenames(batch),
			Status:    models.FileStatusUploading,
			Progress:  doneBatches * progressBatchBudget / totalBatches,
		}).Get(ctx, nil)
	}

	phase = PhaseMerging
	var imgOut ImageTrackOutput
	if err := imageFuture.Get(ctx, &imgOut); err != nil {
		if temporal.IsCanceledError(err) {
			return finishCancelled(ctx, input.RunID, &phase, &errMsg)
		}
		// Brochure page images are a presentation enhancement, not required output.
		logger.Warn("image track failed, continuing without brochure images", "run_id", input.RunID, "error", err)
		imgOut = ImageTrackOutput{}
	}

	unified := merge.Unified(results, imgOut.URLs)
	if err := workflow.ExecuteActivity(ctx, "SetRunResultActivity", activities.SetRunResultInput{
		RunID: input.RunID, Result: unified,
	}).Get(ctx, nil); err != nil {
		errMsg = serviceMessage(err)
		phase = PhaseFailed
		_ = workflow.ExecuteActivity(ctx, "UpdateRunStatusActivity", activities.UpdateRunStatusInput{
			RunID: input.RunID, Status: models.RunStatusFailed, ErrorMessage: errMsg,
		}).Get(ctx, nil)
		return string(PhaseFailed), nil
	}
	_ = workflow.ExecuteActivity(ctx, "WriteRunArtifactsActivity", activities.WriteRunArtifactsInput{
		RunID:  input.RunID,
		Result: unified,
		Manifest: map[string]any{
			"run_id":       input.RunID,
			"file_count":   len(input.Files),
			"batch_count":  totalBatches,
			"image_count":  len(unified.BrochureImages),
			"generated_at": workflow.Now(ctx),
			"model":        unified.Model,
			"total_units":  unified.Stats.TotalUnits,
		},
	}).Get(ctx, nil)
	_ = workflow.ExecuteActivity(ctx, "UpdateBrochureStatusesActivity", activities.UpdateBrochureStatusesInput{
		RunID: input.RunID, Status: models.FileStatusSuccess, Progress: progressDone,
	}).Get(ctx, nil)

	phase = PhaseSucceeded
	return string(PhaseSucceeded), nil
}

// BrochureImageWorkflow is the non-fatal rendering track: probe page
// counts, rasterize up to the global page budget, upload. Every failure
// path resolves to an empty URL list; this workflow never returns an
// error to its parent.
func BrochureImageWorkflow(ctx workflow.Context, input ImageTrackInput) (ImageTrackOutput, error) {
	logger := workflow.GetLogger(ctx)
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    20 * time.Second,
			MaximumAttempts:    2,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)
	out := ImageTrackOutput{URLs: []string{}}

	files := make([]activities.BatchFileRef, 0, len(input.Files))
	for _, f := range input.Files {
		files = append(files, activities.BatchFileRef{Name: f.Name, Path: f.Path})
	}

	var probeOut activities.ProbeBrochuresOutput
	if err := workflow.ExecuteActivity(ctx, "ProbeBrochuresActivity", activities.ProbeBrochuresInput{
		Files: files,
	}).Get(ctx, &probeOut); err != nil {
		logger.Warn("image track: probe failed", "run_id", input.RunID, "error", err)
		return out, nil
	}
	alloc := render.AllocatePages(probeOut.PageCounts, input.TotalMaxPages)
	if render.TotalPages(alloc) == 0 {
		return out, nil
	}

	var rastOut activities.RasterizePagesOutput
	if err := workflow.ExecuteActivity(ctx, "RasterizePagesActivity", activities.RasterizePagesInput{
		Files:   files,
		Pages:   alloc,
		Scale:   input.Scale,
		Quality: input.Quality,
	}).Get(ctx, &rastOut); err != nil {
		logger.Warn("image track: rasterization failed", "run_id", input.RunID, "error", err)
		return out, nil
	}
	if len(rastOut.Pages) == 0 {
		return out, nil
	}

	var upOut activities.UploadBrochureImagesOutput
	if err := workflow.ExecuteActivity(ctx, "UploadBrochureImagesActivity", activities.UploadBrochureImagesInput{
		RunID: input.RunID,
		Pages: rastOut.Pages,
	}).Get(ctx, &upOut); err != nil {
		logger.Warn("image track: upload failed", "run_id", input.RunID, "error", err)
		return out, nil
	}
	out.URLs = upOut.URLs
	return out, nil
}

func finishCancelled(ctx workflow.Context, runID string, phase *Phase, errMsg *string) (string, error) {
	*phase = PhaseCancelled
	*errMsg = "extraction cancelled"
	// Bookkeeping still has to run after the workflow context is cancelled.
	dctx, cancel := workflow.NewDisconnectedContext(ctx)
	defer cancel()
	_ = workflow.ExecuteActivity(dctx, "UpdateBrochureStatusesActivity", activities.UpdateBrochureStatusesInput{
		RunID: runID, Status: models.FileStatusError, ErrorMessage: *errMsg,
	}).Get(dctx, nil)
	_ = workflow.ExecuteActivity(dctx, "UpdateRunStatusActivity", activities.UpdateRunStatusInput{
		RunID: runID, Status: models.RunStatusCancelled, ErrorMessage: *errMsg,
	}).Get(dctx, nil)
	return string(PhaseCancelled), nil
}

// serviceMessage pulls the collaborator-provided message out of a
// temporal-wrapped activity error, falling back to a generic one.
func serviceMessage(err error) string {
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		if msg := strings.TrimSpace(appErr.Message()); msg != "" {
			return msg
		}
	}
	if err != nil && strings.TrimSpace(err.Error()) != "" {
		return err.Error()
	}
	return genericExtractionFailure
}

func mapFilesToBatches(filenames []string, batches []intake.Batch) []int {
	idxByName := make(map[string]int, len(filenames))
	for i, name := range filenames {
		idxByName[name] = i
	}
	out := make([]int, len(filenames))
	for b, batch := range batches {
		for _, f := range batch.Files {
			if i, ok := idxByName[f.Name]; ok {
				out[i] = b
			}
		}
	}
	return out
}

func batchFileRefs(files []IntakeFile, batch intake.Batch) []activities.BatchFileRef {
	pathByName := make(map[string]string, len(files))
	for _, f := range files {
		pathByName[f.Name] = f.Path
	}
	out := make([]activities.BatchFileRef, 0, len(batch.Files))
	for _, f := range batch.Files {
		out = append(out, activities.BatchFileRef{Name: f.Name, Path: pathByName[f.Name]})
	}
	return out
}

func batchFilenames(batch intake.Batch) []string {
	out := make([]string, 0, len(batch.Files))
	for _, f := range batch.Files {
		out = append(out, f.Name)
	}
	return out
}
