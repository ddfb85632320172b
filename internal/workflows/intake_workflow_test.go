package workflows

import (
	"context"
	"errors"
	"testing"

	"brochureflow/internal/activities"
	"brochureflow/internal/extract"
	"brochureflow/internal/services"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
)

func registerActivityName[T any](env *testsuite.TestWorkflowEnvironment, name string, fn T) {
	env.RegisterActivityWithOptions(fn, activity.RegisterOptions{Name: name})
}

// twoBatchInput yields exactly two batches under a 10MB ceiling:
// [a.pdf 6MB] and [b.pdf 5MB].
func twoBatchInput() IntakeInput {
	return IntakeInput{
		RunID: "run1",
		Files: []IntakeFile{
			{Name: "a.pdf", Path: "/tmp/a.pdf", SizeBytes: 6 << 20},
			{Name: "b.pdf", Path: "/tmp/b.pdf", SizeBytes: 5 << 20},
		},
		MaxBatchBytes: 10 << 20,
		PageRenderCap: 6,
		RenderScale:   1.5,
		RenderQuality: 0.8,
	}
}

func newIntakeEnv(t *testing.T) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(BrochureIntakeWorkflow)
	env.RegisterWorkflow(BrochureImageWorkflow)
	registerActivityName(env, "ExtractBatchActivity", func(context.Context, activities.ExtractBatchInput) (activities.ExtractBatchOutput, error) {
		return activities.ExtractBatchOutput{}, nil
	})
	registerActivityName(env, "ProbeBrochuresActivity", func(context.Context, activities.ProbeBrochuresInput) (activities.ProbeBrochuresOutput, error) {
		return activities.ProbeBrochuresOutput{}, nil
	})
	registerActivityName(env, "RasterizePagesActivity", func(context.Context, activities.RasterizePagesInput) (activities.RasterizePagesOutput, error) {
		return activities.RasterizePagesOutput{}, nil
	})
	registerActivityName(env, "UploadBrochureImagesActivity", func(context.Context, activities.UploadBrochureImagesInput) (activities.UploadBrochureImagesOutput, error) {
		return activities.UploadBrochureImagesOutput{}, nil
	})
	registerActivityName(env, "UpdateRunStatusActivity", func(context.Context, activities.UpdateRunStatusInput) error { return nil })
	registerActivityName(env, "UpdateBrochureStatusesActivity", func(context.Context, activities.UpdateBrochureStatusesInput) error { return nil })
	registerActivityName(env, "SetRunResultActivity", func(context.Context, activities.SetRunResultInput) error { return nil })
	registerActivityName(env, "WriteRunArtifactsActivity", func(context.Context, activities.WriteRunArtifactsInput) (activities.WriteRunArtifactsOutput, error) {
		return activities.WriteRunArtifactsOutput{}, nil
	})
	return env
}

func TestBrochureIntakeWorkflowSuccessMergesBatchesInOrder(t *testing.T) {
	env := newIntakeEnv(t)

	batch1 := extract.BatchResult{
		Project:     extract.Project{Name: "Marina Vista", Developer: "Emaar"},
		Units:       []extract.Unit{{Name: "A-101", Price: 1_200_000}, {Name: "A-102", Price: 1_450_000}},
		PaymentPlan: extract.PaymentPlan{DownPaymentPercent: 20},
		Stats:       extract.Stats{TotalUnits: 2, MinPrice: 1_200_000, MaxPrice: 1_450_000},
		Confidence:  "high",
		FileCount:   1,
		Model:       "extractor-v2",
	}
	batch2 := extract.BatchResult{
		Project:    extract.Project{Name: "Other Name"},
		Units:      []extract.Unit{{Name: "B-201", Price: 900_000}},
		Stats:      extract.Stats{TotalUnits: 1, MinPrice: 900_000},
		Confidence: "low",
		FileCount:  1,
		Model:      "extractor-v1",
	}

	env.OnActivity("UpdateRunStatusActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("UpdateBrochureStatusesActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("ExtractBatchActivity", mock.Anything, mock.Anything).Return(activities.ExtractBatchOutput{Result: batch1}, nil).Once()
	env.OnActivity("ExtractBatchActivity", mock.Anything, mock.Anything).Return(activities.ExtractBatchOutput{Result: batch2}, nil).Once()
	env.OnActivity("ProbeBrochuresActivity", mock.Anything, mock.Anything).Return(activities.ProbeBrochuresOutput{PageCounts: []int{4, 2}}, nil)
	env.OnActivity("RasterizePagesActivity", mock.Anything, mock.Anything).Return(activities.RasterizePagesOutput{
		Pages: []services.RenderedPage{{Filename: "a-1.jpg", Data: []byte{1}}, {Filename: "b-1.jpg", Data: []byte{2}}},
	}, nil)
	env.OnActivity("UploadBrochureImagesActivity", mock.Anything, mock.Anything).Return(activities.UploadBrochureImagesOutput{
		URLs: []string{"https://img/a-1.jpg", "https://img/b-1.jpg"},
	}, nil)

	var stored activities.SetRunResultInput
	env.OnActivity("SetRunResultActivity", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(activities.SetRunResultInput)
	}).Return(nil)
	env.OnActivity("WriteRunArtifactsActivity", mock.Anything, mock.Anything).Return(activities.WriteRunArtifactsOutput{Dir: "/tmp/out/run1"}, nil)

	env.ExecuteWorkflow(BrochureIntakeWorkflow, twoBatchInput())
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, "succeeded", out)

	merged := stored.Result
	require.Equal(t, "run1", stored.RunID)
	// Project, payment plan, confidence and model come from the first batch.
	require.Equal(t, "Marina Vista", merged.Project.Name)
	require.Equal(t, float64(20), merged.PaymentPlan.DownPaymentPercent)
	require.Equal(t, "high", merged.Confidence)
	require.Equal(t, "extractor-v2", merged.Model)
	// Units concatenate in batch order; only the unit count is re-summed.
	require.Equal(t, []string{"A-101", "A-102", "B-201"}, unitNames(merged.Units))
	require.Equal(t, 3, merged.Stats.TotalUnits)
	require.Equal(t, float64(1_200_000), merged.Stats.MinPrice)
	require.Equal(t, 2, merged.FileCount)
	require.Equal(t, []string{"https://img/a-1.jpg", "https://img/b-1.jpg"}, merged.BrochureImages)
}

func TestBrochureIntakeWorkflowBatchFailureKeepsServiceMessage(t *testing.T) {
	env := newIntakeEnv(t)

	env.OnActivity("UpdateBrochureStatusesActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("ProbeBrochuresActivity", mock.Anything, mock.Anything).Return(activities.ProbeBrochuresOutput{PageCounts: []int{1, 1}}, nil)
	env.OnActivity("RasterizePagesActivity", mock.Anything, mock.Anything).Return(activities.RasterizePagesOutput{}, nil)
	env.OnActivity("ExtractBatchActivity", mock.Anything, mock.Anything).Return(activities.ExtractBatchOutput{Result: extract.BatchResult{FileCount: 1}}, nil).Once()
	env.OnActivity("ExtractBatchActivity", mock.Anything, mock.Anything).Return(activities.ExtractBatchOutput{}, errors.New("rate limited")).Once()

	var statusUpdates []activities.UpdateRunStatusInput
	env.OnActivity("UpdateRunStatusActivity", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		statusUpdates = append(statusUpdates, args.Get(1).(activities.UpdateRunStatusInput))
	}).Return(nil)
	resultStored := false
	env.OnActivity("SetRunResultActivity", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		resultStored = true
	}).Return(nil).Maybe()

	env.ExecuteWorkflow(BrochureIntakeWorkflow, twoBatchInput())
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, "failed", out)

	// The first batch's partial result is discarded, and the service's own
	// message reaches the run record word for word.
	require.False(t, resultStored)
	require.NotEmpty(t, statusUpdates)
	last := statusUpdates[len(statusUpdates)-1]
	require.Equal(t, "failed", last.Status)
	require.Equal(t, "rate limited", last.ErrorMessage)
}

func TestBrochureIntakeWorkflowImageTrackFailureIsNonFatal(t *testing.T) {
	env := newIntakeEnv(t)

	env.OnActivity("UpdateRunStatusActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("UpdateBrochureStatusesActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("ExtractBatchActivity", mock.Anything, mock.Anything).Return(activities.ExtractBatchOutput{Result: extract.BatchResult{
		Units: []extract.Unit{{Name: "A-101"}}, Stats: extract.Stats{TotalUnits: 1}, FileCount: 1,
	}}, nil)
	env.OnActivity("ProbeBrochuresActivity", mock.Anything, mock.Anything).Return(activities.ProbeBrochuresOutput{PageCounts: []int{4, 2}}, nil)
	env.OnActivity("RasterizePagesActivity", mock.Anything, mock.Anything).Return(activities.RasterizePagesOutput{}, errors.New("rasterizer unavailable"))

	var stored activities.SetRunResultInput
	env.OnActivity("SetRunResultActivity", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(activities.SetRunResultInput)
	}).Return(nil)
	env.OnActivity("WriteRunArtifactsActivity", mock.Anything, mock.Anything).Return(activities.WriteRunArtifactsOutput{}, nil)

	env.ExecuteWorkflow(BrochureIntakeWorkflow, twoBatchInput())
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, "succeeded", out)
	require.NotNil(t, stored.Result.BrochureImages)
	require.Empty(t, stored.Result.BrochureImages)
	env.AssertNotCalled(t, "UploadBrochureImagesActivity", mock.Anything, mock.Anything)
}

func TestBrochureImageWorkflowSkipsUploadWhenNothingRendered(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(BrochureImageWorkflow)
	registerActivityName(env, "ProbeBrochuresActivity", func(context.Context, activities.ProbeBrochuresInput) (activities.ProbeBrochuresOutput, error) {
		return activities.ProbeBrochuresOutput{}, nil
	})
	registerActivityName(env, "RasterizePagesActivity", func(context.Context, activities.RasterizePagesInput) (activities.RasterizePagesOutput, error) {
		return activities.RasterizePagesOutput{}, nil
	})
	registerActivityName(env, "UploadBrochureImagesActivity", func(context.Context, activities.UploadBrochureImagesInput) (activities.UploadBrochureImagesOutput, error) {
		return activities.UploadBrochureImagesOutput{}, nil
	})

	env.OnActivity("ProbeBrochuresActivity", mock.Anything, mock.Anything).Return(activities.ProbeBrochuresOutput{PageCounts: []int{0, 0}}, nil)

	env.ExecuteWorkflow(BrochureImageWorkflow, ImageTrackInput{
		RunID:         "run1",
		Files:         []IntakeFile{{Name: "a.pdf", Path: "/tmp/a.pdf"}, {Name: "b.pdf", Path: "/tmp/b.pdf"}},
		TotalMaxPages: 6,
	})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out ImageTrackOutput
	require.NoError(t, env.GetWorkflowResult(&out))
	require.NotNil(t, out.URLs)
	require.Empty(t, out.URLs)
	env.AssertNotCalled(t, "RasterizePagesActivity", mock.Anything, mock.Anything)
	env.AssertNotCalled(t, "UploadBrochureImagesActivity", mock.Anything, mock.Anything)
}

func unitNames(units []extract.Unit) []string {
	out := make([]string, 0, len(units))
	for _, u := range units {
		out = append(out, u.Name)
	}
	return out
}
