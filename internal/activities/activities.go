package activities

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"brochureflow/internal/config"
	"brochureflow/internal/intake"
	"brochureflow/internal/models"
	"brochureflow/internal/services"
	"brochureflow/internal/storage"
	"brochureflow/internal/util"

	"go.uber.org/zap"
)

type Activities struct {
	cfg       config.Config
	runRepo   *storage.RunRepo
	brochures *storage.BrochureRepo
	svc       services.Set
	log       *zap.SugaredLogger
}

func New(cfg config.Config, db *storage.DB, log *zap.SugaredLogger) *Activities {
	return &Activities{
		cfg:       cfg,
		runRepo:   storage.NewRunRepo(db),
		brochures: storage.NewBrochureRepo(db),
		svc:       services.NewFromConfig(cfg),
		log:       log,
	}
}

// ExtractBatchActivity sends one batch of stored brochures to the
// extraction service. The client's error is returned as-is so the
// service-provided message survives to the workflow unchanged.
func (a *Activities) ExtractBatchActivity(ctx context.Context, in ExtractBatchInput) (ExtractBatchOutput, error) {
	files := make([]services.BatchFile, 0, len(in.Files))
	for _, f := range in.Files {
		files = append(files, services.BatchFile{Name: f.Name, Path: f.Path})
	}
	result, err := a.svc.Extractor.ExtractBatch(ctx, files)
	if err != nil {
		return ExtractBatchOutput{}, err
	}
	return ExtractBatchOutput{Result: result}, nil
}

// ProbeBrochuresActivity reads each stored PDF's page count. A file that
// cannot be parsed contributes a zero count instead of an error; the
// image track tolerates partial knowledge.
func (a *Activities) ProbeBrochuresActivity(ctx context.Context, in ProbeBrochuresInput) (ProbeBrochuresOutput, error) {
	_ = ctx
	counts := make([]int, len(in.Files))
	for i, f := range in.Files {
		n, err := intake.PageCount(f.Path)
		if err != nil {
			a.log.Warnw("page count probe failed", "file", f.Name, "error", err)
			continue
		}
		counts[i] = n
	}
	return ProbeBrochuresOutput{PageCounts: counts}, nil
}

func (a *Activities) RasterizePagesActivity(ctx context.Context, in RasterizePagesInput) (RasterizePagesOutput, error) {
	files := make([]services.BatchFile, 0, len(in.Files))
	for _, f := range in.Files {
		files = append(files, services.BatchFile{Name: f.Name, Path: f.Path})
	}
	pages, err := a.svc.Rasterizer.RenderPages(ctx, services.RenderRequest{
		Files:   files,
		Pages:   in.Pages,
		Scale:   in.Scale,
		Quality: in.Quality,
	})
	if err != nil {
		return RasterizePagesOutput{}, fmt.Errorf("rasterize pages: %w", err)
	}
	return RasterizePagesOutput{Pages: pages}, nil
}

func (a *Activities) UploadBrochureImagesActivity(ctx context.Context, in UploadBrochureImagesInput) (UploadBrochureImagesOutput, error) {
	urls, err := a.svc.Images.UploadImages(ctx, in.Pages)
	if err != nil {
		return UploadBrochureImagesOutput{}, fmt.Errorf("upload brochure images: %w", err)
	}
	return UploadBrochureImagesOutput{URLs: urls}, nil
}

func (a *Activities) UpdateRunStatusActivity(ctx context.Context, in UpdateRunStatusInput) error {
	return a.runRepo.UpdateRunStatus(ctx, in.RunID, in.Status, in.ErrorMessage)
}

func (a *Activities) UpdateBrochureStatusesActivity(ctx context.Context, in UpdateBrochureStatusesInput) error {
	return a.brochures.UpdateStatuses(ctx, in.RunID, in.Filenames, in.Status, in.Progress, in.ErrorMessage)
}

func (a *Activities) SetRunResultActivity(ctx context.Context, in SetRunResultInput) error {
	payload, err := json.Marshal(in.Result)
	if err != nil {
		return fmt.Errorf("marshal run result: %w", err)
	}
	return a.runRepo.SetRunResult(ctx, in.RunID, payload)
}

// WriteRunArtifactsActivity writes result.json and manifest.json under
// the run's output directory.
func (a *Activities) WriteRunArtifactsActivity(ctx context.Context, in WriteRunArtifactsInput) (WriteRunArtifactsOutput, error) {
	_ = ctx
	dir := filepath.Join(a.cfg.DataOutRoot, in.RunID)
	if err := util.WriteJSONAtomic(filepath.Join(dir, "result.json"), in.Result); err != nil {
		return WriteRunArtifactsOutput{}, err
	}
	if err := util.WriteJSONAtomic(filepath.Join(dir, "manifest.json"), in.Manifest); err != nil {
		return WriteRunArtifactsOutput{}, err
	}
	a.log.Infow("run artifacts written", "run_id", in.RunID, "dir", dir, "status", models.RunStatusSucceeded)
	return WriteRunArtifactsOutput{Dir: dir}, nil
}
