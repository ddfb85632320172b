package storage

import (
	"context"
	"fmt"

	"brochureflow/internal/models"
)

type RunRepo struct {
	db *DB
}

func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

func (r *RunRepo) CreateRun(ctx context.Context, run models.Run) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO runs (run_id, status, file_count, error_message)
VALUES ($1, $2, $3, NULLIF($4,''))`,
		run.RunID, run.Status, run.FileCount, run.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

func (r *RunRepo) UpdateRunStatus(ctx context.Context, runID, status, errorMessage string) error {
	_, err := r.db.Pool.Exec(ctx, `
UPDATE runs SET status=$2, error_message=NULLIF($3,''), updated_at=NOW() WHERE run_id=$1`,
		runID, status, errorMessage)
	if err != nil {
		return fmt.Errorf("update run status: %w", err)
	}
	return nil
}

// SetRunResult stores the unified extraction result JSON on a succeeded run.
func (r *RunRepo) SetRunResult(ctx context.Context, runID string, result []byte) error {
	_, err := r.db.Pool.Exec(ctx, `
UPDATE runs SET result=$2, status=$3, error_message=NULL, updated_at=NOW() WHERE run_id=$1`,
		runID, result, models.RunStatusSucceeded)
	if err != nil {
		return fmt.Errorf("set run result: %w", err)
	}
	return nil
}

func (r *RunRepo) GetRun(ctx context.Context, runID string) (models.Run, error) {
	var run models.Run
	err := r.db.Pool.QueryRow(ctx, `
SELECT run_id, status, file_count, COALESCE(error_message,''), created_at, updated_at
FROM runs WHERE run_id=$1`, runID).
		Scan(&run.RunID, &run.Status, &run.FileCount, &run.ErrorMessage, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		return models.Run{}, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// GetRunResult returns the stored result JSON plus the run's status and
// error message; result is nil unless the run succeeded.
func (r *RunRepo) GetRunResult(ctx context.Context, runID string) ([]byte, models.Run, error) {
	var (
		run    models.Run
		result []byte
	)
	err := r.db.Pool.QueryRow(ctx, `
SELECT run_id, status, file_count, COALESCE(error_message,''), result, created_at, updated_at
FROM runs WHERE run_id=$1`, runID).
		Scan(&run.RunID, &run.Status, &run.FileCount, &run.ErrorMessage, &result, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		return nil, models.Run{}, fmt.Errorf("get run result: %w", err)
	}
	return result, run, nil
}
