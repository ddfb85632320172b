package storage

import (
	"context"
	"fmt"

	"brochureflow/internal/models"
)

type BrochureRepo struct {
	db *DB
}

func NewBrochureRepo(db *DB) *BrochureRepo {
	return &BrochureRepo{db: db}
}

func (r *BrochureRepo) UpsertBrochure(ctx context.Context, b models.Brochure) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO brochures (brochure_id, run_id, filename, size_bytes, status, progress, error_message)
VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7,''))
ON CONFLICT (brochure_id)
DO UPDATE SET
  run_id = EXCLUDED.run_id,
  filename = EXCLUDED.filename,
  size_bytes = EXCLUDED.size_bytes,
  status = EXCLUDED.status,
  progress = EXCLUDED.progress,
  error_message = EXCLUDED.error_message,
  updated_at = NOW()`,
		b.BrochureID, b.RunID, b.Filename, b.SizeBytes, b.Status, b.Progress, b.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("upsert brochure: %w", err)
	}
	return nil
}

// UpdateStatuses applies one status/progress snapshot to the named files
// of a run, or to every file of the run when filenames is empty. File
// statuses are derived snapshots of the run's phase, so a bulk update is
// the natural write shape.
func (r *BrochureRepo) UpdateStatuses(ctx context.Context, runID string, filenames []string, status string, progress int, errorMessage string) error {
	var err error
	if len(filenames) == 0 {
		_, err = r.db.Pool.Exec(ctx, `
UPDATE brochures SET status=$2, progress=$3, error_message=NULLIF($4,''), updated_at=NOW()
WHERE run_id=$1`, runID, status, progress, errorMessage)
	} else {
		_, err = r.db.Pool.Exec(ctx, `
UPDATE brochures SET status=$2, progress=$3, error_message=NULLIF($4,''), updated_at=NOW()
WHERE run_id=$1 AND filename = ANY($5)`, runID, status, progress, errorMessage, filenames)
	}
	if err != nil {
		return fmt.Errorf("update brochure statuses: %w", err)
	}
	return nil
}

func (r *BrochureRepo) ListByRun(ctx context.Context, runID string) ([]models.Brochure, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT brochure_id, run_id, filename, size_bytes, status, progress, COALESCE(error_message,''), created_at, updated_at
FROM brochures
WHERE run_id=$1
ORDER BY created_at ASC, filename ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("list brochures: %w", err)
	}
	defer rows.Close()

	out := make([]models.Brochure, 0)
	for rows.Next() {
		var b models.Brochure
		if err := rows.Scan(&b.BrochureID, &b.RunID, &b.Filename, &b.SizeBytes, &b.Status, &b.Progress, &b.ErrorMessage, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan brochure: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate brochures: %w", err)
	}
	return out, nil
}
