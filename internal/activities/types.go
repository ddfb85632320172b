package activities

import (
	"brochureflow/internal/extract"
	"brochureflow/internal/services"
)

// BatchFileRef identifies one stored upload by display name and on-disk path.
type BatchFileRef struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type ExtractBatchInput struct {
	RunID string         `json:"run_id"`
	Files []BatchFileRef `json:"files"`
}

type ExtractBatchOutput struct {
	Result extract.BatchResult `json:"result"`
}

type ProbeBrochuresInput struct {
	Files []BatchFileRef `json:"files"`
}

// ProbeBrochuresOutput carries one page count per input file, zero where
// the file could not be read as a PDF.
type ProbeBrochuresOutput struct {
	PageCounts []int `json:"page_counts"`
}

type RasterizePagesInput struct {
	Files   []BatchFileRef `json:"files"`
	Pages   []int          `json:"pages"`
	Scale   float64        `json:"scale"`
	Quality float64        `json:"quality"`
}

type RasterizePagesOutput struct {
	Pages []services.RenderedPage `json:"pages"`
}

type UploadBrochureImagesInput struct {
	RunID string                  `json:"run_id"`
	Pages []services.RenderedPage `json:"pages"`
}

type UploadBrochureImagesOutput struct {
	URLs []string `json:"urls"`
}

type UpdateRunStatusInput struct {
	RunID        string `json:"run_id"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
}

type UpdateBrochureStatusesInput struct {
	RunID        string   `json:"run_id"`
	Filenames    []string `json:"filenames,omitempty"`
	Status       string   `json:"status"`
	Progress     int      `json:"progress"`
	ErrorMessage string   `json:"error_message,omitempty"`
}

type SetRunResultInput struct {
	RunID  string                `json:"run_id"`
	Result extract.UnifiedResult `json:"result"`
}

type WriteRunArtifactsInput struct {
	RunID    string                `json:"run_id"`
	Result   extract.UnifiedResult `json:"result"`
	Manifest map[string]any        `json:"manifest"`
}

type WriteRunArtifactsOutput struct {
	Dir string `json:"dir"`
}
