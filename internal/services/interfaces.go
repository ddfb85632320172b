// Package services contains the HTTP clients for the pipeline's external
// collaborators: the AI extraction service, the page rasterizer and the
// image store. All three are consumed as black boxes through narrow
// request/response contracts.
package services

import (
	"context"

	"brochureflow/internal/extract"
)

// BatchFile points at one stored upload to be sent to a collaborator.
type BatchFile struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type RenderRequest struct {
	Files []BatchFile `json:"files"`
	// Pages[i] is the number of leading pages to rasterize from Files[i].
	Pages   []int   `json:"pages"`
	Scale   float64 `json:"scale"`
	Quality float64 `json:"quality"`
}

// RenderedPage is one rasterized brochure page, JPEG-encoded.
type RenderedPage struct {
	Filename string `json:"filename"`
	Data     []byte `json:"data"`
}

type Extractor interface {
	ExtractBatch(ctx context.Context, files []BatchFile) (extract.BatchResult, error)
}

type Rasterizer interface {
	RenderPages(ctx context.Context, req RenderRequest) ([]RenderedPage, error)
}

type ImageStore interface {
	UploadImages(ctx context.Context, pages []RenderedPage) ([]string, error)
}
