package services

import (
	"strings"

	"brochureflow/internal/config"
)

// Set bundles the three collaborator clients the pipeline depends on.
type Set struct {
	Extractor  Extractor
	Rasterizer Rasterizer
	Images     ImageStore
}

func NewFromConfig(cfg config.Config) Set {
	if strings.EqualFold(strings.TrimSpace(cfg.ServiceMode), "mock") {
		m := NewMockServices()
		return Set{Extractor: m, Rasterizer: m, Images: m}
	}
	return Set{
		Extractor:  NewExtractionClient(cfg.ExtractionURL),
		Rasterizer: NewRasterizerClient(cfg.RasterizerURL),
		Images:     NewImageStoreClient(cfg.ImageStoreURL),
	}
}
