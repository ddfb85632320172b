package services

import (
	"context"
	"fmt"

	"brochureflow/internal/extract"
)

// MockServices implements all three collaborator interfaces with
// deterministic output, for local runs without the real services.
type MockServices struct{}

func NewMockServices() *MockServices { return &MockServices{} }

func (m *MockServices) ExtractBatch(ctx context.Context, files []BatchFile) (extract.BatchResult, error) {
	_ = ctx
	units := make([]extract.Unit, 0, len(files))
	for i, f := range files {
		units = append(units, extract.Unit{
			Name:     fmt.Sprintf("%s-unit-%d", f.Name, i+1),
			Bedrooms: i%3 + 1,
			Price:    float64(800000 + 150000*i),
			Currency: "AED",
		})
	}
	return extract.BatchResult{
		Project:     extract.Project{Name: "Mock Project", Developer: "Mock Developer"},
		Units:       units,
		PaymentPlan: extract.PaymentPlan{DownPaymentPercent: 20, Installments: []extract.Installment{{Milestone: "handover", Percent: 80}}},
		Stats:       extract.Stats{TotalUnits: len(units)},
		Confidence:  "low",
		FileCount:   len(files),
		Model:       "mock-extractor-v1",
	}, nil
}

func (m *MockServices) RenderPages(ctx context.Context, req RenderRequest) ([]RenderedPage, error) {
	_ = ctx
	pages := make([]RenderedPage, 0)
	for i, f := range req.Files {
		n := 0
		if i < len(req.Pages) {
			n = req.Pages[i]
		}
		for p := 0; p < n; p++ {
			pages = append(pages, RenderedPage{
				Filename: fmt.Sprintf("%s-page-%d.jpg", f.Name, p+1),
				Data:     []byte("mock-jpeg"),
			})
		}
	}
	return pages, nil
}

func (m *MockServices) UploadImages(ctx context.Context, pages []RenderedPage) ([]string, error) {
	_ = ctx
	urls := make([]string, 0, len(pages))
	for _, p := range pages {
		urls = append(urls, "mock://images/"+p.Filename)
	}
	return urls, nil
}
