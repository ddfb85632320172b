package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"brochureflow/internal/extract"
)

// ExtractionClient sends one batch of brochures per request to the AI
// extraction service. The service enforces payload-size and rate limits,
// which is why callers dispatch batches sequentially.
type ExtractionClient struct {
	baseURL string
	client  *http.Client
}

func NewExtractionClient(baseURL string) *ExtractionClient {
	return &ExtractionClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 180 * time.Second},
	}
}

func (c *ExtractionClient) ExtractBatch(ctx context.Context, files []BatchFile) (extract.BatchResult, error) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for _, f := range files {
		if err := appendFilePart(mw, "files", f); err != nil {
			return extract.BatchResult{}, err
		}
	}
	if err := mw.Close(); err != nil {
		return extract.BatchResult{}, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/extract", body)
	if err != nil {
		return extract.BatchResult{}, fmt.Errorf("build extraction request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := c.client.Do(req)
	if err != nil {
		return extract.BatchResult{}, fmt.Errorf("extraction request failed: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		var failure struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(raw, &failure)
		return extract.BatchResult{}, &ExtractionError{StatusCode: resp.StatusCode, Message: failure.Error}
	}
	var out extract.BatchResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return extract.BatchResult{}, fmt.Errorf("decode extraction response: %w", err)
	}
	return out, nil
}

func appendFilePart(mw *multipart.Writer, field string, f BatchFile) error {
	src, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer src.Close()
	name := f.Name
	if name == "" {
		name = filepath.Base(f.Path)
	}
	part, err := mw.CreateFormFile(field, name)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
