package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// ImageStoreClient uploads rendered brochure pages to persistent object
// storage in one multipart request and returns the stored URLs.
type ImageStoreClient struct {
	baseURL string
	client  *http.Client
}

func NewImageStoreClient(baseURL string) *ImageStoreClient {
	return &ImageStoreClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (c *ImageStoreClient) UploadImages(ctx context.Context, pages []RenderedPage) ([]string, error) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for _, p := range pages {
		part, err := mw.CreateFormFile("images", p.Filename)
		if err != nil {
			return nil, fmt.Errorf("create form file: %w", err)
		}
		if _, err := part.Write(p.Data); err != nil {
			return nil, fmt.Errorf("write image %s: %w", p.Filename, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/images", body)
	if err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image upload failed: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("image store error %d: %s", resp.StatusCode, string(raw))
	}
	var parsed struct {
		URLs []string `json:"urls"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	return parsed.URLs, nil
}
