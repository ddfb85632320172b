package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RasterizerClient asks the external rasterization service for JPEG
// renderings of the leading pages of each brochure, in one request across
// the full file set.
type RasterizerClient struct {
	baseURL string
	client  *http.Client
}

func NewRasterizerClient(baseURL string) *RasterizerClient {
	return &RasterizerClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (c *RasterizerClient) RenderPages(ctx context.Context, req RenderRequest) ([]RenderedPage, error) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for _, f := range req.Files {
		if err := appendFilePart(mw, "files", f); err != nil {
			return nil, err
		}
	}
	pages := make([]string, len(req.Pages))
	for i, n := range req.Pages {
		pages[i] = strconv.Itoa(n)
	}
	_ = mw.WriteField("pages", strings.Join(pages, ","))
	_ = mw.WriteField("scale", strconv.FormatFloat(req.Scale, 'f', -1, 64))
	_ = mw.WriteField("quality", strconv.FormatFloat(req.Quality, 'f', -1, 64))
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/render", body)
	if err != nil {
		return nil, fmt.Errorf("build render request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("render request failed: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("rasterizer error %d: %s", resp.StatusCode, string(raw))
	}
	var parsed struct {
		Images []RenderedPage `json:"images"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode render response: %w", err)
	}
	return parsed.Images, nil
}
