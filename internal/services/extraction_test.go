package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTempPDF(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 test"), 0o644))
	return path
}

func TestExtractBatchDecodesSuccessResponse(t *testing.T) {
	var gotFiles []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(32<<20))
		for _, fh := range r.MultipartForm.File["files"] {
			gotFiles = append(gotFiles, fh.Filename)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"project": {"name": "Marina Heights"},
			"units": [{"name": "MH-101", "price": 900000}],
			"payment_plan": {"down_payment_percent": 20},
			"stats": {"total_units": 1},
			"confidence": "high",
			"file_count": 1,
			"model": "extractor-v2"
		}`))
	}))
	defer srv.Close()

	c := NewExtractionClient(srv.URL)
	out, err := c.ExtractBatch(context.Background(), []BatchFile{
		{Name: "marina.pdf", Path: writeTempPDF(t, "marina.pdf")},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"marina.pdf"}, gotFiles)
	require.Equal(t, "Marina Heights", out.Project.Name)
	require.Len(t, out.Units, 1)
	require.Equal(t, 1, out.Stats.TotalUnits)
	require.Equal(t, "extractor-v2", out.Model)
}

func TestExtractBatchCarriesServerMessageVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": "rate limited"}`))
	}))
	defer srv.Close()

	c := NewExtractionClient(srv.URL)
	_, err := c.ExtractBatch(context.Background(), []BatchFile{
		{Name: "marina.pdf", Path: writeTempPDF(t, "marina.pdf")},
	})
	require.Error(t, err)
	require.Equal(t, "rate limited", err.Error())
}

func TestExtractBatchGenericMessageWithoutServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewExtractionClient(srv.URL)
	_, err := c.ExtractBatch(context.Background(), []BatchFile{
		{Name: "marina.pdf", Path: writeTempPDF(t, "marina.pdf")},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 502")
}
