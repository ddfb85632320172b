package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"brochureflow/internal/config"
	"brochureflow/internal/intake"
	"brochureflow/internal/models"
	"brochureflow/internal/storage"
	"brochureflow/internal/util"
	"brochureflow/internal/workflows"

	"github.com/google/uuid"
	enumspb "go.temporal.io/api/enums/v1"
	tclient "go.temporal.io/sdk/client"
	"go.uber.org/zap"
)

type Server struct {
	cfg       config.Config
	db        *storage.DB
	runRepo   *storage.RunRepo
	brochures *storage.BrochureRepo
	temporal  tclient.Client
	log       *zap.SugaredLogger
}

func NewServer(cfg config.Config, log *zap.SugaredLogger) *Server {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := storage.NewDB(ctx, cfg.PostgresURL)
	if err != nil {
		panic(err)
	}
	tc, err := tclient.Dial(tclient.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		panic(err)
	}
	return &Server{
		cfg:       cfg,
		db:        db,
		runRepo:   storage.NewRunRepo(db),
		brochures: storage.NewBrochureRepo(db),
		temporal:  tc,
		log:       log,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/runs", s.handleRuns)
	mux.HandleFunc("/runs/", s.handleRunsScoped)
	return withCORS(mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// handleRuns starts an extraction run from one multipart upload: validate,
// store the accepted PDFs, record run and file rows, then kick off the
// intake workflow. Validation failures that leave nothing accepted are a
// 400; partially rejected uploads still start a run and report the
// rejections back.
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	if err := r.ParseMultipartForm(128 << 20); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("parse multipart: %w", err))
		return
	}
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("no files provided"))
		return
	}

	candidates := make([]intake.CandidateFile, 0, len(headers))
	headerByName := make(map[string]*multipart.FileHeader, len(headers))
	for _, fh := range headers {
		name := filepath.Base(fh.Filename)
		candidates = append(candidates, intake.CandidateFile{
			Name:      name,
			SizeBytes: fh.Size,
			MediaType: fh.Header.Get("Content-Type"),
		})
		if _, dup := headerByName[name]; !dup {
			headerByName[name] = fh
		}
	}
	vr := intake.Validate(candidates, nil, s.cfg.MaxFiles, s.cfg.MaxFileSizeMB)
	if len(vr.Accepted) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":    map[string]any{"code": "BF-INTAKE-4001", "message": "no files accepted"},
			"rejected": vr.Rejected,
		})
		return
	}

	runID := uuid.NewString()
	inDir := filepath.Join(s.cfg.DataInRoot, runID)
	if err := util.EnsureDir(inDir); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	files := make([]workflows.IntakeFile, 0, len(vr.Accepted))
	for _, f := range vr.Accepted {
		fh := headerByName[f.Name]
		brochureID, savedPath, err := saveUploadedFile(inDir, fh)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		files = append(files, workflows.IntakeFile{Name: f.Name, Path: savedPath, SizeBytes: f.SizeBytes})
		if err := s.brochures.UpsertBrochure(r.Context(), models.Brochure{
			BrochureID: brochureID,
			RunID:      runID,
			Filename:   f.Name,
			SizeBytes:  f.SizeBytes,
			Status:     models.FileStatusPending,
		}); err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
	}
	if err := s.runRepo.CreateRun(r.Context(), models.Run{
		RunID:     runID,
		Status:    models.RunStatusPending,
		FileCount: len(files),
	}); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	we, err := s.temporal.ExecuteWorkflow(r.Context(), tclient.StartWorkflowOptions{
		ID:                                       "intake-" + runID,
		TaskQueue:                                s.cfg.TemporalTaskQueue,
		WorkflowIDReusePolicy:                    enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}, workflows.BrochureIntakeWorkflow, workflows.IntakeInput{
		RunID:         runID,
		Files:         files,
		MaxBatchBytes: config.MaxBatchBytes,
		PageRenderCap: config.PageRenderCap,
		RenderScale:   config.RenderScale,
		RenderQuality: config.RenderQuality,
	})
	if err != nil {
		writeErr(w, http.StatusConflict, err)
		return
	}
	s.log.Infow("extraction run started", "run_id", runID, "workflow_id", we.GetID(), "files", len(files))

	writeJSON(w, http.StatusAccepted, map[string]any{
		"run_id":      runID,
		"workflow_id": we.GetID(),
		"accepted":    vr.Accepted,
		"rejected":    vr.Rejected,
		"skipped":     vr.Skipped,
	})
}

func (s *Server) handleRunsScoped(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/runs/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}
	runID := parts[0]

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
			return
		}
		run, err := s.runRepo.GetRun(r.Context(), runID)
		if err != nil {
			writeErr(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, run)
		return
	}
	if len(parts) == 2 && parts[1] == "progress" {
		if r.Method != http.MethodGet {
			writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
			return
		}
		s.handleRunProgress(w, r, runID)
		return
	}
	if len(parts) == 2 && parts[1] == "result" {
		if r.Method != http.MethodGet {
			writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
			return
		}
		result, run, err := s.runRepo.GetRunResult(r.Context(), runID)
		if err != nil {
			writeErr(w, http.StatusNotFound, err)
			return
		}
		if run.Status != models.RunStatusSucceeded || len(result) == 0 {
			writeJSON(w, http.StatusConflict, map[string]any{
				"run_id": runID, "status": run.Status, "error_message": run.ErrorMessage,
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"run_id": runID, "status": run.Status, "result": json.RawMessage(result),
		})
		return
	}
	if len(parts) == 2 && parts[1] == "cancel" {
		if r.Method != http.MethodPost {
			writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
			return
		}
		if err := s.temporal.CancelWorkflow(r.Context(), "intake-"+runID, ""); err != nil {
			writeErr(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]any{"run_id": runID, "cancelling": true})
		return
	}
	writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
}

func (s *Server) handleRunProgress(w http.ResponseWriter, r *http.Request, runID string) {
	var prog workflows.IntakeProgress
	resp, err := s.temporal.QueryWorkflow(r.Context(), "intake-"+runID, "", workflows.QueryGetIntakeProgress)
	if err != nil {
		// Fallback to DB-derived progress when no active workflow query is available.
		run, rErr := s.runRepo.GetRun(r.Context(), runID)
		if rErr != nil {
			writeErr(w, http.StatusNotFound, rErr)
			return
		}
		rows, bErr := s.brochures.ListByRun(r.Context(), runID)
		if bErr != nil {
			writeErr(w, http.StatusInternalServerError, bErr)
			return
		}
		files := make([]workflows.FileProgress, 0, len(rows))
		for _, b := range rows {
			files = append(files, workflows.FileProgress{
				Filename:     b.Filename,
				Status:       b.Status,
				Progress:     b.Progress,
				ErrorMessage: b.ErrorMessage,
			})
		}
		writeJSON(w, http.StatusOK, workflows.IntakeProgress{
			RunID:        runID,
			Phase:        run.Status,
			Progress:     runProgressFromStatus(run.Status),
			Files:        files,
			ErrorMessage: run.ErrorMessage,
		})
		return
	}
	if err := resp.Get(&prog); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, prog)
}

func runProgressFromStatus(status string) int {
	if status == models.RunStatusSucceeded {
		return 100
	}
	return 0
}

func saveUploadedFile(dstDir string, fh *multipart.FileHeader) (brochureID, path string, err error) {
	src, err := fh.Open()
	if err != nil {
		return "", "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(dstDir, "upload-*.pdf")
	if err != nil {
		return "", "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tmp, h), src); err != nil {
		return "", "", fmt.Errorf("write upload: %w", err)
	}

	brochureID = hex.EncodeToString(h.Sum(nil))
	finalPath := util.SafeJoin(dstDir, fh.Filename)
	if err := tmp.Close(); err != nil {
		return "", "", err
	}
	if err := os.Rename(tmp.Name(), finalPath); err != nil {
		return "", "", fmt.Errorf("atomic move upload: %w", err)
	}
	return brochureID, finalPath, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	msg := "request failed"
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"code":    fmt.Sprintf("BF-API-%d", code),
			"message": msg,
		},
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
