package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/companydb-io/companydb/pkg/apperrors"
	"github.com/companydb-io/companydb/pkg/config"
	"github.com/companydb-io/companydb/pkg/ingest"
	"github.com/companydb-io/companydb/pkg/models"
	"github.com/companydb-io/companydb/pkg/repositories"
	"github.com/companydb-io/companydb/pkg/search"
)

// ImportFile describes one importable JSONL export in the data directory.
type ImportFile struct {
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"size_bytes"`
	Size      string `json:"size"`
}

// CreateImportRequest is the body of POST /imports.
type CreateImportRequest struct {
	Filename string `json:"filename"`
}

// ImportsHandler manages import jobs and the search reindex trigger.
type ImportsHandler struct {
	cfg      *config.Config
	jobs     repositories.ImportJobRepository
	importer *ingest.Importer
	indexer  *search.Indexer // nil when search is disabled
	logger   *zap.Logger
}

// NewImportsHandler creates a new imports handler. indexer may be nil.
func NewImportsHandler(
	cfg *config.Config,
	jobs repositories.ImportJobRepository,
	importer *ingest.Importer,
	indexer *search.Indexer,
	logger *zap.Logger,
) *ImportsHandler {
	return &ImportsHandler{
		cfg:      cfg,
		jobs:     jobs,
		importer: importer,
		indexer:  indexer,
		logger:   logger,
	}
}

// RegisterRoutes registers the imports handler's routes on the given mux.
func (h *ImportsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /imports/files", h.ListFiles)
	mux.HandleFunc("GET /imports", h.List)
	mux.HandleFunc("POST /imports", h.Create)
	mux.HandleFunc("GET /imports/{id}", h.Get)
	mux.HandleFunc("POST /imports/reindex", h.Reindex)
}

// ListFiles handles GET /imports/files
// Lists the .jsonl files in the configured data directory.
func (h *ImportsHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(h.cfg.Import.DataDirectory)
	if err != nil {
		h.logger.Error("Failed to read data directory",
			zap.String("directory", h.cfg.Import.DataDirectory),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to read data directory"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	files := make([]ImportFile, 0)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jsonl") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, ImportFile{
			Filename:  entry.Name(),
			SizeBytes: info.Size(),
			Size:      humanSize(info.Size()),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Filename < files[j].Filename })

	if err := WriteJSON(w, http.StatusOK, map[string]any{"files": files}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Create handles POST /imports
// Validates the requested file, counts its lines, records a pending job and
// starts the ingestion worker.
func (h *ImportsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Filename == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Request body must contain a filename"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	// Reject path traversal: the filename must resolve inside the data dir.
	if req.Filename != filepath.Base(req.Filename) || !strings.HasSuffix(req.Filename, ".jsonl") {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_filename", "Filename must be a .jsonl file in the data directory"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	path := filepath.Join(h.cfg.Import.DataDirectory, req.Filename)
	if _, err := os.Stat(path); err != nil {
		if err := ErrorResponse(w, http.StatusNotFound, "file_not_found", "File not found in data directory"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	total, err := ingest.CountLines(path)
	if err != nil {
		h.logger.Error("Failed to count lines", zap.String("path", path), zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to inspect import file"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	job := &models.ImportJob{
		Filename:   req.Filename,
		Status:     models.JobStatusPending,
		TotalLines: &total,
	}
	if err := h.jobs.Create(r.Context(), job); err != nil {
		h.logger.Error("Failed to create import job", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to create import job"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	h.importer.Start(job.ID, path)
	h.logger.Info("Import job started",
		zap.String("job_id", job.ID.String()),
		zap.String("filename", req.Filename),
		zap.Int("total_lines", total))

	if err := WriteJSON(w, http.StatusAccepted, job); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /imports
func (h *ImportsHandler) List(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobs.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list import jobs", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to list import jobs"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if err := WriteJSON(w, http.StatusOK, map[string]any{"jobs": jobs}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /imports/{id}
func (h *ImportsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseJobID(w, r, h.logger)
	if !ok {
		return
	}

	job, err := h.jobs.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "not_found", "Import job not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to get import job", zap.String("job_id", id.String()), zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to get import job"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, job); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Reindex handles POST /imports/reindex
// Rebuilds both search indices from PostgreSQL in the background.
func (h *ImportsHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	if h.indexer == nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "search_disabled", apperrors.ErrSearchDisabled.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	go func() {
		if err := h.indexer.Rebuild(context.Background()); err != nil {
			h.logger.Error("Search reindex failed", zap.Error(err))
		}
	}()

	if err := WriteJSON(w, http.StatusAccepted, map[string]string{"status": "reindex_started"}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// humanSize renders a byte count the way the file listing shows it.
func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
