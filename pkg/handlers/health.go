package handlers

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/companydb-io/companydb/pkg/config"
	"github.com/companydb-io/companydb/pkg/database"
	"github.com/companydb-io/companydb/pkg/search"
)

// healthCheckTimeout bounds each backend probe so a hung store cannot stall
// the health endpoint.
const healthCheckTimeout = 2 * time.Second

// HealthResponse reports per-backend status. Overall status is "ok" only
// when PostgreSQL is reachable; a missing search store degrades, never fails.
type HealthResponse struct {
	Status   string `json:"status"`
	Postgres string `json:"postgres"`
	Search   string `json:"search"`
}

// PingResponse contains service status and version information.
type PingResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Service     string `json:"service"`
	GoVersion   string `json:"go_version"`
	Hostname    string `json:"hostname"`
	Environment string `json:"environment"`
}

// HealthHandler handles health check and ping endpoints.
type HealthHandler struct {
	cfg    *config.Config
	db     *database.DB
	search *search.Client // nil when search is disabled
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler. search may be nil.
func NewHealthHandler(cfg *config.Config, db *database.DB, searchClient *search.Client, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{cfg: cfg, db: db, search: searchClient, logger: logger}
}

// RegisterRoutes registers the health handler's routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ping", h.Ping)
}

// Health handles GET /health requests.
// Probes PostgreSQL and OpenSearch and reports ok/degraded/unavailable.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeoutContext(r, healthCheckTimeout)
	defer cancel()

	resp := HealthResponse{Status: "ok", Postgres: "up", Search: "up"}

	if err := h.db.Pool.Ping(ctx); err != nil {
		h.logger.Warn("Postgres health check failed", zap.Error(err))
		resp.Postgres = "down"
		resp.Status = "unavailable"
	}

	switch {
	case h.search == nil:
		resp.Search = "disabled"
	default:
		if err := h.search.Ping(ctx); err != nil {
			h.logger.Warn("Search health check failed", zap.Error(err))
			resp.Search = "down"
			if resp.Status == "ok" {
				resp.Status = "degraded"
			}
		}
	}

	statusCode := http.StatusOK
	if resp.Status == "unavailable" {
		statusCode = http.StatusServiceUnavailable
	}
	if err := WriteJSON(w, statusCode, resp); err != nil {
		h.logger.Error("Failed to encode health response", zap.Error(err))
	}
}

func timeoutContext(r *http.Request, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), d)
}

// Ping handles GET /ping requests.
// Returns detailed service information including version and environment.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	hostname, err := os.Hostname()
	if err != nil {
		http.Error(w, "failed to get hostname", http.StatusInternalServerError)
		return
	}

	response := PingResponse{
		Status:      "ok",
		Version:     h.cfg.Version,
		Service:     "companydb",
		GoVersion:   runtime.Version(),
		Hostname:    hostname,
		Environment: h.cfg.Env,
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode ping response", zap.Error(err))
	}
}
