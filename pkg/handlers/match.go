package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/companydb-io/companydb/pkg/apperrors"
	"github.com/companydb-io/companydb/pkg/match"
	"github.com/companydb-io/companydb/pkg/models"
	"github.com/companydb-io/companydb/pkg/repositories"
)

// MatchRequest is the body of POST /api/v1/match. Options default per field:
// decoding starts from DefaultOptions, so a body that sets only max_results
// still inherits the default min_score.
type MatchRequest struct {
	Query   match.Query   `json:"query"`
	Options match.Options `json:"options"`
}

// MatchResult is one scored candidate in the match response.
type MatchResult struct {
	*models.Company
	Score        float64            `json:"score"`
	MatchDetails map[string]float64 `json:"match_details"`
}

// MatchResponse wraps the ranked candidates.
type MatchResponse struct {
	Success bool          `json:"success"`
	Count   int           `json:"count"`
	Results []MatchResult `json:"results"`
}

// AuthMiddleware wraps a handler with bearer API-key verification.
type AuthMiddleware func(http.HandlerFunc) http.HandlerFunc

// MatchHandler serves the external match API under /api/v1.
type MatchHandler struct {
	matcher   match.Matcher
	companies repositories.CompanyRepository
	logger    *zap.Logger
}

// NewMatchHandler creates a new match handler.
func NewMatchHandler(matcher match.Matcher, companies repositories.CompanyRepository, logger *zap.Logger) *MatchHandler {
	return &MatchHandler{
		matcher:   matcher,
		companies: companies,
		logger:    logger,
	}
}

// RegisterRoutes registers the match API routes on the given mux, all behind
// the bearer auth middleware.
func (h *MatchHandler) RegisterRoutes(mux *http.ServeMux, auth AuthMiddleware) {
	mux.HandleFunc("POST /api/v1/match", auth(h.Match))
	mux.HandleFunc("GET /api/v1/company/{company_id}", auth(h.GetCompany))
}

// Match handles POST /api/v1/match
// Scores relational candidates against the structured query and returns the
// ranked survivors with their per-field breakdown.
func (h *MatchHandler) Match(w http.ResponseWriter, r *http.Request) {
	req := MatchRequest{Options: match.DefaultOptions()}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if req.Query == (match.Query{}) {
		if err := ErrorResponse(w, http.StatusBadRequest, "empty_query", "At least one query field is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	opts := req.Options.Clamp()

	results, err := h.matcher.Match(r.Context(), req.Query, opts)
	if err != nil {
		h.logger.Error("Match query failed", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Match query failed"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	resp := MatchResponse{Success: true, Count: len(results), Results: make([]MatchResult, 0, len(results))}
	for _, r := range results {
		resp.Results = append(resp.Results, MatchResult{
			Company:      r.Company,
			Score:        r.Score,
			MatchDetails: r.Details,
		})
	}

	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// GetCompany handles GET /api/v1/company/{company_id}
// Direct lookup by external id for API clients that already matched.
func (h *MatchHandler) GetCompany(w http.ResponseWriter, r *http.Request) {
	companyID := r.PathValue("company_id")

	company, err := h.companies.GetByCompanyID(r.Context(), companyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "not_found", "Company not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to get company", zap.String("company_id", companyID), zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to get company"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, company); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
