package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/companydb-io/companydb/pkg/apperrors"
	"github.com/companydb-io/companydb/pkg/models"
	"github.com/companydb-io/companydb/pkg/query"
	"github.com/companydb-io/companydb/pkg/repositories"
)

// CompanyDetail is a company plus its related persons.
type CompanyDetail struct {
	*models.Company
	RelatedPersons []models.CompanyPersonRole `json:"related_persons"`
}

// CompaniesHandler serves the company search and detail endpoints.
type CompaniesHandler struct {
	router        *query.Router
	companies     repositories.CompanyRepository
	relationships repositories.RelationshipRepository
	logger        *zap.Logger
}

// NewCompaniesHandler creates a new companies handler.
func NewCompaniesHandler(
	router *query.Router,
	companies repositories.CompanyRepository,
	relationships repositories.RelationshipRepository,
	logger *zap.Logger,
) *CompaniesHandler {
	return &CompaniesHandler{
		router:        router,
		companies:     companies,
		relationships: relationships,
		logger:        logger,
	}
}

// RegisterRoutes registers the companies handler's routes on the given mux.
func (h *CompaniesHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /companies", h.List)
	mux.HandleFunc("GET /companies/{company_id}", h.Get)
}

// List handles GET /companies
// Routes the query through the search store when available, falling back to
// PostgreSQL transparently.
func (h *CompaniesHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParsePaging(r)
	q := r.URL.Query()
	filter := repositories.CompanyFilter{
		Query:     q.Get("q"),
		Status:    q.Get("status"),
		LegalForm: q.Get("legal_form"),
		City:      q.Get("city"),
		Limit:     limit,
		Offset:    offset,
	}

	companies, total, err := h.router.SearchCompanies(r.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to search companies", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to search companies"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	resp := ListResponse{Results: companies, Total: total, Limit: limit, Offset: offset}
	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /companies/{company_id}
// The path parameter is the external company_id, not the surrogate key.
func (h *CompaniesHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	roles, err := h.relationships.RolesForCompany(r.Context(), company.ID)
	if err != nil {
		h.logger.Error("Failed to load related persons", zap.String("company_id", companyID), zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to load related persons"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, CompanyDetail{Company: company, RelatedPersons: roles}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
