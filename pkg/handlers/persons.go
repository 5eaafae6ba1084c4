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

// PersonDetail is a person plus the companies they hold roles in.
type PersonDetail struct {
	*models.Person
	RelatedCompanies []models.PersonCompanyRole `json:"related_companies"`
}

// PersonsHandler serves the person search and detail endpoints.
type PersonsHandler struct {
	router        *query.Router
	persons       repositories.PersonRepository
	relationships repositories.RelationshipRepository
	logger        *zap.Logger
}

// NewPersonsHandler creates a new persons handler.
func NewPersonsHandler(
	router *query.Router,
	persons repositories.PersonRepository,
	relationships repositories.RelationshipRepository,
	logger *zap.Logger,
) *PersonsHandler {
	return &PersonsHandler{
		router:        router,
		persons:       persons,
		relationships: relationships,
		logger:        logger,
	}
}

// RegisterRoutes registers the persons handler's routes on the given mux.
func (h *PersonsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /persons", h.List)
	mux.HandleFunc("GET /persons/{person_id}", h.Get)
}

// List handles GET /persons
func (h *PersonsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParsePaging(r)
	q := r.URL.Query()
	filter := repositories.PersonFilter{
		Query:  q.Get("q"),
		City:   q.Get("city"),
		Limit:  limit,
		Offset: offset,
	}

	persons, total, err := h.router.SearchPersons(r.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to search persons", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to search persons"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	resp := ListResponse{Results: persons, Total: total, Limit: limit, Offset: offset}
	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /persons/{person_id}
// The path parameter is the external person_id, not the surrogate key.
func (h *PersonsHandler) Get(w http.ResponseWriter, r *http.Request) {
	personID := r.PathValue("person_id")

	person, err := h.persons.GetByPersonID(r.Context(), personID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "not_found", "Person not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to get person", zap.String("person_id", personID), zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to get person"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	roles, err := h.relationships.RolesForPerson(r.Context(), person.ID)
	if err != nil {
		h.logger.Error("Failed to load related companies", zap.String("person_id", personID), zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to load related companies"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, PersonDetail{Person: person, RelatedCompanies: roles}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
