// Package query routes lookup requests to the search store when it is
// configured and healthy, and degrades transparently to the relational store
// otherwise. Both paths return identical shapes and pagination semantics.
package query

import (
	"context"

	"go.uber.org/zap"

	"github.com/companydb-io/companydb/pkg/models"
	"github.com/companydb-io/companydb/pkg/repositories"
)

// Searcher is the slice of the search client the router needs. Nil disables
// the search path entirely.
type Searcher interface {
	Ping(ctx context.Context) error
	SearchCompanies(ctx context.Context, filter repositories.CompanyFilter) ([]string, int, error)
	SearchPersons(ctx context.Context, filter repositories.PersonFilter) ([]string, int, error)
}

// Router chooses the query path per request. Search-store failures are
// absorbed here: the caller only ever sees results, never store errors.
type Router struct {
	search    Searcher // nil when the search store is disabled
	companies repositories.CompanyRepository
	persons   repositories.PersonRepository
	logger    *zap.Logger
}

// NewRouter creates a query router. search may be nil.
func NewRouter(
	search Searcher,
	companies repositories.CompanyRepository,
	persons repositories.PersonRepository,
	logger *zap.Logger,
) *Router {
	return &Router{
		search:    search,
		companies: companies,
		persons:   persons,
		logger:    logger.Named("query-router"),
	}
}

// SearchCompanies returns one page of companies plus the total count.
// The search path is only attempted for free-text queries; structured-only
// filters go straight to the relational store.
func (r *Router) SearchCompanies(ctx context.Context, filter repositories.CompanyFilter) ([]*models.Company, int, error) {
	if r.search != nil && filter.Query != "" {
		companies, total, err := r.searchCompanies(ctx, filter)
		if err == nil {
			return companies, total, nil
		}
		r.logger.Warn("search path failed, falling back to relational store", zap.Error(err))
	}
	return r.companies.Search(ctx, filter)
}

func (r *Router) searchCompanies(ctx context.Context, filter repositories.CompanyFilter) ([]*models.Company, int, error) {
	if err := r.search.Ping(ctx); err != nil {
		return nil, 0, err
	}

	ids, total, err := r.search.SearchCompanies(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	// Re-fetch the rows to recover surrogate keys and the complete field
	// set. GetByCompanyIDs preserves the relevance order of ids.
	companies, err := r.companies.GetByCompanyIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	return companies, total, nil
}

// SearchPersons returns one page of persons plus the total count.
func (r *Router) SearchPersons(ctx context.Context, filter repositories.PersonFilter) ([]*models.Person, int, error) {
	if r.search != nil && filter.Query != "" {
		persons, total, err := r.searchPersons(ctx, filter)
		if err == nil {
			return persons, total, nil
		}
		r.logger.Warn("search path failed, falling back to relational store", zap.Error(err))
	}
	return r.persons.Search(ctx, filter)
}

func (r *Router) searchPersons(ctx context.Context, filter repositories.PersonFilter) ([]*models.Person, int, error) {
	if err := r.search.Ping(ctx); err != nil {
		return nil, 0, err
	}

	ids, total, err := r.search.SearchPersons(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	persons, err := r.persons.GetByPersonIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	return persons, total, nil
}
