package match

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/companydb-io/companydb/pkg/repositories"
)

// candidateLimit caps the relational prefilter. The scorer handles the
// precise ranking, so the prefilter only needs to be generous.
const candidateLimit = 200

// Matcher resolves structured match queries against the company table.
type Matcher interface {
	Match(ctx context.Context, q Query, opts Options) ([]Scored, error)
}

type matcher struct {
	companies repositories.CompanyRepository
	logger    *zap.Logger
}

func NewMatcher(companies repositories.CompanyRepository, logger *zap.Logger) Matcher {
	return &matcher{
		companies: companies,
		logger:    logger.Named("matcher"),
	}
}

// Match prefilters candidates with a broad OR query, scores each one and
// returns the ranked survivors.
func (m *matcher) Match(ctx context.Context, q Query, opts Options) ([]Scored, error) {
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultOptions().MaxResults
	}

	candidates, err := m.companies.MatchCandidates(ctx, q.Name, q.City, q.PostalCode, candidateLimit)
	if err != nil {
		return nil, fmt.Errorf("loading match candidates: %w", err)
	}

	results := Rank(candidates, q, opts)
	m.logger.Debug("match query resolved",
		zap.Int("candidates", len(candidates)),
		zap.Int("results", len(results)),
		zap.Float64("min_score", opts.MinScore))
	return results, nil
}
