package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/companydb-io/companydb/pkg/models"
	"github.com/companydb-io/companydb/pkg/repositories"
)

// RelationshipBuilder resolves relation tuples captured during the streaming
// pass into surrogate-key edges and bulk-inserts them. It runs strictly after
// all company and person rows for the run are committed.
type RelationshipBuilder struct {
	companies     repositories.CompanyRepository
	persons       repositories.PersonRepository
	relationships repositories.RelationshipRepository
	batchSize     int
	logger        *zap.Logger
}

// RelationshipStats summarizes one build pass.
type RelationshipStats struct {
	Created int
	// Dropped counts tuples referencing an unresolved endpoint. These are
	// skipped, never created as dangling references, and never abort the
	// pass. The count is surfaced in logs only.
	Dropped int
	// Duplicates counts tuples that collapsed onto an existing or
	// already-emitted (company, person, role_type) triple.
	Duplicates int
}

// NewRelationshipBuilder creates a relationship builder.
func NewRelationshipBuilder(
	companies repositories.CompanyRepository,
	persons repositories.PersonRepository,
	relationships repositories.RelationshipRepository,
	batchSize int,
	logger *zap.Logger,
) *RelationshipBuilder {
	if batchSize <= 0 {
		batchSize = 20000
	}
	return &RelationshipBuilder{
		companies:     companies,
		persons:       persons,
		relationships: relationships,
		batchSize:     batchSize,
		logger:        logger.Named("relationships"),
	}
}

// Build maps external ids to surrogate keys, deduplicates triples against the
// store and within the run, and bulk-inserts the remainder.
func (b *RelationshipBuilder) Build(ctx context.Context, tuples []RelationTuple) (RelationshipStats, error) {
	var stats RelationshipStats
	if len(tuples) == 0 {
		return stats, nil
	}

	companyIDs, err := b.companies.ExternalIDMap(ctx)
	if err != nil {
		return stats, fmt.Errorf("load company id map: %w", err)
	}
	personIDs, err := b.persons.ExternalIDMap(ctx)
	if err != nil {
		return stats, fmt.Errorf("load person id map: %w", err)
	}
	seen, err := b.relationships.ExistingTriples(ctx)
	if err != nil {
		return stats, fmt.Errorf("load existing triples: %w", err)
	}

	var batch []*models.CompanyPerson
	for _, t := range tuples {
		companyDBID, ok := companyIDs[t.CompanyExternalID]
		if !ok {
			stats.Dropped++
			b.logger.Debug("dropping edge with unresolved company",
				zap.String("company_id", t.CompanyExternalID))
			continue
		}
		personDBID, ok := personIDs[t.PersonExternalID]
		if !ok {
			stats.Dropped++
			b.logger.Debug("dropping edge with unresolved person",
				zap.String("person_id", t.PersonExternalID))
			continue
		}

		triple := repositories.RoleTriple{
			CompanyDBID: companyDBID,
			PersonDBID:  personDBID,
			RoleType:    deref(t.RoleType),
		}
		if _, dup := seen[triple]; dup {
			stats.Duplicates++
			continue
		}
		seen[triple] = struct{}{}

		batch = append(batch, &models.CompanyPerson{
			CompanyDBID:     companyDBID,
			PersonDBID:      personDBID,
			RoleType:        t.RoleType,
			RoleDescription: t.RoleDescription,
			RoleDate:        t.RoleDate,
		})
		stats.Created++

		if len(batch) >= b.batchSize {
			if err := b.relationships.BulkInsert(ctx, batch); err != nil {
				return stats, fmt.Errorf("relationship bulk insert: %w", err)
			}
			batch = batch[:0]
		}
	}

	if err := b.relationships.BulkInsert(ctx, batch); err != nil {
		return stats, fmt.Errorf("relationship bulk insert: %w", err)
	}

	b.logger.Info("relationship pass finished",
		zap.Int("created", stats.Created),
		zap.Int("dropped", stats.Dropped),
		zap.Int("duplicates", stats.Duplicates))
	return stats, nil
}
