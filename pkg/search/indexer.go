package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/companydb-io/companydb/pkg/models"
	"github.com/companydb-io/companydb/pkg/repositories"
	"github.com/companydb-io/companydb/pkg/retry"
)

// Indexer projects relational rows into search documents and bulk-upserts
// them in fixed-size chunks. Each bulk call is isolated: a failed chunk is
// logged and skipped so one bad batch never sinks the whole projection.
type Indexer struct {
	client        *Client
	companies     repositories.CompanyRepository
	persons       repositories.PersonRepository
	relationships repositories.RelationshipRepository
	chunkSize     int
	logger        *zap.Logger
}

// NewIndexer creates an indexer.
func NewIndexer(
	client *Client,
	companies repositories.CompanyRepository,
	persons repositories.PersonRepository,
	relationships repositories.RelationshipRepository,
	chunkSize int,
	logger *zap.Logger,
) *Indexer {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	return &Indexer{
		client:        client,
		companies:     companies,
		persons:       persons,
		relationships: relationships,
		chunkSize:     chunkSize,
		logger:        logger.Named("indexer"),
	}
}

// SyncAll projects every company and person row into the search store and
// refreshes both indices. Used as the terminal step of ingestion.
func (ix *Indexer) SyncAll(ctx context.Context) error {
	if err := ix.client.EnsureIndices(ctx); err != nil {
		return fmt.Errorf("ensure indices: %w", err)
	}
	if err := ix.indexCompanies(ctx); err != nil {
		return err
	}
	if err := ix.indexPersons(ctx); err != nil {
		return err
	}
	if err := ix.client.Refresh(ctx, CompanyIndex, PersonIndex); err != nil {
		return err
	}
	ix.logger.Info("search projection synced")
	return nil
}

// Rebuild re-derives the entire projection from the relational store,
// independent of any ingestion run. Re-upserting by external id overwrites
// prior documents, so the operation is idempotent. The two entity phases run
// concurrently; rows are streamed, never materialized as whole tables.
func (ix *Indexer) Rebuild(ctx context.Context) error {
	if err := ix.client.EnsureIndices(ctx); err != nil {
		return fmt.Errorf("ensure indices: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ix.indexCompanies(gctx) })
	g.Go(func() error { return ix.indexPersons(gctx) })
	if err := g.Wait(); err != nil {
		return err
	}

	if err := ix.client.Refresh(ctx, CompanyIndex, PersonIndex); err != nil {
		return err
	}
	ix.logger.Info("search rebuild completed")
	return nil
}

func (ix *Indexer) indexCompanies(ctx context.Context) error {
	batch := make([]BulkDoc, 0, ix.chunkSize)
	total := 0

	err := ix.companies.StreamAll(ctx, func(c *models.Company) error {
		batch = append(batch, BulkDoc{ID: c.CompanyID, Source: NewCompanyDocument(c)})
		total++
		if len(batch) >= ix.chunkSize {
			ix.flush(ctx, CompanyIndex, batch)
			batch = batch[:0]
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("stream companies: %w", err)
	}

	ix.flush(ctx, CompanyIndex, batch)
	ix.logger.Info("companies indexed", zap.Int("count", total))
	return nil
}

func (ix *Indexer) indexPersons(ctx context.Context) error {
	rolesMap, err := ix.relationships.PersonRolesMap(ctx)
	if err != nil {
		return fmt.Errorf("load person roles: %w", err)
	}

	batch := make([]BulkDoc, 0, ix.chunkSize)
	total := 0

	err = ix.persons.StreamAll(ctx, func(p *models.Person) error {
		batch = append(batch, BulkDoc{ID: p.PersonID, Source: NewPersonDocument(p, rolesMap[p.ID])})
		total++
		if len(batch) >= ix.chunkSize {
			ix.flush(ctx, PersonIndex, batch)
			batch = batch[:0]
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("stream persons: %w", err)
	}

	ix.flush(ctx, PersonIndex, batch)
	ix.logger.Info("persons indexed", zap.Int("count", total))
	return nil
}

// flush performs one isolated bulk call, retrying transient store errors
// with backoff. Failures are logged, not returned: projection errors must
// never fail ingestion, and a rebuild should index everything it can.
func (ix *Indexer) flush(ctx context.Context, index string, docs []BulkDoc) {
	if len(docs) == 0 {
		return
	}
	err := retry.DoIfRetryable(ctx, nil, func() error {
		return ix.client.Bulk(ctx, index, docs)
	})
	if err != nil {
		ix.logger.Warn("bulk indexing chunk failed, skipping",
			zap.String("index", index),
			zap.Int("docs", len(docs)),
			zap.Error(err))
	}
}
