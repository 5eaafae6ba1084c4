package ingest

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/companydb-io/companydb/pkg/models"
	"github.com/companydb-io/companydb/pkg/repositories"
)

// BulkLoader accumulates decoded, deduplicated rows in append buffers and
// flushes them into the relational store in large batches: COPY for new rows,
// a batched UPDATE round trip for rows whose external id already existed.
// Progress is recorded on the job record at every flush boundary, which is
// the only progress callers ever see.
type BulkLoader struct {
	jobID     uuid.UUID
	jobs      repositories.ImportJobRepository
	companies repositories.CompanyRepository
	persons   repositories.PersonRepository
	logger    *zap.Logger

	batchSize int
	pending   int

	newCompanies     []*models.Company
	updatedCompanies []*models.Company
	newPersons       []*models.Person

	processed         int
	companiesImported int
	personsImported   int
}

// NewBulkLoader creates a loader bound to one import job.
func NewBulkLoader(
	jobID uuid.UUID,
	jobs repositories.ImportJobRepository,
	companies repositories.CompanyRepository,
	persons repositories.PersonRepository,
	batchSize int,
	logger *zap.Logger,
) *BulkLoader {
	if batchSize <= 0 {
		batchSize = 20000
	}
	return &BulkLoader{
		jobID:     jobID,
		jobs:      jobs,
		companies: companies,
		persons:   persons,
		batchSize: batchSize,
		logger:    logger.Named("loader"),
	}
}

// AddCompany buffers a company row. isNew selects insert vs in-place update;
// the identity cache has already made that decision.
func (l *BulkLoader) AddCompany(c *models.Company, isNew bool) {
	jobID := l.jobID
	c.ImportJobID = &jobID
	if isNew {
		l.newCompanies = append(l.newCompanies, c)
		l.companiesImported++
	} else {
		l.updatedCompanies = append(l.updatedCompanies, c)
	}
}

// AddPerson buffers a new person row. Persons already known to the store are
// never buffered: once a person_id has been seen it is not re-created.
func (l *BulkLoader) AddPerson(p *models.Person) {
	l.newPersons = append(l.newPersons, p)
	l.personsImported++
}

// LineProcessed counts one input line (including skipped malformed or blank
// lines) and flushes when the batch threshold is reached.
func (l *BulkLoader) LineProcessed(ctx context.Context) error {
	l.processed++
	l.pending++
	if l.pending >= l.batchSize {
		return l.Flush(ctx)
	}
	return nil
}

// Flush writes all buffered rows to the store and records progress on the
// job record. A failure here aborts the job; partial flushes are not retried.
func (l *BulkLoader) Flush(ctx context.Context) error {
	if err := l.companies.BulkInsert(ctx, l.newCompanies); err != nil {
		return fmt.Errorf("company bulk insert: %w", err)
	}
	if err := l.companies.BulkUpdate(ctx, l.updatedCompanies); err != nil {
		return fmt.Errorf("company bulk update: %w", err)
	}
	if err := l.persons.BulkInsert(ctx, l.newPersons); err != nil {
		return fmt.Errorf("person bulk insert: %w", err)
	}

	l.logger.Info("flushed batch",
		zap.Int("processed", l.processed),
		zap.Int("new_companies", len(l.newCompanies)),
		zap.Int("updated_companies", len(l.updatedCompanies)),
		zap.Int("new_persons", len(l.newPersons)))

	l.newCompanies = l.newCompanies[:0]
	l.updatedCompanies = l.updatedCompanies[:0]
	l.newPersons = l.newPersons[:0]
	l.pending = 0

	if err := l.jobs.UpdateProgress(ctx, l.jobID, l.processed, l.companiesImported, l.personsImported); err != nil {
		return fmt.Errorf("update job progress: %w", err)
	}
	return nil
}

// Processed returns the number of input lines counted so far.
func (l *BulkLoader) Processed() int { return l.processed }

// CompaniesImported returns the number of new companies inserted.
func (l *BulkLoader) CompaniesImported() int { return l.companiesImported }

// PersonsImported returns the number of new persons inserted.
func (l *BulkLoader) PersonsImported() int { return l.personsImported }
