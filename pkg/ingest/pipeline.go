package ingest

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/companydb-io/companydb/pkg/logging"
	"github.com/companydb-io/companydb/pkg/repositories"
)

// maxLineBytes bounds a single export line. Registry records with hundreds of
// related persons stay well under this.
const maxLineBytes = 16 * 1024 * 1024

// maxErrorMessageLen bounds the error_message stored on a failed job; the
// message comes back verbatim through the jobs API.
const maxErrorMessageLen = 2048

// SearchProjector projects relational rows into the search store. Ingestion
// treats it as best-effort: projection failures never fail the job.
type SearchProjector interface {
	SyncAll(ctx context.Context) error
}

// IndexManager drops and recreates the secondary indexes around the bulk
// load window. *database.DB implements it.
type IndexManager interface {
	DropSecondaryIndexes(ctx context.Context, logger *zap.Logger) error
	CreateSecondaryIndexes(ctx context.Context, logger *zap.Logger) error
}

// Importer runs complete ingestion jobs: streaming decode, identity dedup,
// bulk load, relationship reconciliation and search projection. One job runs
// as one dedicated background worker; the job record is the only channel for
// progress and errors.
type Importer struct {
	db            IndexManager
	jobs          repositories.ImportJobRepository
	companies     repositories.CompanyRepository
	persons       repositories.PersonRepository
	relationships repositories.RelationshipRepository
	projector     SearchProjector // nil when the search store is disabled
	batchSize     int
	logger        *zap.Logger
}

// NewImporter creates an importer. projector may be nil.
func NewImporter(
	db IndexManager,
	jobs repositories.ImportJobRepository,
	companies repositories.CompanyRepository,
	persons repositories.PersonRepository,
	relationships repositories.RelationshipRepository,
	projector SearchProjector,
	batchSize int,
	logger *zap.Logger,
) *Importer {
	return &Importer{
		db:            db,
		jobs:          jobs,
		companies:     companies,
		persons:       persons,
		relationships: relationships,
		projector:     projector,
		batchSize:     batchSize,
		logger:        logger.Named("importer"),
	}
}

// CountLines counts the lines of the input file so the job record can carry a
// total before the run starts.
func CountLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open input file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	count := 0
	for scanner.Scan() {
		count++
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("count lines: %w", err)
	}
	return count, nil
}

// Start launches the job in a background goroutine. Progress is observed by
// re-reading the job record; there is no cancellation path - jobs are
// fire-and-forget and callers poll the record to completion.
func (im *Importer) Start(jobID uuid.UUID, path string) {
	go func() {
		ctx := context.Background()
		if err := im.Run(ctx, jobID, path); err != nil {
			im.logger.Error("import job failed",
				zap.String("job_id", jobID.String()),
				zap.Error(err))
		}
	}()
}

// Run executes the full pipeline synchronously. Any pipeline error marks the
// job failed with the error message captured; input-level problems (blank or
// malformed lines) are counted as processed and skipped.
func (im *Importer) Run(ctx context.Context, jobID uuid.UUID, path string) error {
	if err := im.run(ctx, jobID, path); err != nil {
		// pgx errors can carry the connection string; redact before the
		// message is persisted on the job record.
		msg := logging.TruncateString(logging.SanitizeMessage(err.Error()), maxErrorMessageLen)
		if markErr := im.jobs.MarkFailed(ctx, jobID, msg); markErr != nil {
			im.logger.Error("failed to mark job failed",
				zap.String("job_id", jobID.String()),
				zap.Error(markErr))
		}
		return err
	}
	return nil
}

func (im *Importer) run(ctx context.Context, jobID uuid.UUID, path string) error {
	if err := im.jobs.MarkRunning(ctx, jobID); err != nil {
		return fmt.Errorf("mark job running: %w", err)
	}

	cache, err := LoadIdentityCache(ctx, im.companies, im.persons)
	if err != nil {
		return fmt.Errorf("load identity cache: %w", err)
	}
	im.logger.Info("identity cache loaded",
		zap.Int("known_companies", cache.CompanyCount()),
		zap.Int("known_persons", cache.PersonCount()))

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open input file: %w", err)
	}
	defer f.Close()

	// Secondary indexes come off for the duration of the load. A crash
	// before CreateSecondaryIndexes leaves them missing until an operator
	// reruns setup.
	if err := im.db.DropSecondaryIndexes(ctx, im.logger); err != nil {
		return fmt.Errorf("drop secondary indexes: %w", err)
	}

	loader := NewBulkLoader(jobID, im.jobs, im.companies, im.persons, im.batchSize, im.logger)
	var tuples []RelationTuple

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			if err := loader.LineProcessed(ctx); err != nil {
				return err
			}
			continue
		}

		var rec RawRecord
		if err := json.Unmarshal(line, &rec); err != nil || rec.ID == "" {
			if err := loader.LineProcessed(ctx); err != nil {
				return err
			}
			continue
		}

		// The raw line is retained verbatim; copy it out of the
		// scanner's reusable buffer.
		raw := make([]byte, len(line))
		copy(raw, line)

		extracted := ExtractRecord(&rec, raw)
		loader.AddCompany(extracted.Company, !cache.SeenCompany(rec.ID))
		for _, p := range extracted.Persons {
			if !cache.SeenPerson(p.PersonID) {
				loader.AddPerson(p)
			}
		}
		tuples = append(tuples, extracted.Relations...)

		if err := loader.LineProcessed(ctx); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input file: %w", err)
	}

	if err := loader.Flush(ctx); err != nil {
		return err
	}
	if err := im.db.CreateSecondaryIndexes(ctx, im.logger); err != nil {
		return fmt.Errorf("recreate secondary indexes: %w", err)
	}

	builder := NewRelationshipBuilder(im.companies, im.persons, im.relationships, im.batchSize, im.logger)
	if _, err := builder.Build(ctx, tuples); err != nil {
		return err
	}

	// Search projection is best-effort: failures are logged and the job
	// still completes. The projection can be rebuilt independently.
	if im.projector != nil {
		if err := im.projector.SyncAll(ctx); err != nil {
			im.logger.Warn("search projection failed, continuing",
				zap.String("job_id", jobID.String()),
				zap.Error(err))
		}
	}

	if err := im.jobs.MarkCompleted(ctx, jobID,
		loader.Processed(), loader.CompaniesImported(), loader.PersonsImported()); err != nil {
		return fmt.Errorf("mark job completed: %w", err)
	}

	im.logger.Info("import job completed",
		zap.String("job_id", jobID.String()),
		zap.Int("processed", loader.Processed()),
		zap.Int("companies_imported", loader.CompaniesImported()),
		zap.Int("persons_imported", loader.PersonsImported()))
	return nil
}
