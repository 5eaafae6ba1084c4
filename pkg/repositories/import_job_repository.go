package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/companydb-io/companydb/pkg/apperrors"
	"github.com/companydb-io/companydb/pkg/database"
	"github.com/companydb-io/companydb/pkg/models"
)

// ImportJobRepository defines data access for import job records.
type ImportJobRepository interface {
	Create(ctx context.Context, job *models.ImportJob) error
	Get(ctx context.Context, id uuid.UUID) (*models.ImportJob, error)
	List(ctx context.Context) ([]*models.ImportJob, error)
	MarkRunning(ctx context.Context, id uuid.UUID) error
	// UpdateProgress records pipeline counters at a batch-flush boundary.
	UpdateProgress(ctx context.Context, id uuid.UUID, processed, companies, persons int) error
	MarkCompleted(ctx context.Context, id uuid.UUID, processed, companies, persons int) error
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
}

type importJobRepository struct {
	db *database.DB
}

// NewImportJobRepository creates a new import job repository.
func NewImportJobRepository(db *database.DB) ImportJobRepository {
	return &importJobRepository{db: db}
}

func (r *importJobRepository) Create(ctx context.Context, job *models.ImportJob) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	now := time.Now()
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.Status == "" {
		job.Status = models.JobStatusPending
	}

	query := `
		INSERT INTO import_job (id, filename, status, total_lines, processed_lines,
		                        companies_imported, persons_imported, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, 0, 0, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		job.ID, job.Filename, job.Status, job.TotalLines, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create import job: %w", err)
	}
	return nil
}

func (r *importJobRepository) Get(ctx context.Context, id uuid.UUID) (*models.ImportJob, error) {
	query := `
		SELECT id, filename, status, total_lines, processed_lines,
		       companies_imported, persons_imported, error_message, created_at, updated_at
		FROM import_job
		WHERE id = $1`

	var job models.ImportJob
	err := r.db.QueryRow(ctx, query, id).Scan(
		&job.ID, &job.Filename, &job.Status, &job.TotalLines, &job.ProcessedLines,
		&job.CompaniesImported, &job.PersonsImported, &job.ErrorMessage,
		&job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get import job: %w", err)
	}
	return &job, nil
}

func (r *importJobRepository) List(ctx context.Context) ([]*models.ImportJob, error) {
	query := `
		SELECT id, filename, status, total_lines, processed_lines,
		       companies_imported, persons_imported, error_message, created_at, updated_at
		FROM import_job
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list import jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.ImportJob
	for rows.Next() {
		var job models.ImportJob
		if err := rows.Scan(
			&job.ID, &job.Filename, &job.Status, &job.TotalLines, &job.ProcessedLines,
			&job.CompaniesImported, &job.PersonsImported, &job.ErrorMessage,
			&job.CreatedAt, &job.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan import job: %w", err)
		}
		jobs = append(jobs, &job)
	}
	return jobs, rows.Err()
}

func (r *importJobRepository) MarkRunning(ctx context.Context, id uuid.UUID) error {
	return r.setStatus(ctx, id, models.JobStatusRunning)
}

func (r *importJobRepository) setStatus(ctx context.Context, id uuid.UUID, status string) error {
	result, err := r.db.Exec(ctx,
		`UPDATE import_job SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update import job status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *importJobRepository) UpdateProgress(ctx context.Context, id uuid.UUID, processed, companies, persons int) error {
	_, err := r.db.Exec(ctx, `
		UPDATE import_job
		SET processed_lines = $2, companies_imported = $3, persons_imported = $4, updated_at = now()
		WHERE id = $1`,
		id, processed, companies, persons)
	if err != nil {
		return fmt.Errorf("failed to update import job progress: %w", err)
	}
	return nil
}

func (r *importJobRepository) MarkCompleted(ctx context.Context, id uuid.UUID, processed, companies, persons int) error {
	_, err := r.db.Exec(ctx, `
		UPDATE import_job
		SET status = $2, processed_lines = $3, companies_imported = $4,
		    persons_imported = $5, updated_at = now()
		WHERE id = $1`,
		id, models.JobStatusCompleted, processed, companies, persons)
	if err != nil {
		return fmt.Errorf("failed to mark import job completed: %w", err)
	}
	return nil
}

func (r *importJobRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE import_job
		SET status = $2, error_message = $3, updated_at = now()
		WHERE id = $1`,
		id, models.JobStatusFailed, errMsg)
	if err != nil {
		return fmt.Errorf("failed to mark import job failed: %w", err)
	}
	return nil
}

var _ ImportJobRepository = (*importJobRepository)(nil)
