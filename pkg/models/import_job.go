package models

import (
	"time"

	"github.com/google/uuid"
)

// Import job statuses. A job is terminal once it reaches completed or failed.
const (
	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// ImportJob tracks the progress of one JSONL ingestion run. The pipeline
// worker is the sole writer; status-polling callers only read it.
type ImportJob struct {
	ID                uuid.UUID `json:"id"`
	Filename          string    `json:"filename"`
	Status            string    `json:"status"`
	TotalLines        *int      `json:"total_lines"`
	ProcessedLines    int       `json:"processed_lines"`
	CompaniesImported int       `json:"companies_imported"`
	PersonsImported   int       `json:"persons_imported"`
	ErrorMessage      *string   `json:"error_message"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
