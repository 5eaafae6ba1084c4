package database

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// secondaryIndex describes a non-essential index that can be dropped for the
// duration of a bulk load and recreated afterwards. The unique indexes backing
// company_id/person_id identity are never touched - the pipeline depends on
// them to surface deduplication bugs as constraint violations.
type secondaryIndex struct {
	Name      string
	CreateSQL string
}

var secondaryIndexes = []secondaryIndex{
	{"idx_company_register_unique_key", "CREATE INDEX idx_company_register_unique_key ON company (register_unique_key)"},
	{"idx_company_legal_name", "CREATE INDEX idx_company_legal_name ON company (legal_name)"},
	{"idx_company_address_city", "CREATE INDEX idx_company_address_city ON company (address_city)"},
	{"idx_company_domain", "CREATE INDEX idx_company_domain ON company (domain)"},
	{"idx_person_last_name", "CREATE INDEX idx_person_last_name ON person (last_name)"},
	{"idx_company_person_person", "CREATE INDEX idx_company_person_person ON company_person (person_db_id)"},
}

// DropSecondaryIndexes drops the non-essential secondary indexes on the
// ingestion target tables to maximize bulk insert throughput. A crash between
// drop and recreate leaves the indexes missing until an operator reruns setup;
// this window is not auto-corrected.
func (db *DB) DropSecondaryIndexes(ctx context.Context, logger *zap.Logger) error {
	for _, idx := range secondaryIndexes {
		if _, err := db.Exec(ctx, fmt.Sprintf("DROP INDEX IF EXISTS %s", idx.Name)); err != nil {
			return fmt.Errorf("failed to drop index %s: %w", idx.Name, err)
		}
	}
	logger.Info("dropped secondary indexes for bulk load", zap.Int("count", len(secondaryIndexes)))
	return nil
}

// CreateSecondaryIndexes recreates the indexes dropped by DropSecondaryIndexes.
// Idempotent: indexes that already exist are left alone.
func (db *DB) CreateSecondaryIndexes(ctx context.Context, logger *zap.Logger) error {
	for _, idx := range secondaryIndexes {
		var exists bool
		err := db.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = $1)", idx.Name,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.Name, err)
		}
		if exists {
			continue
		}
		if _, err := db.Exec(ctx, idx.CreateSQL); err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.Name, err)
		}
	}
	logger.Info("recreated secondary indexes after bulk load")
	return nil
}
