package ingest

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/companydb-io/companydb/pkg/models"
)

func TestIdentityCacheSeenMarks(t *testing.T) {
	companies := newFakeCompanyRepository()
	companies.byExternalID["C-1"] = &models.Company{ID: 1, CompanyID: "C-1"}
	persons := newFakePersonRepository()

	cache, err := LoadIdentityCache(context.Background(), companies, persons)
	require.NoError(t, err)

	assert.True(t, cache.SeenCompany("C-1"))
	assert.False(t, cache.SeenCompany("C-2"))
	// Second sighting of the same id in the run reports seen.
	assert.True(t, cache.SeenCompany("C-2"))

	assert.False(t, cache.SeenPerson("P-1"))
	assert.True(t, cache.SeenPerson("P-1"))

	assert.Equal(t, 2, cache.CompanyCount())
	assert.Equal(t, 1, cache.PersonCount())
}

func TestBulkLoaderFlushesAtBatchSize(t *testing.T) {
	ctx := context.Background()
	jobs := newFakeJobRepository()
	companies := newFakeCompanyRepository()
	persons := newFakePersonRepository()
	jobID := uuid.New()
	require.NoError(t, jobs.Create(ctx, &models.ImportJob{ID: jobID, Filename: "t.jsonl"}))

	loader := NewBulkLoader(jobID, jobs, companies, persons, 2, zap.NewNop())

	loader.AddCompany(&models.Company{CompanyID: "C-1"}, true)
	loader.AddPerson(&models.Person{PersonID: "P-1"})
	require.NoError(t, loader.LineProcessed(ctx))
	assert.Zero(t, jobs.progressUpdates)

	loader.AddCompany(&models.Company{CompanyID: "C-2"}, true)
	require.NoError(t, loader.LineProcessed(ctx))

	// Second line hit the batch threshold: everything flushed, progress
	// written once.
	assert.Equal(t, 1, jobs.progressUpdates)
	assert.Equal(t, 2, companies.inserts)
	assert.Equal(t, 1, persons.inserts)

	job := jobs.jobs[jobID]
	assert.Equal(t, 2, job.ProcessedLines)
	assert.Equal(t, 2, job.CompaniesImported)
	assert.Equal(t, 1, job.PersonsImported)
}

func TestBulkLoaderUpdatesExistingCompanies(t *testing.T) {
	ctx := context.Background()
	jobs := newFakeJobRepository()
	companies := newFakeCompanyRepository()
	companies.byExternalID["C-1"] = &models.Company{ID: 7, CompanyID: "C-1"}
	persons := newFakePersonRepository()
	jobID := uuid.New()
	require.NoError(t, jobs.Create(ctx, &models.ImportJob{ID: jobID}))

	loader := NewBulkLoader(jobID, jobs, companies, persons, 100, zap.NewNop())
	loader.AddCompany(&models.Company{CompanyID: "C-1"}, false)
	require.NoError(t, loader.LineProcessed(ctx))
	require.NoError(t, loader.Flush(ctx))

	assert.Zero(t, companies.inserts)
	assert.Equal(t, 1, companies.updates)
	// Updates do not count as imported companies.
	assert.Zero(t, loader.CompaniesImported())
	assert.Equal(t, 1, loader.Processed())
}

func TestBulkLoaderTagsImportJob(t *testing.T) {
	ctx := context.Background()
	jobs := newFakeJobRepository()
	companies := newFakeCompanyRepository()
	persons := newFakePersonRepository()
	jobID := uuid.New()
	require.NoError(t, jobs.Create(ctx, &models.ImportJob{ID: jobID}))

	loader := NewBulkLoader(jobID, jobs, companies, persons, 100, zap.NewNop())
	c := &models.Company{CompanyID: "C-1"}
	loader.AddCompany(c, true)
	require.NoError(t, loader.Flush(ctx))

	require.NotNil(t, c.ImportJobID)
	assert.Equal(t, jobID, *c.ImportJobID)
}
