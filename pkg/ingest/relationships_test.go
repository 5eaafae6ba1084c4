package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/companydb-io/companydb/pkg/models"
	"github.com/companydb-io/companydb/pkg/repositories"
)

func relationshipFixtures() (*fakeCompanyRepository, *fakePersonRepository, *fakeRelationshipRepository) {
	companies := newFakeCompanyRepository()
	companies.byExternalID["C-1"] = &models.Company{ID: 1, CompanyID: "C-1"}
	persons := newFakePersonRepository()
	persons.byExternalID["P-1"] = &models.Person{ID: 10, PersonID: "P-1"}
	persons.byExternalID["P-2"] = &models.Person{ID: 11, PersonID: "P-2"}
	return companies, persons, newFakeRelationshipRepository()
}

func TestRelationshipBuilderResolvesAndInserts(t *testing.T) {
	companies, persons, relationships := relationshipFixtures()
	builder := NewRelationshipBuilder(companies, persons, relationships, 100, zap.NewNop())

	role := "MANAGING_DIRECTOR"
	stats, err := builder.Build(context.Background(), []RelationTuple{
		{CompanyExternalID: "C-1", PersonExternalID: "P-1", RoleType: &role},
		{CompanyExternalID: "C-1", PersonExternalID: "P-2", RoleType: &role},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Created)
	assert.Zero(t, stats.Dropped)
	assert.Zero(t, stats.Duplicates)
	require.Len(t, relationships.inserted, 2)
	assert.Equal(t, int64(1), relationships.inserted[0].CompanyDBID)
	assert.Equal(t, int64(10), relationships.inserted[0].PersonDBID)
}

func TestRelationshipBuilderDropsUnresolvedEdges(t *testing.T) {
	companies, persons, relationships := relationshipFixtures()
	builder := NewRelationshipBuilder(companies, persons, relationships, 100, zap.NewNop())

	role := "OWNER"
	stats, err := builder.Build(context.Background(), []RelationTuple{
		{CompanyExternalID: "C-404", PersonExternalID: "P-1", RoleType: &role},
		{CompanyExternalID: "C-1", PersonExternalID: "P-404", RoleType: &role},
		{CompanyExternalID: "C-1", PersonExternalID: "P-1", RoleType: &role},
	})
	require.NoError(t, err)

	// Dangling edges are skipped silently, never inserted, never fatal.
	assert.Equal(t, 2, stats.Dropped)
	assert.Equal(t, 1, stats.Created)
	assert.Len(t, relationships.inserted, 1)
}

func TestRelationshipBuilderDeduplicatesTriples(t *testing.T) {
	companies, persons, relationships := relationshipFixtures()
	relationships.existing[repositories.RoleTriple{CompanyDBID: 1, PersonDBID: 10, RoleType: "OWNER"}] = struct{}{}
	builder := NewRelationshipBuilder(companies, persons, relationships, 100, zap.NewNop())

	owner := "OWNER"
	director := "MANAGING_DIRECTOR"
	stats, err := builder.Build(context.Background(), []RelationTuple{
		// Already in the store.
		{CompanyExternalID: "C-1", PersonExternalID: "P-1", RoleType: &owner},
		// New triple, then repeated within the run.
		{CompanyExternalID: "C-1", PersonExternalID: "P-1", RoleType: &director},
		{CompanyExternalID: "C-1", PersonExternalID: "P-1", RoleType: &director},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Created)
	assert.Equal(t, 2, stats.Duplicates)
	require.Len(t, relationships.inserted, 1)
	assert.Equal(t, director, *relationships.inserted[0].RoleType)
}

func TestRelationshipBuilderNilRoleType(t *testing.T) {
	companies, persons, relationships := relationshipFixtures()
	builder := NewRelationshipBuilder(companies, persons, relationships, 100, zap.NewNop())

	// A nil role type deduplicates under the empty-string key.
	stats, err := builder.Build(context.Background(), []RelationTuple{
		{CompanyExternalID: "C-1", PersonExternalID: "P-1"},
		{CompanyExternalID: "C-1", PersonExternalID: "P-1"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Created)
	assert.Equal(t, 1, stats.Duplicates)
}

func TestRelationshipBuilderEmptyInput(t *testing.T) {
	companies, persons, relationships := relationshipFixtures()
	builder := NewRelationshipBuilder(companies, persons, relationships, 100, zap.NewNop())

	stats, err := builder.Build(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, stats.Created)
	assert.Empty(t, relationships.inserted)
}
