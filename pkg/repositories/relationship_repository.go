package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/companydb-io/companydb/pkg/database"
	"github.com/companydb-io/companydb/pkg/models"
)

// RoleTriple identifies a company-person edge. The triple is unique in the
// store; a nil role_type is keyed as the empty string.
type RoleTriple struct {
	CompanyDBID int64
	PersonDBID  int64
	RoleType    string
}

// RelationshipRepository defines data access for company-person edges.
type RelationshipRepository interface {
	// ExistingTriples returns the set of edges already in the store, used by
	// the relationship builder to deduplicate before bulk insert.
	ExistingTriples(ctx context.Context) (map[RoleTriple]struct{}, error)
	// BulkInsert appends edges via COPY. Edges must already be deduplicated.
	BulkInsert(ctx context.Context, edges []*models.CompanyPerson) error
	// RolesForCompany returns the persons related to a company.
	RolesForCompany(ctx context.Context, companyDBID int64) ([]models.CompanyPersonRole, error)
	// RolesForPerson returns the companies a person is related to.
	RolesForPerson(ctx context.Context, personDBID int64) ([]models.PersonCompanyRole, error)
	// PersonRolesMap returns, for every person surrogate key, the related
	// companies and roles. Loaded once per indexing run to aggregate person
	// documents without a per-person query.
	PersonRolesMap(ctx context.Context) (map[int64][]models.PersonCompanyRole, error)
}

type relationshipRepository struct {
	db *database.DB
}

// NewRelationshipRepository creates a new relationship repository.
func NewRelationshipRepository(db *database.DB) RelationshipRepository {
	return &relationshipRepository{db: db}
}

func (r *relationshipRepository) ExistingTriples(ctx context.Context) (map[RoleTriple]struct{}, error) {
	rows, err := r.db.Query(ctx,
		`SELECT company_db_id, person_db_id, COALESCE(role_type, '') FROM company_person`)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing relationship triples: %w", err)
	}
	defer rows.Close()

	triples := make(map[RoleTriple]struct{})
	for rows.Next() {
		var t RoleTriple
		if err := rows.Scan(&t.CompanyDBID, &t.PersonDBID, &t.RoleType); err != nil {
			return nil, fmt.Errorf("failed to scan relationship triple: %w", err)
		}
		triples[t] = struct{}{}
	}
	return triples, rows.Err()
}

func (r *relationshipRepository) BulkInsert(ctx context.Context, edges []*models.CompanyPerson) error {
	if len(edges) == 0 {
		return nil
	}

	columns := []string{"company_db_id", "person_db_id", "role_type", "role_description", "role_date"}

	rows := make([][]any, len(edges))
	for i, e := range edges {
		rows[i] = []any{e.CompanyDBID, e.PersonDBID, e.RoleType, e.RoleDescription, e.RoleDate}
	}

	_, err := r.db.CopyFrom(ctx, pgx.Identifier{"company_person"}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to bulk insert relationships: %w", asConflict(err))
	}
	return nil
}

func (r *relationshipRepository) RolesForCompany(ctx context.Context, companyDBID int64) ([]models.CompanyPersonRole, error) {
	rows, err := r.db.Query(ctx, `
		SELECT p.person_id, p.first_name, p.last_name,
		       cp.role_type, cp.role_description, cp.role_date
		FROM company_person cp
		JOIN person p ON p.id = cp.person_db_id
		WHERE cp.company_db_id = $1
		ORDER BY cp.id`, companyDBID)
	if err != nil {
		return nil, fmt.Errorf("failed to load company roles: %w", err)
	}
	defer rows.Close()

	var roles []models.CompanyPersonRole
	for rows.Next() {
		var role models.CompanyPersonRole
		if err := rows.Scan(&role.PersonID, &role.FirstName, &role.LastName,
			&role.RoleType, &role.RoleDescription, &role.RoleDate); err != nil {
			return nil, fmt.Errorf("failed to scan company role: %w", err)
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *relationshipRepository) RolesForPerson(ctx context.Context, personDBID int64) ([]models.PersonCompanyRole, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.company_id, c.legal_name, c.raw_name, c.status,
		       cp.role_type, cp.role_description, cp.role_date
		FROM company_person cp
		JOIN company c ON c.id = cp.company_db_id
		WHERE cp.person_db_id = $1
		ORDER BY cp.id`, personDBID)
	if err != nil {
		return nil, fmt.Errorf("failed to load person roles: %w", err)
	}
	defer rows.Close()

	var roles []models.PersonCompanyRole
	for rows.Next() {
		var role models.PersonCompanyRole
		if err := rows.Scan(&role.CompanyID, &role.LegalName, &role.RawName, &role.Status,
			&role.RoleType, &role.RoleDescription, &role.RoleDate); err != nil {
			return nil, fmt.Errorf("failed to scan person role: %w", err)
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *relationshipRepository) PersonRolesMap(ctx context.Context) (map[int64][]models.PersonCompanyRole, error) {
	rows, err := r.db.Query(ctx, `
		SELECT cp.person_db_id, c.company_id, c.legal_name, c.raw_name, c.status,
		       cp.role_type, cp.role_description, cp.role_date
		FROM company_person cp
		JOIN company c ON c.id = cp.company_db_id
		ORDER BY cp.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load person roles map: %w", err)
	}
	defer rows.Close()

	rolesMap := make(map[int64][]models.PersonCompanyRole)
	for rows.Next() {
		var personDBID int64
		var role models.PersonCompanyRole
		if err := rows.Scan(&personDBID, &role.CompanyID, &role.LegalName, &role.RawName,
			&role.Status, &role.RoleType, &role.RoleDescription, &role.RoleDate); err != nil {
			return nil, fmt.Errorf("failed to scan person roles map: %w", err)
		}
		rolesMap[personDBID] = append(rolesMap[personDBID], role)
	}
	return rolesMap, rows.Err()
}

var _ RelationshipRepository = (*relationshipRepository)(nil)
