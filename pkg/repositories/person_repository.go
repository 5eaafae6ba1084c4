package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/companydb-io/companydb/pkg/apperrors"
	"github.com/companydb-io/companydb/pkg/database"
	"github.com/companydb-io/companydb/pkg/models"
)

// PersonFilter describes the relational search path for persons.
type PersonFilter struct {
	Query  string
	City   string
	Limit  int
	Offset int
}

// PersonRepository defines data access for person rows.
type PersonRepository interface {
	ListExternalIDs(ctx context.Context) ([]string, error)
	// BulkInsert appends new rows via COPY. Rows must already be
	// deduplicated by person_id.
	BulkInsert(ctx context.Context, persons []*models.Person) error
	GetByPersonID(ctx context.Context, personID string) (*models.Person, error)
	// GetByPersonIDs fetches rows for the given external ids, preserving the
	// order of the ids slice.
	GetByPersonIDs(ctx context.Context, personIDs []string) ([]*models.Person, error)
	Search(ctx context.Context, filter PersonFilter) ([]*models.Person, int, error)
	ExternalIDMap(ctx context.Context) (map[string]int64, error)
	StreamAll(ctx context.Context, fn func(*models.Person) error) error
}

type personRepository struct {
	db *database.DB
}

// NewPersonRepository creates a new person repository.
func NewPersonRepository(db *database.DB) PersonRepository {
	return &personRepository{db: db}
}

const personColumns = `id, person_id, first_name, last_name, birth_year, address_city, full_record, created_at`

func scanPerson(row pgx.Row) (*models.Person, error) {
	var p models.Person
	err := row.Scan(
		&p.ID, &p.PersonID, &p.FirstName, &p.LastName,
		&p.BirthYear, &p.AddressCity, &p.FullRecord, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *personRepository) ListExternalIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT person_id FROM person`)
	if err != nil {
		return nil, fmt.Errorf("failed to list person ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan person id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *personRepository) BulkInsert(ctx context.Context, persons []*models.Person) error {
	if len(persons) == 0 {
		return nil
	}

	columns := []string{"person_id", "first_name", "last_name", "birth_year", "address_city", "full_record"}

	rows := make([][]any, len(persons))
	for i, p := range persons {
		rows[i] = []any{p.PersonID, p.FirstName, p.LastName, p.BirthYear, p.AddressCity, p.FullRecord}
	}

	_, err := r.db.CopyFrom(ctx, pgx.Identifier{"person"}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to bulk insert persons: %w", asConflict(err))
	}
	return nil
}

func (r *personRepository) GetByPersonID(ctx context.Context, personID string) (*models.Person, error) {
	query := fmt.Sprintf(`SELECT %s FROM person WHERE person_id = $1`, personColumns)
	p, err := scanPerson(r.db.QueryRow(ctx, query, personID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get person: %w", err)
	}
	return p, nil
}

func (r *personRepository) GetByPersonIDs(ctx context.Context, personIDs []string) ([]*models.Person, error) {
	if len(personIDs) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM person WHERE person_id = ANY($1)`, personColumns)
	rows, err := r.db.Query(ctx, query, personIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get persons by ids: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]*models.Person, len(personIDs))
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		byID[p.PersonID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ordered := make([]*models.Person, 0, len(personIDs))
	for _, id := range personIDs {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

func (r *personRepository) Search(ctx context.Context, filter PersonFilter) ([]*models.Person, int, error) {
	var conditions []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Query != "" {
		like := arg("%" + filter.Query + "%")
		exact := arg(filter.Query)
		conditions = append(conditions, fmt.Sprintf(
			`(first_name ILIKE %[1]s OR last_name ILIKE %[1]s OR person_id = %[2]s)`, like, exact))
	}
	if filter.City != "" {
		conditions = append(conditions, fmt.Sprintf("address_city ILIKE %s", arg("%"+filter.City+"%")))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT count(*) FROM person %s`, where)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count persons: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM person %s ORDER BY last_name, first_name LIMIT %s OFFSET %s`,
		personColumns, where, arg(filter.Limit), arg(filter.Offset))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search persons: %w", err)
	}
	defer rows.Close()

	var persons []*models.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan person: %w", err)
		}
		persons = append(persons, p)
	}
	return persons, total, rows.Err()
}

func (r *personRepository) ExternalIDMap(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT person_id, id FROM person`)
	if err != nil {
		return nil, fmt.Errorf("failed to load person id map: %w", err)
	}
	defer rows.Close()

	idMap := make(map[string]int64)
	for rows.Next() {
		var externalID string
		var dbID int64
		if err := rows.Scan(&externalID, &dbID); err != nil {
			return nil, fmt.Errorf("failed to scan person id map: %w", err)
		}
		idMap[externalID] = dbID
	}
	return idMap, rows.Err()
}

func (r *personRepository) StreamAll(ctx context.Context, fn func(*models.Person) error) error {
	query := fmt.Sprintf(`SELECT %s FROM person ORDER BY id`, personColumns)
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to stream persons: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return fmt.Errorf("failed to scan person: %w", err)
		}
		if err := fn(p); err != nil {
			return err
		}
	}
	return rows.Err()
}

var _ PersonRepository = (*personRepository)(nil)
