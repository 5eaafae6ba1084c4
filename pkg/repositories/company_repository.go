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

// CompanyFilter describes the relational search path for companies. Query
// matches names by substring and identifiers exactly; the remaining fields are
// structured filters.
type CompanyFilter struct {
	Query     string
	Status    string
	LegalForm string
	City      string
	Limit     int
	Offset    int
}

// CompanyRepository defines data access for company rows.
type CompanyRepository interface {
	// ListExternalIDs returns every known company_id, used to seed the
	// identity cache once per import job.
	ListExternalIDs(ctx context.Context) ([]string, error)
	// BulkInsert appends new rows via COPY. Rows must already be
	// deduplicated by company_id; a constraint violation here is a pipeline
	// bug and fails the job.
	BulkInsert(ctx context.Context, companies []*models.Company) error
	// BulkUpdate rewrites existing rows (matched by company_id) in one
	// batched round trip.
	BulkUpdate(ctx context.Context, companies []*models.Company) error
	GetByCompanyID(ctx context.Context, companyID string) (*models.Company, error)
	// GetByCompanyIDs fetches rows for the given external ids, preserving
	// the order of the ids slice. Unknown ids are skipped.
	GetByCompanyIDs(ctx context.Context, companyIDs []string) ([]*models.Company, error)
	// Search is the relational query path: substring/prefix matching with
	// limit/offset, ordered by legal name. Returns the page and total count.
	Search(ctx context.Context, filter CompanyFilter) ([]*models.Company, int, error)
	// MatchCandidates prefilters rows for the scoring engine: any of the
	// given criteria may hit (OR), capped at limit rows. Precise ranking is
	// the scorer's job, not this query's.
	MatchCandidates(ctx context.Context, name, city, postalCode string, limit int) ([]*models.Company, error)
	// ExternalIDMap returns company_id -> surrogate key for the whole table.
	ExternalIDMap(ctx context.Context) (map[string]int64, error)
	// StreamAll invokes fn for every company row without materializing the
	// table, for search rebuilds.
	StreamAll(ctx context.Context, fn func(*models.Company) error) error
}

type companyRepository struct {
	db *database.DB
}

// NewCompanyRepository creates a new company repository.
func NewCompanyRepository(db *database.DB) CompanyRepository {
	return &companyRepository{db: db}
}

const companyColumns = `id, import_job_id, company_id, raw_name, legal_name, legal_form,
	status, terminated, register_unique_key, register_id,
	address_city, address_postal_code, address_country,
	email, website, phone, domain, last_update_time, full_record, created_at`

func scanCompany(row pgx.Row) (*models.Company, error) {
	var c models.Company
	err := row.Scan(
		&c.ID, &c.ImportJobID, &c.CompanyID, &c.RawName, &c.LegalName, &c.LegalForm,
		&c.Status, &c.Terminated, &c.RegisterUniqueKey, &c.RegisterID,
		&c.AddressCity, &c.AddressPostalCode, &c.AddressCountry,
		&c.Email, &c.Website, &c.Phone, &c.Domain, &c.LastUpdateTime,
		&c.FullRecord, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *companyRepository) ListExternalIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT company_id FROM company`)
	if err != nil {
		return nil, fmt.Errorf("failed to list company ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan company id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *companyRepository) BulkInsert(ctx context.Context, companies []*models.Company) error {
	if len(companies) == 0 {
		return nil
	}

	columns := []string{
		"import_job_id", "company_id", "raw_name", "legal_name", "legal_form",
		"status", "terminated", "register_unique_key", "register_id",
		"address_city", "address_postal_code", "address_country",
		"email", "website", "phone", "domain", "last_update_time", "full_record",
	}

	rows := make([][]any, len(companies))
	for i, c := range companies {
		rows[i] = []any{
			c.ImportJobID, c.CompanyID, c.RawName, c.LegalName, c.LegalForm,
			c.Status, c.Terminated, c.RegisterUniqueKey, c.RegisterID,
			c.AddressCity, c.AddressPostalCode, c.AddressCountry,
			c.Email, c.Website, c.Phone, c.Domain, c.LastUpdateTime, c.FullRecord,
		}
	}

	_, err := r.db.CopyFrom(ctx, pgx.Identifier{"company"}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to bulk insert companies: %w", asConflict(err))
	}
	return nil
}

func (r *companyRepository) BulkUpdate(ctx context.Context, companies []*models.Company) error {
	if len(companies) == 0 {
		return nil
	}

	query := `
		UPDATE company
		SET import_job_id = $2, raw_name = $3, legal_name = $4, legal_form = $5,
		    status = $6, terminated = $7, register_unique_key = $8, register_id = $9,
		    address_city = $10, address_postal_code = $11, address_country = $12,
		    email = $13, website = $14, phone = $15, domain = $16,
		    last_update_time = $17, full_record = $18
		WHERE company_id = $1`

	batch := &pgx.Batch{}
	for _, c := range companies {
		batch.Queue(query,
			c.CompanyID, c.ImportJobID, c.RawName, c.LegalName, c.LegalForm,
			c.Status, c.Terminated, c.RegisterUniqueKey, c.RegisterID,
			c.AddressCity, c.AddressPostalCode, c.AddressCountry,
			c.Email, c.Website, c.Phone, c.Domain, c.LastUpdateTime, c.FullRecord)
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()

	for range companies {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to bulk update companies: %w", err)
		}
	}
	return nil
}

func (r *companyRepository) GetByCompanyID(ctx context.Context, companyID string) (*models.Company, error) {
	query := fmt.Sprintf(`SELECT %s FROM company WHERE company_id = $1`, companyColumns)
	c, err := scanCompany(r.db.QueryRow(ctx, query, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return c, nil
}

func (r *companyRepository) GetByCompanyIDs(ctx context.Context, companyIDs []string) ([]*models.Company, error) {
	if len(companyIDs) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM company WHERE company_id = ANY($1)`, companyColumns)
	rows, err := r.db.Query(ctx, query, companyIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get companies by ids: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]*models.Company, len(companyIDs))
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		byID[c.CompanyID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reassemble in the caller's order: search-engine relevance order must
	// survive the relational re-fetch.
	ordered := make([]*models.Company, 0, len(companyIDs))
	for _, id := range companyIDs {
		if c, ok := byID[id]; ok {
			ordered = append(ordered, c)
		}
	}
	return ordered, nil
}

func (r *companyRepository) Search(ctx context.Context, filter CompanyFilter) ([]*models.Company, int, error) {
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
			`(raw_name ILIKE %[1]s OR legal_name ILIKE %[1]s OR register_id ILIKE %[1]s
			  OR company_id = %[2]s OR register_unique_key = %[2]s)`, like, exact))
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = %s", arg(filter.Status)))
	}
	if filter.LegalForm != "" {
		conditions = append(conditions, fmt.Sprintf("legal_form ILIKE %s", arg("%"+filter.LegalForm+"%")))
	}
	if filter.City != "" {
		conditions = append(conditions, fmt.Sprintf("address_city ILIKE %s", arg("%"+filter.City+"%")))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT count(*) FROM company %s`, where)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count companies: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM company %s ORDER BY legal_name LIMIT %s OFFSET %s`,
		companyColumns, where, arg(filter.Limit), arg(filter.Offset))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search companies: %w", err)
	}
	defer rows.Close()

	var companies []*models.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, c)
	}
	return companies, total, rows.Err()
}

func (r *companyRepository) MatchCandidates(ctx context.Context, name, city, postalCode string, limit int) ([]*models.Company, error) {
	var conditions []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if name != "" {
		like := arg("%" + name + "%")
		conditions = append(conditions, fmt.Sprintf(
			`(raw_name ILIKE %[1]s OR legal_name ILIKE %[1]s)`, like))
	}
	if city != "" {
		conditions = append(conditions, fmt.Sprintf("address_city ILIKE %s", arg("%"+city+"%")))
	}
	if postalCode != "" {
		conditions = append(conditions, fmt.Sprintf("address_postal_code ILIKE %s", arg(postalCode+"%")))
	}
	if len(conditions) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM company WHERE %s LIMIT %s`,
		companyColumns, strings.Join(conditions, " OR "), arg(limit))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load match candidates: %w", err)
	}
	defer rows.Close()

	var companies []*models.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

func (r *companyRepository) ExternalIDMap(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT company_id, id FROM company`)
	if err != nil {
		return nil, fmt.Errorf("failed to load company id map: %w", err)
	}
	defer rows.Close()

	idMap := make(map[string]int64)
	for rows.Next() {
		var externalID string
		var dbID int64
		if err := rows.Scan(&externalID, &dbID); err != nil {
			return nil, fmt.Errorf("failed to scan company id map: %w", err)
		}
		idMap[externalID] = dbID
	}
	return idMap, rows.Err()
}

func (r *companyRepository) StreamAll(ctx context.Context, fn func(*models.Company) error) error {
	query := fmt.Sprintf(`SELECT %s FROM company ORDER BY id`, companyColumns)
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to stream companies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return fmt.Errorf("failed to scan company: %w", err)
		}
		if err := fn(c); err != nil {
			return err
		}
	}
	return rows.Err()
}

var _ CompanyRepository = (*companyRepository)(nil)
