package ingest

import (
	"context"

	"github.com/google/uuid"

	"github.com/companydb-io/companydb/pkg/models"
	"github.com/companydb-io/companydb/pkg/repositories"
)

// fakeJobRepository records progress updates in memory.
type fakeJobRepository struct {
	jobs            map[uuid.UUID]*models.ImportJob
	progressUpdates int
}

func newFakeJobRepository() *fakeJobRepository {
	return &fakeJobRepository{jobs: make(map[uuid.UUID]*models.ImportJob)}
}

func (f *fakeJobRepository) Create(ctx context.Context, job *models.ImportJob) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	f.jobs[job.ID] = job
	return nil
}

func (f *fakeJobRepository) Get(ctx context.Context, id uuid.UUID) (*models.ImportJob, error) {
	return f.jobs[id], nil
}

func (f *fakeJobRepository) List(ctx context.Context) ([]*models.ImportJob, error) {
	var out []*models.ImportJob
	for _, j := range f.jobs {
		out = append(out, j)
	}
	return out, nil
}

func (f *fakeJobRepository) MarkRunning(ctx context.Context, id uuid.UUID) error {
	if j, ok := f.jobs[id]; ok {
		j.Status = models.JobStatusRunning
	}
	return nil
}

func (f *fakeJobRepository) UpdateProgress(ctx context.Context, id uuid.UUID, processed, companies, persons int) error {
	f.progressUpdates++
	if j, ok := f.jobs[id]; ok {
		j.ProcessedLines = processed
		j.CompaniesImported = companies
		j.PersonsImported = persons
	}
	return nil
}

func (f *fakeJobRepository) MarkCompleted(ctx context.Context, id uuid.UUID, processed, companies, persons int) error {
	if j, ok := f.jobs[id]; ok {
		j.Status = models.JobStatusCompleted
		j.ProcessedLines = processed
		j.CompaniesImported = companies
		j.PersonsImported = persons
	}
	return nil
}

func (f *fakeJobRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	if j, ok := f.jobs[id]; ok {
		j.Status = models.JobStatusFailed
		j.ErrorMessage = &errMsg
	}
	return nil
}

var _ repositories.ImportJobRepository = (*fakeJobRepository)(nil)

// fakeCompanyRepository keeps companies keyed by external id and assigns
// surrogate keys on insert.
type fakeCompanyRepository struct {
	byExternalID map[string]*models.Company
	nextID       int64
	inserts      int
	updates      int
	insertErr    error
}

func newFakeCompanyRepository() *fakeCompanyRepository {
	return &fakeCompanyRepository{byExternalID: make(map[string]*models.Company)}
}

func (f *fakeCompanyRepository) ListExternalIDs(ctx context.Context) ([]string, error) {
	var ids []string
	for id := range f.byExternalID {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeCompanyRepository) BulkInsert(ctx context.Context, companies []*models.Company) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	for _, c := range companies {
		f.nextID++
		c.ID = f.nextID
		f.byExternalID[c.CompanyID] = c
		f.inserts++
	}
	return nil
}

func (f *fakeCompanyRepository) BulkUpdate(ctx context.Context, companies []*models.Company) error {
	for _, c := range companies {
		if existing, ok := f.byExternalID[c.CompanyID]; ok {
			c.ID = existing.ID
			f.byExternalID[c.CompanyID] = c
			f.updates++
		}
	}
	return nil
}

func (f *fakeCompanyRepository) GetByCompanyID(ctx context.Context, companyID string) (*models.Company, error) {
	return f.byExternalID[companyID], nil
}

func (f *fakeCompanyRepository) GetByCompanyIDs(ctx context.Context, companyIDs []string) ([]*models.Company, error) {
	var out []*models.Company
	for _, id := range companyIDs {
		if c, ok := f.byExternalID[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCompanyRepository) Search(ctx context.Context, filter repositories.CompanyFilter) ([]*models.Company, int, error) {
	return nil, 0, nil
}

func (f *fakeCompanyRepository) MatchCandidates(ctx context.Context, name, city, postalCode string, limit int) ([]*models.Company, error) {
	return nil, nil
}

func (f *fakeCompanyRepository) ExternalIDMap(ctx context.Context) (map[string]int64, error) {
	out := make(map[string]int64, len(f.byExternalID))
	for id, c := range f.byExternalID {
		out[id] = c.ID
	}
	return out, nil
}

func (f *fakeCompanyRepository) StreamAll(ctx context.Context, fn func(*models.Company) error) error {
	for _, c := range f.byExternalID {
		if err := fn(c); err != nil {
			return err
		}
	}
	return nil
}

var _ repositories.CompanyRepository = (*fakeCompanyRepository)(nil)

// fakePersonRepository mirrors fakeCompanyRepository for persons.
type fakePersonRepository struct {
	byExternalID map[string]*models.Person
	nextID       int64
	inserts      int
}

func newFakePersonRepository() *fakePersonRepository {
	return &fakePersonRepository{byExternalID: make(map[string]*models.Person)}
}

func (f *fakePersonRepository) ListExternalIDs(ctx context.Context) ([]string, error) {
	var ids []string
	for id := range f.byExternalID {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakePersonRepository) BulkInsert(ctx context.Context, persons []*models.Person) error {
	for _, p := range persons {
		f.nextID++
		p.ID = f.nextID
		f.byExternalID[p.PersonID] = p
		f.inserts++
	}
	return nil
}

func (f *fakePersonRepository) GetByPersonID(ctx context.Context, personID string) (*models.Person, error) {
	return f.byExternalID[personID], nil
}

func (f *fakePersonRepository) GetByPersonIDs(ctx context.Context, personIDs []string) ([]*models.Person, error) {
	var out []*models.Person
	for _, id := range personIDs {
		if p, ok := f.byExternalID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePersonRepository) Search(ctx context.Context, filter repositories.PersonFilter) ([]*models.Person, int, error) {
	return nil, 0, nil
}

func (f *fakePersonRepository) ExternalIDMap(ctx context.Context) (map[string]int64, error) {
	out := make(map[string]int64, len(f.byExternalID))
	for id, p := range f.byExternalID {
		out[id] = p.ID
	}
	return out, nil
}

func (f *fakePersonRepository) StreamAll(ctx context.Context, fn func(*models.Person) error) error {
	for _, p := range f.byExternalID {
		if err := fn(p); err != nil {
			return err
		}
	}
	return nil
}

var _ repositories.PersonRepository = (*fakePersonRepository)(nil)

// fakeRelationshipRepository collects inserted edges.
type fakeRelationshipRepository struct {
	existing map[repositories.RoleTriple]struct{}
	inserted []*models.CompanyPerson
}

func newFakeRelationshipRepository() *fakeRelationshipRepository {
	return &fakeRelationshipRepository{existing: make(map[repositories.RoleTriple]struct{})}
}

func (f *fakeRelationshipRepository) ExistingTriples(ctx context.Context) (map[repositories.RoleTriple]struct{}, error) {
	out := make(map[repositories.RoleTriple]struct{}, len(f.existing))
	for t := range f.existing {
		out[t] = struct{}{}
	}
	return out, nil
}

func (f *fakeRelationshipRepository) BulkInsert(ctx context.Context, edges []*models.CompanyPerson) error {
	f.inserted = append(f.inserted, edges...)
	return nil
}

func (f *fakeRelationshipRepository) RolesForCompany(ctx context.Context, companyDBID int64) ([]models.CompanyPersonRole, error) {
	return nil, nil
}

func (f *fakeRelationshipRepository) RolesForPerson(ctx context.Context, personDBID int64) ([]models.PersonCompanyRole, error) {
	return nil, nil
}

func (f *fakeRelationshipRepository) PersonRolesMap(ctx context.Context) (map[int64][]models.PersonCompanyRole, error) {
	return nil, nil
}

var _ repositories.RelationshipRepository = (*fakeRelationshipRepository)(nil)
