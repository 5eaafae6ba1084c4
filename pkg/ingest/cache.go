package ingest

import (
	"context"

	"github.com/companydb-io/companydb/pkg/repositories"
)

// IdentityCache tracks which external company and person ids already exist,
// driving create-vs-update decisions without a store round trip per record.
// It is scoped to one job execution and loaded once from the store; it is not
// safe for concurrent use and does not need to be - one worker owns it.
type IdentityCache struct {
	companies map[string]struct{}
	persons   map[string]struct{}
}

// LoadIdentityCache reads the full sets of existing external ids from the
// relational store.
func LoadIdentityCache(ctx context.Context, companies repositories.CompanyRepository, persons repositories.PersonRepository) (*IdentityCache, error) {
	companyIDs, err := companies.ListExternalIDs(ctx)
	if err != nil {
		return nil, err
	}
	personIDs, err := persons.ListExternalIDs(ctx)
	if err != nil {
		return nil, err
	}

	cache := &IdentityCache{
		companies: make(map[string]struct{}, len(companyIDs)),
		persons:   make(map[string]struct{}, len(personIDs)),
	}
	for _, id := range companyIDs {
		cache.companies[id] = struct{}{}
	}
	for _, id := range personIDs {
		cache.persons[id] = struct{}{}
	}
	return cache, nil
}

// SeenCompany reports whether the external company id is already known, and
// marks it known. Returning false therefore means "insert, exactly once" even
// when the same id repeats later in the file.
func (c *IdentityCache) SeenCompany(id string) bool {
	if _, ok := c.companies[id]; ok {
		return true
	}
	c.companies[id] = struct{}{}
	return false
}

// SeenPerson reports whether the external person id is already known, and
// marks it known.
func (c *IdentityCache) SeenPerson(id string) bool {
	if _, ok := c.persons[id]; ok {
		return true
	}
	c.persons[id] = struct{}{}
	return false
}

// CompanyCount returns the number of known company ids.
func (c *IdentityCache) CompanyCount() int { return len(c.companies) }

// PersonCount returns the number of known person ids.
func (c *IdentityCache) PersonCount() int { return len(c.persons) }
