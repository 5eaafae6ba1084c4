package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/companydb-io/companydb/pkg/models"
)

func strptr(s string) *string { return &s }

func candidate(name, city, postal string) *models.Company {
	c := &models.Company{LegalName: strptr(name)}
	if city != "" {
		c.AddressCity = strptr(city)
	}
	if postal != "" {
		c.AddressPostalCode = strptr(postal)
	}
	return c
}

func TestScoreCompanyNameAndCity(t *testing.T) {
	// Single-token query is contained in the candidate name, so the name
	// sub-score is the containment score.
	c := candidate("Acme Corp", "Berlin", "")
	score, details := ScoreCompany(c, Query{Name: "Acme", City: "Berlin"})

	assert.InDelta(t, 0.8, details["name"], 1e-9)
	assert.InDelta(t, 1.0, details["city"], 1e-9)
	assert.InDelta(t, (0.8*0.4+1.0*0.15)/0.55, score, 1e-9)
}

func TestScoreCompanyWordOverlap(t *testing.T) {
	c := candidate("Acme Corp", "Berlin", "")
	score, details := ScoreCompany(c, Query{Name: "Acme Industries", City: "Berlin"})

	// {acme, industries} vs {acme, corp}: one shared token of three.
	assert.InDelta(t, 1.0/3.0, details["name"], 1e-9)
	assert.InDelta(t, ((1.0/3.0)*0.4+1.0*0.15)/0.55, score, 1e-9)
}

func TestScoreCompanyLegalFormStripped(t *testing.T) {
	c := candidate("Acme GmbH", "", "")
	score, details := ScoreCompany(c, Query{Name: "ACME"})

	assert.InDelta(t, 1.0, details["name"], 1e-9)
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestScoreCompanyCityContainment(t *testing.T) {
	c := candidate("Acme", "Berlin-Mitte", "")
	_, details := ScoreCompany(c, Query{Name: "Acme", City: "Berlin"})
	assert.InDelta(t, 0.7, details["city"], 1e-9)
}

func TestScoreCompanyPostalPrefix(t *testing.T) {
	c := candidate("Acme", "", "10115")

	_, details := ScoreCompany(c, Query{Name: "Acme", PostalCode: "10115"})
	assert.InDelta(t, 1.0, details["postal_code"], 1e-9)

	_, details = ScoreCompany(c, Query{Name: "Acme", PostalCode: "10199"})
	assert.InDelta(t, 0.5, details["postal_code"], 1e-9)

	_, details = ScoreCompany(c, Query{Name: "Acme", PostalCode: "80331"})
	assert.InDelta(t, 0.0, details["postal_code"], 1e-9)
}

func TestScoreCompanyDomain(t *testing.T) {
	c := candidate("Acme", "", "")
	c.Domain = strptr("acme.de")

	score, details := ScoreCompany(c, Query{Domain: "https://www.acme.de/impressum"})
	assert.InDelta(t, 1.0, details["domain"], 1e-9)
	assert.InDelta(t, 1.0, score, 1e-9)

	_, details = ScoreCompany(c, Query{Domain: "other.de"})
	assert.InDelta(t, 0.0, details["domain"], 1e-9)

	// Email is the fallback source for the query-side domain.
	_, details = ScoreCompany(c, Query{Email: "info@acme.de"})
	assert.InDelta(t, 1.0, details["domain"], 1e-9)
}

func TestScoreCompanyDomainOmittedWhenUnderivable(t *testing.T) {
	// Candidate has no domain, website or email: the field must not appear
	// in the breakdown and must not drag the normalized score down.
	c := candidate("Acme", "Berlin", "")
	score, details := ScoreCompany(c, Query{Name: "Acme Corp", Domain: "acme.de"})

	_, ok := details["domain"]
	assert.False(t, ok)
	assert.InDelta(t, (0.8*0.4+1.0*0.15)/0.55, score, 1e-9)
}

func TestScoreCompanyAbsentFieldsExcluded(t *testing.T) {
	// Candidate without a city: the city weight is excluded entirely, so a
	// perfect name match still scores 1.0.
	c := candidate("Acme", "", "")
	score, details := ScoreCompany(c, Query{Name: "Acme", City: "Berlin"})

	_, ok := details["city"]
	assert.False(t, ok)
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestScoreCompanyEmptyQuery(t *testing.T) {
	c := candidate("Acme", "Berlin", "10115")
	score, details := ScoreCompany(c, Query{})
	assert.Zero(t, score)
	assert.Empty(t, details)
}

func TestRank(t *testing.T) {
	exact := candidate("Acme", "Berlin", "")
	exact.CompanyID = "exact"
	partial := candidate("Acme Corp", "Berlin", "")
	partial.CompanyID = "partial"
	miss := candidate("Gamma Delta", "Hamburg", "")
	miss.CompanyID = "miss"

	results := Rank([]*models.Company{miss, partial, exact}, Query{Name: "Acme", City: "Berlin"}, Options{
		MinScore:   0.5,
		MaxResults: 10,
	})

	require.Len(t, results, 2)
	assert.Equal(t, "exact", results[0].Company.CompanyID)
	assert.Equal(t, "partial", results[1].Company.CompanyID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestRankStableForTies(t *testing.T) {
	a := candidate("Acme", "Berlin", "")
	a.CompanyID = "first"
	b := candidate("Acme", "Berlin", "")
	b.CompanyID = "second"

	results := Rank([]*models.Company{a, b}, Query{Name: "Acme"}, Options{MinScore: 0.5, MaxResults: 10})

	require.Len(t, results, 2)
	assert.Equal(t, "first", results[0].Company.CompanyID)
	assert.Equal(t, "second", results[1].Company.CompanyID)
}

func TestRankMaxResults(t *testing.T) {
	var candidates []*models.Company
	for i := 0; i < 5; i++ {
		candidates = append(candidates, candidate("Acme", "Berlin", ""))
	}

	results := Rank(candidates, Query{Name: "Acme"}, Options{MinScore: 0.1, MaxResults: 3})
	assert.Len(t, results, 3)
}

func TestOptionsClamp(t *testing.T) {
	tests := []struct {
		name string
		in   Options
		want Options
	}{
		{"in range", Options{MinScore: 0.7, MaxResults: 25}, Options{MinScore: 0.7, MaxResults: 25}},
		{"negative min_score", Options{MinScore: -1, MaxResults: 10}, Options{MinScore: 0, MaxResults: 10}},
		{"min_score above one", Options{MinScore: 2.5, MaxResults: 10}, Options{MinScore: 1, MaxResults: 10}},
		{"zero max_results", Options{MinScore: 0.5}, Options{MinScore: 0.5, MaxResults: 1}},
		{"oversized max_results", Options{MinScore: 0.5, MaxResults: 5000}, Options{MinScore: 0.5, MaxResults: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Clamp())
		})
	}
}
