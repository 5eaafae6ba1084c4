// Package match implements the weighted similarity scorer used to rank
// relational candidates against a structured match query.
package match

import (
	"sort"
	"strings"

	"github.com/companydb-io/companydb/pkg/domains"
	"github.com/companydb-io/companydb/pkg/models"
)

// Field weights. The final score is normalized by the weights of the fields
// actually compared, so a field absent on either side is never penalized.
var weights = map[string]float64{
	"name":        0.4,
	"city":        0.15,
	"postal_code": 0.15,
	"domain":      0.2,
	"street":      0.1,
}

// Query is the structured field set to match against. All fields optional.
type Query struct {
	Name       string `json:"name,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Street     string `json:"street,omitempty"`
	Domain     string `json:"domain,omitempty"`
	Email      string `json:"email,omitempty"`
}

// Options bound the result set.
type Options struct {
	MinScore   float64 `json:"min_score"`
	MaxResults int     `json:"max_results"`
}

// DefaultOptions mirror the API defaults.
func DefaultOptions() Options {
	return Options{MinScore: 0.5, MaxResults: 10}
}

// Clamp forces the options into the ranges the API accepts: MinScore into
// [0,1] and MaxResults into [1,100].
func (o Options) Clamp() Options {
	if o.MinScore < 0 {
		o.MinScore = 0
	}
	if o.MinScore > 1 {
		o.MinScore = 1
	}
	if o.MaxResults < 1 {
		o.MaxResults = 1
	}
	if o.MaxResults > 100 {
		o.MaxResults = 100
	}
	return o
}

// Scored pairs a candidate with its total score and per-field breakdown.
type Scored struct {
	Company *models.Company
	Score   float64
	Details map[string]float64
}

// ScoreCompany computes the weighted similarity of one candidate against the
// query. Returns the normalized score and the per-field sub-scores of the
// fields that were actually compared.
func ScoreCompany(c *models.Company, q Query) (float64, map[string]float64) {
	scores := make(map[string]float64)

	if q.Name != "" {
		scores["name"] = Similarity(Normalize(q.Name), Normalize(c.DisplayName()))
	}

	if q.City != "" && c.AddressCity != nil && *c.AddressCity != "" {
		queryCity := strings.ToLower(q.City)
		candidateCity := strings.ToLower(*c.AddressCity)
		switch {
		case queryCity == candidateCity:
			scores["city"] = 1.0
		case strings.Contains(candidateCity, queryCity) || strings.Contains(queryCity, candidateCity):
			scores["city"] = 0.7
		default:
			scores["city"] = 0.0
		}
	}

	if q.PostalCode != "" && c.AddressPostalCode != nil && *c.AddressPostalCode != "" {
		candidate := *c.AddressPostalCode
		switch {
		case q.PostalCode == candidate:
			scores["postal_code"] = 1.0
		case len(q.PostalCode) >= 3 && len(candidate) >= 3 && q.PostalCode[:3] == candidate[:3]:
			scores["postal_code"] = 0.5
		default:
			scores["postal_code"] = 0.0
		}
	}

	if queryDomain, ok := queryDomain(q); ok {
		if candidateDomain, ok := candidateDomain(c); ok {
			if queryDomain == candidateDomain {
				scores["domain"] = 1.0
			} else {
				scores["domain"] = 0.0
			}
		}
	}

	// Street: the registry exports carry no street field on candidates, so
	// this comparison only contributes when both sides somehow have one.
	if q.Street != "" {
		if street := candidateStreet(c); street != "" {
			scores["street"] = Similarity(Normalize(q.Street), Normalize(street))
		}
	}

	totalScore := 0.0
	totalWeight := 0.0
	for field, score := range scores {
		w := weights[field]
		totalScore += score * w
		totalWeight += w
	}
	if totalWeight == 0 {
		return 0.0, scores
	}
	return totalScore / totalWeight, scores
}

// Rank scores all candidates, drops those below MinScore, sorts by score
// descending (stable: ties keep candidate order) and truncates to MaxResults.
func Rank(candidates []*models.Company, q Query, opts Options) []Scored {
	var results []Scored
	for _, c := range candidates {
		score, details := ScoreCompany(c, q)
		if score >= opts.MinScore {
			results = append(results, Scored{Company: c, Score: score, Details: details})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if opts.MaxResults > 0 && len(results) > opts.MaxResults {
		results = results[:opts.MaxResults]
	}
	return results
}

// queryDomain derives the query-side domain from the explicit domain field or
// the email, in that order.
func queryDomain(q Query) (string, bool) {
	if q.Domain != "" {
		if d, ok := domains.Derive(q.Domain); ok {
			return d, true
		}
	}
	if q.Email != "" {
		return domains.Derive(q.Email)
	}
	return "", false
}

// candidateDomain prefers the stored normalized domain, falling back to
// deriving one from the website or email columns.
func candidateDomain(c *models.Company) (string, bool) {
	if c.Domain != nil && *c.Domain != "" {
		return *c.Domain, true
	}
	if c.Website != nil && *c.Website != "" {
		if d, ok := domains.Derive(*c.Website); ok {
			return d, true
		}
	}
	if c.Email != nil && *c.Email != "" {
		return domains.Derive(*c.Email)
	}
	return "", false
}

// candidateStreet is a placeholder for exports that include street data in
// the address block; current exports do not.
func candidateStreet(*models.Company) string {
	return ""
}
