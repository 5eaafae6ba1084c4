package search

import (
	"context"

	"github.com/companydb-io/companydb/pkg/repositories"
)

// SearchCompanies runs the combined company query: a fuzzy multi-field match
// on the name fields unioned with exact matches on identifier fields, plus
// structured filters, sorted by relevance and then legal name for a stable
// order. Returns external ids in relevance order plus the total hit count.
func (c *Client) SearchCompanies(ctx context.Context, filter repositories.CompanyFilter) ([]string, int, error) {
	var should []map[string]any
	var filters []map[string]any

	if filter.Query != "" {
		should = append(should,
			map[string]any{
				"multi_match": map[string]any{
					"query":     filter.Query,
					"fields":    []string{"raw_name", "legal_name^2"},
					"fuzziness": "AUTO",
				},
			},
			map[string]any{"term": map[string]any{"company_id": filter.Query}},
			map[string]any{"term": map[string]any{"register_unique_key": filter.Query}},
			map[string]any{"term": map[string]any{"register_id": filter.Query}},
		)
	}
	if filter.Status != "" {
		filters = append(filters, map[string]any{"term": map[string]any{"status": filter.Status}})
	}
	if filter.LegalForm != "" {
		filters = append(filters, map[string]any{
			"wildcard": map[string]any{"legal_form": map[string]any{
				"value":            "*" + filter.LegalForm + "*",
				"case_insensitive": true,
			}},
		})
	}
	if filter.City != "" {
		filters = append(filters, map[string]any{
			"wildcard": map[string]any{"address_city": map[string]any{
				"value":            "*" + filter.City + "*",
				"case_insensitive": true,
			}},
		})
	}

	boolQuery := map[string]any{}
	if len(should) > 0 {
		boolQuery["should"] = should
		boolQuery["minimum_should_match"] = 1
	}
	if len(filters) > 0 {
		boolQuery["filter"] = filters
	}

	body := map[string]any{
		"query": map[string]any{"bool": boolQuery},
		"sort": []any{
			map[string]any{"_score": map[string]any{"order": "desc"}},
			map[string]any{"legal_name.keyword": map[string]any{"order": "asc", "missing": "_last"}},
		},
		"from":             filter.Offset,
		"size":             filter.Limit,
		"track_total_hits": true,
	}

	return c.search(ctx, CompanyIndex, body)
}

// SearchPersons runs the combined person query over name fields and person_id
// with a city filter, sorted by relevance then last name.
func (c *Client) SearchPersons(ctx context.Context, filter repositories.PersonFilter) ([]string, int, error) {
	var should []map[string]any
	var filters []map[string]any

	if filter.Query != "" {
		should = append(should,
			map[string]any{
				"multi_match": map[string]any{
					"query":     filter.Query,
					"fields":    []string{"first_name", "last_name^2", "full_name"},
					"fuzziness": "AUTO",
				},
			},
			map[string]any{"term": map[string]any{"person_id": filter.Query}},
		)
	}
	if filter.City != "" {
		filters = append(filters, map[string]any{
			"wildcard": map[string]any{"address_city": map[string]any{
				"value":            "*" + filter.City + "*",
				"case_insensitive": true,
			}},
		})
	}

	boolQuery := map[string]any{}
	if len(should) > 0 {
		boolQuery["should"] = should
		boolQuery["minimum_should_match"] = 1
	}
	if len(filters) > 0 {
		boolQuery["filter"] = filters
	}

	body := map[string]any{
		"query": map[string]any{"bool": boolQuery},
		"sort": []any{
			map[string]any{"_score": map[string]any{"order": "desc"}},
			map[string]any{"last_name.keyword": map[string]any{"order": "asc", "missing": "_last"}},
		},
		"from":             filter.Offset,
		"size":             filter.Limit,
		"track_total_hits": true,
	}

	return c.search(ctx, PersonIndex, body)
}
