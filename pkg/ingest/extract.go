package ingest

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/companydb-io/companydb/pkg/domains"
	"github.com/companydb-io/companydb/pkg/jsonutil"
	"github.com/companydb-io/companydb/pkg/models"
)

// RelationTuple is a company-person edge captured during the streaming pass,
// still keyed by external ids. The relationship builder resolves it to
// surrogate keys after all rows are committed.
type RelationTuple struct {
	CompanyExternalID string
	PersonExternalID  string
	RoleType          *string
	RoleDescription   *string
	RoleDate          *time.Time
}

// Extracted is the flat output of the field extractor for one raw record.
type Extracted struct {
	Company   *models.Company
	Persons   []*models.Person
	Relations []RelationTuple
}

// ExtractRecord maps one decoded registry record into flat company and person
// attributes. rawLine is the verbatim source payload retained for audit.
func ExtractRecord(rec *RawRecord, rawLine []byte) *Extracted {
	company := &models.Company{
		CompanyID:  rec.ID,
		RawName:    rec.RawName,
		Status:     rec.Status,
		Terminated: rec.Terminated,
		FullRecord: rawLine,
	}
	if rec.Name != nil {
		company.LegalName = rec.Name.Name
		company.LegalForm = rec.Name.LegalForm
	}
	if rec.Address != nil {
		company.AddressCity = rec.Address.City
		company.AddressPostalCode = jsonutil.StringPtr(rec.Address.PostalCode)
		company.AddressCountry = rec.Address.Country
	}
	if rec.Register != nil {
		company.RegisterUniqueKey = rec.Register.UniqueKey
		company.RegisterID = rec.Register.ID
	}
	if rec.LastUpdateTime != "" {
		if t, err := time.Parse(time.RFC3339, rec.LastUpdateTime); err == nil {
			company.LastUpdateTime = &t
		}
	}
	extractContacts(rec.Extras, company)

	out := &Extracted{Company: company}
	if rec.RelatedPersons == nil {
		return out
	}

	for _, rp := range rec.RelatedPersons.Items {
		if rp.Person == nil || rp.Person.ID == "" {
			continue
		}

		person := &models.Person{
			PersonID:  rp.Person.ID,
			BirthYear: jsonutil.IntPtr(rp.Person.BirthYear),
		}
		if rp.Person.Name != nil {
			person.FirstName = rp.Person.Name.FirstName
			person.LastName = rp.Person.Name.LastName
		}
		if rp.Person.Address != nil {
			person.AddressCity = rp.Person.Address.City
		}
		// Person rows keep their own sub-payload verbatim.
		if raw, err := json.Marshal(rp.Person); err == nil {
			person.FullRecord = raw
		}
		out.Persons = append(out.Persons, person)

		tuple := RelationTuple{
			CompanyExternalID: rec.ID,
			PersonExternalID:  rp.Person.ID,
			RoleDescription:   rp.Description,
		}
		if len(rp.Roles) > 0 {
			tuple.RoleType = rp.Roles[0].Type
			if rp.Roles[0].Date != nil {
				if d, err := time.Parse("2006-01-02", *rp.Roles[0].Date); err == nil {
					tuple.RoleDate = &d
				}
			}
		}
		if tuple.RoleType == nil {
			tuple.RoleType = rp.Description
		}
		out.Relations = append(out.Relations, tuple)
	}

	return out
}

// extractContacts scans the tagged extras for email/url/phone values and
// derives the normalized domain. Preference order for the domain: an explicit
// domain tag beats one derived from the website, which beats one derived from
// the email.
func extractContacts(extras []RawExtraGroup, company *models.Company) {
	var explicitDomain string

	for _, group := range extras {
		for _, item := range group.Items {
			if item.Value == nil || *item.Value == "" {
				continue
			}
			value := string(*item.Value)
			switch strings.ToLower(item.ID) {
			case "email":
				if company.Email == nil {
					company.Email = &value
				}
			case "url", "website":
				if company.Website == nil {
					company.Website = &value
				}
			case "phone":
				if company.Phone == nil {
					company.Phone = &value
				}
			case "domain":
				if explicitDomain == "" {
					explicitDomain = value
				}
			}
		}
	}

	for _, candidate := range []string{explicitDomain, deref(company.Website), deref(company.Email)} {
		if candidate == "" {
			continue
		}
		if d, ok := domains.Derive(candidate); ok {
			company.Domain = &d
			return
		}
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
