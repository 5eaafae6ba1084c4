package search

import (
	"encoding/json"
	"time"

	"github.com/companydb-io/companydb/pkg/models"
)

// CompanyDocument is the denormalized projection of a company row. It is
// derived, never authoritative: the relational row always wins.
type CompanyDocument struct {
	CompanyID         string   `json:"company_id"`
	RawName           *string  `json:"raw_name"`
	LegalName         *string  `json:"legal_name"`
	LegalForm         *string  `json:"legal_form"`
	Status            *string  `json:"status"`
	Terminated        *bool    `json:"terminated"`
	RegisterUniqueKey *string  `json:"register_unique_key"`
	RegisterID        *string  `json:"register_id"`
	AddressCity       *string  `json:"address_city"`
	AddressPostalCode *string  `json:"address_postal_code"`
	AddressCountry    *string  `json:"address_country"`
	Domain            *string  `json:"domain,omitempty"`
	SegmentCodesWZ    []string `json:"segment_codes_wz"`
	SegmentCodesNACE  []string `json:"segment_codes_nace"`
	LastUpdateTime    *string  `json:"last_update_time"`
}

// RoleEntry is one nested role in a person document.
type RoleEntry struct {
	CompanyID   string  `json:"company_id"`
	CompanyName string  `json:"company_name"`
	RoleType    *string `json:"role_type"`
	RoleDate    *string `json:"role_date"`
}

// PersonDocument is the denormalized projection of a person row, aggregating
// the person's related company ids and roles.
type PersonDocument struct {
	PersonID    string      `json:"person_id"`
	FirstName   *string     `json:"first_name"`
	LastName    *string     `json:"last_name"`
	FullName    string      `json:"full_name"`
	BirthYear   *int        `json:"birth_year"`
	AddressCity *string     `json:"address_city"`
	CompanyIDs  []string    `json:"company_ids"`
	Roles       []RoleEntry `json:"roles"`
}

// NewCompanyDocument projects a company row. Segment codes live only in the
// verbatim payload, so they are re-read from it here.
func NewCompanyDocument(c *models.Company) CompanyDocument {
	doc := CompanyDocument{
		CompanyID:         c.CompanyID,
		RawName:           c.RawName,
		LegalName:         c.LegalName,
		LegalForm:         c.LegalForm,
		Status:            c.Status,
		Terminated:        c.Terminated,
		RegisterUniqueKey: c.RegisterUniqueKey,
		RegisterID:        c.RegisterID,
		AddressCity:       c.AddressCity,
		AddressPostalCode: c.AddressPostalCode,
		AddressCountry:    c.AddressCountry,
		Domain:            c.Domain,
		SegmentCodesWZ:    []string{},
		SegmentCodesNACE:  []string{},
	}

	if c.LastUpdateTime != nil {
		s := c.LastUpdateTime.Format(time.RFC3339)
		doc.LastUpdateTime = &s
	}

	if len(c.FullRecord) > 0 {
		var payload struct {
			SegmentCodes struct {
				WZ   []string `json:"wz"`
				NACE []string `json:"nace"`
			} `json:"segmentCodes"`
		}
		if err := json.Unmarshal(c.FullRecord, &payload); err == nil {
			if payload.SegmentCodes.WZ != nil {
				doc.SegmentCodesWZ = payload.SegmentCodes.WZ
			}
			if payload.SegmentCodes.NACE != nil {
				doc.SegmentCodesNACE = payload.SegmentCodes.NACE
			}
		}
	}

	return doc
}

// NewPersonDocument projects a person row plus their aggregated roles.
func NewPersonDocument(p *models.Person, roles []models.PersonCompanyRole) PersonDocument {
	doc := PersonDocument{
		PersonID:    p.PersonID,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		FullName:    p.FullName(),
		BirthYear:   p.BirthYear,
		AddressCity: p.AddressCity,
		CompanyIDs:  []string{},
		Roles:       []RoleEntry{},
	}

	for _, role := range roles {
		doc.CompanyIDs = append(doc.CompanyIDs, role.CompanyID)
		entry := RoleEntry{
			CompanyID:   role.CompanyID,
			CompanyName: role.CompanyName(),
			RoleType:    role.RoleType,
		}
		if role.RoleDate != nil {
			s := role.RoleDate.Format("2006-01-02")
			entry.RoleDate = &s
		}
		doc.Roles = append(doc.Roles, entry)
	}

	return doc
}
