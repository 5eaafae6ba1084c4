package models

import (
	"time"

	"github.com/google/uuid"
)

// Company is a registry company row. CompanyID is the immutable external
// identity; ID is the internal surrogate key relationships reference.
// FullRecord retains the verbatim source payload for audit and reprocessing.
type Company struct {
	ID                int64      `json:"id"`
	ImportJobID       *uuid.UUID `json:"-"`
	CompanyID         string     `json:"company_id"`
	RawName           *string    `json:"raw_name"`
	LegalName         *string    `json:"legal_name"`
	LegalForm         *string    `json:"legal_form"`
	Status            *string    `json:"status"`
	Terminated        *bool      `json:"terminated"`
	RegisterUniqueKey *string    `json:"register_unique_key"`
	RegisterID        *string    `json:"register_id"`
	AddressCity       *string    `json:"address_city"`
	AddressPostalCode *string    `json:"address_postal_code"`
	AddressCountry    *string    `json:"address_country"`
	Email             *string    `json:"email,omitempty"`
	Website           *string    `json:"website,omitempty"`
	Phone             *string    `json:"phone,omitempty"`
	Domain            *string    `json:"domain,omitempty"`
	LastUpdateTime    *time.Time `json:"last_update_time"`
	FullRecord        []byte     `json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
}

// DisplayName prefers the legal name, falling back to the raw name.
func (c *Company) DisplayName() string {
	if c.LegalName != nil && *c.LegalName != "" {
		return *c.LegalName
	}
	if c.RawName != nil {
		return *c.RawName
	}
	return ""
}

// Person is a registry-related person. PersonID is the immutable external
// identity; once it has been seen in a run it is never re-created.
type Person struct {
	ID          int64     `json:"id"`
	PersonID    string    `json:"person_id"`
	FirstName   *string   `json:"first_name"`
	LastName    *string   `json:"last_name"`
	BirthYear   *int      `json:"birth_year"`
	AddressCity *string   `json:"address_city"`
	FullRecord  []byte    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// FullName joins first and last name, tolerating either being absent.
func (p *Person) FullName() string {
	first, last := "", ""
	if p.FirstName != nil {
		first = *p.FirstName
	}
	if p.LastName != nil {
		last = *p.LastName
	}
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}

// CompanyPerson is an edge between a company and a person. The triple
// (company_db_id, person_db_id, role_type) is unique: repeated roles of the
// same type between the same pair collapse to one edge.
type CompanyPerson struct {
	ID              int64      `json:"id"`
	CompanyDBID     int64      `json:"-"`
	PersonDBID      int64      `json:"-"`
	RoleType        *string    `json:"role_type"`
	RoleDescription *string    `json:"role_description"`
	RoleDate        *time.Time `json:"role_date"`
}
