package models

import "time"

// CompanyPersonRole is a person plus their role, as listed on a company
// detail view.
type CompanyPersonRole struct {
	PersonID        string     `json:"person_id"`
	FirstName       *string    `json:"first_name"`
	LastName        *string    `json:"last_name"`
	RoleType        *string    `json:"role_type"`
	RoleDescription *string    `json:"role_description"`
	RoleDate        *time.Time `json:"role_date"`
}

// PersonCompanyRole is a company plus the person's role in it, as listed on a
// person detail view and embedded in person search documents.
type PersonCompanyRole struct {
	CompanyID       string     `json:"company_id"`
	LegalName       *string    `json:"legal_name"`
	RawName         *string    `json:"raw_name"`
	Status          *string    `json:"status"`
	RoleType        *string    `json:"role_type"`
	RoleDescription *string    `json:"role_description"`
	RoleDate        *time.Time `json:"role_date"`
}

// CompanyName prefers the legal name, falling back to the raw name.
func (r *PersonCompanyRole) CompanyName() string {
	if r.LegalName != nil && *r.LegalName != "" {
		return *r.LegalName
	}
	if r.RawName != nil {
		return *r.RawName
	}
	return ""
}
