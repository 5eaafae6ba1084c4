package ingest

import "github.com/companydb-io/companydb/pkg/jsonutil"

// RawRecord is one decoded line of a registry export. Every nesting level is
// partially optional: exports routinely omit whole sub-objects, and absent
// fields must round-trip as SQL NULLs rather than empty strings. The verbatim
// line is retained separately for the full_record audit column.
type RawRecord struct {
	ID             string             `json:"id"`
	RawName        *string            `json:"rawName"`
	Name           *RawName           `json:"name"`
	Address        *RawAddress        `json:"address"`
	Register       *RawRegister       `json:"register"`
	Status         *string            `json:"status"`
	Terminated     *bool              `json:"terminated"`
	LastUpdateTime string             `json:"lastUpdateTime"`
	SegmentCodes   *RawSegmentCodes   `json:"segmentCodes"`
	Extras         []RawExtraGroup    `json:"extras"`
	RelatedPersons *RawRelatedPersons `json:"relatedPersons"`
}

// RawName holds the structured name block.
type RawName struct {
	Name      *string `json:"name"`
	LegalForm *string `json:"legalForm"`
}

// RawAddress holds the address block. Postal codes arrive as strings or
// numbers depending on the export.
type RawAddress struct {
	City       *string                  `json:"city"`
	PostalCode *jsonutil.FlexibleString `json:"postalCode"`
	Country    *string                  `json:"country"`
}

// RawRegister holds the commercial register identifiers.
type RawRegister struct {
	UniqueKey *string `json:"uniqueKey"`
	ID        *string `json:"id"`
}

// RawSegmentCodes holds industry segment code lists.
type RawSegmentCodes struct {
	WZ   []string `json:"wz"`
	NACE []string `json:"nace"`
}

// RawExtraGroup is one group of tagged contact/extra items.
type RawExtraGroup struct {
	Items []RawExtraItem `json:"items"`
}

// RawExtraItem is a tagged value; the tag (ID) is matched case-insensitively
// against email/url/phone/domain. Phone numbers occasionally arrive as bare
// JSON numbers.
type RawExtraItem struct {
	ID    string                   `json:"id"`
	Value *jsonutil.FlexibleString `json:"value"`
}

// RawRelatedPersons wraps the related-person list.
type RawRelatedPersons struct {
	Items []RawRelatedPerson `json:"items"`
}

// RawRelatedPerson is one person entry with their roles in the company.
type RawRelatedPerson struct {
	Person      *RawPerson `json:"person"`
	Roles       []RawRole  `json:"roles"`
	Description *string    `json:"description"`
}

// RawPerson is the person sub-object of a related-person entry.
type RawPerson struct {
	ID        string                `json:"id"`
	Name      *RawName2             `json:"name"`
	BirthYear *jsonutil.FlexibleInt `json:"birthYear"`
	Address   *RawAddress           `json:"address"`
}

// RawName2 is the person name block (first/last rather than name/legalForm).
type RawName2 struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

// RawRole is a single role of a person in a company.
type RawRole struct {
	Type *string `json:"type"`
	Date *string `json:"date"` // YYYY-MM-DD
}
