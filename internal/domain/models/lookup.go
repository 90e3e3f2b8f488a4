package models

// Lookup is read-only reference data (attribute groups, roles, languages)
// used to fill filter dropdowns.
type Lookup struct {
	ID   FlexID `json:"id"`
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}

func (l Lookup) RecordID() string    { return l.ID.String() }
func (l Lookup) RecordLabel() string { return firstNonEmpty(l.Name, l.Code, l.ID.String()) }
