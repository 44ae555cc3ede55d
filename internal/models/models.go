package models

import (
	"fmt"
	"sort"
	"strings"
)

// SpreadsheetMIMEType is the declared content type of an .xlsx workbook
const SpreadsheetMIMEType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Seniority is the experience band of a candidate
type Seniority string

const (
	SeniorityJunior Seniority = "junior"
	SenioritySenior Seniority = "senior"
)

// Seniorities lists the accepted seniority values in display order
var Seniorities = []Seniority{SeniorityJunior, SenioritySenior}

// IsValid reports whether s is one of the known seniority values
func (s Seniority) IsValid() bool {
	switch s {
	case SeniorityJunior, SenioritySenior:
		return true
	}
	return false
}

// ParseSeniority converts free text (as typed or read from a cell) into a Seniority
func ParseSeniority(value string) (Seniority, error) {
	s := Seniority(strings.ToLower(strings.TrimSpace(value)))
	if !s.IsValid() {
		return "", fmt.Errorf("invalid seniority %q: must be %q or %q", value, SeniorityJunior, SenioritySenior)
	}
	return s, nil
}

// Candidate is the record managed by the backend.
// ID is nil until the backend has persisted the record.
type Candidate struct {
	ID           *int      `json:"id,omitempty"`
	Name         string    `json:"name"`
	Surname      string    `json:"surname"`
	Seniority    Seniority `json:"seniority"`
	Years        int       `json:"years"`
	Availability bool      `json:"availability"`
}

// SortKey returns the id used for ordering, 0 when the id is absent
func (c Candidate) SortKey() int {
	if c.ID == nil {
		return 0
	}
	return *c.ID
}

// HasID reports whether the backend has assigned an id
func (c Candidate) HasID() bool {
	return c.ID != nil
}

// FullName returns "Name Surname"
func (c Candidate) FullName() string {
	return strings.TrimSpace(c.Name + " " + c.Surname)
}

// IntPtr is a small helper for building candidates with an id
func IntPtr(v int) *int {
	return &v
}

// SortByID orders candidates ascending by id in place.
// Candidates without an id sort first and keep their relative order.
func SortByID(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].SortKey() < candidates[j].SortKey()
	})
}
