package manager

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/fmuoria/candidate-manager/internal/client"
	"github.com/fmuoria/candidate-manager/internal/ingestion"
	"github.com/fmuoria/candidate-manager/internal/models"
)

var (
	ErrNameRequired    = errors.New("name is required")
	ErrSurnameRequired = errors.New("surname is required")
	ErrFileRequired    = errors.New("an Excel file is required")
	ErrInvalidYears    = errors.New("years must be a non-negative whole number")
)

// CreateForm holds the fields of the "new candidate" form
type CreateForm struct {
	Name    string
	Surname string
	File    *ingestion.Spreadsheet
}

// Validate reports every missing field at once
func (f CreateForm) Validate() error {
	var errs []error
	if strings.TrimSpace(f.Name) == "" {
		errs = append(errs, ErrNameRequired)
	}
	if strings.TrimSpace(f.Surname) == "" {
		errs = append(errs, ErrSurnameRequired)
	}
	if f.File == nil {
		errs = append(errs, ErrFileRequired)
	}
	return errors.Join(errs...)
}

// Valid is Validate without the details
func (f CreateForm) Valid() bool {
	return f.Validate() == nil
}

// UploadRequest converts the form into the multipart payload
func (f CreateForm) UploadRequest() client.UploadRequest {
	req := client.UploadRequest{
		Name:    strings.TrimSpace(f.Name),
		Surname: strings.TrimSpace(f.Surname),
	}
	if f.File != nil {
		req.FileName = f.File.FileName
		req.File = f.File.Data
	}
	return req
}

// EditForm is the content of the edit dialog
type EditForm struct {
	Name         string
	Surname      string
	Seniority    models.Seniority
	Years        int
	Availability bool
}

// NewEditForm pre-populates the dialog from the selected candidate
func NewEditForm(c models.Candidate) EditForm {
	return EditForm{
		Name:         c.Name,
		Surname:      c.Surname,
		Seniority:    c.Seniority,
		Years:        c.Years,
		Availability: c.Availability,
	}
}

// Validate checks the enum and the year count
func (f EditForm) Validate() error {
	var errs []error
	if !f.Seniority.IsValid() {
		errs = append(errs, fmt.Errorf("invalid seniority %q", f.Seniority))
	}
	if f.Years < 0 {
		errs = append(errs, ErrInvalidYears)
	}
	return errors.Join(errs...)
}

// Apply merges the edited fields over the original record, keeping its id
func (f EditForm) Apply(original models.Candidate) models.Candidate {
	merged := original
	merged.Name = f.Name
	merged.Surname = f.Surname
	merged.Seniority = f.Seniority
	merged.Years = f.Years
	merged.Availability = f.Availability
	return merged
}

// ParseYears parses the years entry of the edit dialog
func ParseYears(text string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidYears, text)
	}
	return n, nil
}
