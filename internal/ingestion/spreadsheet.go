package ingestion

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fmuoria/candidate-manager/internal/models"
	"github.com/xuri/excelize/v2"
)

// Header names that must appear in the first row of an uploaded workbook
const (
	HeaderSeniority    = "seniority"
	HeaderYears        = "years"
	HeaderAvailability = "availability"
)

// RequiredHeaders lists the headers every upload must carry
var RequiredHeaders = []string{HeaderSeniority, HeaderYears, HeaderAvailability}

var (
	ErrNoFile          = errors.New("no file selected")
	ErrInvalidFileType = errors.New("please select only Excel files (.xlsx)")
	ErrUnreadable      = errors.New("the file could not be read as an Excel workbook")
	ErrMissingHeaders  = errors.New("the Excel file is missing required headers")
	ErrInvalidRowCount = errors.New("the Excel file must contain a header row and exactly one data row")
)

// Spreadsheet is an accepted upload: the raw file plus its single data row
type Spreadsheet struct {
	FileName string
	Data     []byte
	Headers  []string
	Row      []string
}

// Ingest validates the declared content type, then parses the workbook.
// Any failure means the file must not be attached to the create form.
func Ingest(fileName, declaredType string, data []byte) (*Spreadsheet, error) {
	if len(data) == 0 && fileName == "" {
		return nil, ErrNoFile
	}

	if err := ValidateContentType(declaredType); err != nil {
		return nil, err
	}

	headers, row, err := ParseFirstRow(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	return &Spreadsheet{
		FileName: fileName,
		Data:     data,
		Headers:  headers,
		Row:      row,
	}, nil
}

// ParseFirstRow reads the first worksheet as a header row plus data rows and
// returns the normalised headers and the single data row.
// Blank rows are ignored when counting data rows.
func ParseFirstRow(r io.Reader) ([]string, []string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("%w: workbook has no sheets", ErrUnreadable)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}

	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrMissingHeaders, strings.Join(RequiredHeaders, ", "))
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = normalizeHeader(h)
	}

	if missing := missingHeaders(headers); len(missing) > 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrMissingHeaders, strings.Join(missing, ", "))
	}

	var dataRows [][]string
	for _, row := range rows[1:] {
		if !isBlankRow(row) {
			dataRows = append(dataRows, row)
		}
	}

	if len(dataRows) != 1 {
		return nil, nil, fmt.Errorf("%w (found %d data rows)", ErrInvalidRowCount, len(dataRows))
	}

	// GetRows drops trailing empty cells
	row := make([]string, len(headers))
	copy(row, dataRows[0])

	return headers, row, nil
}

// Value returns the cell under the given header
func (s *Spreadsheet) Value(header string) (string, bool) {
	want := normalizeHeader(header)
	for i, h := range s.Headers {
		if h == want && i < len(s.Row) {
			return strings.TrimSpace(s.Row[i]), true
		}
	}
	return "", false
}

// Preview interprets the data row as candidate fields so the form can show
// what the backend is expected to create. The upload itself is sent as-is.
func (s *Spreadsheet) Preview(name, surname string) (models.Candidate, error) {
	c := models.Candidate{Name: name, Surname: surname}
	var errs []error

	seniority, _ := s.Value(HeaderSeniority)
	if v, err := models.ParseSeniority(seniority); err != nil {
		errs = append(errs, err)
	} else {
		c.Seniority = v
	}

	years, _ := s.Value(HeaderYears)
	if n, err := parseYears(years); err != nil {
		errs = append(errs, err)
	} else {
		c.Years = n
	}

	availability, _ := s.Value(HeaderAvailability)
	if b, err := parseAvailability(availability); err != nil {
		errs = append(errs, err)
	} else {
		c.Availability = b
	}

	return c, errors.Join(errs...)
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

func missingHeaders(headers []string) []string {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}

	var missing []string
	for _, required := range RequiredHeaders {
		if !present[required] {
			missing = append(missing, required)
		}
	}
	return missing
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseYears(value string) (int, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid years %q", value)
	}
	if f < 0 || f != float64(int(f)) {
		return 0, fmt.Errorf("years must be a non-negative whole number, got %q", value)
	}
	return int(f), nil
}

func parseAvailability(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes", "y", "1":
		return true, nil
	case "false", "no", "n", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid availability %q", value)
}
