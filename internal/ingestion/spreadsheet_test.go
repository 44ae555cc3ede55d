package ingestion

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/fmuoria/candidate-manager/internal/models"
	"github.com/xuri/excelize/v2"
)

// buildWorkbook writes rows into Sheet1 of a new workbook and returns its bytes
func buildWorkbook(t *testing.T, rows ...[]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("Failed to build cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &rows[i]); err != nil {
			t.Fatalf("Failed to write row %d: %v", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("Failed to write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestIngestValidWorkbook(t *testing.T) {
	data := buildWorkbook(t,
		[]any{"seniority", "years", "availability"},
		[]any{"senior", 7, true},
	)

	sheet, err := Ingest("candidate.xlsx", models.SpreadsheetMIMEType, data)
	if err != nil {
		t.Fatalf("Ingest() failed: %v", err)
	}

	if sheet.FileName != "candidate.xlsx" {
		t.Errorf("Expected file name candidate.xlsx, got %s", sheet.FileName)
	}
	if len(sheet.Row) != 3 {
		t.Fatalf("Expected 3 cells, got %d: %v", len(sheet.Row), sheet.Row)
	}
	if sheet.Row[0] != "senior" || sheet.Row[1] != "7" {
		t.Errorf("Unexpected row %v", sheet.Row)
	}
	if !bytes.Equal(sheet.Data, data) {
		t.Error("Expected raw file bytes to be kept for upload")
	}
}

func TestIngestRejectsWrongContentType(t *testing.T) {
	data := buildWorkbook(t,
		[]any{"seniority", "years", "availability"},
		[]any{"junior", 1, false},
	)

	tests := []string{"text/csv", "application/vnd.ms-excel", "application/pdf", ""}
	for _, declared := range tests {
		t.Run(declared, func(t *testing.T) {
			_, err := Ingest("candidate.xlsx", declared, data)
			if !errors.Is(err, ErrInvalidFileType) {
				t.Errorf("Expected ErrInvalidFileType for %q, got %v", declared, err)
			}
		})
	}
}

func TestIngestRejectsMissingHeaders(t *testing.T) {
	tests := []struct {
		name    string
		header  []any
		missing string
	}{
		{name: "No seniority", header: []any{"years", "availability"}, missing: "seniority"},
		{name: "No years", header: []any{"seniority", "availability"}, missing: "years"},
		{name: "No availability", header: []any{"seniority", "years"}, missing: "availability"},
		{name: "Misspelled", header: []any{"seniorty", "years", "availability"}, missing: "seniority"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := buildWorkbook(t, tt.header, []any{"x", "y", "z"})
			_, err := Ingest("c.xlsx", models.SpreadsheetMIMEType, data)
			if !errors.Is(err, ErrMissingHeaders) {
				t.Fatalf("Expected ErrMissingHeaders, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.missing) {
				t.Errorf("Expected error to name %q, got %v", tt.missing, err)
			}
		})
	}
}

func TestIngestHeadersAreCaseInsensitive(t *testing.T) {
	data := buildWorkbook(t,
		[]any{"name", " Seniority ", "YEARS", "Availability"},
		[]any{"Ada", "junior", 2, "yes"},
	)

	sheet, err := Ingest("c.xlsx", models.SpreadsheetMIMEType, data)
	if err != nil {
		t.Fatalf("Ingest() failed: %v", err)
	}
	if v, ok := sheet.Value("years"); !ok || v != "2" {
		t.Errorf("Expected years 2, got %q (found=%v)", v, ok)
	}
}

func TestIngestRejectsWrongRowCount(t *testing.T) {
	header := []any{"seniority", "years", "availability"}

	tests := []struct {
		name string
		rows [][]any
	}{
		{name: "Header only", rows: [][]any{header}},
		{name: "Two data rows", rows: [][]any{header, {"junior", 1, true}, {"senior", 5, false}}},
		{name: "Three data rows", rows: [][]any{header, {"junior", 1, true}, {"senior", 5, false}, {"junior", 0, true}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := buildWorkbook(t, tt.rows...)
			_, err := Ingest("c.xlsx", models.SpreadsheetMIMEType, data)
			if !errors.Is(err, ErrInvalidRowCount) {
				t.Errorf("Expected ErrInvalidRowCount, got %v", err)
			}
		})
	}
}

func TestIngestEmptyWorkbook(t *testing.T) {
	data := buildWorkbook(t)
	_, err := Ingest("c.xlsx", models.SpreadsheetMIMEType, data)
	if !errors.Is(err, ErrMissingHeaders) {
		t.Errorf("Expected ErrMissingHeaders for empty sheet, got %v", err)
	}
}

func TestIngestUnreadable(t *testing.T) {
	_, err := Ingest("c.xlsx", models.SpreadsheetMIMEType, []byte("definitely not a zip archive"))
	if !errors.Is(err, ErrUnreadable) {
		t.Errorf("Expected ErrUnreadable, got %v", err)
	}
}

func TestIngestNoFile(t *testing.T) {
	_, err := Ingest("", models.SpreadsheetMIMEType, nil)
	if !errors.Is(err, ErrNoFile) {
		t.Errorf("Expected ErrNoFile, got %v", err)
	}
}

func TestIngestPadsShortRow(t *testing.T) {
	data := buildWorkbook(t,
		[]any{"seniority", "years", "availability", "notes"},
		[]any{"junior", 3, false},
	)

	sheet, err := Ingest("c.xlsx", models.SpreadsheetMIMEType, data)
	if err != nil {
		t.Fatalf("Ingest() failed: %v", err)
	}
	if len(sheet.Row) != 4 {
		t.Errorf("Expected row padded to 4 cells, got %v", sheet.Row)
	}
}

func TestPreview(t *testing.T) {
	tests := []struct {
		name    string
		row     []any
		want    models.Candidate
		wantErr bool
	}{
		{
			name: "Boolean cell",
			row:  []any{"senior", 8, true},
			want: models.Candidate{Name: "Ada", Surname: "L", Seniority: models.SenioritySenior, Years: 8, Availability: true},
		},
		{
			name: "Text cells",
			row:  []any{"Junior", "2", "no"},
			want: models.Candidate{Name: "Ada", Surname: "L", Seniority: models.SeniorityJunior, Years: 2, Availability: false},
		},
		{
			name:    "Bad seniority",
			row:     []any{"principal", 2, true},
			wantErr: true,
		},
		{
			name:    "Negative years",
			row:     []any{"junior", -1, true},
			wantErr: true,
		},
		{
			name:    "Bad availability",
			row:     []any{"junior", 1, "maybe"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := buildWorkbook(t, []any{"seniority", "years", "availability"}, tt.row)
			sheet, err := Ingest("c.xlsx", models.SpreadsheetMIMEType, data)
			if err != nil {
				t.Fatalf("Ingest() failed: %v", err)
			}

			got, err := sheet.Preview("Ada", "L")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Preview() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Seniority != tt.want.Seniority || got.Years != tt.want.Years || got.Availability != tt.want.Availability {
				t.Errorf("Preview() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
