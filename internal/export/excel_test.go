package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fmuoria/candidate-manager/internal/ingestion"
	"github.com/fmuoria/candidate-manager/internal/models"
	"github.com/xuri/excelize/v2"
)

func sampleCandidates() []models.Candidate {
	return []models.Candidate{
		{ID: models.IntPtr(1), Name: "Ada", Surname: "Lovelace", Seniority: models.SenioritySenior, Years: 10, Availability: true},
		{ID: models.IntPtr(2), Name: "Alan", Surname: "Turing", Seniority: models.SeniorityJunior, Years: 1, Availability: false},
	}
}

// TestExportCandidates_EnsuresXlsxExtension tests that .xlsx extension is added if missing
func TestExportCandidates_EnsuresXlsxExtension(t *testing.T) {
	tmpDir := t.TempDir()

	outputPath := filepath.Join(tmpDir, "candidates")
	written, err := ExportCandidates(sampleCandidates(), outputPath)
	if err != nil {
		t.Fatalf("ExportCandidates() failed: %v", err)
	}

	expectedPath := outputPath + ".xlsx"
	if written != expectedPath {
		t.Errorf("Expected written path %s, got %s", expectedPath, written)
	}
	if _, err := os.Stat(expectedPath); os.IsNotExist(err) {
		t.Errorf("Expected file at %s but it doesn't exist", expectedPath)
	}
}

// TestExportCandidates_HandlesExistingXlsxExtension tests that existing .xlsx extension is preserved
func TestExportCandidates_HandlesExistingXlsxExtension(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "candidates.XLSX")
	written, err := ExportCandidates(sampleCandidates(), outputPath)
	if err != nil {
		t.Fatalf("ExportCandidates() failed: %v", err)
	}

	if strings.HasSuffix(strings.ToLower(written), ".xlsx.xlsx") {
		t.Error("Should not have double .xlsx extension")
	}
}

// TestExportCandidates_Content checks the rows written to the candidates sheet
func TestExportCandidates_Content(t *testing.T) {
	written, err := ExportCandidates(sampleCandidates(), filepath.Join(t.TempDir(), "out.xlsx"))
	if err != nil {
		t.Fatalf("ExportCandidates() failed: %v", err)
	}

	f, err := excelize.OpenFile(written)
	if err != nil {
		t.Fatalf("Failed to open export: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != summarySheet || sheets[1] != candidatesSheet {
		t.Fatalf("Unexpected sheets %v", sheets)
	}

	rows, err := f.GetRows(candidatesSheet)
	if err != nil {
		t.Fatalf("Failed to read rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][1] != "Name" {
		t.Errorf("Unexpected header row %v", rows[0])
	}
	if rows[1][1] != "Ada" || rows[1][3] != "senior" || rows[1][4] != "10" {
		t.Errorf("Unexpected first row %v", rows[1])
	}
	if rows[2][2] != "Turing" {
		t.Errorf("Unexpected second row %v", rows[2])
	}
}

// TestExportCandidates_EmptyResults tests export with no candidates
func TestExportCandidates_EmptyResults(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.xlsx")
	if _, err := ExportCandidates([]models.Candidate{}, outputPath); err != nil {
		t.Fatalf("ExportCandidates() should handle empty input: %v", err)
	}

	if _, err := os.Stat(outputPath); os.IsNotExist(err) {
		t.Errorf("Expected file at %s but it doesn't exist", outputPath)
	}
}

// TestWriteTemplate_IsAccepted checks that the template passes ingestion
func TestWriteTemplate_IsAccepted(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTemplate(&buf); err != nil {
		t.Fatalf("WriteTemplate() failed: %v", err)
	}

	sheet, err := ingestion.Ingest("template.xlsx", models.SpreadsheetMIMEType, buf.Bytes())
	if err != nil {
		t.Fatalf("Template rejected by ingestion: %v", err)
	}

	preview, err := sheet.Preview("New", "Candidate")
	if err != nil {
		t.Fatalf("Preview() failed: %v", err)
	}
	if preview.Seniority != models.SeniorityJunior || preview.Years != 0 || !preview.Availability {
		t.Errorf("Unexpected template row %+v", preview)
	}
}

func TestDefaultFileName(t *testing.T) {
	name := DefaultFileName(time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC))
	if name != "Candidates_2024-03-09_140506.xlsx" {
		t.Errorf("Unexpected file name %s", name)
	}
}
