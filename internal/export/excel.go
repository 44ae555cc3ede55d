package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fmuoria/candidate-manager/internal/ingestion"
	"github.com/fmuoria/candidate-manager/internal/models"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet    = "Summary"
	candidatesSheet = "Candidates"
	templateSheet   = "Sheet1"
)

// candidateHeaders are the column titles of the candidates sheet
var candidateHeaders = []string{"ID", "Name", "Surname", "Seniority", "Years", "Availability"}

var thinBorder = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
}

// ExportCandidates writes the collection to an Excel file and returns the
// path actually written
func ExportCandidates(candidates []models.Candidate, outputPath string) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Ensure output path has .xlsx extension
	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath = outputPath + ".xlsx"
	}
	outputPath = filepath.Clean(outputPath)

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return "", fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(candidatesSheet); err != nil {
		return "", fmt.Errorf("failed to create candidates sheet: %w", err)
	}

	if err := createSummarySheet(f, summarySheet, candidates); err != nil {
		return "", fmt.Errorf("failed to create summary sheet: %w", err)
	}

	if err := createCandidatesSheet(f, candidatesSheet, candidates); err != nil {
		return "", fmt.Errorf("failed to create candidates sheet: %w", err)
	}

	if err := f.SaveAs(outputPath); err != nil {
		// Fall back to writing the buffer ourselves
		var buf bytes.Buffer
		if writeErr := f.Write(&buf); writeErr != nil {
			return "", fmt.Errorf("failed to save Excel file: direct save failed (%v), buffer write also failed: %w", err, writeErr)
		}
		if fileErr := os.WriteFile(outputPath, buf.Bytes(), 0644); fileErr != nil {
			return "", fmt.Errorf("failed to save Excel file: direct save failed (%v), file write failed: %w", err, fileErr)
		}
	}

	return outputPath, nil
}

// DefaultFileName returns a timestamped export name
func DefaultFileName(now time.Time) string {
	return fmt.Sprintf("Candidates_%s.xlsx", now.Format("2006-01-02_150405"))
}

// createSummarySheet writes totals by seniority and availability
func createSummarySheet(f *excelize.File, sheetName string, candidates []models.Candidate) error {
	f.SetColWidth(sheetName, "A", "A", 28)
	f.SetColWidth(sheetName, "B", "B", 24)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	labelStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return err
	}

	row := 1
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "Candidate Report")
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), headerStyle)
	f.MergeCell(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row))
	row += 2

	var juniors, seniors, available, totalYears int
	for _, c := range candidates {
		switch c.Seniority {
		case models.SeniorityJunior:
			juniors++
		case models.SenioritySenior:
			seniors++
		}
		if c.Availability {
			available++
		}
		totalYears += c.Years
	}

	avgYears := "-"
	if len(candidates) > 0 {
		avgYears = fmt.Sprintf("%.1f", float64(totalYears)/float64(len(candidates)))
	}

	lines := []struct {
		label string
		value any
	}{
		{"Generated:", time.Now().Format("2006-01-02 15:04:05")},
		{"Total Candidates:", len(candidates)},
		{"Junior:", juniors},
		{"Senior:", seniors},
		{"Available:", available},
		{"Not Available:", len(candidates) - available},
		{"Average Years:", avgYears},
	}

	for _, line := range lines {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), line.label)
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), labelStyle)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), line.value)
		row++
	}

	return nil
}

// createCandidatesSheet writes one row per candidate with availability colour-coding
func createCandidatesSheet(f *excelize.File, sheetName string, candidates []models.Candidate) error {
	f.SetColWidth(sheetName, "A", "A", 8)
	f.SetColWidth(sheetName, "B", "C", 22)
	f.SetColWidth(sheetName, "D", "F", 14)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder,
	})
	if err != nil {
		return err
	}

	availableStyle, err := f.NewStyle(&excelize.Style{
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"C6EFCE"}, Pattern: 1},
		Border: thinBorder,
	})
	if err != nil {
		return err
	}

	unavailableStyle, err := f.NewStyle(&excelize.Style{
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"FFC7CE"}, Pattern: 1},
		Border: thinBorder,
	})
	if err != nil {
		return err
	}

	for col, header := range candidateHeaders {
		cell := fmt.Sprintf("%s1", string(rune('A'+col)))
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, c := range candidates {
		row := i + 2
		if c.HasID() {
			f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), *c.ID)
		}
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), c.Name)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), c.Surname)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), string(c.Seniority))
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), c.Years)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), c.Availability)

		style := unavailableStyle
		if c.Availability {
			style = availableStyle
		}
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("F%d", row), style)
	}

	if len(candidates) > 0 {
		f.AutoFilter(sheetName, fmt.Sprintf("A1:F%d", len(candidates)+1), []excelize.AutoFilterOptions{})
	}

	// Freeze top row
	f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	return nil
}

// WriteTemplate writes a blank upload workbook: the required headers and one
// example row, which is exactly the shape the ingestion accepts
func WriteTemplate(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	headers := make([]any, len(ingestion.RequiredHeaders))
	for i, h := range ingestion.RequiredHeaders {
		headers[i] = h
	}
	if err := f.SetSheetRow(templateSheet, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write template headers: %w", err)
	}

	example := []any{string(models.SeniorityJunior), 0, true}
	if err := f.SetSheetRow(templateSheet, "A2", &example); err != nil {
		return fmt.Errorf("failed to write template row: %w", err)
	}

	if err := f.SetColWidth(templateSheet, "A", "C", 16); err != nil {
		return fmt.Errorf("failed to size template columns: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write template: %w", err)
	}
	return nil
}
