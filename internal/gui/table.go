package gui

import (
	"fmt"
	"strconv"

	"github.com/fmuoria/candidate-manager/internal/ingestion"
	"github.com/fmuoria/candidate-manager/internal/models"
)

// displayedColumns are the table headers, in column order
var displayedColumns = []string{"Name", "Surname", "Seniority", "Years", "Availability"}

// cellText renders one table cell
func cellText(c models.Candidate, col int) string {
	switch col {
	case 0:
		return c.Name
	case 1:
		return c.Surname
	case 2:
		return string(c.Seniority)
	case 3:
		return strconv.Itoa(c.Years)
	case 4:
		return yesNo(c.Availability)
	}
	return ""
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// pageLabel describes the paginator position
func pageLabel(index, count, total int) string {
	if count == 0 {
		return "No candidates"
	}
	return fmt.Sprintf("Page %d of %d (%d candidates)", index+1, count, total)
}

// previewText summarises an accepted spreadsheet for the create form
func previewText(sheet *ingestion.Spreadsheet) string {
	if sheet == nil {
		return ""
	}
	seniority, _ := sheet.Value(ingestion.HeaderSeniority)
	years, _ := sheet.Value(ingestion.HeaderYears)
	availability, _ := sheet.Value(ingestion.HeaderAvailability)
	return fmt.Sprintf("Seniority: %s, Years: %s, Available: %s", seniority, years, availability)
}
