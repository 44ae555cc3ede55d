package ingestion

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/fmuoria/candidate-manager/internal/models"
	"github.com/gabriel-vasile/mimetype"
)

// ValidateContentType accepts only the .xlsx media type; parameters are ignored
func ValidateContentType(declared string) error {
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil || !strings.EqualFold(mediaType, models.SpreadsheetMIMEType) {
		return ErrInvalidFileType
	}
	return nil
}

// DetectContentType returns the type a file picker would declare for a file.
// The extension wins when it is known, otherwise the content is sniffed.
func DetectContentType(fileName string, data []byte) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == ".xlsx" {
		return models.SpreadsheetMIMEType
	}
	if ext != "" {
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
	}
	return mimetype.Detect(data).String()
}
