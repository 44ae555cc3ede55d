// Package clienttest provides an in-memory candidates API speaking the
// same REST contract as the client, for tests.
package clienttest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/fmuoria/candidate-manager/internal/ingestion"
	"github.com/fmuoria/candidate-manager/internal/models"
)

const maxUploadSize = 32 << 20 // 32 MB

// Server holds the candidates behind the fake API
type Server struct {
	logger *slog.Logger

	mu         sync.RWMutex
	candidates map[int]models.Candidate
	nextID     int
}

// NewServer creates a fake API seeded with the given candidates.
// Seed records without an id are assigned one.
func NewServer(logger *slog.Logger, seed ...models.Candidate) *Server {
	s := &Server{
		logger:     logger,
		candidates: make(map[int]models.Candidate),
		nextID:     1,
	}
	for _, c := range seed {
		if c.HasID() && *c.ID >= s.nextID {
			s.nextID = *c.ID + 1
		}
	}
	for _, c := range seed {
		if !c.HasID() {
			c.ID = models.IntPtr(s.nextID)
			s.nextID++
		}
		s.candidates[*c.ID] = c
	}
	return s
}

// Router returns the HTTP router
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /candidates", s.handleList)
	mux.HandleFunc("POST /candidates/upload", s.handleUpload)
	mux.HandleFunc("PUT /candidates/{id}", s.handleUpdate)
	mux.HandleFunc("DELETE /candidates/{id}", s.handleDelete)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleRoot)

	return s.loggingMiddleware(mux)
}

// handleRoot provides API information
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"service": "Candidate Manager",
		"endpoints": map[string]string{
			"GET /candidates":         "List candidates",
			"POST /candidates/upload": "Create a candidate from name, surname and an Excel file",
			"PUT /candidates/{id}":    "Replace a candidate",
			"DELETE /candidates/{id}": "Delete a candidate",
			"GET /health":             "Health check",
		},
	})
}

// handleHealth provides a health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// handleList returns every candidate in id order
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	out := make([]models.Candidate, 0, len(s.candidates))
	for _, c := range s.candidates {
		out = append(out, c)
	}
	s.mu.RUnlock()

	models.SortByID(out)
	s.respondJSON(w, http.StatusOK, out)
}

// handleUpload creates a candidate from the multipart form.
// The workbook goes through the same checks the desktop form applies.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("Failed to parse form: %v", err))
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	surname := strings.TrimSpace(r.FormValue("surname"))
	if name == "" || surname == "" {
		s.respondError(w, http.StatusBadRequest, "name and surname are required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("Failed to read file: %v", err))
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = ingestion.DetectContentType(header.Filename, data)
	}

	sheet, err := ingestion.Ingest(header.Filename, contentType, data)
	if err != nil {
		s.respondError(w, statusFor(err), err.Error())
		return
	}

	created, err := sheet.Preview(name, surname)
	if err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.mu.Lock()
	created.ID = models.IntPtr(s.nextID)
	s.nextID++
	s.candidates[*created.ID] = created
	s.mu.Unlock()

	s.logger.Info("Candidate created", "id", *created.ID, "file", header.Filename)
	s.respondJSON(w, http.StatusCreated, created)
}

// handleUpdate replaces the stored record; the path id wins over the body
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	var c models.Candidate
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %v", err))
		return
	}
	if err := validateCandidate(c); err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	c.ID = models.IntPtr(id)

	s.mu.Lock()
	_, exists := s.candidates[id]
	if exists {
		s.candidates[id] = c
	}
	s.mu.Unlock()

	if !exists {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("candidate %d not found", id))
		return
	}
	s.respondJSON(w, http.StatusOK, c)
}

// handleDelete removes a candidate
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	_, exists := s.candidates[id]
	delete(s.candidates, id)
	s.mu.Unlock()

	if !exists {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("candidate %d not found", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "id must be an integer")
		return 0, false
	}
	return id, true
}

func validateCandidate(c models.Candidate) error {
	var errs []error
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if strings.TrimSpace(c.Surname) == "" {
		errs = append(errs, errors.New("surname is required"))
	}
	if !c.Seniority.IsValid() {
		errs = append(errs, fmt.Errorf("invalid seniority %q", c.Seniority))
	}
	if c.Years < 0 {
		errs = append(errs, errors.New("years must not be negative"))
	}
	return errors.Join(errs...)
}

// statusFor maps ingestion failures to HTTP statuses
func statusFor(err error) int {
	switch {
	case errors.Is(err, ingestion.ErrInvalidFileType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ingestion.ErrMissingHeaders), errors.Is(err, ingestion.ErrInvalidRowCount):
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}

// respondJSON sends a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to encode JSON response", "err", err)
	}
}

// respondError sends an error response
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("Request", "method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr, "request_id", r.Header.Get("X-Request-Id"))
		next.ServeHTTP(w, r)
	})
}
