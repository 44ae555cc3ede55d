// Package manager holds the state behind the candidate list view: the
// in-memory collection, its sorted and paginated projection, the create
// form and the server error flag.
package manager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/fmuoria/candidate-manager/internal/client"
	"github.com/fmuoria/candidate-manager/internal/ingestion"
	"github.com/fmuoria/candidate-manager/internal/models"
)

// DefaultPageSize is used when a non-positive page size is given
const DefaultPageSize = 5

// CandidateService is the transport the manager talks to
type CandidateService interface {
	List(ctx context.Context) ([]models.Candidate, error)
	Create(ctx context.Context, upload client.UploadRequest) (models.Candidate, error)
	Update(ctx context.Context, candidate models.Candidate) (models.Candidate, error)
	Delete(ctx context.Context, id int) error
}

// ChangeCallback is called after every state change
type ChangeCallback func()

// Manager orchestrates loading, creating, editing and deleting candidates.
// Network calls are not coordinated: whichever completes last wins.
type Manager struct {
	service CandidateService
	logger  *slog.Logger

	mu          sync.RWMutex
	candidates  []models.Candidate
	pageIndex   int
	pageSize    int
	serverError bool
	form        CreateForm
	onChange    ChangeCallback
}

// New creates a manager with an empty collection
func New(service CandidateService, pageSize int, logger *slog.Logger) *Manager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		service:    service,
		logger:     logger,
		candidates: []models.Candidate{},
		pageSize:   pageSize,
	}
}

// OnChange sets the change listener
func (m *Manager) OnChange(cb ChangeCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = cb
}

// notify calls the change listener if set
func (m *Manager) notify() {
	m.mu.RLock()
	cb := m.onChange
	m.mu.RUnlock()

	if cb != nil {
		cb()
	}
}

// Load replaces the collection with the backend's list.
// On failure the error flag is set and the collection is left untouched.
func (m *Manager) Load(ctx context.Context) error {
	candidates, err := m.service.List(ctx)
	if err != nil {
		m.setServerError()
		return err
	}

	m.logger.Info("Candidates loaded", "count", len(candidates))

	m.mu.Lock()
	m.candidates = slices.Clone(candidates)
	m.serverError = false
	m.refreshLocked(true)
	m.mu.Unlock()

	m.notify()
	return nil
}

// Submit sends the create form and appends the created record.
// The page is kept; the form is reset on success.
func (m *Manager) Submit(ctx context.Context) (models.Candidate, error) {
	m.mu.RLock()
	form := m.form
	m.mu.RUnlock()

	if err := form.Validate(); err != nil {
		return models.Candidate{}, err
	}

	created, err := m.service.Create(ctx, form.UploadRequest())
	if err != nil {
		m.setServerError()
		return models.Candidate{}, err
	}

	m.logger.Info("Candidate created", "id", created.SortKey(), "name", created.FullName())

	m.mu.Lock()
	m.candidates = append(m.candidates, created)
	m.form = CreateForm{}
	m.refreshLocked(false)
	m.mu.Unlock()

	m.notify()
	return created, nil
}

// Update merges the dialog result into original, sends it and patches the
// local copy with the backend's answer. The page is kept.
func (m *Manager) Update(ctx context.Context, original models.Candidate, edit EditForm) (models.Candidate, error) {
	if err := edit.Validate(); err != nil {
		return models.Candidate{}, err
	}

	updated, err := m.service.Update(ctx, edit.Apply(original))
	if err != nil {
		m.setServerError()
		return models.Candidate{}, err
	}
	if !updated.HasID() {
		updated.ID = original.ID
	}

	m.logger.Info("Candidate updated", "id", updated.SortKey())

	m.mu.Lock()
	idx := slices.IndexFunc(m.candidates, func(c models.Candidate) bool {
		return c.HasID() && c.SortKey() == updated.SortKey()
	})
	if idx >= 0 {
		m.candidates[idx] = updated
	} else {
		m.candidates = append(m.candidates, updated)
	}
	m.refreshLocked(false)
	m.mu.Unlock()

	m.notify()
	return updated, nil
}

// Delete removes the candidate on the backend, filters it out locally and
// returns to the first page. Unknown ids leave the collection as it was.
func (m *Manager) Delete(ctx context.Context, id int) error {
	if err := m.service.Delete(ctx, id); err != nil {
		m.setServerError()
		return err
	}

	m.logger.Info("Candidate deleted", "id", id)

	m.mu.Lock()
	m.candidates = slices.DeleteFunc(m.candidates, func(c models.Candidate) bool {
		return c.HasID() && *c.ID == id
	})
	m.refreshLocked(true)
	m.mu.Unlock()

	m.notify()
	return nil
}

// refreshLocked re-applies the sort and optionally returns to the first page
func (m *Manager) refreshLocked(firstPage bool) {
	models.SortByID(m.candidates)
	if firstPage {
		m.pageIndex = 0
	}
	m.clampPageLocked()
}

func (m *Manager) setServerError() {
	m.mu.Lock()
	m.serverError = true
	m.mu.Unlock()
	m.notify()
}

// ServerError reports whether the last failed call left the view in error
func (m *Manager) ServerError() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.serverError
}

// Candidates returns a copy of the sorted collection
func (m *Manager) Candidates() []models.Candidate {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.candidates)
}

// Find returns the candidate with the given id
func (m *Manager) Find(id int) (models.Candidate, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.candidates {
		if c.HasID() && *c.ID == id {
			return c, true
		}
	}
	return models.Candidate{}, false
}

// Form returns a copy of the create form
func (m *Manager) Form() CreateForm {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.form
}

// SetName updates the form's name field
func (m *Manager) SetName(name string) {
	m.mu.Lock()
	m.form.Name = name
	m.mu.Unlock()
}

// SetSurname updates the form's surname field
func (m *Manager) SetSurname(surname string) {
	m.mu.Lock()
	m.form.Surname = surname
	m.mu.Unlock()
}

// AttachFile ingests an uploaded workbook into the form and returns the
// error to display when it is rejected. A wrong content type leaves the
// form's file as it was; a bad header or row count clears it.
func (m *Manager) AttachFile(fileName, declaredType string, data []byte) (*ingestion.Spreadsheet, error) {
	sheet, err := ingestion.Ingest(fileName, declaredType, data)

	m.mu.Lock()
	switch {
	case err == nil:
		m.form.File = sheet
	case !errors.Is(err, ingestion.ErrInvalidFileType):
		m.form.File = nil
	}
	m.mu.Unlock()

	if err != nil {
		m.logger.Warn("Spreadsheet rejected", "file", fileName, "type", declaredType, "err", err)
		m.notify()
		return nil, fmt.Errorf("%s: %w", fileName, err)
	}

	m.logger.Debug("Spreadsheet accepted", "file", fileName, "row", sheet.Row)
	m.notify()
	return sheet, nil
}

// ClearFile drops the attached file
func (m *Manager) ClearFile() {
	m.mu.Lock()
	m.form.File = nil
	m.mu.Unlock()
	m.notify()
}

// ResetForm clears every field of the create form
func (m *Manager) ResetForm() {
	m.mu.Lock()
	m.form = CreateForm{}
	m.mu.Unlock()
	m.notify()
}
