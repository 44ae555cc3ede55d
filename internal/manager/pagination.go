package manager

import (
	"slices"

	"github.com/fmuoria/candidate-manager/internal/models"
)

// Page returns the candidates on the current page
func (m *Manager) Page() []models.Candidate {
	m.mu.RLock()
	defer m.mu.RUnlock()

	start := m.pageIndex * m.pageSize
	if start >= len(m.candidates) {
		return []models.Candidate{}
	}
	end := min(start+m.pageSize, len(m.candidates))
	return slices.Clone(m.candidates[start:end])
}

// PageIndex is zero-based
func (m *Manager) PageIndex() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pageIndex
}

func (m *Manager) PageSize() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pageSize
}

// PageCount is 0 for an empty collection
func (m *Manager) PageCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pageCountLocked()
}

// Len is the total number of candidates
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.candidates)
}

// SetPageSize changes the page size and returns to the first page
func (m *Manager) SetPageSize(size int) {
	if size <= 0 {
		size = DefaultPageSize
	}
	m.mu.Lock()
	m.pageSize = size
	m.pageIndex = 0
	m.mu.Unlock()
	m.notify()
}

// NextPage moves forward; it is a no-op on the last page
func (m *Manager) NextPage() bool {
	return m.gotoPage(func(i int) int { return i + 1 })
}

// PrevPage moves back; it is a no-op on the first page
func (m *Manager) PrevPage() bool {
	return m.gotoPage(func(i int) int { return i - 1 })
}

// FirstPage returns to page zero
func (m *Manager) FirstPage() bool {
	return m.gotoPage(func(int) int { return 0 })
}

// LastPage jumps to the final page
func (m *Manager) LastPage() bool {
	return m.gotoPage(func(int) int { return m.pageCountLocked() - 1 })
}

// gotoPage applies move under the lock and reports whether the page changed
func (m *Manager) gotoPage(move func(int) int) bool {
	m.mu.Lock()
	before := m.pageIndex
	m.pageIndex = move(m.pageIndex)
	m.clampPageLocked()
	changed := m.pageIndex != before
	m.mu.Unlock()

	if changed {
		m.notify()
	}
	return changed
}

func (m *Manager) pageCountLocked() int {
	return (len(m.candidates) + m.pageSize - 1) / m.pageSize
}

func (m *Manager) clampPageLocked() {
	last := m.pageCountLocked() - 1
	if m.pageIndex > last {
		m.pageIndex = last
	}
	if m.pageIndex < 0 {
		m.pageIndex = 0
	}
}
