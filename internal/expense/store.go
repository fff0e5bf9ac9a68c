package expense

import (
	"fmt"
	"sync"
	"time"
)

// Store defines the interface for the session working set. The working set
// lives only for the duration of one session; there is no persistence layer.
type Store interface {
	// SaveEntry adds a new entry to the working set
	SaveEntry(entry *ExpenseEntry) error

	// GetEntry retrieves a copy of an entry by ID; edits to the returned
	// entry persist only through SaveEntry
	GetEntry(id string) (*ExpenseEntry, error)

	// ListEntries returns all entries in insertion order
	ListEntries() ([]*ExpenseEntry, error)

	// DeleteEntry removes an entry from the working set
	DeleteEntry(id string) error

	// Clear discards the whole working set
	Clear() error

	// Header returns the current report header
	Header() ReportHeader

	// SetHeader replaces the report header
	SetHeader(header ReportHeader) error
}

// MemoryStore implements the Store interface in memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*ExpenseEntry
	order   []string
	header  ReportHeader
}

// NewMemoryStore creates a MemoryStore seeded with the default header. The
// report date is left unstamped; the owning Service stamps it from its
// TimeSource.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*ExpenseEntry),
		header:  DefaultHeader(time.Time{}),
	}
}

// SaveEntry adds a new entry to the working set.
func (m *MemoryStore) SaveEntry(entry *ExpenseEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry.ID == "" {
		return fmt.Errorf("entry ID is required")
	}
	if _, ok := m.entries[entry.ID]; !ok {
		m.order = append(m.order, entry.ID)
	}
	m.entries[entry.ID] = entry
	return nil
}

// GetEntry retrieves an entry by ID. The returned entry is a copy; edits only
// take effect through SaveEntry.
func (m *MemoryStore) GetEntry(id string) (*ExpenseEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[id]
	if !ok {
		return nil, fmt.Errorf("entry not found: %s", id)
	}
	copied := *entry
	return &copied, nil
}

// ListEntries returns all entries in insertion order.
func (m *MemoryStore) ListEntries() ([]*ExpenseEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := make([]*ExpenseEntry, 0, len(m.order))
	for _, id := range m.order {
		entries = append(entries, m.entries[id])
	}
	return entries, nil
}

// DeleteEntry removes an entry from the working set.
func (m *MemoryStore) DeleteEntry(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[id]; !ok {
		return fmt.Errorf("entry not found: %s", id)
	}
	delete(m.entries, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Clear discards the whole working set.
func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*ExpenseEntry)
	m.order = nil
	return nil
}

// Header returns the current report header.
func (m *MemoryStore) Header() ReportHeader {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.header
}

// SetHeader replaces the report header after validating the FX rate.
func (m *MemoryStore) SetHeader(header ReportHeader) error {
	if header.FXRate <= 0 {
		return fmt.Errorf("fx rate must be positive, got %v", header.FXRate)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.header = header
	return nil
}
