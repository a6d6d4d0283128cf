package store

import (
	"maps"
	"sort"
	"sync"
)

// Reader answers point lookups by identifier.
type Reader[R any] interface {
	// Get returns Found with the record stored under id, or Absent if there
	// is none. It returns an *InvalidKeyError only for malformed ids.
	Get(id string) (Result[R], error)
}

// Memory is an in-memory keyed store. All methods are safe for concurrent use.
//
// Records are stored and returned as given; R should be treated as
// immutable once written, since lookups hand out the stored value.
type Memory[R any] struct {
	mu      sync.RWMutex
	records map[string]R
}

var _ Reader[struct{}] = (*Memory[struct{}])(nil)

// NewMemory creates a store seeded with a copy of seed. Seed keys are not
// validated; use Put for untrusted input.
func NewMemory[R any](seed map[string]R) *Memory[R] {
	records := make(map[string]R, len(seed))
	maps.Copy(records, seed)
	return &Memory[R]{records: records}
}

// Get looks up id. No side effects.
func (m *Memory[R]) Get(id string) (Result[R], error) {
	if err := ValidateKey(id); err != nil {
		return Absent[R](), err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.records[id]
	if !ok {
		return Absent[R](), nil
	}
	return Found(r), nil
}

// Put stores r under id, replacing any existing record.
func (m *Memory[R]) Put(id string, r R) error {
	if err := ValidateKey(id); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[id] = r
	return nil
}

// Delete removes the record under id and reports whether one existed.
func (m *Memory[R]) Delete(id string) (bool, error) {
	if err := ValidateKey(id); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.records[id]
	delete(m.records, id)
	return ok, nil
}

// Keys returns all identifiers in sorted order.
func (m *Memory[R]) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.records))
	for k := range m.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of records.
func (m *Memory[R]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
