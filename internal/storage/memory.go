package storage

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps values in a map. A positive quota caps the byte length
// of any single value, mimicking browser storage limits.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
	quota  int
}

// NewMemoryStore creates an empty MemoryStore. quota <= 0 means unlimited.
func NewMemoryStore(quota int) *MemoryStore {
	return &MemoryStore{values: map[string]string{}, quota: quota}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	if m.quota > 0 && len(value) > m.quota {
		return fmt.Errorf("setting %q (%d bytes): %w", key, len(value), ErrQuotaExceeded)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *MemoryStore) Close() error { return nil }
