package storage

import (
	"context"
	"sync"
)

// Memory is an in-process Slots implementation.
type Memory struct {
	mu    sync.Mutex
	items map[string]string

	// Fail makes every operation return this error when set.
	Fail error
	// Writes counts successful SetItem calls.
	Writes int
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]string)}
}

// GetItem implements Slots.
func (m *Memory) GetItem(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return "", false, m.Fail
	}
	v, ok := m.items[key]
	return v, ok, nil
}

// SetItem implements Slots.
func (m *Memory) SetItem(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	m.items[key] = value
	m.Writes++
	return nil
}
