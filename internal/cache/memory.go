package cache

import (
	"context"
	"sync"
)

// Memory is an ephemeral, in-memory Store backed by sync.Map. The key space
// is stable for a flow (vertex ids) while values change per run, the access
// pattern sync.Map is optimized for.
type Memory struct {
	entries sync.Map
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, key string) (Entry, bool, error) {
	v, ok := m.entries.Load(key)
	if !ok {
		return Entry{}, false, nil
	}
	return v.(Entry), true, nil
}

// Set implements Store.
func (m *Memory) Set(_ context.Context, key string, entry Entry) error {
	m.entries.Store(key, entry)
	return nil
}

// Delete implements Store.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.entries.Delete(key)
	return nil
}
