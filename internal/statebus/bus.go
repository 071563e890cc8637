// Package statebus is the run-scoped shared state of a flow: a named mapping
// from state name to value record, with listener registration used by the
// engine to reactivate vertices when a state they watch changes. It is the
// one deliberately shared, freely mutable structure in the engine: any vertex
// may read or write any named state.
package statebus

import (
	"sort"
	"strings"
	"sync"
)

// Bus holds the shared state records of one run.
type Bus struct {
	mu      sync.RWMutex
	runID   string
	records map[string]any
	// listeners maps a listener vertex id to its configured listen name.
	listeners map[string]string
}

// New creates an empty bus for a run.
func New(runID string) *Bus {
	return &Bus{
		runID:     runID,
		records:   make(map[string]any),
		listeners: make(map[string]string),
	}
}

// RunID returns the run the bus is scoped to.
func (b *Bus) RunID() string { return b.runID }

// Get returns the record stored under name.
func (b *Bus) Get(name string) (any, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.records[name]
	return v, ok
}

// Set replaces the record stored under name.
func (b *Bus) Set(name string, value any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records[name] = value
}

// Append appends to the record stored under name, promoting a scalar record
// to a list on first append.
func (b *Bus) Append(name string, value any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch existing := b.records[name].(type) {
	case nil:
		b.records[name] = []any{value}
	case []any:
		b.records[name] = append(existing, value)
	default:
		b.records[name] = []any{existing, value}
	}
}

// Names returns the stored state names, sorted.
func (b *Bus) Names() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.records))
	for name := range b.records {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Subscribe registers a listener vertex with its configured listen name.
func (b *Bus) Subscribe(vertexID, listenName string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[vertexID] = listenName
}

// Unsubscribe removes a listener vertex.
func (b *Bus) Unsubscribe(vertexID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.listeners, vertexID)
}

// Listeners returns, sorted, the subscribed vertex ids whose configured
// listen name contains the updated state name. Substring matching means a
// single update can wake several listeners.
func (b *Bus) Listeners(name string) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []string
	for vertexID, listenName := range b.listeners {
		if strings.Contains(listenName, name) {
			out = append(out, vertexID)
		}
	}
	sort.Strings(out)
	return out
}
