package component

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Module is the interface a component package implements to register its
// kinds with an application instance.
type Module interface {
	Register(r *Registry)
}

// Registry maps component kinds to factories and descriptors for a single
// application instance. Registration happens at startup; lookups during a
// run are read-only.
type Registry struct {
	mu          sync.RWMutex
	factories   map[string]Factory
	descriptors map[string]*Descriptor
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		factories:   make(map[string]Factory),
		descriptors: make(map[string]*Descriptor),
	}
}

// Register registers a component kind. Registering the same kind twice is a
// programmer error and panics, matching startup wiring semantics.
func (r *Registry) Register(desc *Descriptor, factory Factory) {
	if desc == nil || desc.Kind == "" {
		panic("component: descriptor with empty kind")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[desc.Kind]; exists {
		panic(fmt.Sprintf("component kind '%s' already registered", desc.Kind))
	}
	slog.Debug("Registering component kind.", "kind", desc.Kind)
	r.factories[desc.Kind] = factory
	r.descriptors[desc.Kind] = desc
}

// New instantiates a component of the given kind.
func (r *Registry) New(kind string) (Component, error) {
	r.mu.RLock()
	factory, ok := r.factories[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown component kind '%s'", kind)
	}
	return factory(), nil
}

// Descriptor returns the descriptor for a kind, or nil if unregistered.
func (r *Registry) Descriptor(kind string) *Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.descriptors[kind]
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.factories))
	for kind := range r.factories {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}
