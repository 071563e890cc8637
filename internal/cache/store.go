// Package cache defines the result cache consumed by the engine for frozen
// vertices, plus the per-run lock set serializing runnable-bookkeeping
// against concurrent callers of the same run.
package cache

import "context"

// Entry is a cached vertex build: the fields copied onto a live vertex on a
// frozen-cache hit.
type Entry struct {
	Built     bool           `yaml:"built"`
	Outputs   map[string]any `yaml:"outputs,omitempty"`
	Artifacts map[string]any `yaml:"artifacts,omitempty"`
}

// Store is the cache service interface. Implementations must be safe for
// concurrent use.
type Store interface {
	// Get returns the entry stored under key and whether one was present.
	Get(ctx context.Context, key string) (Entry, bool, error)
	// Set stores an entry under key, replacing any previous one.
	Set(ctx context.Context, key string, entry Entry) error
	// Delete removes the entry stored under key, if any.
	Delete(ctx context.Context, key string) error
}
