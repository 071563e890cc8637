package graph

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/weftlabs/weft/internal/component"
	"github.com/weftlabs/weft/internal/flowdef"
)

// VertexState is the activation state of a vertex. Inactive vertices are
// skipped by the run ledger until something reactivates them.
type VertexState int32

const (
	// StateActive marks a vertex as eligible to run.
	StateActive VertexState = iota
	// StateInactive marks a vertex as pruned for the current run.
	StateInactive
)

// Vertex is a single unit of computation in the graph. Structural identity
// comes from the definition payload; the lifecycle fields mutate during
// execution and incremental updates.
type Vertex struct {
	// Data is the definition payload the vertex was created from.
	Data flowdef.VertexData

	// Params are the derived parameters passed to the component at build
	// time. Rebuilt from Data whenever the definition changes.
	Params map[string]any

	// Built reports whether the vertex has a usable result.
	Built bool
	// Result is the outcome of the last build, nil before the first build.
	Result *component.Result
	// Artifacts holds auxiliary products of the last build.
	Artifacts map[string]any

	// state is read by concurrent wave workers, so it is atomic.
	state atomic.Int32

	// Build duration history feeds the scheduler's shortest-job-first
	// layer ordering.
	timing struct {
		mu     sync.Mutex
		count  int64
		total  time.Duration
		avgSet bool
		avg    time.Duration
	}
}

func newVertex(data flowdef.VertexData) *Vertex {
	v := &Vertex{Data: data}
	v.BuildParams()
	return v
}

// ID returns the vertex identity.
func (v *Vertex) ID() string { return v.Data.ID }

// DisplayName returns the human-readable name, falling back to the id.
func (v *Vertex) DisplayName() string {
	if v.Data.DisplayName != "" {
		return v.Data.DisplayName
	}
	return v.Data.ID
}

// Kind returns the component kind the vertex builds with.
func (v *Vertex) Kind() string { return v.Data.Kind }

// Frozen reports whether the vertex's built result is pinned.
func (v *Vertex) Frozen() bool { return v.Data.Frozen }

// IsActive reports whether the vertex is eligible to run.
func (v *Vertex) IsActive() bool { return VertexState(v.state.Load()) == StateActive }

// SetState sets the activation state.
func (v *Vertex) SetState(s VertexState) { v.state.Store(int32(s)) }

// State returns the activation state.
func (v *Vertex) State() VertexState { return VertexState(v.state.Load()) }

// BuildParams re-derives the vertex parameters from the definition payload.
// Called at construction and whenever an incremental update touches the
// vertex or one of its neighbors.
func (v *Vertex) BuildParams() {
	params := make(map[string]any, len(v.Data.Params))
	for k, val := range v.Data.Params {
		params[k] = val
	}
	v.Params = params
}

// UpdateRawParams merges values into the definition payload's params and
// re-derives the working set. With overwrite false, existing keys win.
func (v *Vertex) UpdateRawParams(values map[string]any, overwrite bool) {
	if v.Data.Params == nil {
		v.Data.Params = make(map[string]any, len(values))
	}
	for k, val := range values {
		if !overwrite {
			if _, exists := v.Data.Params[k]; exists {
				continue
			}
		}
		v.Data.Params[k] = val
	}
	v.BuildParams()
}

// ClearBuildState drops the built result so the vertex rebuilds on the next
// run. Frozen vertices are never cleared by the editor; callers enforce that.
func (v *Vertex) ClearBuildState() {
	v.Built = false
	v.Result = nil
	v.Artifacts = nil
}

// RecordBuildDuration folds one build duration into the running average.
func (v *Vertex) RecordBuildDuration(d time.Duration) {
	v.timing.mu.Lock()
	defer v.timing.mu.Unlock()
	v.timing.count++
	v.timing.total += d
	v.timing.avg = v.timing.total / time.Duration(v.timing.count)
	v.timing.avgSet = true
}

// AvgBuildDuration returns the historical average build duration, zero when
// the vertex has never been built.
func (v *Vertex) AvgBuildDuration() time.Duration {
	v.timing.mu.Lock()
	defer v.timing.mu.Unlock()
	if !v.timing.avgSet {
		return 0
	}
	return v.timing.avg
}
