// Package ledger tracks per-run execution bookkeeping: which vertices are in
// flight, which still expect to run, and which predecessors each pending
// vertex is waiting on. The engine consults it continuously to re-derive
// execution waves from live completion state.
package ledger

import (
	"sort"
	"sync"
)

// Ledger is the bookkeeping for one run. All methods are safe for concurrent
// use; the engine additionally serializes the runnable-discovery critical
// section under a per-run lock.
type Ledger struct {
	mu sync.Mutex

	beingRun map[string]struct{}
	toRun    map[string]struct{}
	// runPredecessors maps a pending vertex to the predecessor ids that
	// have not completed yet.
	runPredecessors map[string]map[string]struct{}
	// runMap maps a vertex to the successors currently targeted for running
	// that wait on it.
	runMap map[string]map[string]struct{}
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{
		beingRun:        make(map[string]struct{}),
		toRun:           make(map[string]struct{}),
		runPredecessors: make(map[string]map[string]struct{}),
		runMap:          make(map[string]map[string]struct{}),
	}
}

// Build initializes the ledger for a run: the set of vertices expected to
// run and, for each, the predecessors it waits on.
func (l *Ledger) Build(predecessorMap map[string][]string, toRun []string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.beingRun = make(map[string]struct{})
	l.toRun = make(map[string]struct{}, len(toRun))
	l.runPredecessors = make(map[string]map[string]struct{})
	l.runMap = make(map[string]map[string]struct{})

	for _, id := range toRun {
		l.toRun[id] = struct{}{}
	}
	for vertexID, preds := range predecessorMap {
		if _, expected := l.toRun[vertexID]; !expected {
			continue
		}
		l.setPredecessorsLocked(vertexID, preds)
	}
}

func (l *Ledger) setPredecessorsLocked(vertexID string, preds []string) {
	set := make(map[string]struct{}, len(preds))
	for _, pred := range preds {
		set[pred] = struct{}{}
	}
	l.runPredecessors[vertexID] = set
	for pred := range set {
		if l.runMap[pred] == nil {
			l.runMap[pred] = make(map[string]struct{})
		}
		l.runMap[pred][vertexID] = struct{}{}
	}
}

// IsRunnable reports whether a vertex can start now: it must be active,
// still expected to run, not already in flight, and have no unresolved
// predecessors.
func (l *Ledger) IsRunnable(id string, active bool) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !active {
		return false
	}
	if _, expected := l.toRun[id]; !expected {
		return false
	}
	if _, running := l.beingRun[id]; running {
		return false
	}
	return len(l.runPredecessors[id]) == 0
}

// MarkRunning records that a vertex build is in flight.
func (l *Ledger) MarkRunning(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.beingRun[id] = struct{}{}
}

// RemoveRunnable retires a completed vertex: it no longer counts as
// expected or in flight, and every successor waiting on it has it cleared
// from its unresolved predecessors.
func (l *Ledger) RemoveRunnable(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.toRun, id)
	delete(l.beingRun, id)
	l.removeFromPredecessorsLocked(id)
}

// RemoveFromPredecessors clears a vertex from the unresolved-predecessor
// sets of its targeted successors without retiring it. Used when a vertex
// is deactivated by branch pruning.
func (l *Ledger) RemoveFromPredecessors(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.removeFromPredecessorsLocked(id)
}

func (l *Ledger) removeFromPredecessorsLocked(id string) {
	for successor := range l.runMap[id] {
		delete(l.runPredecessors[successor], id)
	}
}

// RunPredecessors returns the unresolved predecessor ids of a vertex,
// sorted.
func (l *Ledger) RunPredecessors(id string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.runPredecessors[id]))
	for pred := range l.runPredecessors[id] {
		out = append(out, pred)
	}
	sort.Strings(out)
	return out
}

// TargetedSuccessors returns the successors currently targeted for running
// that wait on the vertex, sorted.
func (l *Ledger) TargetedSuccessors(id string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.runMap[id]))
	for succ := range l.runMap[id] {
		out = append(out, succ)
	}
	sort.Strings(out)
	return out
}

// MergeRunState folds a new partial predecessor view and additional
// expected vertices into the ledger. Reactivation uses this to re-arm
// vertices that already completed inside the same logical run.
func (l *Ledger) MergeRunState(runPredecessors map[string][]string, toRun []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, id := range toRun {
		l.toRun[id] = struct{}{}
	}
	for vertexID, preds := range runPredecessors {
		l.setPredecessorsLocked(vertexID, preds)
		delete(l.beingRun, vertexID)
	}
}

// ExpectedCount returns how many vertices still expect to run.
func (l *Ledger) ExpectedCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.toRun)
}

// Snapshot is the persistable form of the ledger.
type Snapshot struct {
	BeingRun        []string            `yaml:"being_run,omitempty"`
	ToRun           []string            `yaml:"to_run,omitempty"`
	RunPredecessors map[string][]string `yaml:"run_predecessors,omitempty"`
}

// Snapshot captures the ledger state for persistence.
func (l *Ledger) Snapshot() *Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	snap := &Snapshot{RunPredecessors: make(map[string][]string, len(l.runPredecessors))}
	snap.BeingRun = sortedKeys(l.beingRun)
	snap.ToRun = sortedKeys(l.toRun)
	for id, preds := range l.runPredecessors {
		snap.RunPredecessors[id] = sortedKeys(preds)
	}
	return snap
}

// FromSnapshot rebuilds a ledger from its persisted form.
func FromSnapshot(snap *Snapshot) *Ledger {
	l := New()
	for _, id := range snap.BeingRun {
		l.beingRun[id] = struct{}{}
	}
	for _, id := range snap.ToRun {
		l.toRun[id] = struct{}{}
	}
	for id, preds := range snap.RunPredecessors {
		l.setPredecessorsLocked(id, preds)
	}
	return l
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
