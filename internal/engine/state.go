package engine

import (
	"github.com/weftlabs/weft/internal/graph"
)

// GetState returns the named shared state record of the current run.
func (e *Engine) GetState(name string) (any, bool) {
	e.mu.Lock()
	bus := e.bus
	e.mu.Unlock()
	if bus == nil {
		return nil, false
	}
	return bus.Get(name)
}

// UpdateState replaces the named shared state record. Listener vertices whose
// configured name matches are reactivated first, so a listener that already
// ran this run is re-armed before the new value lands.
func (e *Engine) UpdateState(name string, value any, callerID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.bus == nil {
		return
	}
	e.activateStateListeners(name, callerID)
	e.bus.Set(name, value)
}

// AppendState appends to the named shared state record, reactivating matching
// listeners like UpdateState.
func (e *Engine) AppendState(name string, value any, callerID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.bus == nil {
		return
	}
	e.activateStateListeners(name, callerID)
	e.bus.Append(name, value)
}

// activateStateListeners marks every matching listener and its successor
// closure active, then merges the adjacency of the touched region back into
// the run ledger so the re-armed vertices wait on their predecessors again.
// The writing vertex is excluded by id and by display name, so a notifier
// never reactivates itself or its twin in a parallel lane.
func (e *Engine) activateStateListeners(name, callerID string) {
	callerName := callerID
	if caller, err := e.graph.GetVertex(callerID); err == nil {
		callerName = caller.DisplayName()
	}

	activated := make(map[string]struct{})
	touchedEdges := make(map[string]*graph.Edge)
	for _, listenerID := range e.bus.Listeners(name) {
		if listenerID == callerID {
			continue
		}
		listener, err := e.graph.GetVertex(listenerID)
		if err != nil || listener.DisplayName() == callerName {
			continue
		}
		group := append([]*graph.Vertex{listener}, e.graph.AllSuccessors(listenerID)...)
		for _, v := range group {
			v.SetState(graph.StateActive)
			activated[v.ID()] = struct{}{}
			for _, edge := range e.graph.EdgesOf(v.ID()) {
				touchedEdges[edge.Key()] = edge
			}
		}
	}
	if len(activated) == 0 {
		return
	}

	edges := make([]*graph.Edge, 0, len(touchedEdges))
	for _, edge := range touchedEdges {
		edges = append(edges, edge)
	}
	predecessors, _ := graph.AdjacencyFromEdges(edges)

	// Expected vertices grow by the touched region: the reactivated group
	// plus every endpoint of its edges, so reconvergent neighbors are
	// accounted for again.
	toRun := make(map[string]struct{}, len(activated))
	for id := range activated {
		toRun[id] = struct{}{}
	}
	for target, preds := range predecessors {
		toRun[target] = struct{}{}
		for _, pred := range preds {
			toRun[pred] = struct{}{}
		}
	}

	e.activated = sortedSet(activated)
	e.led.MergeRunState(predecessors, sortedSet(toRun))
}

// MarkBranch marks a vertex and its successor closure with the given state.
// Deactivated vertices are also cleared from their successors' unresolved
// predecessors so reconvergent vertices do not wait on a pruned branch.
func (e *Engine) MarkBranch(id string, state graph.VertexState, outputName string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.markBranchLocked(id, state, outputName)
}

func (e *Engine) markBranchLocked(id string, state graph.VertexState, outputName string) error {
	marked, err := e.graph.MarkBranch(id, state, outputName)
	if err != nil {
		return err
	}
	if state == graph.StateInactive {
		for _, mid := range marked {
			e.led.RemoveFromPredecessors(mid)
			e.inactivated[mid] = struct{}{}
		}
	}
	return nil
}

// DeactivateBranchFrom prunes the successors of a vertex reachable through
// the named output handle. The vertex itself stays active; it is the one
// calling, mid-build.
func (e *Engine) DeactivateBranchFrom(id, outputName string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, edge := range e.graph.EdgesOf(id) {
		if edge.Source != id || edge.SourceHandle != outputName {
			continue
		}
		// Errors only occur for unknown vertices; edge targets exist.
		_ = e.markBranchLocked(edge.Target, graph.StateInactive, "")
	}
}

// resetStepState re-activates vertices pruned during the previous step so
// each step starts from a clean activation slate, as pruning only binds the
// step that decided it.
func (e *Engine) resetStepState() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for id := range e.inactivated {
		_ = e.graph.MarkVertex(id, graph.StateActive)
	}
	e.inactivated = make(map[string]struct{})
	e.activated = nil
}

// ActivatedIDs returns the vertices reactivated by the most recent state
// write, sorted.
func (e *Engine) ActivatedIDs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.activated...)
}
