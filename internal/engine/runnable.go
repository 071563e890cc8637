package engine

import (
	"sync"

	"github.com/weftlabs/weft/internal/graph"
)

// NextRunnableVertices retires a just-built vertex in the ledger and returns
// the vertices that became runnable because of it. The whole discovery runs
// under the per-run lock so concurrent wave workers never hand out the same
// vertex twice; everything returned is already marked in flight.
func (e *Engine) NextRunnableVertices(lock *sync.Mutex, built *graph.Vertex) []string {
	lock.Lock()
	defer lock.Unlock()

	e.led.RemoveRunnable(built.ID())

	next := make(map[string]struct{})
	e.findRunnableSuccessors(built.ID(), next)
	delete(next, built.ID())
	for id := range next {
		e.led.MarkRunning(id)
	}
	return sortedSet(next)
}

// findRunnableSuccessors collects the runnable successors of a vertex. A
// successor that still waits on other predecessors is not runnable itself,
// but some of those predecessors may be; they are chased recursively so a
// reactivated region starts without waiting for the next full wave.
func (e *Engine) findRunnableSuccessors(id string, out map[string]struct{}) {
	for _, succ := range e.graph.SuccessorIDs(id) {
		if e.isRunnable(succ) {
			out[succ] = struct{}{}
			continue
		}
		e.findRunnablePredecessors(succ, out, map[string]struct{}{})
	}
}

func (e *Engine) findRunnablePredecessors(id string, out, visited map[string]struct{}) {
	if _, seen := visited[id]; seen {
		return
	}
	visited[id] = struct{}{}
	for _, pred := range e.led.RunPredecessors(id) {
		if e.isRunnable(pred) {
			out[pred] = struct{}{}
			continue
		}
		e.findRunnablePredecessors(pred, out, visited)
	}
}

func (e *Engine) isRunnable(id string) bool {
	v, err := e.graph.GetVertex(id)
	if err != nil {
		return false
	}
	return e.led.IsRunnable(id, v.IsActive())
}
