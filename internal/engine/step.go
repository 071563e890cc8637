package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/weftlabs/weft/internal/graph"
)

// StepResult reports one stepped vertex build.
type StepResult struct {
	// Vertex is the vertex that was built.
	Vertex *graph.Vertex
	// Next holds the vertices queued as a consequence of this build.
	Next []string
}

// Prepare arms the engine for stepped execution: the graph is sorted, a run
// begins, and the first layer becomes the initial run queue. Interactive
// callers then drain the run one Step at a time.
func (e *Engine) Prepare(ctx context.Context, startID, stopID string) error {
	first, err := e.SortVertices(ctx, startID, stopID)
	if err != nil {
		return err
	}
	e.beginRun(ctx)
	for _, id := range first {
		e.led.MarkRunning(id)
	}
	e.runQueue = append([]string(nil), first...)
	sort.Strings(e.runQueue)
	e.prepared = true
	return nil
}

// Step builds the next queued vertex and queues whatever became runnable. It
// returns nil when the run is exhausted. Activation and pruning decided by
// the previous step are reset first; they bind one step only.
func (e *Engine) Step(ctx context.Context) (*StepResult, error) {
	if !e.prepared {
		return nil, fmt.Errorf("engine is not prepared; call Prepare first")
	}
	if len(e.runQueue) == 0 {
		e.prepared = false
		e.locks.Release(e.runID)
		e.tracer.End(ctx, e.collectOutputs(nil), nil)
		return nil, nil
	}
	e.resetStepState()

	id := e.runQueue[0]
	e.runQueue = e.runQueue[1:]

	v, err := e.BuildVertex(ctx, id)
	if err != nil {
		e.prepared = false
		e.locks.Release(e.runID)
		e.tracer.End(ctx, nil, err)
		return nil, err
	}

	lock := e.locks.ForRun(e.runID)
	next := e.NextRunnableVertices(lock, v)
	e.runQueue = append(e.runQueue, next...)
	return &StepResult{Vertex: v, Next: next}, nil
}
