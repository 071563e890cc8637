package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/weftlabs/weft/internal/cache"
	"github.com/weftlabs/weft/internal/component"
	"github.com/weftlabs/weft/internal/ctxlog"
	"github.com/weftlabs/weft/internal/graph"
)

// BuildVertex builds one vertex: frozen vertices are served from the cache
// when a prior result exists, everything else runs its component. The vertex
// is marked in flight in the ledger before building so concurrent discovery
// never picks it twice.
func (e *Engine) BuildVertex(ctx context.Context, id string) (*graph.Vertex, error) {
	v, err := e.graph.GetVertex(id)
	if err != nil {
		return nil, err
	}
	e.led.MarkRunning(id)
	logger := ctxlog.FromContext(ctx).With("vertex", id, "kind", v.Kind())

	build := true
	if v.Frozen() {
		entry, ok, err := e.store.Get(ctx, e.cacheKey(id))
		if err != nil {
			return nil, fmt.Errorf("reading cache for vertex %s: %w", id, err)
		}
		if ok {
			v.Built = entry.Built
			v.Result = &component.Result{Outputs: entry.Outputs, Artifacts: entry.Artifacts, UsedFrozen: true}
			v.Artifacts = entry.Artifacts
			build = false
			logger.Debug("Frozen vertex restored from cache.")
		}
	}

	if build {
		if err := e.buildVertex(ctx, v); err != nil {
			return nil, err
		}
		if v.Frozen() {
			entry := cache.Entry{Built: v.Built, Outputs: v.Result.Outputs, Artifacts: v.Artifacts}
			if err := e.store.Set(ctx, e.cacheKey(id), entry); err != nil {
				return nil, fmt.Errorf("caching vertex %s: %w", id, err)
			}
		}
	}

	if v.Result == nil {
		return nil, fmt.Errorf("no result found for vertex %s", id)
	}
	return v, nil
}

func (e *Engine) buildVertex(ctx context.Context, v *graph.Vertex) error {
	comp, err := e.registry.New(v.Kind())
	if err != nil {
		return fmt.Errorf("building vertex %s: %w", v.ID(), err)
	}

	in := &component.BuildInput{
		VertexID:  v.ID(),
		Params:    v.Params,
		Inputs:    e.resolveInputs(v),
		SessionID: e.sessionID,
		Runtime:   &vertexRuntime{engine: e, vertex: v},
	}

	start := time.Now()
	res, err := comp.Build(ctx, in)
	if err != nil {
		return fmt.Errorf("building vertex %s: %w", v.ID(), err)
	}
	v.RecordBuildDuration(time.Since(start))
	if res == nil {
		return fmt.Errorf("no result found for vertex %s", v.ID())
	}

	v.Built = true
	v.Result = res
	v.Artifacts = res.Artifacts
	ctxlog.FromContext(ctx).Debug("Vertex built.", "vertex", v.ID(), "outputs", len(res.Outputs))
	return nil
}

// resolveInputs maps each incoming edge to the upstream output it carries.
// Edges from vertices that have not produced a result (pruned branches) are
// skipped rather than failed; the component sees an absent input.
func (e *Engine) resolveInputs(v *graph.Vertex) map[string]any {
	inputs := make(map[string]any)
	for _, edge := range e.graph.IncomingEdges(v.ID()) {
		source, err := e.graph.GetVertex(edge.Source)
		if err != nil || !source.Built || source.Result == nil {
			continue
		}
		var value any
		if edge.SourceHandle != "" {
			value = source.Result.Outputs[edge.SourceHandle]
		} else {
			value = singleOrAll(source.Result.Outputs)
		}
		key := edge.TargetHandle
		if key == "" {
			key = edge.Source
		}
		inputs[key] = value
	}
	return inputs
}

func singleOrAll(outputs map[string]any) any {
	if len(outputs) == 1 {
		for _, v := range outputs {
			return v
		}
	}
	return outputs
}

// cacheKey scopes cached results to the flow so two flows sharing vertex ids
// never collide in a shared store.
func (e *Engine) cacheKey(vertexID string) string {
	if e.flowID == "" {
		return vertexID
	}
	return e.flowID + "/" + vertexID
}

// vertexRuntime binds the Runtime callbacks to a specific building vertex so
// state writes and branch pruning carry the caller identity.
type vertexRuntime struct {
	engine *Engine
	vertex *graph.Vertex
}

func (r *vertexRuntime) GetState(name string) (any, bool) {
	return r.engine.GetState(name)
}

func (r *vertexRuntime) UpdateState(name string, value any) {
	r.engine.UpdateState(name, value, r.vertex.ID())
}

func (r *vertexRuntime) AppendState(name string, value any) {
	r.engine.AppendState(name, value, r.vertex.ID())
}

func (r *vertexRuntime) DeactivateBranch(outputName string) {
	r.engine.DeactivateBranchFrom(r.vertex.ID(), outputName)
}

var _ component.Runtime = (*vertexRuntime)(nil)
