package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/weftlabs/weft/internal/cache"
	"github.com/weftlabs/weft/internal/component"
	"github.com/weftlabs/weft/internal/ctxlog"
	"github.com/weftlabs/weft/internal/graph"
	"github.com/weftlabs/weft/internal/ledger"
	"github.com/weftlabs/weft/internal/schedule"
	"github.com/weftlabs/weft/internal/statebus"
	"github.com/weftlabs/weft/internal/trace"
)

// Config carries the collaborators an Engine needs. Zero-value fields get
// local defaults: an in-memory cache, a process-local lock set and a
// slog-backed tracer.
type Config struct {
	Registry *component.Registry
	Store    cache.Store
	Locks    *cache.LockSet
	Tracer   trace.Tracer
	// FlowID keys the externally persisted graph so a later invocation can
	// resume or extend a prior run.
	FlowID string
}

// Engine executes one live graph.
type Engine struct {
	graph    *graph.Graph
	registry *component.Registry
	store    cache.Store
	locks    *cache.LockSet
	tracer   trace.Tracer
	flowID   string

	mu        sync.Mutex
	runID     string
	sessionID string
	bus       *statebus.Bus
	led       *ledger.Ledger

	firstLayer []string
	runQueue   []string
	prepared   bool

	// Vertices toggled during the current step, reset between steps.
	inactivated map[string]struct{}
	activated   []string
}

// New creates an engine for a graph.
func New(g *graph.Graph, cfg Config) *Engine {
	if cfg.Registry == nil {
		cfg.Registry = component.NewRegistry()
	}
	if cfg.Store == nil {
		cfg.Store = cache.NewMemory()
	}
	if cfg.Locks == nil {
		cfg.Locks = cache.NewLockSet()
	}
	if cfg.Tracer == nil {
		cfg.Tracer = trace.Slog{}
	}
	return &Engine{
		graph:       g,
		registry:    cfg.Registry,
		store:       cfg.Store,
		locks:       cfg.Locks,
		tracer:      cfg.Tracer,
		flowID:      cfg.FlowID,
		led:         ledger.New(),
		inactivated: make(map[string]struct{}),
	}
}

// Graph returns the live graph the engine drives.
func (e *Engine) Graph() *graph.Graph { return e.graph }

// RunID returns the current run id, empty before the first run.
func (e *Engine) RunID() string { return e.runID }

// SortVertices computes the dependency layers for a (possibly filtered) run,
// marks every vertex active, rebuilds the run ledger and returns the first
// layer.
func (e *Engine) SortVertices(ctx context.Context, startID, stopID string) ([]string, error) {
	logger := ctxlog.FromContext(ctx)

	e.graph.MarkAll(graph.StateActive)
	layers, err := schedule.Layers(ctx, e.graph, schedule.Config{StartID: startID, StopID: stopID})
	if err != nil {
		return nil, fmt.Errorf("sorting vertices: %w", err)
	}

	var toRun []string
	for _, layer := range layers {
		toRun = append(toRun, layer...)
	}
	e.led = ledger.New()
	e.led.Build(e.graph.PredecessorMap(), toRun)
	e.graph.IncrementRunCount()

	if len(layers) == 0 {
		e.firstLayer = nil
		return nil, nil
	}
	e.firstLayer = append([]string(nil), layers[0]...)
	logger.Debug("Vertices sorted.", "layers", len(layers), "firstLayer", e.firstLayer, "toRun", len(toRun))
	return e.firstLayer, nil
}

// beginRun assigns a fresh run id, creates the run-scoped state bus and
// registers listener subscriptions, then notifies the tracer.
func (e *Engine) beginRun(ctx context.Context) {
	e.runID = uuid.NewString()
	e.bus = statebus.New(e.runID)
	for _, id := range e.graph.StateIDs() {
		v, err := e.graph.GetVertex(id)
		if err != nil || v.Data.ListenName == "" {
			continue
		}
		e.bus.Subscribe(id, v.Data.ListenName)
	}
	e.inactivated = make(map[string]struct{})
	e.activated = nil
	e.tracer.Begin(ctx, e.runID)
}

// collectOutputs gathers the built results of output vertices, or of the
// named vertices when a filter is given. Names match by id or display name.
func (e *Engine) collectOutputs(names []string) map[string]any {
	outputs := make(map[string]any)
	for _, v := range e.graph.Vertices() {
		if !v.Built || v.Result == nil {
			continue
		}
		if len(names) == 0 {
			if !v.Data.IsOutput {
				continue
			}
		} else if !matchesAny(names, v.ID(), v.DisplayName()) {
			continue
		}
		outputs[v.ID()] = v.Result.Outputs
	}
	return outputs
}

func matchesAny(names []string, id, displayName string) bool {
	for _, name := range names {
		if name == id || name == displayName {
			return true
		}
	}
	return false
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
