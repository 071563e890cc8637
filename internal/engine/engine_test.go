package engine

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftlabs/weft/internal/component"
	"github.com/weftlabs/weft/internal/flowdef"
	"github.com/weftlabs/weft/internal/graph"
)

// buildLog records vertex build order across concurrent wave workers.
type buildLog struct {
	mu  sync.Mutex
	ids []string
}

func (l *buildLog) record(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ids = append(l.ids, id)
}

func (l *buildLog) count(id string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, got := range l.ids {
		if got == id {
			n++
		}
	}
	return n
}

func (l *buildLog) index(id string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, got := range l.ids {
		if got == id {
			return i
		}
	}
	return -1
}

// testRegistry registers an "emit" kind that outputs its text param and a
// "join" kind that concatenates its inputs, both recording build order.
func testRegistry(log *buildLog) *component.Registry {
	r := component.NewRegistry()
	r.Register(&component.Descriptor{Kind: "emit"}, func() component.Component {
		return component.Func(func(_ context.Context, in *component.BuildInput) (*component.Result, error) {
			log.record(in.VertexID)
			text, _ := in.Params["text"].(string)
			return &component.Result{Outputs: map[string]any{"text": text}}, nil
		})
	})
	r.Register(&component.Descriptor{Kind: "join"}, func() component.Component {
		return component.Func(func(_ context.Context, in *component.BuildInput) (*component.Result, error) {
			log.record(in.VertexID)
			joined := ""
			if v, ok := in.Inputs["left"].(string); ok {
				joined += v
			}
			if v, ok := in.Inputs["right"].(string); ok {
				joined += v
			}
			return &component.Result{Outputs: map[string]any{"text": joined}}, nil
		})
	})
	return r
}

func diamondGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.FromDefinition(&flowdef.Flow{
		Vertices: []flowdef.VertexData{
			{ID: "src", Kind: "emit", Params: map[string]any{"text": "s"}},
			{ID: "left", Kind: "emit", Params: map[string]any{"text": "l"}},
			{ID: "right", Kind: "emit", Params: map[string]any{"text": "r"}},
			{ID: "sink", Kind: "join", IsOutput: true},
		},
		Edges: []flowdef.EdgeData{
			{Source: "src", Target: "left"},
			{Source: "src", Target: "right"},
			{Source: "left", Target: "sink", SourceHandle: "text", TargetHandle: "left"},
			{Source: "right", Target: "sink", SourceHandle: "text", TargetHandle: "right"},
		},
	})
	require.NoError(t, err)
	return g
}

func TestProcessRunsDependenciesFirst(t *testing.T) {
	log := &buildLog{}
	e := New(diamondGraph(t), Config{Registry: testRegistry(log)})

	require.NoError(t, e.Process(context.Background(), "", ""))

	// Everything built exactly once, dependencies before consumers.
	for _, id := range []string{"src", "left", "right", "sink"} {
		assert.Equal(t, 1, log.count(id), "vertex %s", id)
	}
	assert.Less(t, log.index("src"), log.index("left"))
	assert.Less(t, log.index("src"), log.index("right"))
	assert.Less(t, log.index("left"), log.index("sink"))
	assert.Less(t, log.index("right"), log.index("sink"))

	sink, err := e.Graph().GetVertex("sink")
	require.NoError(t, err)
	require.NotNil(t, sink.Result)
	assert.Equal(t, "lr", sink.Result.Outputs["text"])
	assert.NotEmpty(t, e.RunID())
	assert.Equal(t, 1, e.Graph().RunCount())
}

func TestProcessFailFast(t *testing.T) {
	log := &buildLog{}
	r := testRegistry(log)
	r.Register(&component.Descriptor{Kind: "boom"}, func() component.Component {
		return component.Func(func(context.Context, *component.BuildInput) (*component.Result, error) {
			return nil, fmt.Errorf("exploded")
		})
	})
	g, err := graph.FromDefinition(&flowdef.Flow{
		Vertices: []flowdef.VertexData{
			{ID: "bad", Kind: "boom"},
			{ID: "after", Kind: "emit"},
		},
		Edges: []flowdef.EdgeData{{Source: "bad", Target: "after"}},
	})
	require.NoError(t, err)

	e := New(g, Config{Registry: r})
	err = e.Process(context.Background(), "", "")
	require.Error(t, err)
	assert.ErrorContains(t, err, "running wave 0")
	assert.ErrorContains(t, err, "exploded")
	// Downstream of the failure never built.
	assert.Equal(t, 0, log.count("after"))
}

func TestProcessNilResultIsFailure(t *testing.T) {
	r := component.NewRegistry()
	r.Register(&component.Descriptor{Kind: "void"}, func() component.Component {
		return component.Func(func(context.Context, *component.BuildInput) (*component.Result, error) {
			return nil, nil
		})
	})
	g, err := graph.FromDefinition(&flowdef.Flow{
		Vertices: []flowdef.VertexData{{ID: "v", Kind: "void"}},
	})
	require.NoError(t, err)

	e := New(g, Config{Registry: r})
	err = e.Process(context.Background(), "", "")
	assert.ErrorContains(t, err, "no result found for vertex v")
}

func TestProcessUnknownKind(t *testing.T) {
	g, err := graph.FromDefinition(&flowdef.Flow{
		Vertices: []flowdef.VertexData{{ID: "v", Kind: "nope"}},
	})
	require.NoError(t, err)

	e := New(g, Config{})
	err = e.Process(context.Background(), "", "")
	assert.ErrorContains(t, err, "unknown component kind")
}

func TestFrozenVertexUsesCache(t *testing.T) {
	log := &buildLog{}
	g, err := graph.FromDefinition(&flowdef.Flow{
		Vertices: []flowdef.VertexData{
			{ID: "pinned", Kind: "emit", Frozen: true, Params: map[string]any{"text": "cached"}},
			{ID: "out", Kind: "join", IsOutput: true},
		},
		Edges: []flowdef.EdgeData{
			{Source: "pinned", Target: "out", SourceHandle: "text", TargetHandle: "left"},
		},
	})
	require.NoError(t, err)
	e := New(g, Config{Registry: testRegistry(log)})

	require.NoError(t, e.Process(context.Background(), "", ""))
	assert.Equal(t, 1, log.count("pinned"), "cache miss builds")

	pinned, err := g.GetVertex("pinned")
	require.NoError(t, err)
	assert.False(t, pinned.Result.UsedFrozen)

	require.NoError(t, e.Process(context.Background(), "", ""))
	assert.Equal(t, 1, log.count("pinned"), "cache hit skips the build")
	assert.Equal(t, 2, log.count("out"), "non-frozen vertices rebuild")

	pinned, err = g.GetVertex("pinned")
	require.NoError(t, err)
	assert.True(t, pinned.Result.UsedFrozen)
	assert.Equal(t, "cached", pinned.Result.Outputs["text"])
}

func TestRunAppliesInputsAndCollectsOutputs(t *testing.T) {
	log := &buildLog{}
	g, err := graph.FromDefinition(&flowdef.Flow{
		Vertices: []flowdef.VertexData{
			{ID: "in", Kind: "emit", IsInput: true, Params: map[string]any{"text": "default"}},
			{ID: "out", Kind: "join", IsOutput: true},
		},
		Edges: []flowdef.EdgeData{
			{Source: "in", Target: "out", SourceHandle: "text", TargetHandle: "left"},
		},
	})
	require.NoError(t, err)
	e := New(g, Config{Registry: testRegistry(log)})

	results, err := e.Run(context.Background(), []InputSet{
		{Values: map[string]any{"text": "first"}},
		{Values: map[string]any{"text": "second"}},
	}, RunOptions{})
	require.NoError(t, err)
	require.Len(t, results, 2)

	out1, ok := results[0].Outputs["out"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "first", out1["text"])
	out2, ok := results[1].Outputs["out"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "second", out2["text"])
}

func TestRunInputComponentFilter(t *testing.T) {
	log := &buildLog{}
	g, err := graph.FromDefinition(&flowdef.Flow{
		Vertices: []flowdef.VertexData{
			{ID: "a", Kind: "emit", IsInput: true, Params: map[string]any{"text": "a0"}},
			{ID: "b", Kind: "emit", IsInput: true, Params: map[string]any{"text": "b0"}},
		},
	})
	require.NoError(t, err)
	e := New(g, Config{Registry: testRegistry(log)})

	results, err := e.Run(context.Background(), []InputSet{
		{Values: map[string]any{"text": "changed"}, Components: []string{"a"}},
	}, RunOptions{Outputs: []string{"a", "b"}})
	require.NoError(t, err)
	require.Len(t, results, 1)

	got := results[0].Outputs
	assert.Equal(t, map[string]any{"text": "changed"}, got["a"])
	assert.Equal(t, map[string]any{"text": "b0"}, got["b"])
}

func TestRunSessionPropagation(t *testing.T) {
	r := component.NewRegistry()
	var seenSession string
	r.Register(&component.Descriptor{Kind: "probe", SessionAware: true}, func() component.Component {
		return component.Func(func(_ context.Context, in *component.BuildInput) (*component.Result, error) {
			seenSession = in.SessionID
			return &component.Result{Outputs: map[string]any{"session": in.Params["session_id"]}}, nil
		})
	})
	g, err := graph.FromDefinition(&flowdef.Flow{
		Vertices: []flowdef.VertexData{
			{ID: "p", Kind: "probe", SessionAware: true, IsOutput: true},
		},
	})
	require.NoError(t, err)
	e := New(g, Config{Registry: r})

	results, err := e.Run(context.Background(), nil, RunOptions{SessionID: "sess-9"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "sess-9", seenSession)
	out, ok := results[0].Outputs["p"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "sess-9", out["session"])
}

func TestProcessStopFrontier(t *testing.T) {
	log := &buildLog{}
	g, err := graph.FromDefinition(&flowdef.Flow{
		Vertices: []flowdef.VertexData{
			{ID: "a", Kind: "emit", IsInput: true},
			{ID: "b", Kind: "emit"},
			{ID: "c", Kind: "emit"},
		},
		Edges: []flowdef.EdgeData{
			{Source: "a", Target: "b"},
			{Source: "b", Target: "c"},
		},
	})
	require.NoError(t, err)
	e := New(g, Config{Registry: testRegistry(log)})

	require.NoError(t, e.Process(context.Background(), "", "b"))
	assert.Equal(t, 1, log.count("a"))
	assert.Equal(t, 1, log.count("b"))
	assert.Equal(t, 0, log.count("c"), "downstream of the stop vertex stays unbuilt")
}
