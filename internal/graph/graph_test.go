package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftlabs/weft/internal/flowdef"
)

// diamond builds a -> b, a -> c, b -> d, c -> d.
func diamond(t *testing.T) *Graph {
	t.Helper()
	g, err := FromDefinition(&flowdef.Flow{
		Vertices: []flowdef.VertexData{
			{ID: "a", Kind: "k"},
			{ID: "b", Kind: "k"},
			{ID: "c", Kind: "k"},
			{ID: "d", Kind: "k"},
		},
		Edges: []flowdef.EdgeData{
			{Source: "a", Target: "b"},
			{Source: "a", Target: "c"},
			{Source: "b", Target: "d"},
			{Source: "c", Target: "d"},
		},
	})
	require.NoError(t, err)
	return g
}

func TestFromDefinition(t *testing.T) {
	t.Run("builds adjacency", func(t *testing.T) {
		g := diamond(t)
		assert.Equal(t, []string{"a", "b", "c", "d"}, g.VertexIDs())
		assert.Len(t, g.Edges(), 4)

		inDegree := g.InDegreeMap()
		assert.Equal(t, 0, inDegree["a"])
		assert.Equal(t, 1, inDegree["b"])
		assert.Equal(t, 2, inDegree["d"])

		assert.ElementsMatch(t, []string{"b", "c"}, g.SuccessorIDs("a"))
		preds := g.Predecessors("d")
		require.Len(t, preds, 2)
	})

	t.Run("rejects dangling edges", func(t *testing.T) {
		_, err := FromDefinition(&flowdef.Flow{
			Vertices: []flowdef.VertexData{{ID: "a", Kind: "k"}},
			Edges:    []flowdef.EdgeData{{Source: "a", Target: "b"}},
		})
		assert.Error(t, err)
	})

	t.Run("rejects duplicate ids", func(t *testing.T) {
		_, err := FromDefinition(&flowdef.Flow{
			Vertices: []flowdef.VertexData{
				{ID: "a", Kind: "k"},
				{ID: "a", Kind: "k"},
			},
		})
		assert.Error(t, err)
	})
}

func TestGetVertex(t *testing.T) {
	g := diamond(t)

	v, err := g.GetVertex("a")
	require.NoError(t, err)
	assert.Equal(t, "a", v.ID())

	_, err = g.GetVertex("missing")
	assert.ErrorContains(t, err, "not found")
}

func TestAddRemove(t *testing.T) {
	g := diamond(t)

	_, err := g.AddVertex(flowdef.VertexData{ID: "e", Kind: "k"})
	require.NoError(t, err)
	_, err = g.AddEdge(flowdef.EdgeData{Source: "d", Target: "e"})
	require.NoError(t, err)
	assert.Equal(t, []string{"e"}, g.SuccessorIDs("d"))

	require.NoError(t, g.RemoveVertex("d"))
	assert.False(t, g.HasVertex("d"))
	// Every edge touching d is gone.
	for _, e := range g.Edges() {
		assert.False(t, e.Touches("d"))
	}
	assert.Equal(t, 0, g.InDegreeMap()["e"])
}

func TestParallelEdges(t *testing.T) {
	g, err := FromDefinition(&flowdef.Flow{
		Vertices: []flowdef.VertexData{
			{ID: "a", Kind: "k"},
			{ID: "b", Kind: "k"},
		},
		Edges: []flowdef.EdgeData{
			{Source: "a", Target: "b", SourceHandle: "x"},
			{Source: "a", Target: "b", SourceHandle: "y"},
		},
	})
	require.NoError(t, err)

	// Two logical edges, one unique successor, in-degree counts edges.
	assert.Len(t, g.Edges(), 2)
	assert.Equal(t, []string{"b"}, g.SuccessorIDs("a"))
	assert.Equal(t, 2, g.InDegreeMap()["b"])
}

func TestEdgeDeduplication(t *testing.T) {
	g := diamond(t)
	before := len(g.Edges())
	_, err := g.AddEdge(flowdef.EdgeData{Source: "a", Target: "b"})
	require.NoError(t, err)
	assert.Len(t, g.Edges(), before)
}

func TestAllSuccessors(t *testing.T) {
	g := diamond(t)

	closure := g.AllSuccessors("a")
	ids := make([]string, 0, len(closure))
	for _, v := range closure {
		ids = append(ids, v.ID())
	}
	assert.ElementsMatch(t, []string{"b", "c", "d"}, ids)

	assert.Empty(t, g.AllSuccessors("d"))
}

func TestClassification(t *testing.T) {
	g, err := FromDefinition(&flowdef.Flow{
		Vertices: []flowdef.VertexData{
			{ID: "in", Kind: "k", IsInput: true},
			{ID: "out", Kind: "k", IsOutput: true},
			{ID: "lst", Kind: "k", IsState: true, ListenName: "signal"},
			{ID: "ses", Kind: "k", SessionAware: true},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"in"}, g.InputIDs())
	assert.Equal(t, []string{"out"}, g.OutputIDs())
	assert.Equal(t, []string{"lst"}, g.StateIDs())
	assert.Equal(t, []string{"ses"}, g.SessionIDs())
}

func TestVertexParams(t *testing.T) {
	g, err := FromDefinition(&flowdef.Flow{
		Vertices: []flowdef.VertexData{
			{ID: "a", Kind: "k", Params: map[string]any{"text": "one"}},
		},
	})
	require.NoError(t, err)
	v, err := g.GetVertex("a")
	require.NoError(t, err)
	assert.Equal(t, "one", v.Params["text"])

	v.UpdateRawParams(map[string]any{"text": "two", "extra": 1}, true)
	assert.Equal(t, "two", v.Params["text"])
	assert.Equal(t, 1, v.Params["extra"])

	v.UpdateRawParams(map[string]any{"text": "three"}, false)
	assert.Equal(t, "two", v.Params["text"])
}

func TestSnapshotRoundTrip(t *testing.T) {
	g := diamond(t)
	v, err := g.GetVertex("b")
	require.NoError(t, err)
	v.Built = true
	require.NoError(t, g.MarkVertex("c", StateInactive))
	g.IncrementRunCount()

	restored, err := FromSnapshot(g.Snapshot())
	require.NoError(t, err)

	assert.Equal(t, g.VertexIDs(), restored.VertexIDs())
	assert.Len(t, restored.Edges(), 4)
	assert.Equal(t, 1, restored.RunCount())

	rb, err := restored.GetVertex("b")
	require.NoError(t, err)
	assert.True(t, rb.Built)
	rc, err := restored.GetVertex("c")
	require.NoError(t, err)
	assert.False(t, rc.IsActive())
}
