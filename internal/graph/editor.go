package graph

import "github.com/weftlabs/weft/internal/flowdef"

// Update applies another graph's definition onto this one in place: the
// incremental-edit path for a live, possibly partially built graph.
//
// Vertices only in other are added (all vertices before any of their edges,
// since edge construction requires both endpoints indexed). Vertices only in
// this graph are removed together with every edge touching them. Vertices in
// both are replaced when either their definition payload or their edge
// membership differs; a replaced vertex keeps its built result only when
// frozen. Applying an identical definition is a no-op apart from the update
// counter.
func (g *Graph) Update(other *Graph) error {
	existing := make(map[string]struct{}, len(g.vertices))
	for id := range g.vertices {
		existing[id] = struct{}{}
	}
	incoming := make(map[string]struct{}, len(other.vertices))
	for id := range other.vertices {
		incoming[id] = struct{}{}
	}

	// Removals first so their edges cannot hold on to dropped vertices.
	for id := range existing {
		if _, keep := incoming[id]; !keep {
			_ = g.removeVertex(id)
		}
	}

	// Additions: vertices fully before edges.
	var added []string
	for _, id := range other.order {
		if _, had := existing[id]; had {
			continue
		}
		if err := g.addVertex(cloneVertexData(other.vertices[id].Data)); err != nil {
			return err
		}
		added = append(added, id)
	}
	for _, id := range added {
		g.adoptEdgesOf(other, id)
	}

	// Updates: payload or edge membership changed.
	for _, id := range g.order {
		if _, inOther := incoming[id]; !inOther {
			continue
		}
		if _, wasHere := existing[id]; !wasHere {
			continue
		}
		if g.vertexIsIdentical(other, id) {
			continue
		}
		g.updateVertexFrom(other, id)
	}

	g.rebuildMaps()
	g.updateCount++
	return nil
}

// vertexIsIdentical reports whether a vertex has the same definition payload
// and the same edge membership in both graphs.
func (g *Graph) vertexIsIdentical(other *Graph, id string) bool {
	if !g.vertices[id].Data.Equal(other.vertices[id].Data) {
		return false
	}
	return edgeKeysEqual(g.EdgesOf(id), other.EdgesOf(id))
}

func edgeKeysEqual(a, b []*Edge) bool {
	if len(a) != len(b) {
		return false
	}
	keys := make(map[string]struct{}, len(a))
	for _, e := range a {
		keys[e.Key()] = struct{}{}
	}
	for _, e := range b {
		if _, ok := keys[e.Key()]; !ok {
			return false
		}
	}
	return true
}

// updateVertexFrom replaces a vertex's definition payload and edge set with
// the other graph's version. Non-frozen vertices lose their built state so
// they rebuild; every non-frozen neighbor re-derives its parameters, since
// an upstream value change flows downstream even without a topology change.
func (g *Graph) updateVertexFrom(other *Graph, id string) {
	v := g.vertices[id]
	v.Data = cloneVertexData(other.vertices[id].Data)
	v.BuildParams()

	g.removeEdgesOf(id)
	g.adoptEdgesOf(other, id)

	if !v.Frozen() {
		v.ClearBuildState()
	}

	for _, e := range g.EdgesOf(id) {
		for _, endpoint := range []string{e.Source, e.Target} {
			if neighbor, ok := g.vertices[endpoint]; ok && !neighbor.Frozen() {
				neighbor.BuildParams()
			}
		}
	}
}

// adoptEdgesOf copies the other graph's edges touching id, skipping any
// whose endpoints are not (yet) indexed here.
func (g *Graph) adoptEdgesOf(other *Graph, id string) {
	for _, e := range other.EdgesOf(id) {
		if !g.HasVertex(e.Source) || !g.HasVertex(e.Target) {
			continue
		}
		_, _ = g.addEdge(e.Data())
	}
}

func cloneVertexData(data flowdef.VertexData) flowdef.VertexData {
	out := data
	out.Params = cloneParams(data.Params)
	return out
}

func cloneParams(params map[string]any) map[string]any {
	if params == nil {
		return nil
	}
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneParams(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
