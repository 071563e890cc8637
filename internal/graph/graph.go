package graph

import (
	"fmt"
	"sort"

	"github.com/weftlabs/weft/internal/flowdef"
)

// Graph owns the vertex and edge collections of a flow plus the adjacency
// structures derived from them. Every mutation recomputes the derived maps
// so a scheduling pass never sees stale adjacency data.
type Graph struct {
	vertices map[string]*Vertex
	order    []string
	edges    map[string]*Edge

	// Derived caches, rebuilt by rebuildMaps. The adjacency lists keep one
	// entry per edge, so parallel edges contribute multiple entries; the
	// in-degree map counts edges, keeping the two consistent for the
	// scheduler's Kahn pass.
	predecessorMap map[string][]string
	successorMap   map[string][]string
	inDegreeMap    map[string]int
	parentChildMap map[string][]string

	inputIDs   []string
	outputIDs  []string
	stateIDs   []string
	sessionIDs []string

	runCount    int
	updateCount int
}

// New returns an empty graph.
func New() *Graph {
	g := &Graph{
		vertices: make(map[string]*Vertex),
		edges:    make(map[string]*Edge),
	}
	g.rebuildMaps()
	return g
}

// FromDefinition builds a graph from a flow definition. Structural problems
// (missing ids, duplicates, dangling edge endpoints) fail here, before any
// scheduling is attempted.
func FromDefinition(def *flowdef.Flow) (*Graph, error) {
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flow definition: %w", err)
	}
	g := New()
	for _, data := range def.Vertices {
		if err := g.addVertex(data); err != nil {
			return nil, err
		}
	}
	for _, data := range def.Edges {
		if _, err := g.addEdge(data); err != nil {
			return nil, err
		}
	}
	g.rebuildMaps()
	return g, nil
}

// addVertex inserts a vertex without recomputing derived maps.
func (g *Graph) addVertex(data flowdef.VertexData) error {
	if data.ID == "" {
		return fmt.Errorf("vertex payload is missing an id")
	}
	if _, exists := g.vertices[data.ID]; exists {
		return fmt.Errorf("duplicate vertex id %q", data.ID)
	}
	g.vertices[data.ID] = newVertex(data)
	g.order = append(g.order, data.ID)
	return nil
}

// addEdge inserts an edge without recomputing derived maps. Both endpoints
// must already be indexed. Re-adding an identical edge returns the existing
// one.
func (g *Graph) addEdge(data flowdef.EdgeData) (*Edge, error) {
	if _, ok := g.vertices[data.Source]; !ok {
		return nil, fmt.Errorf("edge source vertex %q not found", data.Source)
	}
	if _, ok := g.vertices[data.Target]; !ok {
		return nil, fmt.Errorf("edge target vertex %q not found", data.Target)
	}
	if existing, ok := g.edges[data.Key()]; ok {
		return existing, nil
	}
	e := newEdge(data)
	g.edges[e.Key()] = e
	return e, nil
}

// AddVertex inserts a new vertex and refreshes the derived maps.
func (g *Graph) AddVertex(data flowdef.VertexData) (*Vertex, error) {
	if err := g.addVertex(data); err != nil {
		return nil, err
	}
	g.rebuildMaps()
	return g.vertices[data.ID], nil
}

// AddEdge inserts a new edge and refreshes the derived maps.
func (g *Graph) AddEdge(data flowdef.EdgeData) (*Edge, error) {
	e, err := g.addEdge(data)
	if err != nil {
		return nil, err
	}
	g.rebuildMaps()
	return e, nil
}

// RemoveVertex removes a vertex and every edge touching it, then refreshes
// the derived maps.
func (g *Graph) RemoveVertex(id string) error {
	if err := g.removeVertex(id); err != nil {
		return err
	}
	g.rebuildMaps()
	return nil
}

func (g *Graph) removeVertex(id string) error {
	if _, ok := g.vertices[id]; !ok {
		return fmt.Errorf("vertex %q not found", id)
	}
	delete(g.vertices, id)
	for i, oid := range g.order {
		if oid == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	for key, e := range g.edges {
		if e.Touches(id) {
			delete(g.edges, key)
		}
	}
	return nil
}

// removeEdgesOf drops every edge touching the vertex without a map rebuild.
func (g *Graph) removeEdgesOf(id string) {
	for key, e := range g.edges {
		if e.Touches(id) {
			delete(g.edges, key)
		}
	}
}

// GetVertex returns the vertex with the given id.
func (g *Graph) GetVertex(id string) (*Vertex, error) {
	v, ok := g.vertices[id]
	if !ok {
		return nil, fmt.Errorf("vertex %q not found", id)
	}
	return v, nil
}

// HasVertex reports whether the id is indexed.
func (g *Graph) HasVertex(id string) bool {
	_, ok := g.vertices[id]
	return ok
}

// Vertices returns the vertices in insertion order.
func (g *Graph) Vertices() []*Vertex {
	out := make([]*Vertex, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.vertices[id])
	}
	return out
}

// VertexIDs returns the vertex ids in insertion order.
func (g *Graph) VertexIDs() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Edges returns the edges sorted by key for deterministic iteration.
func (g *Graph) Edges() []*Edge {
	keys := make([]string, 0, len(g.edges))
	for key := range g.edges {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]*Edge, 0, len(keys))
	for _, key := range keys {
		out = append(out, g.edges[key])
	}
	return out
}

// EdgesOf returns the edges touching a vertex, sorted by key.
func (g *Graph) EdgesOf(id string) []*Edge {
	var out []*Edge
	for _, e := range g.Edges() {
		if e.Touches(id) {
			out = append(out, e)
		}
	}
	return out
}

// GetEdge returns the first edge from source to target, or nil.
func (g *Graph) GetEdge(sourceID, targetID string) *Edge {
	for _, e := range g.Edges() {
		if e.Source == sourceID && e.Target == targetID {
			return e
		}
	}
	return nil
}

// IncomingEdges returns the edges targeting a vertex, sorted by key.
func (g *Graph) IncomingEdges(id string) []*Edge {
	var out []*Edge
	for _, e := range g.Edges() {
		if e.Target == id {
			out = append(out, e)
		}
	}
	return out
}

// Predecessors returns the unique predecessor vertices of id.
func (g *Graph) Predecessors(id string) []*Vertex {
	return g.uniqueVertices(g.predecessorMap[id])
}

// Successors returns the unique successor vertices of id.
func (g *Graph) Successors(id string) []*Vertex {
	return g.uniqueVertices(g.successorMap[id])
}

// SuccessorIDs returns the unique successor ids of id, sorted.
func (g *Graph) SuccessorIDs(id string) []string {
	succ := g.Successors(id)
	out := make([]string, 0, len(succ))
	for _, v := range succ {
		out = append(out, v.ID())
	}
	sort.Strings(out)
	return out
}

// AllSuccessors returns the full successor closure of id, excluding the
// vertex itself. The traversal tolerates cycles.
func (g *Graph) AllSuccessors(id string) []*Vertex {
	visited := map[string]struct{}{id: {}}
	var out []*Vertex
	var walk func(vid string)
	walk = func(vid string) {
		for _, succ := range g.Successors(vid) {
			if _, seen := visited[succ.ID()]; seen {
				continue
			}
			visited[succ.ID()] = struct{}{}
			out = append(out, succ)
			walk(succ.ID())
		}
	}
	walk(id)
	return out
}

func (g *Graph) uniqueVertices(ids []string) []*Vertex {
	seen := make(map[string]struct{}, len(ids))
	var out []*Vertex
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if v, ok := g.vertices[id]; ok {
			out = append(out, v)
		}
	}
	return out
}

// rebuildMaps recomputes every derived structure from the edge set. Any
// mutation of vertices or edges must be followed by a call before the next
// scheduling pass.
func (g *Graph) rebuildMaps() {
	predecessorMap := make(map[string][]string, len(g.vertices))
	successorMap := make(map[string][]string, len(g.vertices))
	inDegree := make(map[string]int, len(g.vertices))

	for _, id := range g.order {
		inDegree[id] = 0
	}
	for _, e := range g.Edges() {
		predecessorMap[e.Target] = append(predecessorMap[e.Target], e.Source)
		successorMap[e.Source] = append(successorMap[e.Source], e.Target)
		inDegree[e.Target]++
	}

	parentChild := make(map[string][]string, len(g.vertices))
	for _, id := range g.order {
		children := make([]string, 0)
		seen := make(map[string]struct{})
		for _, succ := range successorMap[id] {
			if _, dup := seen[succ]; dup {
				continue
			}
			seen[succ] = struct{}{}
			children = append(children, succ)
		}
		parentChild[id] = children
	}

	g.predecessorMap = predecessorMap
	g.successorMap = successorMap
	g.inDegreeMap = inDegree
	g.parentChildMap = parentChild
	g.classifyVertices()
}

// classifyVertices refreshes the input/output/state/session id lists.
func (g *Graph) classifyVertices() {
	g.inputIDs = g.inputIDs[:0]
	g.outputIDs = g.outputIDs[:0]
	g.stateIDs = g.stateIDs[:0]
	g.sessionIDs = g.sessionIDs[:0]
	for _, id := range g.order {
		v := g.vertices[id]
		if v.Data.IsInput {
			g.inputIDs = append(g.inputIDs, id)
		}
		if v.Data.IsOutput {
			g.outputIDs = append(g.outputIDs, id)
		}
		if v.Data.IsState {
			g.stateIDs = append(g.stateIDs, id)
		}
		if v.Data.SessionAware {
			g.sessionIDs = append(g.sessionIDs, id)
		}
	}
}

// PredecessorMap returns a copy of the predecessor adjacency map.
func (g *Graph) PredecessorMap() map[string][]string {
	return copyAdjacency(g.predecessorMap)
}

// SuccessorMap returns a copy of the successor adjacency map.
func (g *Graph) SuccessorMap() map[string][]string {
	return copyAdjacency(g.successorMap)
}

// InDegreeMap returns a copy of the in-degree map.
func (g *Graph) InDegreeMap() map[string]int {
	out := make(map[string]int, len(g.inDegreeMap))
	for k, v := range g.inDegreeMap {
		out[k] = v
	}
	return out
}

// ParentChildMap returns a copy of the vertex to unique-successors map.
func (g *Graph) ParentChildMap() map[string][]string {
	return copyAdjacency(g.parentChildMap)
}

func copyAdjacency(m map[string][]string) map[string][]string {
	out := make(map[string][]string, len(m))
	for k, v := range m {
		cp := make([]string, len(v))
		copy(cp, v)
		out[k] = cp
	}
	return out
}

// InputIDs returns the ids of input vertices.
func (g *Graph) InputIDs() []string { return append([]string(nil), g.inputIDs...) }

// OutputIDs returns the ids of output vertices.
func (g *Graph) OutputIDs() []string { return append([]string(nil), g.outputIDs...) }

// StateIDs returns the ids of state listener vertices.
func (g *Graph) StateIDs() []string { return append([]string(nil), g.stateIDs...) }

// SessionIDs returns the ids of session-aware vertices.
func (g *Graph) SessionIDs() []string { return append([]string(nil), g.sessionIDs...) }

// IncrementRunCount bumps the number of runs performed on this graph.
func (g *Graph) IncrementRunCount() { g.runCount++ }

// RunCount returns the number of runs performed on this graph.
func (g *Graph) RunCount() int { return g.runCount }

// UpdateCount returns the number of incremental updates applied.
func (g *Graph) UpdateCount() int { return g.updateCount }

// AdjacencyFromEdges computes predecessor and successor maps for an
// arbitrary edge subset, independent of the graph's own caches. Used when
// reactivation merges a partial predecessor view into the run ledger.
func AdjacencyFromEdges(edges []*Edge) (predecessors, successors map[string][]string) {
	predecessors = make(map[string][]string)
	successors = make(map[string][]string)
	for _, e := range edges {
		predecessors[e.Target] = append(predecessors[e.Target], e.Source)
		successors[e.Source] = append(successors[e.Source], e.Target)
	}
	return predecessors, successors
}
