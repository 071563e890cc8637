package graph

import "fmt"

// MarkAll sets the activation state of every vertex.
func (g *Graph) MarkAll(state VertexState) {
	for _, v := range g.vertices {
		v.SetState(state)
	}
}

// MarkVertex sets the activation state of one vertex.
func (g *Graph) MarkVertex(id string, state VertexState) error {
	v, ok := g.vertices[id]
	if !ok {
		return fmt.Errorf("vertex %q not found", id)
	}
	v.SetState(state)
	return nil
}

// MarkBranch marks a vertex and its successor closure with the given state
// and returns the marked ids. When outputName is non-empty, only successors
// reachable through edges whose source handle matches it are descended into;
// the filter applies at the branch root only, so a conditional can prune one
// of its output arms without shielding deeper reconvergent vertices.
func (g *Graph) MarkBranch(id string, state VertexState, outputName string) ([]string, error) {
	root, ok := g.vertices[id]
	if !ok {
		return nil, fmt.Errorf("vertex %q not found", id)
	}

	visited := make(map[string]struct{})
	var marked []string
	mark := func(v *Vertex) {
		v.SetState(state)
		marked = append(marked, v.ID())
	}

	var walk func(vid string)
	walk = func(vid string) {
		if _, seen := visited[vid]; seen {
			return
		}
		visited[vid] = struct{}{}
		for _, childID := range g.parentChildMap[vid] {
			if vid == id && outputName != "" {
				edge := g.GetEdge(vid, childID)
				if edge != nil && edge.SourceHandle != outputName {
					continue
				}
			}
			if child, ok := g.vertices[childID]; ok {
				mark(child)
			}
			walk(childID)
		}
	}

	mark(root)
	walk(id)
	return marked, nil
}

// InactiveIDs returns the ids of vertices currently marked inactive, in
// insertion order.
func (g *Graph) InactiveIDs() []string {
	var out []string
	for _, id := range g.order {
		if !g.vertices[id].IsActive() {
			out = append(out, id)
		}
	}
	return out
}
