package schedule

import (
	"fmt"
	"sort"

	"github.com/weftlabs/weft/internal/graph"
)

// frontier cuts the graph at a vertex. With isStart false the result is the
// vertex and everything it transitively depends on: a "run up to here" cut
// that excludes the vertex's downstream closure. With isStart true the
// downstream closure is included instead, together with the ancestry each
// downstream vertex needs.
func frontier(g *graph.Graph, id string, isStart bool) ([]string, error) {
	if !g.HasVertex(id) {
		return nil, fmt.Errorf("vertex %q not found", id)
	}

	visited := make(map[string]struct{})
	excluded := make(map[string]struct{})
	stack := []string{id}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[current]; seen {
			continue
		}
		if _, skip := excluded[current]; skip {
			continue
		}
		visited[current] = struct{}{}

		// Ancestry is always needed: anything feeding a kept vertex runs.
		for _, pred := range g.Predecessors(current) {
			stack = append(stack, pred.ID())
		}

		if current != id {
			continue
		}
		for _, succ := range g.Successors(id) {
			if isStart {
				stack = append(stack, succ.ID())
			} else {
				excluded[succ.ID()] = struct{}{}
			}
			for _, deep := range g.AllSuccessors(succ.ID()) {
				if isStart {
					stack = append(stack, deep.ID())
				} else {
					excluded[deep.ID()] = struct{}{}
				}
			}
		}
	}

	out := make([]string, 0, len(visited))
	for vid := range visited {
		out = append(out, vid)
	}
	sort.Strings(out)
	return out, nil
}
