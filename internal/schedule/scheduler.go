package schedule

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/weftlabs/weft/internal/ctxlog"
	"github.com/weftlabs/weft/internal/graph"
)

// Config restricts a scheduling pass to a sub-flow.
type Config struct {
	// StartID schedules the vertex, its ancestry and everything downstream
	// of it. Mutually exclusive with StopID.
	StartID string
	// StopID schedules only the vertex and its ancestry, cutting the graph
	// at that frontier.
	StopID string
}

// Layers produces the ordered dependency layers for a graph, honoring an
// optional start/stop frontier. Every predecessor of a vertex lands in a
// strictly earlier layer. A residual cycle in the scheduled subset is an
// error rather than a silent omission.
func Layers(ctx context.Context, g *graph.Graph, cfg Config) ([][]string, error) {
	logger := ctxlog.FromContext(ctx)

	if cfg.StartID != "" && cfg.StopID != "" {
		return nil, fmt.Errorf("only one of start or stop vertex may be given")
	}

	subset := g.VertexIDs()
	filtered := false
	var err error
	switch {
	case cfg.StopID != "":
		subset, err = frontier(g, cfg.StopID, false)
		filtered = true
	case cfg.StartID != "":
		subset, err = frontier(g, cfg.StartID, true)
		filtered = true
	}
	if err != nil {
		return nil, err
	}
	logger.Debug("Scheduling vertex subset.", "total", len(g.VertexIDs()), "subset", len(subset), "filtered", filtered)

	if err := detectCycles(g, subset); err != nil {
		return nil, err
	}
	layers, err := layeredSort(g, subset, filtered)
	if err != nil {
		return nil, err
	}
	layers = refineLayers(layers, g.SuccessorMap())
	layers = sortByAvgBuildDuration(g, layers)
	layers = sortLayersByDependency(layers, g.PredecessorMap())

	logger.Debug("Scheduling complete.", "layers", len(layers))
	return layers, nil
}

// detectCycles runs a depth-first search over the subset with the classic
// three-color marking: permanent for fully visited vertices, temporary for
// the current recursion stack. Hitting a temporary vertex again is a cycle.
// The layered sort's predecessor pulling can otherwise drain a cyclic subset
// in a nonsensical order, so cycles must fail before it runs.
func detectCycles(g *graph.Graph, subset []string) error {
	inSubset := make(map[string]struct{}, len(subset))
	for _, id := range subset {
		inSubset[id] = struct{}{}
	}

	permanent := make(map[string]bool)
	temporary := make(map[string]bool)

	var cyclic []string
	cycleStart := ""
	var visit func(id string) bool
	visit = func(id string) bool {
		if permanent[id] {
			return false
		}
		if temporary[id] {
			cycleStart = id
			cyclic = append(cyclic, id)
			return true
		}
		temporary[id] = true
		for _, succ := range g.SuccessorIDs(id) {
			if _, ok := inSubset[succ]; !ok {
				continue
			}
			if visit(succ) {
				// Unwind only through the cycle members, not the path that
				// led into it.
				if cycleStart != "" && id != cycleStart {
					cyclic = append(cyclic, id)
				} else {
					cycleStart = ""
				}
				return true
			}
		}
		delete(temporary, id)
		permanent[id] = true
		return false
	}

	for _, id := range subset {
		if permanent[id] {
			continue
		}
		if visit(id) {
			sort.Strings(cyclic)
			return fmt.Errorf("cycle detected among vertices: %s", strings.Join(cyclic, ", "))
		}
	}
	return nil
}

// layeredSort runs the Kahn-style layered BFS. The queue starts from
// in-degree-zero vertices; when the pass is restricted to a filtered
// sub-flow, input vertices seed it instead, provided any exist in the
// subset. A neighbor whose in-degree is still positive has its unqueued
// predecessors pulled into the queue, so a filtered subgraph converges on
// the upstream vertices it needs.
func layeredSort(g *graph.Graph, subset []string, filtered bool) ([][]string, error) {
	inSubset := make(map[string]struct{}, len(subset))
	for _, id := range subset {
		inSubset[id] = struct{}{}
	}

	inDegree := g.InDegreeMap()
	successorMap := g.SuccessorMap()
	predecessorMap := g.PredecessorMap()

	var queue []string
	queued := make(map[string]struct{})
	push := func(id string) {
		if _, dup := queued[id]; dup {
			return
		}
		queued[id] = struct{}{}
		queue = append(queue, id)
	}

	seedInputs := false
	if filtered {
		for _, id := range subset {
			v, err := g.GetVertex(id)
			if err != nil {
				continue
			}
			if inDegree[id] == 0 && v.Data.IsInput {
				seedInputs = true
				break
			}
		}
	}
	for _, id := range subset {
		if inDegree[id] != 0 {
			continue
		}
		if seedInputs {
			v, err := g.GetVertex(id)
			if err != nil || !v.Data.IsInput {
				continue
			}
		}
		push(id)
	}

	var layers [][]string
	visited := make(map[string]struct{})
	for len(queue) > 0 {
		layerSize := len(queue)
		layer := make([]string, 0, layerSize)
		for i := 0; i < layerSize; i++ {
			id := queue[0]
			queue = queue[1:]
			delete(queued, id)
			visited[id] = struct{}{}
			layer = append(layer, id)

			for _, neighbor := range successorMap[id] {
				// Vertices filtered out of the subset are left for their
				// own run; their dependencies resolve there.
				if _, ok := inSubset[neighbor]; !ok {
					continue
				}
				inDegree[neighbor]--
				if inDegree[neighbor] == 0 {
					if _, seen := visited[neighbor]; !seen {
						push(neighbor)
					}
					continue
				}
				if inDegree[neighbor] > 0 {
					for _, pred := range predecessorMap[neighbor] {
						if _, seen := visited[pred]; seen {
							continue
						}
						push(pred)
					}
				}
			}
		}
		layers = append(layers, layer)
	}

	var undrained []string
	for _, id := range subset {
		if _, ok := visited[id]; !ok {
			undrained = append(undrained, id)
		}
	}
	if len(undrained) > 0 {
		sort.Strings(undrained)
		return nil, fmt.Errorf("cycle detected among vertices: %s", strings.Join(undrained, ", "))
	}
	return layers, nil
}

// refineLayers pushes each vertex as late as its consumers allow: the
// candidate layer is one before the earliest successor layer, and a vertex
// only ever moves later, never earlier. Built results are therefore held
// the minimum number of layers before being consumed.
func refineLayers(initial [][]string, successorMap map[string][]string) [][]string {
	vertexToLayer := make(map[string]int)
	for layerIndex, layer := range initial {
		for _, id := range layer {
			vertexToLayer[id] = layerIndex
		}
	}

	candidate := make(map[string]int)
	for id, successors := range successorMap {
		earliest := -1
		for _, succ := range successors {
			succLayer, ok := vertexToLayer[succ]
			if !ok {
				continue
			}
			if earliest == -1 || succLayer < earliest {
				earliest = succLayer
			}
		}
		if earliest == -1 {
			earliest = 0
		}
		target := earliest - 1
		if target < 0 {
			target = 0
		}
		candidate[id] = target
	}

	refined := make([][]string, len(initial))
	for layerIndex, layer := range initial {
		for _, id := range layer {
			target := candidate[id]
			if target > layerIndex {
				refined[target] = append(refined[target], id)
			} else {
				refined[layerIndex] = append(refined[layerIndex], id)
			}
		}
	}

	out := refined[:0]
	for _, layer := range refined {
		if len(layer) > 0 {
			out = append(out, layer)
		}
	}
	return out
}

// sortByAvgBuildDuration orders each layer cheapest-first by historical
// average build duration: a shortest-job-first tie-break that never changes
// layer membership.
func sortByAvgBuildDuration(g *graph.Graph, layers [][]string) [][]string {
	for _, layer := range layers {
		if len(layer) < 2 {
			continue
		}
		sort.SliceStable(layer, func(i, j int) bool {
			vi, erri := g.GetVertex(layer[i])
			vj, errj := g.GetVertex(layer[j])
			if erri != nil || errj != nil {
				return false
			}
			return vi.AvgBuildDuration() < vj.AvgBuildDuration()
		})
	}
	return layers
}

// sortLayersByDependency stable-sorts each layer so that when two members
// have a dependency edge between them, possible after dynamic reactivation,
// the dependency comes first. Relative order of unrelated members is kept.
func sortLayersByDependency(layers [][]string, predecessorMap map[string][]string) [][]string {
	for i, layer := range layers {
		layers[i] = orderLayerByDependency(layer, predecessorMap)
	}
	return layers
}

func orderLayerByDependency(layer []string, predecessorMap map[string][]string) []string {
	if len(layer) < 2 {
		return layer
	}
	inLayer := make(map[string]struct{}, len(layer))
	for _, id := range layer {
		inLayer[id] = struct{}{}
	}

	remaining := make(map[string]int, len(layer))
	for _, id := range layer {
		count := 0
		seen := make(map[string]struct{})
		for _, pred := range predecessorMap[id] {
			if _, ok := inLayer[pred]; !ok {
				continue
			}
			if _, dup := seen[pred]; dup {
				continue
			}
			seen[pred] = struct{}{}
			count++
		}
		remaining[id] = count
	}

	out := make([]string, 0, len(layer))
	placed := make(map[string]struct{}, len(layer))
	for len(out) < len(layer) {
		progressed := false
		for _, id := range layer {
			if _, done := placed[id]; done {
				continue
			}
			if remaining[id] > 0 {
				continue
			}
			placed[id] = struct{}{}
			out = append(out, id)
			progressed = true
			for _, other := range layer {
				if _, done := placed[other]; done {
					continue
				}
				for _, pred := range predecessorMap[other] {
					if pred == id {
						remaining[other]--
						break
					}
				}
			}
		}
		// A dependency cycle inside one layer cannot happen on a clean
		// sort, but reactivation merges can produce one; keep original
		// order for whatever is left.
		if !progressed {
			for _, id := range layer {
				if _, done := placed[id]; !done {
					out = append(out, id)
				}
			}
			break
		}
	}
	return out
}
