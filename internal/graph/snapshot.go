package graph

import (
	"fmt"

	"github.com/weftlabs/weft/internal/component"
	"github.com/weftlabs/weft/internal/flowdef"
)

// VertexSnapshot is the persistable state of one vertex: its definition
// payload plus the mutable lifecycle fields worth carrying across processes.
type VertexSnapshot struct {
	Data      flowdef.VertexData `yaml:"data"`
	Built     bool               `yaml:"built,omitempty"`
	Result    *component.Result  `yaml:"result,omitempty"`
	Artifacts map[string]any     `yaml:"artifacts,omitempty"`
	Inactive  bool               `yaml:"inactive,omitempty"`
}

// Snapshot is the stable, service-handle-free representation of a graph.
// Live collaborators (component registry, cache, tracer) are re-acquired on
// restore.
type Snapshot struct {
	Vertices    []VertexSnapshot   `yaml:"vertices"`
	Edges       []flowdef.EdgeData `yaml:"edges"`
	RunCount    int                `yaml:"run_count,omitempty"`
	UpdateCount int                `yaml:"update_count,omitempty"`
}

// Snapshot captures the current graph state.
func (g *Graph) Snapshot() *Snapshot {
	snap := &Snapshot{
		RunCount:    g.runCount,
		UpdateCount: g.updateCount,
	}
	for _, v := range g.Vertices() {
		snap.Vertices = append(snap.Vertices, VertexSnapshot{
			Data:      cloneVertexData(v.Data),
			Built:     v.Built,
			Result:    v.Result,
			Artifacts: v.Artifacts,
			Inactive:  !v.IsActive(),
		})
	}
	for _, e := range g.Edges() {
		snap.Edges = append(snap.Edges, e.Data())
	}
	return snap
}

// FromSnapshot rebuilds a graph from its snapshot form, including built
// results and activation states.
func FromSnapshot(snap *Snapshot) (*Graph, error) {
	g := New()
	for _, vs := range snap.Vertices {
		if err := g.addVertex(vs.Data); err != nil {
			return nil, fmt.Errorf("restoring snapshot: %w", err)
		}
		v := g.vertices[vs.Data.ID]
		v.Built = vs.Built
		v.Result = vs.Result
		v.Artifacts = vs.Artifacts
		if vs.Inactive {
			v.SetState(StateInactive)
		}
	}
	for _, ed := range snap.Edges {
		if _, err := g.addEdge(ed); err != nil {
			return nil, fmt.Errorf("restoring snapshot: %w", err)
		}
	}
	g.rebuildMaps()
	g.runCount = snap.RunCount
	g.updateCount = snap.UpdateCount
	return g, nil
}
