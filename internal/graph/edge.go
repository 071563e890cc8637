package graph

import "github.com/weftlabs/weft/internal/flowdef"

// Edge is a directed dependency between two vertices, optionally carrying a
// named source and target handle. Edges are value objects deduplicated by
// their full endpoint-and-handle key.
type Edge struct {
	Source       string
	Target       string
	SourceHandle string
	TargetHandle string
}

func newEdge(data flowdef.EdgeData) *Edge {
	return &Edge{
		Source:       data.Source,
		Target:       data.Target,
		SourceHandle: data.SourceHandle,
		TargetHandle: data.TargetHandle,
	}
}

// Key returns the deduplication key of the edge.
func (e *Edge) Key() string {
	return e.Data().Key()
}

// Data returns the edge as a definition payload.
func (e *Edge) Data() flowdef.EdgeData {
	return flowdef.EdgeData{
		Source:       e.Source,
		Target:       e.Target,
		SourceHandle: e.SourceHandle,
		TargetHandle: e.TargetHandle,
	}
}

// Touches reports whether the edge has the given vertex as an endpoint.
func (e *Edge) Touches(vertexID string) bool {
	return e.Source == vertexID || e.Target == vertexID
}
