package flowdef

// VertexData is the definition payload for a single vertex. It carries
// everything the engine needs to know about a vertex before the component
// layer gets involved: identity, the component kind, raw parameters and the
// classification flags that drive scheduling and input/output binding.
type VertexData struct {
	ID          string         `yaml:"id" json:"id"`
	DisplayName string         `yaml:"display_name,omitempty" json:"display_name,omitempty"`
	Kind        string         `yaml:"kind" json:"kind"`
	Params      map[string]any `yaml:"params,omitempty" json:"params,omitempty"`

	// Frozen pins the vertex's previously built result across reruns and
	// incremental updates.
	Frozen bool `yaml:"frozen,omitempty" json:"frozen,omitempty"`

	// Classification flags. Loaders may leave them unset and let the
	// component registry fill them in from the kind's descriptor.
	IsInput      bool `yaml:"is_input,omitempty" json:"is_input,omitempty"`
	IsOutput     bool `yaml:"is_output,omitempty" json:"is_output,omitempty"`
	IsState      bool `yaml:"is_state,omitempty" json:"is_state,omitempty"`
	SessionAware bool `yaml:"session_aware,omitempty" json:"session_aware,omitempty"`

	// ListenName is the shared-state name pattern a listener vertex watches.
	// Matching is by substring, not equality.
	ListenName string `yaml:"listen,omitempty" json:"listen,omitempty"`

	// ParentID names the enclosing group vertex for nested sub-graphs.
	ParentID         string `yaml:"parent_id,omitempty" json:"parent_id,omitempty"`
	ParentIsTopLevel bool   `yaml:"parent_is_top_level,omitempty" json:"parent_is_top_level,omitempty"`
}

// EdgeData is the definition payload for a directed edge. Handles name the
// logical output of the source and the logical input of the target the edge
// carries; either may be empty.
type EdgeData struct {
	Source       string `yaml:"source" json:"source"`
	Target       string `yaml:"target" json:"target"`
	SourceHandle string `yaml:"source_handle,omitempty" json:"source_handle,omitempty"`
	TargetHandle string `yaml:"target_handle,omitempty" json:"target_handle,omitempty"`
}

// Flow is a complete flow definition: the unit the loaders produce and the
// graph builder consumes.
type Flow struct {
	Name     string       `yaml:"name,omitempty" json:"name,omitempty"`
	Vertices []VertexData `yaml:"vertices" json:"vertices"`
	Edges    []EdgeData   `yaml:"edges" json:"edges"`
}

// Equal reports whether two vertex payloads are equivalent definitions.
// Params are compared structurally.
func (v VertexData) Equal(other VertexData) bool {
	if v.ID != other.ID ||
		v.DisplayName != other.DisplayName ||
		v.Kind != other.Kind ||
		v.Frozen != other.Frozen ||
		v.IsInput != other.IsInput ||
		v.IsOutput != other.IsOutput ||
		v.IsState != other.IsState ||
		v.SessionAware != other.SessionAware ||
		v.ListenName != other.ListenName ||
		v.ParentID != other.ParentID ||
		v.ParentIsTopLevel != other.ParentIsTopLevel {
		return false
	}
	return paramsEqual(v.Params, other.Params)
}

func paramsEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !valueEqual(av, bv) {
			return false
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		return ok && paramsEqual(av, bv)
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valueEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// Key returns the deduplication key of an edge: two edges with the same
// endpoints and handle data are one logical edge.
func (e EdgeData) Key() string {
	return e.Source + "\x00" + e.SourceHandle + "\x00" + e.Target + "\x00" + e.TargetHandle
}
