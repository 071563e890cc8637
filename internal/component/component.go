package component

import "context"

// Runtime is the slice of engine behavior a component may call back into
// while building: shared-state access and branch control. The engine binds
// an implementation per vertex so state writes carry the caller identity.
type Runtime interface {
	// GetState returns the named shared state record, if present.
	GetState(name string) (any, bool)
	// UpdateState replaces the named shared state record and reactivates
	// matching listener vertices.
	UpdateState(name string, value any)
	// AppendState appends to the named shared state record and reactivates
	// matching listener vertices.
	AppendState(name string, value any)
	// DeactivateBranch prunes the successor branch reachable through the
	// named output handle of the calling vertex.
	DeactivateBranch(outputName string)
}

// BuildInput carries everything a component receives for one build.
type BuildInput struct {
	// VertexID is the id of the vertex being built.
	VertexID string
	// Params are the vertex's derived parameters.
	Params map[string]any
	// Inputs maps target handle names to upstream output values.
	Inputs map[string]any
	// SessionID is the logical session this run belongs to, if any.
	SessionID string
	// Runtime gives access to shared state and branch control.
	Runtime Runtime
}

// Result is the outcome of a successful build.
type Result struct {
	// Outputs maps output handle names to produced values.
	Outputs map[string]any `yaml:"outputs"`
	// Artifacts holds auxiliary build products (previews, logs, files).
	Artifacts map[string]any `yaml:"artifacts,omitempty"`
	// UsedFrozen is true when the result was restored from the cache
	// instead of rebuilt.
	UsedFrozen bool `yaml:"used_frozen,omitempty"`
}

// Component is one unit of computation in the graph.
type Component interface {
	Build(ctx context.Context, in *BuildInput) (*Result, error)
}

// Func adapts a plain function to the Component interface.
type Func func(ctx context.Context, in *BuildInput) (*Result, error)

// Build implements Component.
func (f Func) Build(ctx context.Context, in *BuildInput) (*Result, error) {
	return f(ctx, in)
}

// Descriptor declares the traits of a component kind. The flags mirror the
// vertex classification lists the graph maintains.
type Descriptor struct {
	Kind         string
	DisplayName  string
	IsInput      bool
	IsOutput     bool
	IsState      bool
	SessionAware bool
}

// Factory constructs a fresh component instance for a vertex.
type Factory func() Component
