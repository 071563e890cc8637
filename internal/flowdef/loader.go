package flowdef

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/weftlabs/weft/internal/ctxlog"
)

// Parse decodes a flow definition from YAML or JSON bytes. JSON is a subset
// of YAML, so a single decoder covers both authoring formats.
func Parse(data []byte) (*Flow, error) {
	var flow Flow
	if err := yaml.Unmarshal(data, &flow); err != nil {
		return nil, fmt.Errorf("decoding flow definition: %w", err)
	}
	if err := flow.Validate(); err != nil {
		return nil, err
	}
	return &flow, nil
}

// Load reads and decodes a flow definition file.
func Load(ctx context.Context, path string) (*Flow, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading flow definition.", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading flow definition %s: %w", path, err)
	}
	flow, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	logger.Debug("Flow definition loaded.", "vertices", len(flow.Vertices), "edges", len(flow.Edges))
	return flow, nil
}

// Validate checks the definition for structural problems that must fail
// before graph construction: missing identities and duplicate vertex ids.
// Dangling edge endpoints are rejected again by the graph builder; checking
// here gives the author an error tied to the definition, not the model.
func (f *Flow) Validate() error {
	seen := make(map[string]struct{}, len(f.Vertices))
	for i, v := range f.Vertices {
		if v.ID == "" {
			return fmt.Errorf("vertex at index %d has no id", i)
		}
		if v.Kind == "" {
			return fmt.Errorf("vertex %q has no kind", v.ID)
		}
		if _, dup := seen[v.ID]; dup {
			return fmt.Errorf("duplicate vertex id %q", v.ID)
		}
		seen[v.ID] = struct{}{}
	}
	for _, e := range f.Edges {
		if e.Source == "" || e.Target == "" {
			return fmt.Errorf("edge %s -> %s has an empty endpoint", e.Source, e.Target)
		}
		if _, ok := seen[e.Source]; !ok {
			return fmt.Errorf("edge source %q not found among vertices", e.Source)
		}
		if _, ok := seen[e.Target]; !ok {
			return fmt.Errorf("edge target %q not found among vertices", e.Target)
		}
	}
	return nil
}
