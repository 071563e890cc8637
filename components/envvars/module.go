// Package envvars exposes the process environment to a flow, optionally
// filtered by a key prefix.
package envvars

import (
	"context"
	"os"
	"strings"

	"github.com/weftlabs/weft/internal/component"
)

// Module implements the component.Module interface for this package.
type Module struct{}

func build(_ context.Context, in *component.BuildInput) (*component.Result, error) {
	prefix, _ := in.Params["prefix"].(string)

	envMap := make(map[string]any)
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) != 2 {
			continue
		}
		if prefix != "" && !strings.HasPrefix(pair[0], prefix) {
			continue
		}
		envMap[pair[0]] = pair[1]
	}
	return &component.Result{Outputs: map[string]any{"all": envMap}}, nil
}

// Register registers the handler with the registry.
func (m *Module) Register(r *component.Registry) {
	r.Register(&component.Descriptor{
		Kind:        "env_vars",
		DisplayName: "Environment Variables",
	}, func() component.Component { return component.Func(build) })
}
