// Package template renders a text template against the values arriving on
// the vertex's input handles. Placeholders use {name} syntax, where name is
// the target handle the value arrived on.
package template

import (
	"context"
	"fmt"
	"strings"

	"github.com/weftlabs/weft/internal/component"
)

// Module implements the component.Module interface for this package.
type Module struct{}

func build(_ context.Context, in *component.BuildInput) (*component.Result, error) {
	tmpl, _ := in.Params["template"].(string)
	if tmpl == "" {
		return nil, fmt.Errorf("template param is required")
	}

	rendered := tmpl
	for handle, value := range in.Inputs {
		rendered = strings.ReplaceAll(rendered, "{"+handle+"}", fmt.Sprint(value))
	}
	for name, value := range in.Params {
		if name == "template" {
			continue
		}
		rendered = strings.ReplaceAll(rendered, "{"+name+"}", fmt.Sprint(value))
	}
	return &component.Result{Outputs: map[string]any{"text": rendered}}, nil
}

// Register registers the handler with the registry.
func (m *Module) Register(r *component.Registry) {
	r.Register(&component.Descriptor{
		Kind:        "template",
		DisplayName: "Template",
	}, func() component.Component { return component.Func(build) })
}
