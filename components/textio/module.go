// Package textio provides the text entry and exit points of a flow: the
// text_input kind receives run input values, the text_output kind surfaces
// whatever text reaches it as a collected run output.
package textio

import (
	"context"
	"fmt"

	"github.com/weftlabs/weft/internal/component"
)

// Module implements the component.Module interface for this package.
type Module struct{}

// buildInput emits the configured text as the vertex output. Run input
// values land in the params before the build, so whatever the caller sent
// wins over the authored default.
func buildInput(_ context.Context, in *component.BuildInput) (*component.Result, error) {
	text, _ := in.Params["text"].(string)
	return &component.Result{Outputs: map[string]any{"text": text}}, nil
}

// buildOutput passes the incoming text through as the vertex output. With no
// wired input it falls back to the configured text param.
func buildOutput(_ context.Context, in *component.BuildInput) (*component.Result, error) {
	value, ok := in.Inputs["text"]
	if !ok {
		value = in.Params["text"]
	}
	if value == nil {
		return nil, fmt.Errorf("text_output has no wired input and no text param")
	}
	return &component.Result{Outputs: map[string]any{"text": value}}, nil
}

// Register registers both kinds with the registry.
func (m *Module) Register(r *component.Registry) {
	r.Register(&component.Descriptor{
		Kind:        "text_input",
		DisplayName: "Text Input",
		IsInput:     true,
	}, func() component.Component { return component.Func(buildInput) })

	r.Register(&component.Descriptor{
		Kind:        "text_output",
		DisplayName: "Text Output",
		IsOutput:    true,
	}, func() component.Component { return component.Func(buildOutput) })
}
