// Package statenode provides the shared-state vertices of a flow: notify
// writes a named state record, listen reads one. A listen vertex declares the
// state name it watches, so a notify elsewhere in the graph reactivates it
// mid-run.
package statenode

import (
	"context"
	"fmt"

	"github.com/weftlabs/weft/internal/component"
)

// Module implements the component.Module interface for this package.
type Module struct{}

// buildNotify writes the incoming value under the configured state name. With
// append set, values accumulate into a list instead of replacing each other.
func buildNotify(_ context.Context, in *component.BuildInput) (*component.Result, error) {
	name, _ := in.Params["name"].(string)
	if name == "" {
		return nil, fmt.Errorf("name param is required")
	}
	value, ok := in.Inputs["value"]
	if !ok {
		value = in.Params["value"]
	}

	if in.Runtime != nil {
		if doAppend, _ := in.Params["append"].(bool); doAppend {
			in.Runtime.AppendState(name, value)
		} else {
			in.Runtime.UpdateState(name, value)
		}
	}
	return &component.Result{Outputs: map[string]any{"value": value}}, nil
}

// buildListen reads the configured state name. A missing record is not an
// error; downstream vertices see a nil value.
func buildListen(_ context.Context, in *component.BuildInput) (*component.Result, error) {
	name, _ := in.Params["name"].(string)
	if name == "" {
		return nil, fmt.Errorf("name param is required")
	}
	var value any
	if in.Runtime != nil {
		value, _ = in.Runtime.GetState(name)
	}
	return &component.Result{Outputs: map[string]any{"value": value}}, nil
}

// Register registers both kinds with the registry.
func (m *Module) Register(r *component.Registry) {
	r.Register(&component.Descriptor{
		Kind:        "notify",
		DisplayName: "Notify",
	}, func() component.Component { return component.Func(buildNotify) })

	r.Register(&component.Descriptor{
		Kind:        "listen",
		DisplayName: "Listen",
		IsState:     true,
	}, func() component.Component { return component.Func(buildListen) })
}
