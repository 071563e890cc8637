package engine

import (
	"context"
	"strings"
)

// InputSet is one batch of input values for a run. Components and Type
// narrow which input vertices receive the values; empty means all of them.
type InputSet struct {
	Values map[string]any `yaml:"values"`
	// Components filters target vertices by id or display name.
	Components []string `yaml:"components,omitempty"`
	// Type filters target vertices by a substring of their kind, "any"
	// matches everything.
	Type string `yaml:"type,omitempty"`
}

// RunOptions configures one Run call.
type RunOptions struct {
	// SessionID is propagated to every session-aware vertex.
	SessionID string
	// Outputs filters which vertices' results are collected, by id or
	// display name. Empty collects every output vertex.
	Outputs []string
	// StartID and StopID bound the executed frontier; mutually exclusive.
	StartID string
	StopID  string
}

// RunOutputs is the outcome of one input set's execution.
type RunOutputs struct {
	// Inputs echoes the values that were applied.
	Inputs map[string]any `yaml:"inputs,omitempty"`
	// Outputs maps vertex id to its collected output values.
	Outputs map[string]any `yaml:"outputs"`
}

// Run executes the flow once per input set, sequentially, and returns the
// collected outputs in input order. With no input sets the flow runs once
// as-is.
func (e *Engine) Run(ctx context.Context, inputs []InputSet, opts RunOptions) ([]RunOutputs, error) {
	if len(inputs) == 0 {
		inputs = []InputSet{{}}
	}
	results := make([]RunOutputs, 0, len(inputs))
	for _, in := range inputs {
		e.applyInputs(in)
		e.applySession(opts.SessionID)
		if err := e.Process(ctx, opts.StartID, opts.StopID); err != nil {
			return nil, err
		}
		results = append(results, RunOutputs{
			Inputs:  in.Values,
			Outputs: e.collectOutputs(opts.Outputs),
		})
	}
	return results, nil
}

// applyInputs overwrites the params of the matching input vertices with the
// set's values.
func (e *Engine) applyInputs(in InputSet) {
	if len(in.Values) == 0 {
		return
	}
	for _, id := range e.graph.InputIDs() {
		v, err := e.graph.GetVertex(id)
		if err != nil {
			continue
		}
		if len(in.Components) > 0 && !matchesAny(in.Components, id, v.DisplayName()) {
			continue
		}
		if in.Type != "" && in.Type != "any" &&
			!strings.Contains(strings.ToLower(v.Kind()), strings.ToLower(in.Type)) {
			continue
		}
		v.UpdateRawParams(in.Values, true)
	}
}

// applySession records the session and pushes it into every session-aware
// vertex's params.
func (e *Engine) applySession(sessionID string) {
	e.sessionID = sessionID
	if sessionID == "" {
		return
	}
	values := map[string]any{"session_id": sessionID}
	for _, id := range e.graph.SessionIDs() {
		if v, err := e.graph.GetVertex(id); err == nil {
			v.UpdateRawParams(values, true)
		}
	}
}
