package hcldef

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/weftlabs/weft/internal/ctxlog"
	"github.com/weftlabs/weft/internal/flowdef"
)

// hclFlowFile is the top-level structure of a flow file for decoding.
type hclFlowFile struct {
	Name     string       `hcl:"name,optional"`
	Vertices []*hclVertex `hcl:"vertex,block"`
	Edges    []*hclEdge   `hcl:"edge,block"`
}

// hclVertex is a `vertex "kind" "name"` block. The vertex id is derived as
// kind.name, so ids stay stable across re-parses of the same file.
type hclVertex struct {
	Kind         string     `hcl:"kind,label"`
	Name         string     `hcl:"name,label"`
	DisplayName  string     `hcl:"display_name,optional"`
	Frozen       bool       `hcl:"frozen,optional"`
	IsInput      bool       `hcl:"is_input,optional"`
	IsOutput     bool       `hcl:"is_output,optional"`
	IsState      bool       `hcl:"is_state,optional"`
	SessionAware bool       `hcl:"session_aware,optional"`
	Listen       string     `hcl:"listen,optional"`
	Params       *hclParams `hcl:"params,block"`
}

// hclParams carries the free-form parameter attributes of a vertex.
type hclParams struct {
	Body hcl.Body `hcl:",remain"`
}

// hclEdge is an `edge` block.
type hclEdge struct {
	Source       string `hcl:"source"`
	Target       string `hcl:"target"`
	SourceHandle string `hcl:"source_handle,optional"`
	TargetHandle string `hcl:"target_handle,optional"`
}

// Load parses an HCL flow file into a validated flow definition.
func Load(ctx context.Context, path string) (*flowdef.Flow, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading HCL flow definition.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing HCL file %s: %w", path, diags)
	}
	flow, err := decodeFlow(file.Body)
	if err != nil {
		return nil, fmt.Errorf("decoding HCL file %s: %w", path, err)
	}
	if err := flow.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flow definition in %s: %w", path, err)
	}
	logger.Debug("HCL flow definition loaded.", "name", flow.Name, "vertices", len(flow.Vertices), "edges", len(flow.Edges))
	return flow, nil
}

// Parse decodes an HCL flow definition from a byte slice. The filename only
// labels diagnostics.
func Parse(filename string, src []byte) (*flowdef.Flow, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing HCL: %w", diags)
	}
	flow, err := decodeFlow(file.Body)
	if err != nil {
		return nil, err
	}
	if err := flow.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flow definition: %w", err)
	}
	return flow, nil
}

func decodeFlow(body hcl.Body) (*flowdef.Flow, error) {
	var parsed hclFlowFile
	if diags := gohcl.DecodeBody(body, nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("decoding flow body: %w", diags)
	}

	flow := &flowdef.Flow{Name: parsed.Name}
	for _, v := range parsed.Vertices {
		data, err := vertexData(v)
		if err != nil {
			return nil, err
		}
		flow.Vertices = append(flow.Vertices, data)
	}
	for _, e := range parsed.Edges {
		flow.Edges = append(flow.Edges, flowdef.EdgeData{
			Source:       e.Source,
			Target:       e.Target,
			SourceHandle: e.SourceHandle,
			TargetHandle: e.TargetHandle,
		})
	}
	return flow, nil
}

func vertexData(v *hclVertex) (flowdef.VertexData, error) {
	data := flowdef.VertexData{
		ID:           v.Kind + "." + v.Name,
		DisplayName:  v.DisplayName,
		Kind:         v.Kind,
		Frozen:       v.Frozen,
		IsInput:      v.IsInput,
		IsOutput:     v.IsOutput,
		IsState:      v.IsState,
		SessionAware: v.SessionAware,
		ListenName:   v.Listen,
	}
	if v.Params != nil {
		params, err := decodeParams(v.Params.Body)
		if err != nil {
			return flowdef.VertexData{}, fmt.Errorf("vertex %s: %w", data.ID, err)
		}
		data.Params = params
	}
	return data, nil
}

// decodeParams evaluates every attribute of the params block into a native
// Go value. Expressions are evaluated without a context, so only literals
// and constant expressions are allowed.
func decodeParams(body hcl.Body) (map[string]any, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("reading params: %w", diags)
	}
	params := make(map[string]any, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("evaluating param %q: %w", name, diags)
		}
		goVal, err := ctyToGo(val)
		if err != nil {
			return nil, fmt.Errorf("converting param %q: %w", name, err)
		}
		params[name] = goVal
	}
	return params, nil
}
