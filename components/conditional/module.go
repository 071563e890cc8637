// Package conditional routes a flow down one of two arms. The comparison
// result picks the surviving output handle; the other arm's successors are
// pruned for the rest of the run.
package conditional

import (
	"context"
	"fmt"
	"strings"

	"github.com/weftlabs/weft/internal/component"
)

// Module implements the component.Module interface for this package.
type Module struct{}

func build(_ context.Context, in *component.BuildInput) (*component.Result, error) {
	left := in.Inputs["left"]
	if left == nil {
		left = in.Params["left"]
	}
	right := in.Inputs["right"]
	if right == nil {
		right = in.Params["right"]
	}
	operator, _ := in.Params["operator"].(string)
	if operator == "" {
		operator = "equals"
	}

	matched, err := compare(left, right, operator)
	if err != nil {
		return nil, err
	}

	if in.Runtime != nil {
		if matched {
			in.Runtime.DeactivateBranch("false")
		} else {
			in.Runtime.DeactivateBranch("true")
		}
	}

	value := left
	return &component.Result{
		Outputs: map[string]any{
			"true":    value,
			"false":   value,
			"matched": matched,
		},
	}, nil
}

func compare(left, right any, operator string) (bool, error) {
	l := fmt.Sprint(left)
	r := fmt.Sprint(right)
	switch operator {
	case "equals":
		return l == r, nil
	case "not_equals":
		return l != r, nil
	case "contains":
		return strings.Contains(l, r), nil
	case "starts_with":
		return strings.HasPrefix(l, r), nil
	case "ends_with":
		return strings.HasSuffix(l, r), nil
	default:
		return false, fmt.Errorf("unknown operator %q", operator)
	}
}

// Register registers the handler with the registry.
func (m *Module) Register(r *component.Registry) {
	r.Register(&component.Descriptor{
		Kind:        "conditional",
		DisplayName: "Conditional Router",
	}, func() component.Component { return component.Func(build) })
}
