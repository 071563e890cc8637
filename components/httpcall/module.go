// Package httpcall performs an HTTP request as a flow vertex. The URL and
// method come from params; a wired "body" input becomes the request body.
package httpcall

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"resty.dev/v3"

	"github.com/weftlabs/weft/internal/component"
	"github.com/weftlabs/weft/internal/ctxlog"
)

// Module implements the component.Module interface for this package.
type Module struct{}

// Comp carries the resty client so tests can point it at a local server.
type Comp struct {
	Client *resty.Client
}

// Build implements component.Component.
func (c *Comp) Build(ctx context.Context, in *component.BuildInput) (*component.Result, error) {
	logger := ctxlog.FromContext(ctx)

	url, _ := in.Params["url"].(string)
	if override, ok := in.Inputs["url"].(string); ok && override != "" {
		url = override
	}
	if url == "" {
		return nil, fmt.Errorf("url param is required")
	}
	method, _ := in.Params["method"].(string)
	if method == "" {
		method = http.MethodGet
	}

	client := c.Client
	if client == nil {
		client = resty.New().SetTimeout(30 * time.Second)
		defer client.Close()
	}

	logger.Debug("Making HTTP request.", "method", method, "url", url)
	req := client.R().SetContext(ctx)
	if body, ok := in.Inputs["body"]; ok {
		req.SetBody(body)
	}
	if headers, ok := in.Params["headers"].(map[string]any); ok {
		for name, value := range headers {
			req.SetHeader(name, fmt.Sprint(value))
		}
	}

	resp, err := req.Execute(method, url)
	if err != nil {
		return nil, fmt.Errorf("executing %s %s: %w", method, url, err)
	}
	logger.Debug("Received HTTP response.", "status", resp.Status())

	return &component.Result{
		Outputs: map[string]any{
			"status_code": resp.StatusCode(),
			"body":        resp.String(),
		},
	}, nil
}

// Register registers the handler with the registry.
func (m *Module) Register(r *component.Registry) {
	r.Register(&component.Descriptor{
		Kind:        "http_call",
		DisplayName: "HTTP Call",
	}, func() component.Component { return &Comp{} })
}
