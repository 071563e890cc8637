// Package trace defines the run lifecycle hook the engine notifies at run
// boundaries. Implementations can bridge to any tracing backend; the engine
// only guarantees Begin is called once per run and End exactly once with
// either the collected outputs or the failure.
package trace

import (
	"context"

	"github.com/weftlabs/weft/internal/ctxlog"
)

// Tracer observes run lifecycle events.
type Tracer interface {
	Begin(ctx context.Context, runID string)
	End(ctx context.Context, outputs map[string]any, err error)
}

// Nop is a Tracer that does nothing.
type Nop struct{}

// Begin implements Tracer.
func (Nop) Begin(context.Context, string) {}

// End implements Tracer.
func (Nop) End(context.Context, map[string]any, error) {}

// Slog logs run boundaries through the context logger.
type Slog struct{}

// Begin implements Tracer.
func (Slog) Begin(ctx context.Context, runID string) {
	ctxlog.FromContext(ctx).Info("Run started.", "runID", runID)
}

// End implements Tracer.
func (Slog) End(ctx context.Context, outputs map[string]any, err error) {
	logger := ctxlog.FromContext(ctx)
	if err != nil {
		logger.Error("Run finished with error.", "error", err)
		return
	}
	logger.Info("Run finished.", "outputs", len(outputs))
}

var (
	_ Tracer = Nop{}
	_ Tracer = Slog{}
)
