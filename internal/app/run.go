package app

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/weftlabs/weft/internal/ctxlog"
	"github.com/weftlabs/weft/internal/engine"
	"github.com/weftlabs/weft/internal/graph"
)

// Run executes the configured flow once and prints the collected outputs as
// YAML to the application writer.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	flow, err := loadFlow(ctx, a.config.FlowPath)
	if err != nil {
		return fmt.Errorf("failed to load flow: %w", err)
	}
	a.logger.Debug("Flow definition loaded.", "name", flow.Name, "vertices", len(flow.Vertices))

	g, err := graph.FromDefinition(flow)
	if err != nil {
		return fmt.Errorf("failed to build graph: %w", err)
	}
	a.logger.Debug("Graph built.", "vertices", len(g.VertexIDs()), "edges", len(g.Edges()))

	eng := engine.New(g, engine.Config{
		Registry: a.registry,
		FlowID:   flow.Name,
	})

	a.logger.Info("Starting flow execution.", "flow", flow.Name)
	results, err := eng.Run(ctx, nil, engine.RunOptions{
		SessionID: a.config.SessionID,
		Outputs:   a.config.Outputs,
		StartID:   a.config.StartID,
		StopID:    a.config.StopID,
	})
	if err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	a.logger.Info("Flow execution finished.", "runID", eng.RunID())

	for _, res := range results {
		out, err := yaml.Marshal(res.Outputs)
		if err != nil {
			return fmt.Errorf("failed to encode outputs: %w", err)
		}
		if _, err := a.outW.Write(out); err != nil {
			return fmt.Errorf("failed to write outputs: %w", err)
		}
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}
