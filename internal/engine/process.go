package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/weftlabs/weft/internal/ctxlog"
	"github.com/weftlabs/weft/internal/graph"
)

// Process runs the whole flow: it sorts the graph, then executes waves of
// concurrent builds until no vertex is runnable. Each wave after the first is
// re-derived from live completion state, not replayed from the static layers,
// so reactivation and pruning during a wave shape the next one. The first
// build error cancels the in-flight wave and fails the run.
func (e *Engine) Process(ctx context.Context, startID, stopID string) (err error) {
	logger := ctxlog.FromContext(ctx)

	first, err := e.SortVertices(ctx, startID, stopID)
	if err != nil {
		return err
	}
	e.beginRun(ctx)
	defer func() {
		e.tracer.End(ctx, e.collectOutputs(nil), err)
	}()

	lock := e.locks.ForRun(e.runID)
	defer e.locks.Release(e.runID)

	toProcess := first
	wave := 0
	for len(toProcess) > 0 {
		logger.Debug("Executing wave.", "wave", wave, "vertices", toProcess)
		built, waveErr := e.runWave(ctx, toProcess)
		if waveErr != nil {
			err = fmt.Errorf("running wave %d: %w", wave, waveErr)
			return err
		}

		next := make(map[string]struct{})
		for _, v := range built {
			for _, id := range e.NextRunnableVertices(lock, v) {
				next[id] = struct{}{}
			}
		}
		toProcess = sortedSet(next)
		wave++
	}

	logger.Info("Flow processed.", "runID", e.runID, "waves", wave)
	return nil
}

// runWave builds every vertex of the wave concurrently, one goroutine per
// vertex. The first failure cancels the group context and is returned.
func (e *Engine) runWave(ctx context.Context, ids []string) ([]*graph.Vertex, error) {
	built := make([]*graph.Vertex, len(ids))
	eg, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		i, id := i, id
		eg.Go(func() error {
			v, err := e.BuildVertex(gctx, id)
			if err != nil {
				return err
			}
			built[i] = v
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return built, nil
}
