package pipeline

import (
	"context"

	"github.com/matzehuels/sitegraph/pkg/engine"
	"github.com/matzehuels/sitegraph/pkg/graph"
)

// settleChunk is the number of ticks run between context checks.
const settleChunk = 50

// ComputeLayout loads s into a fresh engine and steps the simulation until it
// settles or opts.MaxTicks ticks have run. Nothing is scheduled; the engine is
// stopped before returning.
func ComputeLayout(ctx context.Context, s graph.Snapshot, opts Options) (graph.Layout, error) {
	opts.SetLayoutDefaults()

	eng := engine.New(
		engine.WithOptions(opts.Engine),
		engine.WithLogger(opts.Logger),
	)
	defer eng.Stop()

	if err := eng.Load(ctx, s); err != nil {
		return graph.Layout{}, err
	}

	remaining := opts.MaxTicks
	for remaining > 0 {
		if err := ctx.Err(); err != nil {
			return graph.Layout{}, err
		}
		n := eng.Settle(min(settleChunk, remaining))
		remaining -= n
		if n < settleChunk {
			break
		}
	}

	l := eng.Layout()
	opts.Logger.Debug("layout finished", "ticks", l.Ticks, "settled", l.Settled, "alpha", l.Alpha)
	return l, nil
}
