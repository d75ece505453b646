package pipeline

import (
	"context"

	"github.com/matzehuels/sitegraph/pkg/cache"
	"github.com/matzehuels/sitegraph/pkg/graph"
	"github.com/matzehuels/sitegraph/pkg/source"
)

// refresher is implemented by sources that can bypass their cache.
type refresher interface {
	Refresh(ctx context.Context) (graph.Snapshot, error)
}

// OpenSource opens opts.Source. URL sources share the runner's cache.
func (r *Runner) OpenSource(opts Options) (source.Source, error) {
	return source.Open(opts.Source,
		source.WithCache(r.Cache, r.Keyer, cache.TTLSnapshot),
		source.WithLogger(r.Logger),
	)
}

// Fetch reads the snapshot named by opts.Source. With opts.Refresh a cached
// response is ignored and replaced.
func (r *Runner) Fetch(ctx context.Context, opts Options) (graph.Snapshot, error) {
	src, err := r.OpenSource(opts)
	if err != nil {
		return graph.Snapshot{}, err
	}
	if rf, ok := src.(refresher); ok && opts.Refresh {
		return rf.Refresh(ctx)
	}
	return src.Fetch(ctx)
}
