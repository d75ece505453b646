package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sitegraph/pkg/cache"
	"github.com/matzehuels/sitegraph/pkg/graph"
)

// Runner runs pipeline stages through a cache. It keeps no per-run state and
// may be shared by goroutines.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner returns a Runner. Nil arguments select a NullCache, the
// DefaultKeyer and log.Default.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	r := &Runner{Cache: c, Keyer: keyer, Logger: logger}
	if r.Cache == nil {
		r.Cache = cache.NewNullCache()
	}
	if r.Keyer == nil {
		r.Keyer = cache.NewDefaultKeyer()
	}
	if r.Logger == nil {
		r.Logger = log.Default()
	}
	return r
}

// Execute fetches, lays out and renders in one go.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	res := &Result{}

	t := time.Now()
	snap, err := r.Fetch(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	res.Snapshot = snap
	res.Stats.NodeCount, res.Stats.LinkCount = len(snap.Nodes), len(snap.Links)
	res.Stats.FetchTime = time.Since(t)
	r.Logger.Info("fetched snapshot", "source", opts.Source,
		"nodes", res.Stats.NodeCount, "links", res.Stats.LinkCount, "took", res.Stats.FetchTime)

	t = time.Now()
	l, snapHash, hit, err := r.layout(ctx, snap, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	res.SnapshotHash, res.Layout = snapHash, l
	res.Stats.Ticks = l.Ticks
	res.Stats.LayoutTime = time.Since(t)
	res.CacheInfo.LayoutHit = hit
	r.Logger.Info("layout ready", "ticks", l.Ticks, "settled", l.Settled, "cached", hit, "took", res.Stats.LayoutTime)

	t = time.Now()
	res.Artifacts, res.CacheInfo.RenderHit, err = r.render(ctx, snap, snapHash, l, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	res.Stats.RenderTime = time.Since(t)
	r.Logger.Info("rendered", "formats", opts.Formats, "cached", res.CacheInfo.RenderHit, "took", res.Stats.RenderTime)

	return res, nil
}

// LayoutWithCacheInfo settles s, reusing a cached layout when one exists.
// The bool reports a cache hit.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, s graph.Snapshot, opts Options) (graph.Layout, bool, error) {
	l, _, hit, err := r.layout(ctx, s, opts)
	return l, hit, err
}

// Layout is LayoutWithCacheInfo without the hit flag.
func (r *Runner) Layout(ctx context.Context, s graph.Snapshot, opts Options) (graph.Layout, error) {
	l, _, err := r.LayoutWithCacheInfo(ctx, s, opts)
	return l, err
}

func (r *Runner) layout(ctx context.Context, s graph.Snapshot, opts Options) (graph.Layout, string, bool, error) {
	r.applyLogger(&opts)
	opts.SetLayoutDefaults()

	snapHash, err := snapshotHash(s)
	if err != nil {
		return graph.Layout{}, "", false, err
	}
	key := r.Keyer.LayoutKey(snapHash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, ok := r.lookup(ctx, key); ok {
			if l, err := graph.UnmarshalLayout(data); err == nil {
				return l, snapHash, true, nil
			}
			r.Logger.Debug("discarding unreadable cached layout", "key", key)
		}
	}

	l, err := ComputeLayout(ctx, s, opts)
	if err != nil {
		return graph.Layout{}, snapHash, false, err
	}
	if data, err := graph.MarshalLayout(l); err == nil {
		r.store(ctx, key, data, cache.TTLLayout)
	}
	return l, snapHash, false, nil
}

// RenderWithCacheInfo renders l in every requested format. It reports a hit
// only when all formats came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, s graph.Snapshot, l graph.Layout, opts Options) (map[string][]byte, bool, error) {
	snapHash, err := snapshotHash(s)
	if err != nil {
		return nil, false, err
	}
	return r.render(ctx, s, snapHash, l, opts)
}

// Render is RenderWithCacheInfo without the hit flag.
func (r *Runner) Render(ctx context.Context, s graph.Snapshot, l graph.Layout, opts Options) (map[string][]byte, error) {
	out, _, err := r.RenderWithCacheInfo(ctx, s, l, opts)
	return out, err
}

func (r *Runner) render(ctx context.Context, s graph.Snapshot, snapHash string, l graph.Layout, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	layoutData, err := graph.MarshalLayout(l)
	if err != nil {
		return nil, false, fmt.Errorf("hash layout: %w", err)
	}
	content := cache.Hash([]byte(snapHash + cache.Hash(layoutData)))
	keys := make(map[string]string, len(opts.Formats))
	for _, f := range opts.Formats {
		keys[f] = r.Keyer.ArtifactKey(content, opts.ArtifactKeyOpts(f))
	}

	out := make(map[string][]byte, len(opts.Formats))
	for f, key := range keys {
		data, ok := r.lookup(ctx, key)
		if !ok {
			break
		}
		out[f] = data
	}
	if len(out) == len(keys) {
		return out, true, nil
	}

	out, err = RenderFromLayout(ctx, s, l, opts)
	if err != nil {
		return nil, false, err
	}
	for f, data := range out {
		r.store(ctx, keys[f], data, cache.TTLArtifact)
	}
	return out, false, nil
}

// Close closes the cache.
func (r *Runner) Close() error {
	if r.Cache == nil {
		return nil
	}
	return r.Cache.Close()
}

func (r *Runner) lookup(ctx context.Context, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "err", err)
		return nil, false
	}
	return data, hit
}

func (r *Runner) store(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
	}
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func snapshotHash(s graph.Snapshot) (string, error) {
	data, err := graph.MarshalSnapshot(s)
	if err != nil {
		return "", fmt.Errorf("hash snapshot: %w", err)
	}
	return cache.Hash(data), nil
}
