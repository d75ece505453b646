// Package observability lets the engine, cache and fetch client report events
// without importing a metrics backend.
//
// Each event family has an interface and a no-op default. The binary swaps
// in real implementations once at startup, before any engine exists; the
// Prometheus registry in pkg/metrics satisfies all three:
//
//	reg := metrics.DefaultRegistry()
//	observability.SetEngineHooks(reg)
//	observability.SetCacheHooks(reg)
//	observability.SetHTTPHooks(reg)
//
// Emitters fetch the current hooks at the call site:
//
//	observability.Engine().OnTick(sim.Alpha(), sim.State().String())
package observability

import (
	"context"
	"sync"
	"time"
)

// EngineHooks receives events from the layout engine. Tick-level events are
// called on the engine goroutine and must not block.
type EngineHooks interface {
	// OnLoad records a snapshot load attempt.
	OnLoad(ctx context.Context, nodes, links int, duration time.Duration, err error)

	// OnTick records one simulation step.
	OnTick(alpha float64, state string)

	// OnSettled records the simulation coming to rest.
	OnSettled(ticks int)

	// OnSelect records a selection change; id is empty when cleared.
	OnSelect(id string)

	// OnThemeChange records a theme switch.
	OnThemeChange(theme string)

	// OnZoom records a released (debounced) zoom with its scale.
	OnZoom(k float64)

	// OnDrag records a drag phase change for a node.
	OnDrag(id, phase string)
}

// CacheHooks receives cache lookups and writes, labelled by key type
// (snapshot, layout, artifact).
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives snapshot fetches made by the HTTP source.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	// OnError is called instead of OnResponse when no response arrived.
	OnError(ctx context.Context, method, host, path string, err error)
}

// NoopEngineHooks discards engine events.
type NoopEngineHooks struct{}

func (NoopEngineHooks) OnLoad(context.Context, int, int, time.Duration, error) {}
func (NoopEngineHooks) OnTick(float64, string)                                 {}
func (NoopEngineHooks) OnSettled(int)                                          {}
func (NoopEngineHooks) OnSelect(string)                                        {}
func (NoopEngineHooks) OnThemeChange(string)                                   {}
func (NoopEngineHooks) OnZoom(float64)                                         {}
func (NoopEngineHooks) OnDrag(string, string)                                  {}

// NoopCacheHooks discards cache events.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks discards fetch events.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

type hookSet struct {
	engine EngineHooks
	cache  CacheHooks
	http   HTTPHooks
}

func defaults() hookSet {
	return hookSet{NoopEngineHooks{}, NoopCacheHooks{}, NoopHTTPHooks{}}
}

var (
	mu    sync.RWMutex
	hooks = defaults()
)

func current() hookSet {
	mu.RLock()
	defer mu.RUnlock()
	return hooks
}

func update(fn func(*hookSet)) {
	mu.Lock()
	fn(&hooks)
	mu.Unlock()
}

// SetEngineHooks installs h for all engines. A nil h is ignored.
func SetEngineHooks(h EngineHooks) {
	if h != nil {
		update(func(s *hookSet) { s.engine = h })
	}
}

// SetCacheHooks installs h for all caches. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		update(func(s *hookSet) { s.cache = h })
	}
}

// SetHTTPHooks installs h for the HTTP source. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		update(func(s *hookSet) { s.http = h })
	}
}

// Engine returns the installed engine hooks.
func Engine() EngineHooks { return current().engine }

// Cache returns the installed cache hooks.
func Cache() CacheHooks { return current().cache }

// HTTP returns the installed fetch hooks.
func HTTP() HTTPHooks { return current().http }

// Reset reinstalls the no-op hooks.
func Reset() {
	update(func(s *hookSet) { *s = defaults() })
}
