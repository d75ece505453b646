package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/matzehuels/sitegraph/pkg/errors"
)

var states = []string{"uninitialized", "running", "settled", "stopped"}

// OnLoad records a snapshot load.
func (r *Registry) OnLoad(_ context.Context, nodes, links int, d time.Duration, err error) {
	switch {
	case err == nil:
		r.LoadsTotal.WithLabelValues("ok").Inc()
		r.SnapshotNodes.Set(float64(nodes))
		r.SnapshotLinks.Set(float64(links))
	case errors.IsValidation(err):
		r.LoadsTotal.WithLabelValues("invalid").Inc()
	default:
		r.LoadsTotal.WithLabelValues("error").Inc()
	}
	r.LoadDuration.Observe(d.Seconds())
}

// OnTick records one simulation step.
func (r *Registry) OnTick(alpha float64, state string) {
	r.TicksTotal.Inc()
	r.Alpha.Set(alpha)
	r.setState(state)
}

// OnSettled records the simulation settling after ticks steps.
func (r *Registry) OnSettled(ticks int) {
	r.SettledTotal.Inc()
	r.SettleTicks.Observe(float64(ticks))
	r.setState("settled")
}

// OnSelect records a selection change; an empty id is a clear.
func (r *Registry) OnSelect(id string) {
	if id == "" {
		r.SelectionsTotal.WithLabelValues("clear").Inc()
		return
	}
	r.SelectionsTotal.WithLabelValues("select").Inc()
}

// OnThemeChange records a theme switch.
func (r *Registry) OnThemeChange(theme string) {
	r.ThemeChanges.WithLabelValues(theme).Inc()
}

// OnZoom records the applied scale.
func (r *Registry) OnZoom(k float64) { r.ZoomScale.Set(k) }

// OnDrag records a drag phase.
func (r *Registry) OnDrag(_ string, phase string) {
	r.DragsTotal.WithLabelValues(phase).Inc()
}

func (r *Registry) setState(state string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if state == r.state {
		return
	}
	r.state = state
	for _, s := range states {
		v := 0.0
		if s == state {
			v = 1
		}
		r.SimulationState.WithLabelValues(s).Set(v)
	}
}

// OnCacheHit records a cache hit.
func (r *Registry) OnCacheHit(context.Context, string) {
	r.CacheOpsTotal.WithLabelValues("hit").Inc()
}

// OnCacheMiss records a cache miss.
func (r *Registry) OnCacheMiss(context.Context, string) {
	r.CacheOpsTotal.WithLabelValues("miss").Inc()
}

// OnCacheSet records a cache write of size bytes.
func (r *Registry) OnCacheSet(_ context.Context, _ string, size int) {
	r.CacheOpsTotal.WithLabelValues("set").Inc()
	r.CacheBytes.Add(float64(size))
}

// OnRequest is a no-op; fetches are counted when they complete.
func (r *Registry) OnRequest(context.Context, string, string, string) {}

// OnResponse records a completed fetch.
func (r *Registry) OnResponse(_ context.Context, _, _, _ string, status int, d time.Duration) {
	r.FetchesTotal.WithLabelValues(strconv.Itoa(status)).Inc()
	r.FetchDuration.Observe(d.Seconds())
}

// OnError records a fetch that got no response.
func (r *Registry) OnError(context.Context, string, string, string, error) {
	r.FetchesTotal.WithLabelValues("error").Inc()
}

// RecordHTTPRequest records an inbound request.
func (r *Registry) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordLiveMessage counts a live message; direction is "in" or "out".
func (r *Registry) RecordLiveMessage(direction, kind string) {
	r.LiveMessagesTotal.WithLabelValues(direction, kind).Inc()
}

// RecordLiveSessions sets the number of connected live sessions.
func (r *Registry) RecordLiveSessions(n int) { r.LiveSessions.Set(float64(n)) }
