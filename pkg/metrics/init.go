package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initEngineMetrics() {
	f := promauto.With(r.registry)

	r.LoadsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitegraph_loads_total",
			Help: "Snapshot loads by result",
		},
		[]string{"result"}, // ok, invalid, error
	)
	r.LoadDuration = f.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sitegraph_load_duration_seconds",
			Help:    "Time to validate a snapshot and build its simulation",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
	)
	r.SnapshotNodes = f.NewGauge(prometheus.GaugeOpts{
		Name: "sitegraph_snapshot_nodes",
		Help: "Nodes in the loaded snapshot",
	})
	r.SnapshotLinks = f.NewGauge(prometheus.GaugeOpts{
		Name: "sitegraph_snapshot_links",
		Help: "Links in the loaded snapshot",
	})
	r.TicksTotal = f.NewCounter(prometheus.CounterOpts{
		Name: "sitegraph_simulation_ticks_total",
		Help: "Simulation steps taken",
	})
	r.Alpha = f.NewGauge(prometheus.GaugeOpts{
		Name: "sitegraph_simulation_alpha",
		Help: "Current simulation temperature",
	})
	r.SimulationState = f.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sitegraph_simulation_state",
			Help: "Simulation state (1 for the current state, 0 otherwise)",
		},
		[]string{"state"}, // uninitialized, running, settled, stopped
	)
	r.SettledTotal = f.NewCounter(prometheus.CounterOpts{
		Name: "sitegraph_simulation_settled_total",
		Help: "Times the simulation settled",
	})
	r.SettleTicks = f.NewHistogram(prometheus.HistogramOpts{
		Name:    "sitegraph_simulation_settle_ticks",
		Help:    "Total steps taken when the simulation settled",
		Buckets: prometheus.ExponentialBuckets(50, 2, 8),
	})
	r.SelectionsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitegraph_selection_changes_total",
			Help: "Selection changes",
		},
		[]string{"kind"}, // select, clear
	)
	r.ThemeChanges = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitegraph_theme_changes_total",
			Help: "Theme changes by resulting theme",
		},
		[]string{"theme"},
	)
	r.ZoomScale = f.NewGauge(prometheus.GaugeOpts{
		Name: "sitegraph_zoom_scale",
		Help: "Applied viewport scale",
	})
	r.DragsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitegraph_drag_events_total",
			Help: "Drag events by phase",
		},
		[]string{"phase"}, // start, move, end
	)
}

func (r *Registry) initCacheMetrics() {
	f := promauto.With(r.registry)

	r.CacheOpsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitegraph_cache_operations_total",
			Help: "Cache operations by kind",
		},
		[]string{"op"}, // hit, miss, set
	)
	r.CacheBytes = f.NewCounter(prometheus.CounterOpts{
		Name: "sitegraph_cache_written_bytes_total",
		Help: "Bytes written to the cache",
	})
}

func (r *Registry) initHTTPMetrics() {
	f := promauto.With(r.registry)

	r.FetchesTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitegraph_fetches_total",
			Help: "Outbound snapshot fetches by status",
		},
		[]string{"status"},
	)
	r.FetchDuration = f.NewHistogram(prometheus.HistogramOpts{
		Name:    "sitegraph_fetch_duration_seconds",
		Help:    "Outbound snapshot fetch latency",
		Buckets: prometheus.DefBuckets,
	})
	r.HTTPRequestsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitegraph_http_requests_total",
			Help: "Inbound HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	r.HTTPRequestDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sitegraph_http_request_duration_seconds",
			Help:    "Inbound HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
}

func (r *Registry) initLiveMetrics() {
	f := promauto.With(r.registry)

	r.LiveSessions = f.NewGauge(prometheus.GaugeOpts{
		Name: "sitegraph_live_sessions",
		Help: "Open live websocket sessions",
	})
	r.LiveMessagesTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitegraph_live_messages_total",
			Help: "Live messages by direction and type",
		},
		[]string{"direction", "type"}, // in/out
	)
}
