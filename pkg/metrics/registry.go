// Package metrics exposes engine, cache, fetch, HTTP and live-session
// metrics to Prometheus.
//
// A [Registry] implements the observability hook interfaces, so wiring it is
// one call per hook kind:
//
//	reg := metrics.NewRegistry()
//	observability.SetEngineHooks(reg)
//	observability.SetCacheHooks(reg)
//	observability.SetHTTPHooks(reg)
//	mux.Handle("/metrics", reg.Handler())
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/sitegraph/pkg/observability"
)

// Registry holds every sitegraph collector on a private Prometheus registry.
type Registry struct {
	// Engine
	LoadsTotal      *prometheus.CounterVec
	LoadDuration    prometheus.Histogram
	SnapshotNodes   prometheus.Gauge
	SnapshotLinks   prometheus.Gauge
	TicksTotal      prometheus.Counter
	Alpha           prometheus.Gauge
	SimulationState *prometheus.GaugeVec
	SettledTotal    prometheus.Counter
	SettleTicks     prometheus.Histogram
	SelectionsTotal *prometheus.CounterVec
	ThemeChanges    *prometheus.CounterVec
	ZoomScale       prometheus.Gauge
	DragsTotal      *prometheus.CounterVec

	// Cache
	CacheOpsTotal *prometheus.CounterVec
	CacheBytes    prometheus.Counter

	// Snapshot fetches (outbound HTTP)
	FetchesTotal  *prometheus.CounterVec
	FetchDuration prometheus.Histogram

	// Inbound HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Live sessions
	LiveSessions      prometheus.Gauge
	LiveMessagesTotal *prometheus.CounterVec

	registry *prometheus.Registry
	mu       sync.Mutex
	state    string
}

var (
	_ observability.EngineHooks = (*Registry)(nil)
	_ observability.CacheHooks  = (*Registry)(nil)
	_ observability.HTTPHooks   = (*Registry)(nil)
)

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	once.Do(func() { defaultRegistry = NewRegistry() })
	return defaultRegistry
}

// NewRegistry creates a registry with every collector registered, plus the
// Go runtime and process collectors.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	r.initEngineMetrics()
	r.initCacheMetrics()
	r.initHTTPMetrics()
	r.initLiveMetrics()
	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry.
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
