package metrics

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/matzehuels/sitegraph/pkg/errors"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.Counter.GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.Gauge.GetValue()
}

func TestDefaultRegistry(t *testing.T) {
	if DefaultRegistry() != DefaultRegistry() {
		t.Error("DefaultRegistry() should return the same instance")
	}
}

func TestOnLoad(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	r.OnLoad(ctx, 3, 2, time.Millisecond, nil)
	r.OnLoad(ctx, 1, 1, time.Millisecond, errors.New(errors.ErrCodeDanglingLink, "x"))
	r.OnLoad(ctx, 0, 0, time.Millisecond, errors.New(errors.ErrCodeStopped, "x"))

	for _, tt := range []struct {
		label string
		want  float64
	}{{"ok", 1}, {"invalid", 1}, {"error", 1}} {
		if got := counterValue(t, r.LoadsTotal.WithLabelValues(tt.label)); got != tt.want {
			t.Errorf("loads{%s} = %v, want %v", tt.label, got, tt.want)
		}
	}
	if got := gaugeValue(t, r.SnapshotNodes); got != 3 {
		t.Errorf("nodes gauge = %v, want 3 (failed loads must not overwrite)", got)
	}
}

func TestTickAndState(t *testing.T) {
	r := NewRegistry()
	r.OnTick(0.5, "running")
	r.OnTick(0.4, "running")
	r.OnSettled(300)

	if got := counterValue(t, r.TicksTotal); got != 2 {
		t.Errorf("ticks = %v, want 2", got)
	}
	if got := gaugeValue(t, r.Alpha); got != 0.4 {
		t.Errorf("alpha = %v, want 0.4", got)
	}
	if got := gaugeValue(t, r.SimulationState.WithLabelValues("settled")); got != 1 {
		t.Errorf("state{settled} = %v, want 1", got)
	}
	if got := gaugeValue(t, r.SimulationState.WithLabelValues("running")); got != 0 {
		t.Errorf("state{running} = %v, want 0", got)
	}
}

func TestInteractionHooks(t *testing.T) {
	r := NewRegistry()
	r.OnSelect("a")
	r.OnSelect("")
	r.OnSelect("b")
	r.OnThemeChange("dark")
	r.OnZoom(2.5)
	r.OnDrag("a", "start")
	r.OnDrag("a", "move")
	r.OnDrag("a", "move")

	if got := counterValue(t, r.SelectionsTotal.WithLabelValues("select")); got != 2 {
		t.Errorf("select = %v, want 2", got)
	}
	if got := counterValue(t, r.SelectionsTotal.WithLabelValues("clear")); got != 1 {
		t.Errorf("clear = %v, want 1", got)
	}
	if got := gaugeValue(t, r.ZoomScale); got != 2.5 {
		t.Errorf("zoom = %v, want 2.5", got)
	}
	if got := counterValue(t, r.DragsTotal.WithLabelValues("move")); got != 2 {
		t.Errorf("drag moves = %v, want 2", got)
	}
}

func TestCacheAndFetchHooks(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()
	r.OnCacheHit(ctx, "k")
	r.OnCacheMiss(ctx, "k")
	r.OnCacheSet(ctx, "k", 128)
	r.OnResponse(ctx, "snapshot", "GET", "http://x", 200, 10*time.Millisecond)
	r.OnError(ctx, "snapshot", "GET", "http://x", io.EOF)

	if got := counterValue(t, r.CacheBytes); got != 128 {
		t.Errorf("cache bytes = %v, want 128", got)
	}
	if got := counterValue(t, r.FetchesTotal.WithLabelValues("200")); got != 1 {
		t.Errorf("fetches{200} = %v, want 1", got)
	}
	if got := counterValue(t, r.FetchesTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("fetches{error} = %v, want 1", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	r := NewRegistry()
	r.RecordHTTPRequest("GET", "/frame", 200, time.Millisecond)
	r.RecordLiveMessage("in", "wheel")
	r.RecordLiveSessions(1)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{
		`sitegraph_http_requests_total{method="GET",route="/frame",status="200"} 1`,
		`sitegraph_live_messages_total{direction="in",type="wheel"} 1`,
		"sitegraph_live_sessions 1",
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}
