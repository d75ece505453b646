package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/sitegraph/pkg/engine"
	"github.com/matzehuels/sitegraph/pkg/errors"
	"github.com/matzehuels/sitegraph/pkg/graph"
	"github.com/matzehuels/sitegraph/pkg/live"
	"github.com/matzehuels/sitegraph/pkg/metrics"
	"github.com/matzehuels/sitegraph/pkg/render"
	"github.com/matzehuels/sitegraph/pkg/viewport"
)

const snapshotJSON = `{
  "nodes": [
    {"id": "a", "label": "Home", "type": "page", "url": "/"},
    {"id": "b", "label": "Login", "type": null, "group": 3}
  ],
  "links": [{"source": "a", "target": "b", "value": 4}]
}`

type fixture struct {
	srv     *Server
	eng     *engine.Engine
	metrics *metrics.Registry
	reloads int
}

func newFixture(t *testing.T, load bool) *fixture {
	t.Helper()
	logger := log.New(io.Discard)
	ctx, cancel := context.WithCancel(context.Background())

	d := engine.NewDriver(5*time.Millisecond, logger)
	eng := engine.New(engine.WithScheduler(d), engine.WithLogger(logger))
	go d.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-d.Done()
	})

	if load {
		s, err := graph.UnmarshalSnapshot([]byte(snapshotJSON))
		require.NoError(t, err)
		require.NoError(t, d.Do(ctx, func() error { return eng.Load(ctx, s) }))
	}

	f := &fixture{eng: eng, metrics: metrics.NewRegistry()}
	f.srv = New(d, eng, Options{
		Logger:  logger,
		Metrics: f.metrics,
		Live:    live.NewServer(d, eng, live.WithLogger(logger)),
		Reload: func(context.Context) error {
			f.reloads++
			return nil
		},
	})
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rec, httptest.NewRequest(method, path, rd))
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	return e
}

func TestHealth(t *testing.T) {
	f := newFixture(t, true)
	rec := f.do(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var h HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &h))
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, 2, h.Nodes)
	assert.Equal(t, 1, h.Links)
}

func TestGetGraphRoundTripsPayload(t *testing.T) {
	f := newFixture(t, true)
	rec := f.do(t, http.MethodGet, "/graph", "")
	require.Equal(t, http.StatusOK, rec.Code)

	s, err := graph.UnmarshalSnapshot(rec.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, s.Nodes, 2)
	assert.Equal(t, "/", s.Nodes[0].Payload["url"])
	assert.Equal(t, 3, s.Nodes[1].Group)
	assert.Equal(t, 4.0, s.Links[0].Value)
}

func TestGetGraphEmpty(t *testing.T) {
	f := newFixture(t, false)
	rec := f.do(t, http.MethodGet, "/graph", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, rec).Code)
}

func TestPutGraph(t *testing.T) {
	f := newFixture(t, true)
	rec := f.do(t, http.MethodPut, "/graph", `{"nodes":[{"id":"x"},{"id":"y"},{"id":"z"}],"links":[]}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/healthz", "")
	var h HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &h))
	assert.Equal(t, 3, h.Nodes)
}

func TestPutGraphRejected(t *testing.T) {
	tests := []struct {
		name string
		body string
		code errors.Code
	}{
		{"malformed", `{"nodes":`, errors.ErrCodeInvalidFormat},
		{"dangling link", `{"nodes":[{"id":"a"}],"links":[{"source":"a","target":"q"}]}`, errors.ErrCodeDanglingLink},
		{"duplicate node", `{"nodes":[{"id":"a"},{"id":"a"}],"links":[]}`, errors.ErrCodeDuplicateNode},
		{"missing id", `{"nodes":[{"label":"x"}],"links":[]}`, errors.ErrCodeMissingID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, true)
			rec := f.do(t, http.MethodPut, "/graph", tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Equal(t, string(tt.code), decodeError(t, rec).Code)

			// The previous graph survives.
			rec = f.do(t, http.MethodGet, "/graph", "")
			require.Equal(t, http.StatusOK, rec.Code)
			s, err := graph.UnmarshalSnapshot(rec.Body.Bytes())
			require.NoError(t, err)
			assert.Len(t, s.Nodes, 2)
		})
	}
}

func TestReload(t *testing.T) {
	f := newFixture(t, true)
	rec := f.do(t, http.MethodPost, "/graph/reload", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, f.reloads)
}

func TestFrameFormats(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(t, http.MethodGet, "/frame", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var fr render.Frame
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fr))
	assert.Len(t, fr.Markers, 2)
	assert.Equal(t, float64(engine.DefaultWidth), fr.Width)

	rec = f.do(t, http.MethodGet, "/frame.svg", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "<svg"))

	rec = f.do(t, http.MethodGet, "/frame.dot", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"a" -- "b"`)
}

func TestLayout(t *testing.T) {
	f := newFixture(t, true)
	rec := f.do(t, http.MethodGet, "/layout", "")
	require.Equal(t, http.StatusOK, rec.Code)

	l, err := graph.UnmarshalLayout(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Len(t, l.Positions, 2)
}

func TestSelection(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(t, http.MethodGet, "/selection", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"node":null}`, rec.Body.String())

	rec = f.do(t, http.MethodPut, "/selection/a", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/selection", "")
	var sel SelectionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sel))
	require.NotNil(t, sel.Node)
	assert.Equal(t, "a", sel.Node.ID)
	assert.Equal(t, "/", sel.Node.Payload["url"])

	rec = f.do(t, http.MethodDelete, "/selection", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(t, http.MethodGet, "/selection", "")
	assert.JSONEq(t, `{"node":null}`, rec.Body.String())

	rec = f.do(t, http.MethodPut, "/selection/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NODE_NOT_FOUND", decodeError(t, rec).Code)
}

func TestTheme(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(t, http.MethodPost, "/theme/dark", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"theme":"dark"}`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/frame", "")
	var fr render.Frame
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fr))
	assert.Equal(t, render.ThemeDark, fr.Theme)

	rec = f.do(t, http.MethodPost, "/theme/sepia", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "INVALID_THEME", decodeError(t, rec).Code)
}

func TestViewFitAndReset(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(t, http.MethodPost, "/view/fit", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var tr viewport.Transform
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tr))
	assert.True(t, viewport.DefaultExtent.Contains(tr.K))

	rec = f.do(t, http.MethodPost, "/view/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tr))
	assert.Equal(t, viewport.Identity, tr)
}

func TestMetricsRecordRoutePattern(t *testing.T) {
	f := newFixture(t, true)
	f.do(t, http.MethodPut, "/selection/a", "")
	f.do(t, http.MethodPut, "/selection/b", "")

	rec := f.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(),
		`sitegraph_http_requests_total{method="PUT",route="/selection/{id}",status="204"} 2`)
}

func TestUnknownRoute(t *testing.T) {
	f := newFixture(t, true)
	rec := f.do(t, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSelectEscapedIDs(t *testing.T) {
	f := newFixture(t, false)
	rec := f.do(t, http.MethodPut, "/graph", `{"nodes":[
		{"id":"/","type":"page"},
		{"id":"/login","type":"page"},
		{"id":"GET /api/users","type":"api"},
		{"id":"50%"}],"links":[]}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	tests := []struct {
		path string
		want string
	}{
		{"/selection/%2F", "/"},
		{"/selection/%2Flogin", "/login"},
		{"/selection/GET%20%2Fapi%2Fusers", "GET /api/users"},
		{"/selection/50%25", "50%"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			rec := f.do(t, http.MethodPut, tt.path, "")
			require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

			rec = f.do(t, http.MethodGet, "/selection", "")
			var sel SelectionResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sel))
			require.NotNil(t, sel.Node)
			assert.Equal(t, tt.want, sel.Node.ID)
		})
	}

	rec = f.do(t, http.MethodPut, "/selection/%01", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "INVALID_INPUT", decodeError(t, rec).Code)
}
