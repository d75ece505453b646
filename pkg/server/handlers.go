package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/sitegraph/pkg/errors"
	"github.com/matzehuels/sitegraph/pkg/graph"
	"github.com/matzehuels/sitegraph/pkg/render"
	"github.com/matzehuels/sitegraph/pkg/viewport"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
	State  string `json:"state"`
	Nodes  int    `json:"nodes"`
	Links  int    `json:"links"`
}

// SelectionResponse is the body of GET /selection. Node is null when
// nothing is selected.
type SelectionResponse struct {
	Node *graph.Node `json:"node"`
}

// ThemeResponse is the body of POST /theme/{mode}.
type ThemeResponse struct {
	Theme render.Theme `json:"theme"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("encode response", "err", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= 500 {
		s.logger.Error("request failed", "err", err)
	}
	s.respondJSON(w, status, ErrorResponse{Code: string(code), Message: errors.UserMessage(err)})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	var resp HealthResponse
	err := s.driver.Do(r.Context(), func() error {
		resp.State = s.eng.State().String()
		if g := s.eng.Graph(); g != nil {
			resp.Nodes, resp.Links = len(g.Nodes), len(g.Links)
		}
		return nil
	})
	if err != nil {
		s.respondError(w, err)
		return
	}
	resp.Status = "ok"
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	var (
		snap graph.Snapshot
		ok   bool
	)
	if err := s.driver.Do(r.Context(), func() error {
		snap, ok = s.eng.Snapshot()
		return nil
	}); err != nil {
		s.respondError(w, err)
		return
	}
	if !ok {
		s.respondError(w, errors.New(errors.ErrCodeNotFound, "no graph loaded"))
		return
	}
	s.respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handlePutGraph(w http.ResponseWriter, r *http.Request) {
	snap, err := graph.ReadSnapshot(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		s.respondError(w, err)
		return
	}
	if err := s.driver.Do(r.Context(), func() error {
		return s.eng.Load(r.Context(), snap)
	}); err != nil {
		s.respondError(w, err)
		return
	}
	s.logger.Info("snapshot replaced", "nodes", len(snap.Nodes), "links", len(snap.Links))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if s.opts.Reload == nil {
		s.respondError(w, errors.New(errors.ErrCodeUnsupported, "no data source configured"))
		return
	}
	if err := s.opts.Reload(r.Context()); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var l graph.Layout
	if err := s.driver.Do(r.Context(), func() error {
		l = s.eng.Layout()
		return nil
	}); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, l)
}

func (s *Server) frame(r *http.Request) (render.Frame, error) {
	var f render.Frame
	err := s.driver.Do(r.Context(), func() error {
		f = s.eng.Frame()
		return nil
	})
	return f, err
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	f, err := s.frame(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, f)
}

func (s *Server) handleFrameSVG(w http.ResponseWriter, r *http.Request) {
	f, err := s.frame(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(render.RenderSVG(f))
}

func (s *Server) handleFrameDOT(w http.ResponseWriter, r *http.Request) {
	f, err := s.frame(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	io.WriteString(w, render.ToDOT(f))
}

func (s *Server) handleGetSelection(w http.ResponseWriter, r *http.Request) {
	var resp SelectionResponse
	if err := s.driver.Do(r.Context(), func() error {
		if n := s.eng.Selection(); n != nil {
			c := n.Clone()
			resp.Node = &c
		}
		return nil
	}); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	id, err := nodeIDParam(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if err := s.driver.Do(r.Context(), func() error {
		return s.eng.Select(id)
	}); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// nodeIDParam returns the {id} path segment. Page and API ids contain
// slashes and spaces, so clients escape them; chi matches on the raw path
// in that case and leaves the segment escaped.
func nodeIDParam(r *http.Request) (string, error) {
	id := chi.URLParam(r, "id")
	if r.URL.RawPath != "" {
		u, err := url.PathUnescape(id)
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "node id %q", id)
		}
		id = u
	}
	if err := errors.ValidateNodeID(id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Server) handleClearSelection(w http.ResponseWriter, r *http.Request) {
	if err := s.driver.Do(r.Context(), func() error {
		s.eng.ClearSelection()
		return nil
	}); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := render.ParseTheme(chi.URLParam(r, "mode"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	if err := s.driver.Do(r.Context(), func() error {
		return s.eng.SetTheme(theme)
	}); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, ThemeResponse{Theme: theme})
}

func (s *Server) handleFit(w http.ResponseWriter, r *http.Request) {
	var t viewport.Transform
	if err := s.driver.Do(r.Context(), func() error {
		t = s.eng.FitView(s.opts.FitPadding)
		return nil
	}); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, t)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var t viewport.Transform
	if err := s.driver.Do(r.Context(), func() error {
		s.eng.ResetView()
		t = s.eng.Transform()
		return nil
	}); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, t)
}
