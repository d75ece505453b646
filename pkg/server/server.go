// Package server exposes one engine over HTTP.
//
// Every handler reaches the engine through Driver.Do, so requests are
// serialized with ticks and live-session input on the driver goroutine.
//
// # Routes
//
//	GET    /graph            current snapshot (the backend contract)
//	PUT    /graph            replace the snapshot
//	POST   /graph/reload     re-fetch from the configured source
//	GET    /layout           world positions
//	GET    /frame            projected frame as JSON
//	GET    /frame.svg        projected frame as SVG
//	GET    /frame.dot        projected frame as Graphviz DOT
//	GET    /selection        selected node record
//	PUT    /selection/{id}   select a node
//	DELETE /selection        clear the selection
//	POST   /theme/{mode}     switch to light or dark
//	POST   /view/fit         fit the layout into the canvas
//	POST   /view/reset       reset to the identity transform
//	GET    /live             WebSocket live session
//	GET    /metrics          Prometheus metrics
//	GET    /healthz          liveness
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/sitegraph/pkg/engine"
	"github.com/matzehuels/sitegraph/pkg/live"
	"github.com/matzehuels/sitegraph/pkg/metrics"
)

// DefaultFitPadding is the margin used by POST /view/fit.
const DefaultFitPadding = 40.0

// maxBodySize caps PUT /graph bodies.
const maxBodySize = 64 << 20

// ReloadFunc re-fetches the snapshot from the data source and loads it.
type ReloadFunc func(ctx context.Context) error

// Options configures a Server. Zero fields disable the matching feature.
type Options struct {
	Logger     *log.Logger
	Metrics    *metrics.Registry
	Live       *live.Server
	Reload     ReloadFunc
	FitPadding float64
}

// Server is the HTTP surface of one engine.
type Server struct {
	driver *engine.Driver
	eng    *engine.Engine
	opts   Options
	logger *log.Logger
	router chi.Router
}

// New creates a server for eng, which must be driven by d.
func New(d *engine.Driver, eng *engine.Engine, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.FitPadding <= 0 {
		opts.FitPadding = DefaultFitPadding
	}
	s := &Server{
		driver: d,
		eng:    eng,
		opts:   opts,
		logger: opts.Logger,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/graph", func(r chi.Router) {
		r.Get("/", s.handleGetGraph)
		r.Put("/", s.handlePutGraph)
		r.Post("/reload", s.handleReload)
	})
	r.Get("/layout", s.handleLayout)
	r.Get("/frame", s.handleFrame)
	r.Get("/frame.svg", s.handleFrameSVG)
	r.Get("/frame.dot", s.handleFrameDOT)

	r.Route("/selection", func(r chi.Router) {
		r.Get("/", s.handleGetSelection)
		r.Delete("/", s.handleClearSelection)
		r.Put("/{id}", s.handleSelect)
	})
	r.Post("/theme/{mode}", s.handleTheme)
	r.Post("/view/fit", s.handleFit)
	r.Post("/view/reset", s.handleReset)

	if s.opts.Live != nil {
		r.Get("/live", s.opts.Live.ServeHTTP)
	}
	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.Metrics.Handler())
	}
	return r
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if s.opts.Live != nil {
		s.opts.Live.Close()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}
