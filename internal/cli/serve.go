package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/sitegraph/pkg/config"
	"github.com/matzehuels/sitegraph/pkg/engine"
	"github.com/matzehuels/sitegraph/pkg/errors"
	"github.com/matzehuels/sitegraph/pkg/live"
	"github.com/matzehuels/sitegraph/pkg/metrics"
	"github.com/matzehuels/sitegraph/pkg/observability"
	"github.com/matzehuels/sitegraph/pkg/pipeline"
	"github.com/matzehuels/sitegraph/pkg/server"
	"github.com/matzehuels/sitegraph/pkg/source"
)

// serveFlags holds the serve command's flags; zero values keep the config.
type serveFlags struct {
	addr      string
	watch     bool
	poll      time.Duration
	noCache   bool
	noMetrics bool
}

// serveCommand creates the serve command for the live HTTP surface.
func (c *CLI) serveCommand() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve [graph.json|url]",
		Short: "Serve a live layout over HTTP and WebSocket",
		Long: `Serve a live layout over HTTP and WebSocket.

The snapshot is fetched from the argument, or from source.url in the config,
and loaded into an engine that keeps simulating while clients interact with
it. Clients connect to /live for frames and send pointer, wheel and theme
events; the REST routes expose the graph, frames and selection.

With --watch a snapshot file is reloaded whenever it changes. With --poll an
HTTP source is re-fetched on an interval.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := ""
			if len(args) == 1 {
				src = args[0]
			}
			return c.runServe(cmd.Context(), src, &flags)
		},
	}

	cmd.Flags().StringVar(&flags.addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&flags.watch, "watch", false, "reload a snapshot file when it changes")
	cmd.Flags().DurationVar(&flags.poll, "poll", 0, "re-fetch an HTTP source on this interval")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.noMetrics, "no-metrics", false, "do not expose /metrics")

	return cmd
}

// liveApp is one served engine with everything that feeds it.
type liveApp struct {
	cfg    config.Config
	logger *log.Logger
	runner *pipeline.Runner
	opts   pipeline.Options
	driver *engine.Driver
	eng    *engine.Engine
	live   *live.Server
	http   *server.Server
}

func (c *CLI) runServe(ctx context.Context, src string, flags *serveFlags) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if src == "" {
		src = cfg.Source.URL
	}
	if flags.addr != "" {
		cfg.Server.Addr = flags.addr
	}
	if flags.poll > 0 {
		cfg.Server.PollInterval = flags.poll
	}

	var watcher *source.Watcher
	if flags.watch {
		if watcher, err = newWatcher(src, cfg.Server.WatchDebounce, c.Logger); err != nil {
			return err
		}
	}

	var reg *metrics.Registry
	if !flags.noMetrics {
		reg = metrics.DefaultRegistry()
		observability.SetEngineHooks(reg)
		observability.SetCacheHooks(reg)
		observability.SetHTTPHooks(reg)
	}

	runner, err := c.newRunner(ctx, cfg, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	app := c.newLiveApp(cfg, runner, src, reg)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := app.driver.Run(gctx); !stderrors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return app.http.Run(gctx, cfg.Server.Addr)
	})
	g.Go(func() error {
		if err := app.live.Start(gctx); err != nil {
			return err
		}
		if err := app.reload(gctx); err != nil {
			app.logger.Warn("initial load failed", "source", src, "err", err)
		}
		return nil
	})

	if watcher != nil {
		g.Go(func() error { return watcher.Run(gctx) })
		g.Go(func() error { return app.watch(gctx, watcher) })
	}
	if cfg.Server.PollInterval > 0 && source.IsURL(src) {
		g.Go(func() error { return app.poll(gctx, cfg.Server.PollInterval) })
	}

	printInfo("Serving %s", src)
	printKeyValue("http", cfg.Server.Addr)
	printKeyValue("live", cfg.Server.Addr+"/live")
	if reg != nil {
		printKeyValue("metrics", cfg.Server.Addr+"/metrics")
	}
	if flags.watch {
		printKeyValue("watching", src)
	}
	err = g.Wait()
	app.eng.Stop()
	return err
}

func (c *CLI) newLiveApp(cfg config.Config, runner *pipeline.Runner, src string, reg *metrics.Registry) *liveApp {
	driver := engine.NewDriver(cfg.Server.TickInterval, c.Logger)
	eng := engine.New(
		engine.WithOptions(cfg.EngineOptions()),
		engine.WithLogger(c.Logger),
		engine.WithScheduler(driver),
	)

	liveOpts := []live.Option{live.WithLogger(c.Logger)}
	if reg != nil {
		liveOpts = append(liveOpts, live.WithRecorder(reg))
	}

	app := &liveApp{
		cfg:    cfg,
		logger: c.Logger,
		runner: runner,
		opts:   pipelineOptions(cfg, src),
		driver: driver,
		eng:    eng,
		live:   live.NewServer(driver, eng, liveOpts...),
	}
	app.http = server.New(driver, eng, server.Options{
		Logger:     c.Logger,
		Metrics:    reg,
		Live:       app.live,
		Reload:     app.reload,
		FitPadding: cfg.Viewport.FitPadding,
	})
	return app
}

// reload re-fetches the source, bypassing the snapshot cache, and loads the
// result. A failed fetch is reported to every live session; the current
// graph stays in place.
func (a *liveApp) reload(ctx context.Context) error {
	opts := a.opts
	opts.Refresh = true
	snap, err := a.runner.Fetch(ctx, opts)
	if err != nil {
		a.live.BroadcastError(fetchError(err))
		return err
	}
	return a.load(ctx, func() error { return a.eng.Load(ctx, snap) })
}

func (a *liveApp) load(ctx context.Context, fn func() error) error {
	err := a.driver.Do(ctx, fn)
	if err != nil && errors.IsValidation(err) {
		a.live.BroadcastError(err)
	}
	return err
}

// newWatcher checks that src is a snapshot file and watches it.
func newWatcher(src string, debounce time.Duration, logger *log.Logger) (*source.Watcher, error) {
	if source.IsURL(src) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "--watch needs a snapshot file, got %s", src)
	}
	fs, err := source.NewFileSource(src)
	if err != nil {
		return nil, err
	}
	return source.NewWatcher(fs, debounce, logger), nil
}

// watch loads every update w produces until w closes its channel.
func (a *liveApp) watch(ctx context.Context, w *source.Watcher) error {
	for u := range w.Updates() {
		if u.Err != nil {
			a.live.BroadcastError(fetchError(u.Err))
			continue
		}
		snap := u.Snapshot
		if err := a.load(ctx, func() error { return a.eng.Load(ctx, snap) }); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			a.logger.Warn("reload rejected", "err", err)
		}
	}
	return nil
}

// poll re-fetches an HTTP source every interval until ctx is done.
func (a *liveApp) poll(ctx context.Context, every time.Duration) error {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if err := a.reload(ctx); err != nil && ctx.Err() == nil {
				a.logger.Warn("poll failed", "source", a.opts.Source, "err", err)
			}
		}
	}
}

// fetchError keeps the cause's code but shows the generic fetch message.
func fetchError(err error) error {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeNetwork
	}
	return errors.Wrap(code, err, source.FetchErrorMessage)
}
