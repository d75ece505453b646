// Package cli implements the sitegraph command-line interface.
//
// Commands fetch snapshots from the site backend, compute and render layouts
// headless, and serve or view a live interactive layout. The CLI is built
// using cobra and logs through charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - fetch: Download a snapshot from the backend
//   - layout: Settle a snapshot and write node positions
//   - render: Produce SVG, DOT, Graphviz SVG or JSON frames
//   - serve: Run the HTTP and WebSocket surface over a live engine
//   - view: Explore a live layout in the terminal
//   - config: Print the effective configuration
//   - cache: Manage the snapshot, layout and artifact cache
//
// # Logging
//
// --verbose (-v) switches every command to debug output. The root command
// stores its logger on the command context; helpers read it back from there.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns a timestamped logger writing to w at level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs how long a step took once it finishes.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Layout of 42 nodes ready (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the command logger, or log.Default when the
// context carries none.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok && l != nil {
		return l
	}
	return log.Default()
}
