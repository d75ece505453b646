package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sitegraph/pkg/engine"
	"github.com/matzehuels/sitegraph/pkg/render"
	"github.com/matzehuels/sitegraph/pkg/source"
)

// viewCommand creates the interactive terminal view.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		noCache bool
		theme   string
	)

	cmd := &cobra.Command{
		Use:   "view [graph.json|url]",
		Short: "Explore a live layout in the terminal",
		Long: `Explore a live layout in the terminal.

The simulation keeps running while you pan, zoom, select and drag nodes with
the keyboard or the mouse. Clicking a node selects it; clicking it again or
clicking the background clears the selection.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := ""
			if len(args) == 1 {
				src = args[0]
			}
			return c.runView(cmd.Context(), src, theme, noCache)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&theme, "theme", "", "color theme: light, dark (default from config)")

	return cmd
}

func (c *CLI) runView(ctx context.Context, src, theme string, noCache bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if src == "" {
		src = cfg.Source.URL
	}
	if theme != "" {
		t, err := render.ParseTheme(theme)
		if err != nil {
			return err
		}
		cfg.Render.Theme = string(t)
	}

	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	snap, err := runner.Fetch(ctx, pipelineOptions(cfg, src))
	if err != nil {
		return fmt.Errorf("%s: %w", source.FetchErrorMessage, err)
	}

	// The alternate screen owns the terminal; engine logs would tear it.
	sched := engine.NewManualScheduler()
	eng := engine.New(
		engine.WithOptions(cfg.EngineOptions()),
		engine.WithLogger(log.New(io.Discard)),
		engine.WithScheduler(sched),
	)
	defer eng.Stop()
	if err := eng.Load(ctx, snap); err != nil {
		return err
	}

	m := newViewModel(eng, sched, cfg.Server.TickInterval, cfg.Viewport.FitPadding, src)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}
