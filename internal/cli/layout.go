package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sitegraph/pkg/graph"
	"github.com/matzehuels/sitegraph/pkg/pipeline"
)

// layoutFlags are physics overrides; zero values keep the config.
type layoutFlags struct {
	output   string
	noCache  bool
	maxTicks int
	width    float64
	height   float64
	charge   float64
	seed     uint64
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().IntVar(&f.maxTicks, "max-ticks", 0, "stop after this many ticks if not settled")
	cmd.Flags().Float64Var(&f.width, "width", 0, "canvas width")
	cmd.Flags().Float64Var(&f.height, "height", 0, "canvas height")
	cmd.Flags().Float64Var(&f.charge, "charge", 0, "many-body strength (negative repels)")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "initial placement seed")
}

func (f *layoutFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	if f.maxTicks > 0 {
		opts.MaxTicks = f.maxTicks
	}
	if f.width > 0 {
		opts.Engine.Width = f.width
	}
	if f.height > 0 {
		opts.Engine.Height = f.height
	}
	if f.charge != 0 {
		opts.Engine.Charge = f.charge
	}
	if cmd.Flags().Changed("seed") {
		opts.Engine.Seed = f.seed
	}
}

// layoutCommand creates the layout command for settling a snapshot.
func (c *CLI) layoutCommand() *cobra.Command {
	var flags layoutFlags

	cmd := &cobra.Command{
		Use:   "layout [graph.json|url]",
		Short: "Compute a force-directed layout from a snapshot",
		Long: `Compute a force-directed layout from a snapshot.

The layout command runs the simulation headless until it settles (or
--max-ticks is reached) and writes the node positions to a layout.json file
that 'render --layout' can draw without re-running the simulation.

Results are cached by snapshot content and physics parameters.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd, args[0], &flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (default: <input>.layout.json)")
	flags.register(cmd)

	return cmd
}

// runLayout loads the snapshot, computes the layout, and writes output.
func (c *CLI) runLayout(cmd *cobra.Command, input string, flags *layoutFlags) error {
	ctx := cmd.Context()
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := pipelineOptions(cfg, input)
	flags.apply(cmd, &opts)

	snap, err := runner.Fetch(ctx, opts)
	if err != nil {
		return fmt.Errorf("load snapshot %s: %w", input, err)
	}

	l, cacheHit, err := c.settle(ctx, runner, snap, opts)
	if err != nil {
		return err
	}

	outputPath := flags.output
	if outputPath == "" {
		outputPath = outputBase(input) + ".layout.json"
	}
	if err := graph.WriteLayoutFile(l, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	if l.Settled {
		printSuccess("Layout settled after %d ticks", l.Ticks)
	} else {
		printWarning("Layout stopped after %d ticks (alpha %.4f)", l.Ticks, l.Alpha)
	}
	printFile(outputPath)
	printStats(len(snap.Nodes), len(snap.Links), cacheHit)
	printNewline()
	printNextStep("Render", appName+" render "+input+" --layout "+outputPath)

	return nil
}

// settle runs the layout under a spinner.
func (c *CLI) settle(ctx context.Context, runner *pipeline.Runner, snap graph.Snapshot, opts pipeline.Options) (graph.Layout, bool, error) {
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Settling %d nodes...", len(snap.Nodes)))
	spinner.Start()
	prog := newProgress(loggerFromContext(ctx))

	l, cacheHit, err := runner.LayoutWithCacheInfo(ctx, snap, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return graph.Layout{}, false, fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return graph.Layout{}, false, ctx.Err()
	}
	prog.done(fmt.Sprintf("Layout of %d nodes ready", len(l.Positions)))
	return l, cacheHit, nil
}
