package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sitegraph/pkg/graph"
	"github.com/matzehuels/sitegraph/pkg/pipeline"
)

// renderFlags holds the render-only command-line flags.
type renderFlags struct {
	layoutFlags
	layout   string // precomputed layout.json; skips the simulation
	formats  string // comma-separated output formats
	theme    string // light or dark
	noLabels bool
	title    string
	padding  float64
}

// renderCommand creates the render command for generating artifacts.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render [graph.json|url]",
		Short: "Render a snapshot to SVG, DOT or JSON",
		Long: `Render a snapshot to one or more artifacts.

Formats:
  svg       native SVG, fitted to the canvas
  dot       Graphviz source with pinned positions
  graphviz  SVG drawn by Graphviz from the pinned positions
  json      the projected frame (markers, lines, labels)

Without --layout the snapshot is settled first; with --layout the positions
are taken from a file written by 'layout'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], &flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "output format(s): svg (default), dot, graphviz, json (comma-separated)")
	cmd.Flags().StringVar(&flags.layout, "layout", "", "render positions from a layout.json instead of settling")
	cmd.Flags().StringVar(&flags.theme, "theme", "", "color theme: light, dark (default from config)")
	cmd.Flags().BoolVar(&flags.noLabels, "no-labels", false, "omit node labels")
	cmd.Flags().StringVar(&flags.title, "title", "", "document title")
	cmd.Flags().Float64Var(&flags.padding, "padding", 0, "margin kept around the graph")
	flags.register(cmd)

	return cmd
}

// runRender loads the snapshot, renders every requested format, and writes
// the artifacts.
func (c *CLI) runRender(cmd *cobra.Command, input string, flags *renderFlags) error {
	ctx := cmd.Context()
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	opts := pipelineOptions(cfg, input)
	flags.apply(cmd, &opts)
	opts.Formats = parseFormats(flags.formats)
	if flags.theme != "" {
		opts.Theme = flags.theme
	}
	if flags.padding > 0 {
		opts.Padding = flags.padding
	}
	opts.NoLabels = flags.noLabels
	opts.Title = flags.title
	if err := opts.ValidateForRender(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, cfg, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	snap, err := runner.Fetch(ctx, opts)
	if err != nil {
		return fmt.Errorf("load snapshot %s: %w", input, err)
	}

	var l graph.Layout
	layoutHit := false
	if flags.layout != "" {
		if l, err = readLayoutFile(flags.layout); err != nil {
			return err
		}
		layoutHit = true
	} else if l, layoutHit, err = c.settle(ctx, runner, snap, opts); err != nil {
		return err
	}

	artifacts, renderHit, err := c.renderArtifacts(ctx, runner, snap, l, opts)
	if err != nil {
		return err
	}

	paths, err := writeArtifacts(artifacts, opts.Formats, input, flags.output)
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", strings.Join(opts.Formats, ", "))
	for _, p := range paths {
		printFile(p)
	}
	printStats(len(snap.Nodes), len(snap.Links), layoutHit && renderHit)
	return nil
}

func (c *CLI) renderArtifacts(ctx context.Context, runner *pipeline.Runner, snap graph.Snapshot, l graph.Layout, opts pipeline.Options) (map[string][]byte, bool, error) {
	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()
	artifacts, hit, err := runner.RenderWithCacheInfo(ctx, snap, l, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return nil, false, fmt.Errorf("render: %w", err)
	}
	spinner.Stop()
	return artifacts, hit, nil
}

// writeArtifacts writes one file per format. A single format goes to output
// verbatim when it is set; otherwise files are named <base>.<ext>.
func writeArtifacts(artifacts map[string][]byte, formats []string, input, output string) ([]string, error) {
	var paths []string
	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			return nil, fmt.Errorf("render: no %s output", format)
		}
		path := output
		if path == "" || len(formats) > 1 {
			base := output
			if base == "" {
				base = outputBase(input)
			}
			path = base + "." + pipeline.Extension(format)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("write output %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func readLayoutFile(path string) (graph.Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return graph.Layout{}, fmt.Errorf("read layout %s: %w", path, err)
	}
	l, err := graph.UnmarshalLayout(data)
	if err != nil {
		return graph.Layout{}, fmt.Errorf("parse layout %s: %w", path, err)
	}
	return l, nil
}
