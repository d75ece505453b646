package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/sitegraph/pkg/errors"
	"github.com/matzehuels/sitegraph/pkg/force"
	"github.com/matzehuels/sitegraph/pkg/graph"
	"github.com/matzehuels/sitegraph/pkg/render"
	"github.com/matzehuels/sitegraph/pkg/viewport"
)

// ProjectLayout rebuilds the scene of s at the positions in l and projects
// it through a transform that fits the whole graph into the canvas.
func ProjectLayout(s graph.Snapshot, l graph.Layout, opts Options) (render.Frame, error) {
	opts.SetLayoutDefaults()
	opts.SetRenderDefaults()

	loaded, err := graph.Load(s)
	if err != nil {
		return render.Frame{}, err
	}

	pos := make(map[string]graph.Position, len(l.Positions))
	for _, p := range l.Positions {
		pos[p.ID] = p
	}
	bodies := make([]*force.Body, len(loaded.Nodes))
	for i, n := range loaded.Nodes {
		p, ok := pos[n.ID]
		if !ok {
			return render.Frame{}, errors.New(errors.ErrCodeInvalidInput, "layout has no position for node %q", n.ID)
		}
		bodies[i] = &force.Body{ID: n.ID, Index: i, X: p.X, Y: p.Y, Fixed: p.Pinned, FX: p.X, FY: p.Y}
	}

	scene := render.NewScene(loaded, render.Theme(opts.Theme), opts.Engine.Style)
	scene.Sync(bodies)

	width, height := l.Width, l.Height
	if width <= 0 || height <= 0 {
		width, height = opts.Engine.Width, opts.Engine.Height
	}
	extent := opts.Engine.Extent
	if extent == (viewport.Extent{}) {
		extent = viewport.DefaultExtent
	}
	t := viewport.Fit(scene.Bounds(), width, height, opts.Padding, extent)

	f := scene.Project(t, width, height)
	f.Tick = l.Ticks
	f.Alpha = l.Alpha
	if opts.NoLabels {
		f.Labels = []render.Label{}
	}
	return f, nil
}

// RenderFromLayout writes the projected layout in every requested format.
func RenderFromLayout(ctx context.Context, s graph.Snapshot, l graph.Layout, opts Options) (map[string][]byte, error) {
	f, err := ProjectLayout(s, l, opts)
	if err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := renderFormat(ctx, f, format, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderFormat(ctx context.Context, f render.Frame, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatSVG:
		var svgOpts []render.SVGOption
		if opts.Title != "" {
			svgOpts = append(svgOpts, render.WithTitle(opts.Title))
		}
		if opts.NoLabels {
			svgOpts = append(svgOpts, render.WithoutLabels())
		}
		return render.RenderSVG(f, svgOpts...), nil
	case FormatDOT:
		return []byte(render.ToDOT(f)), nil
	case FormatGraphviz:
		return render.RenderDOTSVG(ctx, render.ToDOT(f))
	case FormatJSON:
		return json.MarshalIndent(f, "", "  ")
	}
	return nil, ValidateFormat(format)
}
