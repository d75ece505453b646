package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"
)

// pointsPerUnit converts view units (CSS px) to Graphviz points.
const pointsPerUnit = 0.75

// ToDOT exports a frame as an undirected Graphviz graph. Every node carries
// a pinned position ("x,y!") so the neato engine reproduces the simulated
// layout instead of computing its own. Graphviz's y axis points up, so y is
// negated.
func ToDOT(f Frame) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	fmt.Fprintf(&buf, "  bgcolor=%q;\n", f.Theme.Background())
	buf.WriteString("  splines=line;\n")
	buf.WriteString("  overlap=true;\n")
	buf.WriteString("  node [shape=circle, style=filled, fixedsize=true, fontname=\"Helvetica\"];\n")
	buf.WriteString("\n")

	labelColor := f.Theme.LabelColor()
	for i, m := range f.Markers {
		label := ""
		if i < len(f.Labels) {
			label = f.Labels[i].Text
		}
		y := -m.Y * pointsPerUnit
		if y == 0 {
			y = 0 // drop the sign of -0
		}
		attrs := []string{
			fmt.Sprintf("pos=\"%.2f,%.2f!\"", m.X*pointsPerUnit, y),
			fmt.Sprintf("width=%.3f", 2*m.Radius/96),
			fmt.Sprintf("fillcolor=%q", m.Fill),
			fmt.Sprintf("color=%q", m.Stroke),
			fmt.Sprintf("xlabel=%q", label),
			fmt.Sprintf("fontcolor=%q", labelColor),
			"label=\"\"",
		}
		if m.Selected {
			attrs = append(attrs, "penwidth=3", "color=\"#f59e0b\"")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", m.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, ln := range f.Lines {
		fmt.Fprintf(&buf, "  %q -- %q [penwidth=%.3f, color=%q];\n",
			ln.Source, ln.Target, ln.Width*pointsPerUnit, ln.Stroke)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderDOTSVG renders DOT source to SVG with the neato engine, honoring
// pinned positions.
func RenderDOTSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
