package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// SVGOption configures RenderSVG.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	background string
	title      string
	labels     bool
}

// WithBackground fills the canvas with color. The default is the frame
// theme's background.
func WithBackground(color string) SVGOption { return func(r *svgRenderer) { r.background = color } }

// WithTitle adds a <title> element.
func WithTitle(title string) SVGOption { return func(r *svgRenderer) { r.title = title } }

// WithoutLabels omits node labels.
func WithoutLabels() SVGOption { return func(r *svgRenderer) { r.labels = false } }

// RenderSVG writes a frame as a standalone SVG document. The viewBox is
// centered on the view origin.
func RenderSVG(f Frame, opts ...SVGOption) []byte {
	r := svgRenderer{background: f.Theme.Background(), labels: true}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%g %g %g %g" width="%g" height="%g">`+"\n",
		-f.Width/2, -f.Height/2, f.Width, f.Height, f.Width, f.Height)
	if r.title != "" {
		buf.WriteString("  <title>")
		escape(&buf, r.title)
		buf.WriteString("</title>\n")
	}
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect x="%g" y="%g" width="%g" height="%g" fill="%s"/>`+"\n",
			-f.Width/2, -f.Height/2, f.Width, f.Height, r.background)
	}

	buf.WriteString(`  <g class="links">` + "\n")
	for _, ln := range f.Lines {
		fmt.Fprintf(&buf, `    <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-opacity="%g" stroke-width="%.3f"/>`+"\n",
			ln.X1, ln.Y1, ln.X2, ln.Y2, ln.Stroke, ln.Opacity, ln.Width)
	}
	buf.WriteString("  </g>\n")

	buf.WriteString(`  <g class="nodes">` + "\n")
	for _, m := range f.Markers {
		renderMarker(&buf, m)
	}
	buf.WriteString("  </g>\n")

	if r.labels {
		buf.WriteString(`  <g class="labels">` + "\n")
		for _, lb := range f.Labels {
			fmt.Fprintf(&buf, `    <text x="%.2f" y="%.2f" fill="%s" font-size="%gpx">`,
				lb.X+lb.DX, lb.Y+lb.DY, lb.Color, lb.FontSize)
			escape(&buf, lb.Text)
			buf.WriteString("</text>\n")
		}
		buf.WriteString("  </g>\n")
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderMarker(buf *bytes.Buffer, m Marker) {
	if m.Selected || m.Hovered {
		ring := m.Radius + 3
		width := 2.0
		if !m.Selected {
			ring, width = m.Radius+2, 1.5
		}
		fmt.Fprintf(buf, `    <circle cx="%.2f" cy="%.2f" r="%.2f" fill="none" stroke="#f59e0b" stroke-width="%g"/>`+"\n",
			m.X, m.Y, ring, width)
	}
	buf.WriteString(`    <circle id="node-`)
	escape(buf, m.ID)
	fmt.Fprintf(buf, `" cx="%.2f" cy="%.2f" r="%.2f" fill="%s" stroke="%s" stroke-width="%.3f"/>`+"\n",
		m.X, m.Y, m.Radius, m.Fill, m.Stroke, m.StrokeWidth)
}

func escape(buf *bytes.Buffer, s string) {
	_ = xml.EscapeText(buf, []byte(s))
}
