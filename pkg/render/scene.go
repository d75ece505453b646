package render

import (
	"math"

	"github.com/matzehuels/sitegraph/pkg/force"
	"github.com/matzehuels/sitegraph/pkg/graph"
	"github.com/matzehuels/sitegraph/pkg/viewport"
)

// Marker is the circle drawn for a node.
type Marker struct {
	ID          string  `json:"id"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Radius      float64 `json:"r"`
	Fill        string  `json:"fill"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"stroke_width"`
	Selected    bool    `json:"selected,omitempty"`
	Hovered     bool    `json:"hovered,omitempty"`
	Pinned      bool    `json:"pinned,omitempty"`
}

// Line is the segment drawn for a link.
type Line struct {
	ID      string  `json:"id,omitempty"`
	Source  string  `json:"source"`
	Target  string  `json:"target"`
	X1      float64 `json:"x1"`
	Y1      float64 `json:"y1"`
	X2      float64 `json:"x2"`
	Y2      float64 `json:"y2"`
	Width   float64 `json:"width"`
	Stroke  string  `json:"stroke"`
	Opacity float64 `json:"opacity"`

	src, tgt int
}

// Label is the text drawn next to a node. DX and DY are view-space offsets
// from the anchor (X, Y).
type Label struct {
	ID       string  `json:"id"`
	Text     string  `json:"text"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	DX       float64 `json:"dx"`
	DY       float64 `json:"dy"`
	FontSize float64 `json:"font_size"`
	Color    string  `json:"color"`
}

// Scene is the world-space visual state of one loaded snapshot. Markers and
// labels are in node order; lines are in link order.
type Scene struct {
	Markers []Marker
	Lines   []Line
	Labels  []Label

	theme Theme
	style Style
	nodes []*graph.Node
}

// NewScene builds a scene for a loaded snapshot. Positions are zero until
// the first Sync.
func NewScene(l *graph.Loaded, theme Theme, style Style) *Scene {
	style = style.withDefaults()
	s := &Scene{
		Markers: make([]Marker, len(l.Nodes)),
		Labels:  make([]Label, len(l.Nodes)),
		Lines:   make([]Line, len(l.Links)),
		style:   style,
		nodes:   l.Nodes,
	}
	for i, n := range l.Nodes {
		s.Markers[i] = Marker{
			ID:          n.ID,
			Radius:      style.NodeRadius,
			Stroke:      style.NodeStroke,
			StrokeWidth: style.NodeStrokeWidth,
		}
		s.Labels[i] = Label{
			ID:       n.ID,
			Text:     n.DisplayLabel(),
			DX:       style.LabelDX,
			DY:       style.LabelDY,
			FontSize: style.FontSize,
		}
	}
	for i, lk := range l.Links {
		src, _ := l.Index(lk.Source)
		tgt, _ := l.Index(lk.Target)
		s.Lines[i] = Line{
			ID:      lk.ID,
			Source:  lk.Source,
			Target:  lk.Target,
			Width:   lk.StrokeWidth(),
			Stroke:  style.LinkStroke,
			Opacity: style.LinkOpacity,
			src:     src,
			tgt:     tgt,
		}
	}
	s.Restyle(theme)
	return s
}

// Sync copies body positions into the scene. bodies must be in node order.
// Only geometry is written.
func (s *Scene) Sync(bodies []*force.Body) {
	for i, b := range bodies {
		if i >= len(s.Markers) {
			break
		}
		s.Markers[i].X, s.Markers[i].Y = b.X, b.Y
		s.Markers[i].Pinned = b.Fixed
		s.Labels[i].X, s.Labels[i].Y = b.X, b.Y
	}
	for i := range s.Lines {
		ln := &s.Lines[i]
		src, tgt := s.Markers[ln.src], s.Markers[ln.tgt]
		ln.X1, ln.Y1 = src.X, src.Y
		ln.X2, ln.Y2 = tgt.X, tgt.Y
	}
}

// Restyle applies the color policy for theme. Only colors are written.
func (s *Scene) Restyle(theme Theme) {
	s.theme = theme
	for i, n := range s.nodes {
		s.Markers[i].Fill = ColorFor(n)
		s.Labels[i].Color = theme.LabelColor()
	}
}

// Theme returns the theme of the last Restyle.
func (s *Scene) Theme() Theme { return s.theme }

// Style returns the scene's visual parameters.
func (s *Scene) Style() Style { return s.style }

// Mark flags the selected and hovered markers; empty ids clear the flags.
func (s *Scene) Mark(selected, hovered string) {
	for i := range s.Markers {
		m := &s.Markers[i]
		m.Selected = selected != "" && m.ID == selected
		m.Hovered = hovered != "" && m.ID == hovered
	}
}

// Bounds returns the world rectangle covering every marker, including its
// radius. An empty scene has zero bounds.
func (s *Scene) Bounds() viewport.Bounds {
	if len(s.Markers) == 0 {
		return viewport.Bounds{}
	}
	b := viewport.Bounds{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
	for _, m := range s.Markers {
		b.MinX = math.Min(b.MinX, m.X-m.Radius)
		b.MinY = math.Min(b.MinY, m.Y-m.Radius)
		b.MaxX = math.Max(b.MaxX, m.X+m.Radius)
		b.MaxY = math.Max(b.MaxY, m.Y+m.Radius)
	}
	return b
}
