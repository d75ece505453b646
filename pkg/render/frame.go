package render

import (
	"slices"

	"github.com/matzehuels/sitegraph/pkg/viewport"
)

// Frame is a scene projected into view coordinates, ready for a sink. The
// view origin is the canvas center.
type Frame struct {
	Width     float64            `json:"width"`
	Height    float64            `json:"height"`
	Theme     Theme              `json:"theme"`
	Transform viewport.Transform `json:"transform"`
	Tick      int                `json:"tick"`
	Alpha     float64            `json:"alpha"`

	Markers []Marker `json:"markers"`
	Lines   []Line   `json:"lines"`
	Labels  []Label  `json:"labels"`
}

// Project applies t to the scene. Marker radii, stroke widths and line
// widths scale with t.K; label offsets and font size do not.
func (s *Scene) Project(t viewport.Transform, width, height float64) Frame {
	f := Frame{
		Width:     width,
		Height:    height,
		Theme:     s.theme,
		Transform: t,
		Markers:   slices.Clone(s.Markers),
		Lines:     slices.Clone(s.Lines),
		Labels:    slices.Clone(s.Labels),
	}
	if f.Markers == nil {
		f.Markers = []Marker{}
	}
	if f.Lines == nil {
		f.Lines = []Line{}
	}
	if f.Labels == nil {
		f.Labels = []Label{}
	}
	for i := range f.Markers {
		m := &f.Markers[i]
		m.X, m.Y = t.Apply(m.X, m.Y)
		m.Radius = t.Scale(m.Radius)
		m.StrokeWidth = t.Scale(m.StrokeWidth)
	}
	for i := range f.Lines {
		ln := &f.Lines[i]
		ln.X1, ln.Y1 = t.Apply(ln.X1, ln.Y1)
		ln.X2, ln.Y2 = t.Apply(ln.X2, ln.Y2)
		ln.Width = t.Scale(ln.Width)
	}
	for i := range f.Labels {
		lb := &f.Labels[i]
		lb.X, lb.Y = t.Apply(lb.X, lb.Y)
	}
	return f
}

// Marker returns the frame marker for id.
func (f Frame) Marker(id string) (Marker, bool) {
	for _, m := range f.Markers {
		if m.ID == id {
			return m, true
		}
	}
	return Marker{}, false
}
