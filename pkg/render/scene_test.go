package render

import (
	"math"
	"testing"

	"github.com/matzehuels/sitegraph/pkg/force"
	"github.com/matzehuels/sitegraph/pkg/graph"
	"github.com/matzehuels/sitegraph/pkg/viewport"
)

func loadTwo(t *testing.T) *graph.Loaded {
	t.Helper()
	l, err := graph.Load(graph.Snapshot{
		Nodes: []graph.Node{
			{ID: "a", Label: "Home", Type: graph.TypePage},
			{ID: "b", Group: 3},
		},
		Links: []graph.Link{{ID: "l1", Source: "a", Target: "b", Value: 4}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func bodiesAt(pts ...[2]float64) []*force.Body {
	out := make([]*force.Body, len(pts))
	for i, p := range pts {
		out[i] = &force.Body{Index: i, X: p[0], Y: p[1]}
	}
	return out
}

func TestColorFor(t *testing.T) {
	tests := []struct {
		name string
		node graph.Node
		want string
	}{
		{"page", graph.Node{Type: graph.TypePage}, "lightblue"},
		{"api", graph.Node{Type: graph.TypeAPI}, "red"},
		{"interaction", graph.Node{Type: graph.TypeInteraction}, "purple"},
		{"untyped group 0", graph.Node{}, Category10[0]},
		{"unknown type group 3", graph.Node{Type: "form", Group: 3}, Category10[3]},
		{"group wraps", graph.Node{Group: 12}, Category10[2]},
		{"negative group wraps", graph.Node{Group: -1}, Category10[9]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ColorFor(&tt.node); got != tt.want {
				t.Errorf("ColorFor = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseTheme(t *testing.T) {
	for in, want := range map[string]Theme{"light": ThemeLight, "DARK": ThemeDark, " dark ": ThemeDark} {
		got, err := ParseTheme(in)
		if err != nil || got != want {
			t.Errorf("ParseTheme(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseTheme("sepia"); err == nil {
		t.Error("ParseTheme(sepia) succeeded")
	}
	if ThemeLight.LabelColor() != "black" || ThemeDark.LabelColor() != "white" {
		t.Error("label colors")
	}
	if ThemeLight.Toggle() != ThemeDark || ThemeDark.Toggle() != ThemeLight {
		t.Error("Toggle")
	}
}

func TestNewScene(t *testing.T) {
	s := NewScene(loadTwo(t), ThemeLight, Style{})

	if len(s.Markers) != 2 || len(s.Lines) != 1 || len(s.Labels) != 2 {
		t.Fatalf("scene sizes %d/%d/%d", len(s.Markers), len(s.Lines), len(s.Labels))
	}
	if m := s.Markers[0]; m.Radius != 15 || m.Fill != "lightblue" || m.Stroke != "#fff" || m.StrokeWidth != 1.5 {
		t.Errorf("marker a = %+v", m)
	}
	if s.Markers[1].Fill != Category10[3] {
		t.Errorf("marker b fill = %q", s.Markers[1].Fill)
	}
	if ln := s.Lines[0]; ln.Width != 2 || ln.Stroke != "#999" || ln.Opacity != 0.6 {
		t.Errorf("line = %+v", ln)
	}
	if lb := s.Labels[0]; lb.Text != "Home" || lb.DX != 20 || lb.FontSize != 14 || lb.Color != "black" {
		t.Errorf("label a = %+v", lb)
	}
	if s.Labels[1].Text != "b" {
		t.Errorf("label b text = %q, want id fallback", s.Labels[1].Text)
	}
}

func TestSync(t *testing.T) {
	s := NewScene(loadTwo(t), ThemeLight, Style{})
	bodies := bodiesAt([2]float64{1, 2}, [2]float64{30, 40})
	bodies[1].Fixed = true
	s.Sync(bodies)

	if s.Markers[0].X != 1 || s.Markers[1].Y != 40 {
		t.Errorf("markers = %+v", s.Markers)
	}
	if !s.Markers[1].Pinned || s.Markers[0].Pinned {
		t.Error("pinned flags")
	}
	if ln := s.Lines[0]; ln.X1 != 1 || ln.Y1 != 2 || ln.X2 != 30 || ln.Y2 != 40 {
		t.Errorf("line = %+v", ln)
	}
	if s.Labels[1].X != 30 || s.Labels[1].Y != 40 {
		t.Errorf("label anchor = %+v", s.Labels[1])
	}
	if s.Markers[0].Fill != "lightblue" {
		t.Error("Sync changed colors")
	}
}

func TestRestyleKeepsGeometry(t *testing.T) {
	s := NewScene(loadTwo(t), ThemeLight, Style{})
	s.Sync(bodiesAt([2]float64{5, 6}, [2]float64{7, 8}))
	before := s.Project(viewport.Identity, 1400, 700)

	s.Restyle(ThemeDark)
	after := s.Project(viewport.Identity, 1400, 700)

	for i := range before.Markers {
		if before.Markers[i].X != after.Markers[i].X || before.Markers[i].Y != after.Markers[i].Y {
			t.Errorf("marker %d moved on restyle", i)
		}
	}
	if after.Labels[0].Color != "white" || after.Theme != ThemeDark {
		t.Errorf("dark label color = %q", after.Labels[0].Color)
	}
	if s.Theme() != ThemeDark {
		t.Error("Theme() not updated")
	}
}

func TestProject(t *testing.T) {
	s := NewScene(loadTwo(t), ThemeLight, Style{})
	s.Sync(bodiesAt([2]float64{10, 0}, [2]float64{0, 10}))

	tr := viewport.Transform{K: 2, X: 100, Y: -50}
	f := s.Project(tr, 1400, 700)

	m := f.Markers[0]
	if m.X != 120 || m.Y != -50 || m.Radius != 30 || m.StrokeWidth != 3 {
		t.Errorf("projected marker = %+v", m)
	}
	if ln := f.Lines[0]; ln.X1 != 120 || ln.X2 != 100 || ln.Y2 != -30 || ln.Width != 4 {
		t.Errorf("projected line = %+v", ln)
	}
	// label offset is screen space and does not scale with zoom
	if lb := f.Labels[0]; lb.X != 120 || lb.DX != 20 || lb.FontSize != 14 {
		t.Errorf("projected label = %+v", lb)
	}
	// projecting does not mutate the scene
	if s.Markers[0].X != 10 || s.Markers[0].Radius != 15 {
		t.Error("Project mutated the scene")
	}
	if got, ok := f.Marker("b"); !ok || got.Y != -30 {
		t.Errorf("Marker(b) = %+v, %v", got, ok)
	}
}

func TestMarkAndBounds(t *testing.T) {
	s := NewScene(loadTwo(t), ThemeLight, Style{})
	s.Sync(bodiesAt([2]float64{-100, 0}, [2]float64{100, 50}))

	s.Mark("a", "b")
	if !s.Markers[0].Selected || s.Markers[0].Hovered || !s.Markers[1].Hovered {
		t.Errorf("marks = %+v", s.Markers)
	}
	s.Mark("", "")
	if s.Markers[0].Selected || s.Markers[1].Hovered {
		t.Error("empty Mark did not clear")
	}

	b := s.Bounds()
	if b.MinX != -115 || b.MaxX != 115 || b.MinY != -15 || b.MaxY != 65 {
		t.Errorf("Bounds = %+v", b)
	}
}

func TestEmptyScene(t *testing.T) {
	l, _ := graph.Load(graph.Snapshot{})
	s := NewScene(l, ThemeDark, Style{})
	s.Sync(nil)
	f := s.Project(viewport.Identity, 100, 100)
	if f.Markers == nil || f.Lines == nil || f.Labels == nil {
		t.Error("empty frame has nil slices")
	}
	if b := s.Bounds(); b != (viewport.Bounds{}) {
		t.Errorf("empty bounds = %+v", b)
	}
}

func TestCustomStyle(t *testing.T) {
	s := NewScene(loadTwo(t), ThemeLight, Style{NodeRadius: 8, FontSize: 10})
	if s.Markers[0].Radius != 8 || s.Labels[0].FontSize != 10 || s.Labels[0].DX != 20 {
		t.Errorf("custom style not merged with defaults: %+v %+v", s.Markers[0], s.Labels[0])
	}
	if math.Abs(s.Style().LinkOpacity-0.6) > 1e-12 {
		t.Error("Style() lost defaults")
	}
}
