package force

import (
	"math"
	"testing"

	"github.com/matzehuels/sitegraph/pkg/errors"
)

func newDefault(t *testing.T, ids []string, links []LinkSpec) *Simulation {
	t.Helper()
	s := New(ids)
	if err := s.AddForce("link", NewLinkForce(links)); err != nil {
		t.Fatal(err)
	}
	if err := s.AddForce("charge", NewManyBody()); err != nil {
		t.Fatal(err)
	}
	if err := s.AddForce("x", NewXForce(-280)); err != nil {
		t.Fatal(err)
	}
	if err := s.AddForce("y", NewYForce(0)); err != nil {
		t.Fatal(err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return s
}

func runUntilSettled(t *testing.T, s *Simulation, limit int) {
	t.Helper()
	for range limit {
		if !s.Step() {
			break
		}
	}
	if s.State() != StateSettled {
		t.Fatalf("state after %d steps = %s, want settled", limit, s.State())
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{StateUninitialized, "uninitialized"},
		{StateRunning, "running"},
		{StateSettled, "settled"},
		{StateStopped, "stopped"},
		{State(42), "State(42)"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestStartPhyllotaxis(t *testing.T) {
	s := New([]string{"a", "b", "c"})
	if s.State() != StateUninitialized {
		t.Fatalf("state = %s", s.State())
	}
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	for i, b := range s.Bodies() {
		r := initialRadius * math.Sqrt(0.5+float64(i))
		a := float64(i) * initialAngle
		if b.X != r*math.Cos(a) || b.Y != r*math.Sin(a) {
			t.Errorf("body %d at (%v,%v), want phyllotaxis", i, b.X, b.Y)
		}
		if b.VX != 0 || b.VY != 0 {
			t.Errorf("body %d velocity = (%v,%v), want 0", i, b.VX, b.VY)
		}
	}
	if s.State() != StateRunning {
		t.Errorf("state = %s, want running", s.State())
	}
	if err := s.Start(); !errors.Is(err, errors.ErrCodeInternal) {
		t.Errorf("second Start err = %v, want INTERNAL_ERROR", err)
	}
}

func TestStartRejectsDanglingLink(t *testing.T) {
	s := New([]string{"a"})
	_ = s.AddForce("link", NewLinkForce([]LinkSpec{{Source: "a", Target: "b"}}))
	err := s.Start()
	if !errors.Is(err, errors.ErrCodeDanglingLink) {
		t.Fatalf("Start err = %v, want DANGLING_LINK", err)
	}
	if s.State() != StateUninitialized {
		t.Errorf("state = %s, want uninitialized", s.State())
	}
}

func TestSettles(t *testing.T) {
	s := newDefault(t, []string{"a", "b"}, []LinkSpec{{Source: "a", Target: "b"}})
	runUntilSettled(t, s, 1000)

	if s.Alpha() >= s.AlphaMin() {
		t.Errorf("alpha = %v, want < %v", s.Alpha(), s.AlphaMin())
	}
	if !s.Finite() {
		t.Fatal("non-finite positions after settling")
	}
	a, b := s.Body("a"), s.Body("b")
	if a.X == b.X && a.Y == b.Y {
		t.Error("linked nodes collapsed onto one point")
	}
	// alpha decays from 1 below 0.001 in roughly 300 steps
	if s.Ticks() < 250 || s.Ticks() > 350 {
		t.Errorf("settled after %d ticks, want about 300", s.Ticks())
	}
	if s.Step() {
		t.Error("Step advanced a settled simulation")
	}
}

func TestRestart(t *testing.T) {
	s := newDefault(t, []string{"a", "b"}, nil)
	runUntilSettled(t, s, 1000)

	s.SetAlphaTarget(0.3)
	s.Restart()
	if s.State() != StateRunning {
		t.Fatalf("state = %s, want running", s.State())
	}
	for range 500 {
		s.Step()
	}
	if s.State() != StateRunning {
		t.Errorf("alphaTarget 0.3 settled the simulation")
	}
	if math.Abs(s.Alpha()-0.3) > 0.01 {
		t.Errorf("alpha = %v, want about 0.3", s.Alpha())
	}

	s.SetAlphaTarget(0)
	runUntilSettled(t, s, 1000)
}

func TestStopIdempotent(t *testing.T) {
	s := newDefault(t, []string{"a"}, nil)
	s.Stop()
	s.Stop()
	if s.State() != StateStopped {
		t.Fatalf("state = %s, want stopped", s.State())
	}
	ticks := s.Ticks()
	s.Restart()
	s.Step()
	s.Tick(10)
	if s.State() != StateStopped || s.Ticks() != ticks {
		t.Errorf("stopped simulation advanced: state=%s ticks=%d", s.State(), s.Ticks())
	}
}

func TestStopBeforeStart(t *testing.T) {
	s := New([]string{"a"})
	s.Stop()
	if s.State() != StateStopped {
		t.Errorf("state = %s, want stopped", s.State())
	}
	if err := s.Start(); err == nil {
		t.Error("Start after Stop succeeded")
	}
}

func TestPinExact(t *testing.T) {
	s := newDefault(t, []string{"a", "b", "c"}, []LinkSpec{{Source: "a", Target: "b"}, {Source: "b", Target: "c"}})

	if err := s.Pin("a", 100, 50); err != nil {
		t.Fatal(err)
	}
	for i := range 50 {
		s.Step()
		a := s.Body("a")
		if a.X != 100 || a.Y != 50 {
			t.Fatalf("step %d: pinned body at (%v,%v), want (100,50)", i, a.X, a.Y)
		}
		if a.VX != 0 || a.VY != 0 {
			t.Fatalf("step %d: pinned body velocity (%v,%v)", i, a.VX, a.VY)
		}
	}
	if !s.Pinned("a") || s.Pinned("b") {
		t.Error("Pinned reports wrong state")
	}

	if err := s.Unpin("a"); err != nil {
		t.Fatal(err)
	}
	s.SetAlpha(1)
	s.Restart()
	s.Step()
	a := s.Body("a")
	if a.X == 100 && a.Y == 50 {
		t.Error("released body did not move")
	}
}

func TestPinUnknown(t *testing.T) {
	s := New([]string{"a"})
	if err := s.Pin("zz", 0, 0); !errors.Is(err, errors.ErrCodeNodeNotFound) {
		t.Errorf("Pin err = %v", err)
	}
	if err := s.Unpin("zz"); !errors.Is(err, errors.ErrCodeNodeNotFound) {
		t.Errorf("Unpin err = %v", err)
	}
}

func TestPinnedStillExertsForce(t *testing.T) {
	s := New([]string{"a", "b"})
	_ = s.AddForce("charge", NewManyBody())
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	_ = s.Pin("a", 0, 0)
	s.Body("a").X, s.Body("a").Y = 0, 0
	s.Body("b").X, s.Body("b").Y = 10, 0
	s.Step()
	if s.Body("b").X <= 10 {
		t.Errorf("b.X = %v, want pushed away from pinned a", s.Body("b").X)
	}
}

func TestDeterministic(t *testing.T) {
	ids := []string{"a", "b", "c", "d"}
	links := []LinkSpec{{"a", "b"}, {"b", "c"}, {"c", "a"}, {"c", "d"}}
	s1 := newDefault(t, ids, links)
	s2 := newDefault(t, ids, links)
	s1.Tick(120)
	s2.Tick(120)
	for i := range ids {
		b1, b2 := s1.Bodies()[i], s2.Bodies()[i]
		if b1.X != b2.X || b1.Y != b2.Y {
			t.Fatalf("body %s diverged: (%v,%v) vs (%v,%v)", b1.ID, b1.X, b1.Y, b2.X, b2.Y)
		}
	}
}

func TestTickHeadless(t *testing.T) {
	s := New([]string{"a"})
	s.Tick(5)
	if s.Ticks() != 0 {
		t.Error("Tick advanced an uninitialized simulation")
	}
	_ = s.Start()
	s.Tick(400)
	if s.Ticks() != 400 {
		t.Errorf("Ticks = %d, want 400", s.Ticks())
	}
	if s.State() != StateSettled {
		t.Errorf("state = %s, want settled", s.State())
	}
}

func TestAddForceAfterStart(t *testing.T) {
	s := New([]string{"a", "b"})
	_ = s.Start()
	err := s.AddForce("link", NewLinkForce([]LinkSpec{{Source: "a", Target: "nope"}}))
	if !errors.Is(err, errors.ErrCodeDanglingLink) {
		t.Errorf("AddForce err = %v, want DANGLING_LINK", err)
	}
	f := NewXForce(5)
	if err := s.AddForce("x", f); err != nil {
		t.Fatal(err)
	}
	g := NewXForce(9)
	if err := s.AddForce("x", g); err != nil {
		t.Fatal(err)
	}
	if i := s.indexOf("x"); i < 0 || s.forces[i].force != g || len(s.forces) != 1 {
		t.Errorf("AddForce(x) twice should replace, forces = %v", s.forces)
	}
	if s.indexOf("missing") != -1 {
		t.Error("indexOf(missing) != -1")
	}
}

func TestFind(t *testing.T) {
	s := New([]string{"a", "b"})
	_ = s.Start()
	s.Body("a").X, s.Body("a").Y = 0, 0
	s.Body("b").X, s.Body("b").Y = 100, 0

	tests := []struct {
		name   string
		x, y   float64
		radius float64
		want   string
	}{
		{"inside a", 3, 4, 15, "a"},
		{"edge inclusive", 15, 0, 15, "a"},
		{"miss", 50, 50, 15, ""},
		{"closest overall", 60, 0, math.Inf(1), "b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Find(tt.x, tt.y, tt.radius)
			id := ""
			if got != nil {
				id = got.ID
			}
			if id != tt.want {
				t.Errorf("Find = %q, want %q", id, tt.want)
			}
		})
	}
}

func TestEmptySimulation(t *testing.T) {
	s := newDefault(t, nil, nil)
	runUntilSettled(t, s, 1000)
	if s.Find(0, 0, math.Inf(1)) != nil {
		t.Error("Find on empty simulation returned a body")
	}
}
