package viewport

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestTransformApplyInvert(t *testing.T) {
	tr := Transform{K: 2, X: 10, Y: -5}
	x, y := tr.Apply(3, 4)
	if x != 16 || y != 3 {
		t.Fatalf("Apply = (%v,%v), want (16,3)", x, y)
	}
	wx, wy := tr.Invert(x, y)
	if wx != 3 || wy != 4 {
		t.Errorf("Invert = (%v,%v), want (3,4)", wx, wy)
	}
	if got := tr.String(); got != "translate(10,-5) scale(2)" {
		t.Errorf("String = %q", got)
	}
}

func TestZoomAtKeepsAnchor(t *testing.T) {
	tests := []struct {
		name   string
		start  Transform
		sx, sy float64
		factor float64
		wantK  float64
	}{
		{"zoom in", Identity, 100, 50, 2, 2},
		{"zoom out", Transform{K: 2, X: 30, Y: 40}, -20, 10, 0.5, 1},
		{"clamped high", Identity, 0, 0, 100, 4},
		{"clamped low", Identity, 7, 7, 0.001, 0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wx, wy := tt.start.Invert(tt.sx, tt.sy)
			got := tt.start.ZoomAt(tt.sx, tt.sy, tt.factor, DefaultExtent)
			if got.K != tt.wantK {
				t.Errorf("K = %v, want %v", got.K, tt.wantK)
			}
			ax, ay := got.Apply(wx, wy)
			if math.Abs(ax-tt.sx) > 1e-9 || math.Abs(ay-tt.sy) > 1e-9 {
				t.Errorf("anchor moved to (%v,%v), want (%v,%v)", ax, ay, tt.sx, tt.sy)
			}
		})
	}
}

func TestZoomAtRejectsBadFactor(t *testing.T) {
	start := Transform{K: 1.5, X: 3, Y: 4}
	for _, f := range []float64{0, -2, math.NaN()} {
		if got := start.ZoomAt(0, 0, f, DefaultExtent); got != start {
			t.Errorf("factor %v changed transform to %+v", f, got)
		}
	}
	if got := start.ZoomAt(0, 0, math.Inf(1), DefaultExtent); got.K != 4 {
		t.Errorf("infinite factor K = %v, want 4", got.K)
	}
}

func TestExtentClamp(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{1, 1},
		{0.05, 0.1},
		{10, 4},
		{-1, 0.1},
		{math.NaN(), 0.1},
		{math.Inf(1), 4},
		{math.Inf(-1), 0.1},
	}
	for _, tt := range tests {
		if got := DefaultExtent.Clamp(tt.in); got != tt.want {
			t.Errorf("Clamp(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestViewport(t *testing.T) {
	v := New(Extent{})
	if v.Extent() != DefaultExtent {
		t.Fatalf("zero extent not defaulted: %+v", v.Extent())
	}
	if v.Transform() != Identity {
		t.Fatalf("initial transform = %+v", v.Transform())
	}

	v.Set(v.Transform().Translate(10, 20))
	if tr := v.Transform(); tr.X != 10 || tr.Y != 20 {
		t.Errorf("translate = %+v", tr)
	}
	v.Set(v.Transform().Translate(math.NaN(), 1))
	if tr := v.Transform(); tr.X != 10 || tr.Y != 20 {
		t.Errorf("NaN translate applied: %+v", tr)
	}

	v.Set(Transform{K: 9, X: 1, Y: 2})
	if tr := v.Transform(); tr.K != 4 || tr.X != 1 {
		t.Errorf("Set did not clamp: %+v", tr)
	}
	v.Set(Transform{K: 1, X: math.Inf(1)})
	if v.Transform().K != 4 {
		t.Errorf("non-finite Set applied: %+v", v.Transform())
	}

	wx, wy := v.ScreenToWorld(v.Transform().Apply(12, -3))
	if math.Abs(wx-12) > 1e-12 || math.Abs(wy+3) > 1e-12 {
		t.Errorf("round trip = (%v,%v)", wx, wy)
	}

	v.Reset()
	if v.Transform() != Identity {
		t.Errorf("Reset = %+v", v.Transform())
	}
}

func TestFit(t *testing.T) {
	b := Bounds{MinX: -100, MinY: -50, MaxX: 300, MaxY: 150}
	tr := Fit(b, 1400, 700, 40, DefaultExtent)
	// center of bounds lands on the view origin
	cx, cy := tr.Apply(100, 50)
	if math.Abs(cx) > 1e-9 || math.Abs(cy) > 1e-9 {
		t.Errorf("center maps to (%v,%v), want origin", cx, cy)
	}
	if want := math.Min(1320.0/400, 620.0/200); tr.K != math.Min(want, 4) {
		t.Errorf("K = %v, want %v", tr.K, want)
	}

	single := Fit(Bounds{MinX: 5, MinY: 5, MaxX: 5, MaxY: 5}, 1400, 700, 40, DefaultExtent)
	if single.K != 4 {
		t.Errorf("single point K = %v, want clamped to 4", single.K)
	}
	if x, y := single.Apply(5, 5); x != 0 || y != 0 {
		t.Errorf("single point maps to (%v,%v)", x, y)
	}
}

// TestScaleAlwaysClamped checks the scale invariant for arbitrary gestures.
func TestScaleAlwaysClamped(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("scale stays within extent", prop.ForAll(
		func(factors []float64, sx, sy float64) bool {
			v := New(DefaultExtent)
			for _, f := range factors {
				v.Set(v.Transform().ZoomAt(sx, sy, f, v.Extent()))
				if !DefaultExtent.Contains(v.Transform().K) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Float64()),
		gen.Float64Range(-700, 700),
		gen.Float64Range(-350, 350),
	))

	properties.Property("set clamps any scale", prop.ForAll(
		func(k float64) bool {
			v := New(DefaultExtent)
			return DefaultExtent.Contains(v.Set(Transform{K: k}).K)
		},
		gen.Float64(),
	))

	properties.TestingRun(t)
}

func TestDebouncer(t *testing.T) {
	base := time.Unix(0, 0)
	d := NewDebouncer[Transform](DefaultDebounceWindow)

	if _, ok := d.Due(base); ok {
		t.Fatal("empty debouncer released a value")
	}

	d.Offer(Transform{K: 1.1}, base)
	d.Offer(Transform{K: 1.2}, base.Add(200*time.Microsecond))
	d.Offer(Transform{K: 1.3}, base.Add(400*time.Microsecond))

	if _, ok := d.Due(base.Add(time.Millisecond)); ok {
		t.Error("released before the window elapsed since the last offer")
	}
	got, ok := d.Due(base.Add(1400 * time.Microsecond))
	if !ok || got.K != 1.3 {
		t.Fatalf("Due = %+v, %v; want latest K=1.3", got, ok)
	}
	if d.Dropped() != 2 {
		t.Errorf("Dropped = %d, want 2", d.Dropped())
	}
	if _, ok := d.Due(base.Add(time.Hour)); ok {
		t.Error("value released twice")
	}
}

func TestDebouncerFlushReset(t *testing.T) {
	now := time.Now()
	d := NewDebouncer[int](time.Second)
	d.Offer(7, now)
	if v, ok := d.Pending(); !ok || v != 7 {
		t.Errorf("Pending = %v, %v", v, ok)
	}
	if v, ok := d.Flush(); !ok || v != 7 {
		t.Errorf("Flush = %v, %v", v, ok)
	}
	if _, ok := d.Flush(); ok {
		t.Error("second Flush released a value")
	}
	d.Offer(8, now)
	d.Reset()
	if _, ok := d.Due(now.Add(time.Hour)); ok {
		t.Error("Reset did not discard the value")
	}
	if d.Window() != time.Second {
		t.Errorf("Window = %v", d.Window())
	}
}
