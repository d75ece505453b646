package force

import (
	"math"
	"math/rand/v2"
	"testing"
)

func scatter(n int, seed uint64) []*Body {
	rng := rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
	bodies := make([]*Body, n)
	for i := range bodies {
		bodies[i] = &Body{ID: string(rune('a' + i%26)), Index: i, X: rng.Float64()*800 - 400, Y: rng.Float64()*600 - 300}
	}
	return bodies
}

// bruteForce applies the exact O(n^2) charge.
func bruteForce(bodies []*Body, strength, alpha float64) {
	for _, n := range bodies {
		for _, o := range bodies {
			if n == o {
				continue
			}
			x, y := o.X-n.X, o.Y-n.Y
			l := x*x + y*y
			if l < 1 {
				l = math.Sqrt(l)
			}
			n.VX += x * strength * alpha / l
			n.VY += y * strength * alpha / l
		}
	}
}

func TestManyBodyExactWithZeroTheta(t *testing.T) {
	approx := scatter(40, 7)
	exact := scatter(40, 7)

	f := NewManyBody()
	f.Theta = 0
	_ = f.Initialize(approx, rand.New(rand.NewPCG(1, 2)))
	f.Apply(0.5)
	bruteForce(exact, DefaultCharge, 0.5)

	for i := range approx {
		if math.Abs(approx[i].VX-exact[i].VX) > 1e-9 || math.Abs(approx[i].VY-exact[i].VY) > 1e-9 {
			t.Fatalf("body %d: quadtree (%v,%v) vs exact (%v,%v)", i, approx[i].VX, approx[i].VY, exact[i].VX, exact[i].VY)
		}
	}
}

func TestManyBodyApproximation(t *testing.T) {
	approx := scatter(200, 11)
	exact := scatter(200, 11)

	f := NewManyBody()
	f.Theta = 0.5
	_ = f.Initialize(approx, rand.New(rand.NewPCG(1, 2)))
	f.Apply(1)
	bruteForce(exact, DefaultCharge, 1)

	// Compare against the total magnitude of pairwise contributions so
	// cancellation in the net force does not inflate the ratio.
	var errSum, absSum float64
	for i, n := range exact {
		dx, dy := approx[i].VX-n.VX, approx[i].VY-n.VY
		errSum += math.Hypot(dx, dy)
		for _, o := range exact {
			if o != n {
				absSum += -DefaultCharge / math.Hypot(o.X-n.X, o.Y-n.Y)
			}
		}
	}
	if rel := errSum / absSum; rel > 0.05 {
		t.Errorf("Barnes-Hut relative error = %.4f, want < 0.05", rel)
	}
}

func TestManyBodyRepels(t *testing.T) {
	a := &Body{ID: "a", Index: 0, X: 0, Y: 0}
	b := &Body{ID: "b", Index: 1, X: 10, Y: 0}
	f := NewManyBody()
	_ = f.Initialize([]*Body{a, b}, rand.New(rand.NewPCG(1, 2)))
	f.Apply(1)
	if a.VX >= 0 || b.VX <= 0 {
		t.Errorf("velocities a=%v b=%v, want opposite and apart", a.VX, b.VX)
	}
	if math.Abs(a.VX+b.VX) > 1e-12 {
		t.Errorf("forces not symmetric: %v vs %v", a.VX, b.VX)
	}
}

func TestManyBodyCoincident(t *testing.T) {
	bodies := []*Body{
		{ID: "a", Index: 0},
		{ID: "b", Index: 1},
		{ID: "c", Index: 2},
	}
	f := NewManyBody()
	_ = f.Initialize(bodies, rand.New(rand.NewPCG(3, 4)))
	f.Apply(1)
	for _, b := range bodies {
		if math.IsNaN(b.VX) || math.IsNaN(b.VY) || math.IsInf(b.VX, 0) || math.IsInf(b.VY, 0) {
			t.Fatalf("body %s velocity not finite: (%v,%v)", b.ID, b.VX, b.VY)
		}
	}
}

func TestManyBodyDistanceMax(t *testing.T) {
	a := &Body{ID: "a", Index: 0, X: 0, Y: 0}
	b := &Body{ID: "b", Index: 1, X: 500, Y: 0}
	f := NewManyBody()
	f.DistanceMax = 100
	_ = f.Initialize([]*Body{a, b}, rand.New(rand.NewPCG(1, 2)))
	f.Apply(1)
	if a.VX != 0 || b.VX != 0 {
		t.Errorf("bodies beyond DistanceMax interacted: %v %v", a.VX, b.VX)
	}
}

func TestQuadtree(t *testing.T) {
	bodies := scatter(100, 3)
	bodies = append(bodies, &Body{ID: "dup", Index: 100, X: bodies[0].X, Y: bodies[0].Y})
	tree := newQuadtree(bodies)
	if got := tree.count(); got != len(bodies) {
		t.Fatalf("count = %d, want %d", got, len(bodies))
	}
	tree.visit(func(q *quad, x0, y0, size float64) bool {
		for _, b := range q.bodies {
			if b.X < x0 || b.X >= x0+size || b.Y < y0 || b.Y >= y0+size {
				t.Errorf("body %s (%v,%v) outside cell [%v,%v)+%v", b.ID, b.X, b.Y, x0, y0, size)
			}
		}
		return false
	})
}

func TestQuadtreeEmpty(t *testing.T) {
	tree := newQuadtree(nil)
	if tree.count() != 0 {
		t.Error("empty tree has bodies")
	}
	tree.visit(func(*quad, float64, float64, float64) bool {
		t.Error("visited a node of an empty tree")
		return true
	})
}
