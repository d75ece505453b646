package force

import "math"

// Body is the mutable simulation state of one node.
type Body struct {
	ID    string
	Index int

	X, Y   float64
	VX, VY float64

	// Fixed reports whether the body is pinned at (FX, FY).
	Fixed  bool
	FX, FY float64
}

// Point is a world-space coordinate.
type Point struct {
	X, Y float64
}

// Pos returns the body position.
func (b *Body) Pos() Point { return Point{X: b.X, Y: b.Y} }

func (b *Body) finite() bool {
	return !math.IsNaN(b.X) && !math.IsNaN(b.Y) && !math.IsInf(b.X, 0) && !math.IsInf(b.Y, 0)
}

func newBody(id string, index int) *Body {
	return &Body{ID: id, Index: index, X: math.NaN(), Y: math.NaN(), VX: math.NaN(), VY: math.NaN()}
}
