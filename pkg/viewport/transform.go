package viewport

import (
	"fmt"
	"math"
)

// Transform is a uniform scale followed by a translation.
type Transform struct {
	K float64 `json:"k"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Identity is the transform that maps world onto view unchanged.
var Identity = Transform{K: 1}

// Apply maps a world point to view coordinates.
func (t Transform) Apply(x, y float64) (float64, float64) {
	return x*t.K + t.X, y*t.K + t.Y
}

// Invert maps a view point back to world coordinates.
func (t Transform) Invert(x, y float64) (float64, float64) {
	return (x - t.X) / t.K, (y - t.Y) / t.K
}

// Scale returns the view length of a world length.
func (t Transform) Scale(l float64) float64 { return l * t.K }

// Translate returns t shifted by (dx, dy) view units.
func (t Transform) Translate(dx, dy float64) Transform {
	return Transform{K: t.K, X: t.X + dx, Y: t.Y + dy}
}

// ZoomAt scales t by factor while keeping the world point under the view
// point (sx, sy) fixed. The resulting scale is clamped to e; a factor that is
// not positive or not a number leaves t unchanged.
func (t Transform) ZoomAt(sx, sy, factor float64, e Extent) Transform {
	if !(factor > 0) {
		return t
	}
	k := e.Clamp(t.K * factor)
	wx, wy := t.Invert(sx, sy)
	return Transform{K: k, X: sx - wx*k, Y: sy - wy*k}
}

// Valid reports whether every component is finite and K is positive.
func (t Transform) Valid() bool {
	return t.K > 0 && !math.IsInf(t.K, 0) &&
		!math.IsNaN(t.X) && !math.IsInf(t.X, 0) &&
		!math.IsNaN(t.Y) && !math.IsInf(t.Y, 0)
}

// String renders t as an SVG transform attribute.
func (t Transform) String() string {
	return fmt.Sprintf("translate(%g,%g) scale(%g)", t.X, t.Y, t.K)
}

// Extent bounds the scale of a viewport.
type Extent struct {
	Min float64 `json:"min" toml:"min" yaml:"min"`
	Max float64 `json:"max" toml:"max" yaml:"max"`
}

// DefaultExtent allows zooming out to 10% and in to 400%.
var DefaultExtent = Extent{Min: 0.1, Max: 4}

// Clamp limits k to [Min, Max]. NaN clamps to Min.
func (e Extent) Clamp(k float64) float64 {
	if e.Contains(k) {
		return k
	}
	if math.IsNaN(k) || k < e.Min {
		return e.Min
	}
	if k > e.Max {
		return e.Max
	}
	return k
}

// Contains reports whether k lies within the extent.
func (e Extent) Contains(k float64) bool {
	return k >= e.Min && k <= e.Max
}

// Bounds is an axis-aligned world rectangle.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// Fit returns a transform that centers b in a width x height canvas (view
// origin at the canvas center) with padding on every side, clamped to e.
func Fit(b Bounds, width, height, padding float64, e Extent) Transform {
	gw := b.MaxX - b.MinX
	if gw <= 0 {
		gw = 1
	}
	gh := b.MaxY - b.MinY
	if gh <= 0 {
		gh = 1
	}
	s := math.Min((width-2*padding)/gw, (height-2*padding)/gh)
	if s <= 0 {
		s = 1
	}
	s = e.Clamp(s)
	cx, cy := (b.MinX+b.MaxX)/2, (b.MinY+b.MaxY)/2
	return Transform{K: s, X: -cx * s, Y: -cy * s}
}
