package viewport

import "math"

// Viewport owns the rendering transform. It never touches node positions.
type Viewport struct {
	t      Transform
	extent Extent
}

// New creates a viewport at the identity transform. A zero or inverted
// extent falls back to DefaultExtent.
func New(e Extent) *Viewport {
	if !(e.Min > 0) || e.Max < e.Min {
		e = DefaultExtent
	}
	v := &Viewport{extent: e}
	v.t = v.clamp(Identity)
	return v
}

// Transform returns the current transform.
func (v *Viewport) Transform() Transform { return v.t }

// Extent returns the scale bounds.
func (v *Viewport) Extent() Extent { return v.extent }

// Set replaces the transform, clamping its scale into the extent. A
// transform with a non-finite translation is ignored.
func (v *Viewport) Set(t Transform) Transform {
	if isNaNOrInf(t.X) || isNaNOrInf(t.Y) {
		return v.t
	}
	v.t = v.clamp(t)
	return v.t
}

// Reset returns to the identity transform.
func (v *Viewport) Reset() { v.t = v.clamp(Identity) }

// ScreenToWorld maps a view point to world coordinates.
func (v *Viewport) ScreenToWorld(x, y float64) (float64, float64) { return v.t.Invert(x, y) }

func (v *Viewport) clamp(t Transform) Transform {
	t.K = v.extent.Clamp(t.K)
	return t
}

func isNaNOrInf(f float64) bool {
	return math.IsNaN(f) || math.IsInf(f, 0)
}
