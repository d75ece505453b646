package interact

import "time"

// ClickPolicy distinguishes clicks from drags.
type ClickPolicy struct {
	// Threshold is the maximum pointer travel, in view units, of a click.
	Threshold float64
	// MaxDuration is the longest press still counted as a click.
	MaxDuration time.Duration
}

// DefaultClickPolicy matches common pointer libraries: 3px, half a second.
var DefaultClickPolicy = ClickPolicy{Threshold: 3, MaxDuration: 500 * time.Millisecond}

// Gesture is one press-move-release sequence.
type Gesture struct {
	// Target is the id of the node under the pointer at press time, or
	// empty for the background.
	Target string

	StartX, StartY float64
	LastX, LastY   float64
	Started        time.Time

	policy ClickPolicy
	moved  bool
}

// Begin starts a gesture at view point (x, y).
func (p ClickPolicy) Begin(target string, x, y float64, at time.Time) *Gesture {
	return &Gesture{
		Target:  target,
		StartX:  x,
		StartY:  y,
		LastX:   x,
		LastY:   y,
		Started: at,
		policy:  p,
	}
}

// Move records a pointer move and returns the delta since the previous
// position.
func (g *Gesture) Move(x, y float64) (dx, dy float64) {
	dx, dy = x-g.LastX, y-g.LastY
	g.LastX, g.LastY = x, y
	if !g.moved {
		sx, sy := x-g.StartX, y-g.StartY
		if sx*sx+sy*sy > g.policy.Threshold*g.policy.Threshold {
			g.moved = true
		}
	}
	return dx, dy
}

// Click reports whether releasing at time at completes a click.
func (g *Gesture) Click(at time.Time) bool {
	if g.moved {
		return false
	}
	return g.policy.MaxDuration <= 0 || at.Sub(g.Started) <= g.policy.MaxDuration
}
