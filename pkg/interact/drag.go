package interact

import (
	"github.com/matzehuels/sitegraph/pkg/errors"
	"github.com/matzehuels/sitegraph/pkg/force"
)

// DefaultDragAlphaTarget keeps the simulation warm while a node is dragged.
const DefaultDragAlphaTarget = 0.3

// Physics is the part of the simulation the drag protocol drives.
type Physics interface {
	SetAlphaTarget(float64)
	Restart()
	Pin(id string, x, y float64) error
	Unpin(id string) error
	Body(id string) *force.Body
}

// Phase is the drag state of one node.
type Phase int

const (
	Idle Phase = iota
	Dragging
)

func (p Phase) String() string {
	if p == Dragging {
		return "dragging"
	}
	return "idle"
}

// Drags tracks which nodes are being dragged.
type Drags struct {
	physics     Physics
	alphaTarget float64
	active      map[string]struct{}
}

// NewDrags creates a drag controller over p. A non-positive alphaTarget uses
// DefaultDragAlphaTarget.
func NewDrags(p Physics, alphaTarget float64) *Drags {
	if alphaTarget <= 0 {
		alphaTarget = DefaultDragAlphaTarget
	}
	return &Drags{
		physics:     p,
		alphaTarget: alphaTarget,
		active:      make(map[string]struct{}),
	}
}

// Start begins dragging id: the first concurrent drag reheats the
// simulation, and the node is pinned at its current position.
func (d *Drags) Start(id string) error {
	b := d.physics.Body(id)
	if b == nil {
		return errors.New(errors.ErrCodeNodeNotFound, "no node %q", id)
	}
	if d.Phase(id) == Dragging {
		return nil
	}
	if len(d.active) == 0 {
		d.physics.SetAlphaTarget(d.alphaTarget)
		d.physics.Restart()
	}
	d.active[id] = struct{}{}
	return d.physics.Pin(id, b.X, b.Y)
}

// Move pins id at the world point (x, y).
func (d *Drags) Move(id string, x, y float64) error {
	if d.Phase(id) != Dragging {
		return errors.New(errors.ErrCodeInvalidInput, "node %q is not being dragged", id)
	}
	return d.physics.Pin(id, x, y)
}

// End releases id. When no drag remains the alpha target returns to zero so
// the simulation can settle.
func (d *Drags) End(id string) error {
	if d.Phase(id) != Dragging {
		return errors.New(errors.ErrCodeInvalidInput, "node %q is not being dragged", id)
	}
	delete(d.active, id)
	if len(d.active) == 0 {
		d.physics.SetAlphaTarget(0)
	}
	return d.physics.Unpin(id)
}

// Phase returns the drag state of id.
func (d *Drags) Phase(id string) Phase {
	if _, ok := d.active[id]; ok {
		return Dragging
	}
	return Idle
}

// Active returns the number of nodes being dragged.
func (d *Drags) Active() int { return len(d.active) }

// Reset forgets every drag without touching the simulation. Used when the
// simulation itself is being discarded.
func (d *Drags) Reset() { clear(d.active) }
