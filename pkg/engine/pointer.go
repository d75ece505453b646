package engine

import (
	"time"

	"github.com/matzehuels/sitegraph/pkg/errors"
	"github.com/matzehuels/sitegraph/pkg/viewport"
)

// Pointer coordinates are view coordinates: origin at the canvas center,
// y down, in canvas units.

// HitTest returns the id of the topmost node under the view point (x, y),
// or "" for the background.
func (e *Engine) HitTest(x, y float64) string {
	if e.sim == nil || e.stopped {
		return ""
	}
	wx, wy := e.view.ScreenToWorld(x, y)
	if b := e.sim.Find(wx, wy, e.scene.Style().NodeRadius); b != nil {
		return b.ID
	}
	return ""
}

// PointerDown starts a gesture. Pressing on a node starts dragging it;
// pressing on the background starts a pan.
func (e *Engine) PointerDown(x, y float64, at time.Time) error {
	if e.stopped {
		return errors.New(errors.ErrCodeStopped, "engine stopped")
	}
	if e.sim == nil {
		return nil
	}
	if e.gesture != nil {
		e.CancelGesture()
	}
	target := e.HitTest(x, y)
	e.gesture = e.opts.Click.Begin(target, x, y, at)
	if target == "" {
		return nil
	}
	b := e.sim.Body(target)
	wx, wy := e.view.ScreenToWorld(x, y)
	e.grabDX, e.grabDY = b.X-wx, b.Y-wy
	return e.DragStart(target)
}

// PointerMove continues the active gesture, or updates the hover target when
// no button is down.
func (e *Engine) PointerMove(x, y float64, at time.Time) error {
	if e.stopped {
		return errors.New(errors.ErrCodeStopped, "engine stopped")
	}
	if e.sim == nil {
		return nil
	}
	g := e.gesture
	if g == nil {
		e.Hover(e.HitTest(x, y))
		return nil
	}
	dx, dy := g.Move(x, y)
	if g.Target != "" {
		wx, wy := e.view.ScreenToWorld(x, y)
		return e.DragMove(g.Target, wx+e.grabDX, wy+e.grabDY)
	}
	e.Pan(dx, dy, at)
	return nil
}

// PointerUp ends the gesture. A release that qualifies as a click toggles
// the selection of the pressed node, or clears it on the background.
func (e *Engine) PointerUp(x, y float64, at time.Time) error {
	if e.stopped {
		return errors.New(errors.ErrCodeStopped, "engine stopped")
	}
	g := e.gesture
	if g == nil {
		return nil
	}
	e.gesture = nil
	g.Move(x, y)

	var err error
	if g.Target != "" {
		err = e.DragEnd(g.Target)
	}
	if !g.Click(at) {
		return err
	}
	if g.Target == "" {
		e.selection.Clear()
		return err
	}
	if n := e.node(g.Target); n != nil {
		e.selection.Toggle(n)
	}
	return err
}

// CancelGesture abandons the pointer gesture in progress, if any, without
// treating it as a click. A dragged node is released so the simulation can
// cool down again.
func (e *Engine) CancelGesture() {
	if g := e.gesture; g != nil && g.Target != "" && e.drags != nil {
		_ = e.DragEnd(g.Target)
	}
	e.gesture = nil
}

// Gesturing reports whether a pointer is down.
func (e *Engine) Gesturing() bool { return e.gesture != nil }

// Dragging reports whether a gesture is dragging a node.
func (e *Engine) Dragging() bool {
	return e.drags != nil && e.drags.Active() > 0
}

// DragStart begins dragging id: the simulation is reheated and the node is
// pinned where it is.
func (e *Engine) DragStart(id string) error {
	if e.drags == nil {
		return errors.New(errors.ErrCodeNodeNotFound, "no node %q", id)
	}
	if err := e.drags.Start(id); err != nil {
		return err
	}
	e.hooks.OnDrag(id, "start")
	return nil
}

// DragMove pins id at the world point (x, y). The node lands there on the
// next tick.
func (e *Engine) DragMove(id string, x, y float64) error {
	if e.drags == nil {
		return errors.New(errors.ErrCodeNodeNotFound, "no node %q", id)
	}
	if err := e.drags.Move(id, x, y); err != nil {
		return err
	}
	e.hooks.OnDrag(id, "move")
	return nil
}

// DragEnd releases id.
func (e *Engine) DragEnd(id string) error {
	if e.drags == nil {
		return errors.New(errors.ErrCodeNodeNotFound, "no node %q", id)
	}
	if err := e.drags.End(id); err != nil {
		return err
	}
	e.hooks.OnDrag(id, "end")
	return nil
}

// Hover sets the hovered node; "" clears it.
func (e *Engine) Hover(id string) {
	if id != "" && e.node(id) == nil {
		id = ""
	}
	if id == e.hover {
		return
	}
	e.hover = id
	e.version++
}

// Hovered returns the hovered node id.
func (e *Engine) Hovered() string { return e.hover }

// Wheel zooms by factor around the view point (x, y). The new transform is
// debounced and applied by a later Tick.
func (e *Engine) Wheel(x, y, factor float64, at time.Time) {
	if e.stopped {
		return
	}
	next := e.pendingTransform().ZoomAt(x, y, factor, e.view.Extent())
	e.zoom.Offer(next, at)
}

// Pan translates the view by (dx, dy). Like Wheel it is debounced.
func (e *Engine) Pan(dx, dy float64, at time.Time) {
	if e.stopped {
		return
	}
	next := e.pendingTransform().Translate(dx, dy)
	if !next.Valid() {
		return
	}
	e.zoom.Offer(next, at)
}

// SetTransform requests an absolute transform, debounced like Wheel.
func (e *Engine) SetTransform(t viewport.Transform, at time.Time) {
	if e.stopped || !t.Valid() {
		return
	}
	e.zoom.Offer(t, at)
}

// ResetView returns to the identity transform immediately.
func (e *Engine) ResetView() {
	e.zoom.Reset()
	e.view.Reset()
	e.version++
}

// pendingTransform is the transform the view will have once the pending
// zoom, if any, is applied.
func (e *Engine) pendingTransform() viewport.Transform {
	if t, ok := e.zoom.Pending(); ok {
		return t
	}
	return e.view.Transform()
}
