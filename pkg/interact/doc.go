// Package interact turns pointer gestures into simulation and selection
// changes.
//
// [Drags] implements the per-node drag protocol: the first active drag
// reheats the simulation (alpha target 0.3), a dragged node is pinned under
// the pointer, and releasing the last drag lets alpha decay again.
//
// [Gesture] tells a click from a drag: a press that moves no further than the
// [ClickPolicy] threshold and is released within its maximum duration is a
// click.
//
// [Selection] holds at most one selected node and notifies listeners on
// every change, whichever side initiated it.
package interact
