// Package viewport maps between world coordinates (where the simulation
// places nodes) and view coordinates (where the pointer and the renderer
// live).
//
// A [Transform] is a uniform scale K followed by a translation (X, Y):
//
//	view = world*K + (X, Y)
//
// The view origin is the center of the canvas, matching an SVG viewBox of
// (-w/2, -h/2, w, h). A [Viewport] owns the current transform and keeps its
// scale inside an [Extent] no matter what gesture produced it.
//
// Wheel and pan gestures arrive much faster than the simulation needs to
// react to them. A [Debouncer] sits at the input boundary and releases only
// the latest transform once the input has been quiet for its window.
package viewport
