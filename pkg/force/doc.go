// Package force implements an iterative force-directed layout simulation.
//
// A [Simulation] owns one [Body] per node (position, velocity, optional pin)
// and a set of named [Force]s that nudge velocities every step. Each step:
//
//  1. alpha moves toward alphaTarget by alphaDecay
//  2. every force adds to body velocities, scaled by alpha
//  3. free bodies decay their velocity and move; pinned bodies snap to the pin
//
// When alpha falls below alphaMin the simulation is [StateSettled] and stops
// stepping until [Simulation.Restart] is called. [Simulation.Stop] is terminal
// and idempotent.
//
// # Forces
//
//   - [LinkForce]: spring toward a rest distance, weighted by endpoint degree
//   - [ManyBody]: pairwise charge approximated with a Barnes-Hut quadtree
//   - [XForce], [YForce]: weak pull toward a fixed coordinate on one axis
//
// # Determinism
//
// Initial positions use a phyllotaxis arrangement and coincident points are
// separated with a seeded PCG generator, so two simulations built from the
// same input and seed produce identical trajectories.
//
// # Concurrency
//
// A Simulation is not safe for concurrent use. The engine drives it from a
// single goroutine.
package force
