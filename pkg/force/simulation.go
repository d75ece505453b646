package force

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/matzehuels/sitegraph/pkg/errors"
)

// State is the lifecycle state of a simulation.
type State int

const (
	StateUninitialized State = iota
	StateRunning
	StateSettled
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRunning:
		return "running"
	case StateSettled:
		return "settled"
	case StateStopped:
		return "stopped"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Defaults for the integrator.
const (
	DefaultAlphaMin      = 0.001
	DefaultVelocityDecay = 0.4
	DefaultSeed          = 0x5eed
)

// DefaultAlphaDecay brings alpha from 1 to alphaMin in about 300 steps.
var DefaultAlphaDecay = 1 - math.Pow(DefaultAlphaMin, 1.0/300)

const (
	initialRadius = 10
)

var initialAngle = math.Pi * (3 - math.Sqrt(5))

// Force contributes to body velocities once per step.
type Force interface {
	// Initialize is called by Start with the final body set.
	Initialize(bodies []*Body, rnd *rand.Rand) error
	// Apply adds the force's contribution, scaled by alpha.
	Apply(alpha float64)
}

type namedForce struct {
	name  string
	force Force
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithAlphaMin sets the settle threshold.
func WithAlphaMin(v float64) Option { return func(s *Simulation) { s.alphaMin = v } }

// WithAlphaDecay sets the per-step decay rate of alpha toward alphaTarget.
func WithAlphaDecay(v float64) Option { return func(s *Simulation) { s.alphaDecay = v } }

// WithVelocityDecay sets the fraction of velocity lost per step.
func WithVelocityDecay(v float64) Option { return func(s *Simulation) { s.velocityDecay = 1 - v } }

// WithSeed seeds the jiggle generator.
func WithSeed(seed uint64) Option { return func(s *Simulation) { s.seed = seed } }

// Simulation integrates bodies under a set of forces.
type Simulation struct {
	bodies []*Body
	index  map[string]*Body
	forces []namedForce

	alpha         float64
	alphaMin      float64
	alphaDecay    float64
	alphaTarget   float64
	velocityDecay float64

	state State
	ticks int
	seed  uint64
	rnd   *rand.Rand
}

// New creates an uninitialized simulation with one body per id.
// Ids must be unique; the graph loader guarantees this.
func New(ids []string, opts ...Option) *Simulation {
	s := &Simulation{
		bodies:        make([]*Body, len(ids)),
		index:         make(map[string]*Body, len(ids)),
		alpha:         1,
		alphaMin:      DefaultAlphaMin,
		alphaDecay:    DefaultAlphaDecay,
		velocityDecay: 1 - DefaultVelocityDecay,
		seed:          DefaultSeed,
	}
	for i, id := range ids {
		b := newBody(id, i)
		s.bodies[i] = b
		s.index[id] = b
	}
	for _, opt := range opts {
		opt(s)
	}
	s.rnd = rand.New(rand.NewPCG(s.seed, s.seed^0xdeadbeef))
	return s
}

// AddForce registers f under name, replacing any force with the same name.
// Forces added after Start are initialized immediately.
func (s *Simulation) AddForce(name string, f Force) error {
	if s.state != StateUninitialized {
		if err := f.Initialize(s.bodies, s.rnd); err != nil {
			return fmt.Errorf("force %s: %w", name, err)
		}
	}
	if i := s.indexOf(name); i >= 0 {
		s.forces[i].force = f
		return nil
	}
	s.forces = append(s.forces, namedForce{name: name, force: f})
	return nil
}

func (s *Simulation) indexOf(name string) int {
	for i, nf := range s.forces {
		if nf.name == name {
			return i
		}
	}
	return -1
}

// Start places bodies that have no position on a phyllotaxis spiral,
// initializes every force and enters StateRunning. Calling Start on a
// simulation that is not uninitialized is an error.
func (s *Simulation) Start() error {
	if s.state != StateUninitialized {
		return errors.New(errors.ErrCodeInternal, "simulation already started (%s)", s.state)
	}
	for i, b := range s.bodies {
		if b.Fixed {
			b.X, b.Y = b.FX, b.FY
		}
		if math.IsNaN(b.X) || math.IsNaN(b.Y) {
			radius := initialRadius * math.Sqrt(0.5+float64(i))
			angle := float64(i) * initialAngle
			b.X = radius * math.Cos(angle)
			b.Y = radius * math.Sin(angle)
		}
		if math.IsNaN(b.VX) || math.IsNaN(b.VY) {
			b.VX, b.VY = 0, 0
		}
	}
	for _, nf := range s.forces {
		if err := nf.force.Initialize(s.bodies, s.rnd); err != nil {
			return fmt.Errorf("force %s: %w", nf.name, err)
		}
	}
	s.state = StateRunning
	return nil
}

// Step advances one tick if the simulation is running and reports whether
// it did. The state becomes StateSettled once alpha drops below alphaMin.
func (s *Simulation) Step() bool {
	if s.state != StateRunning {
		return false
	}
	s.step()
	if s.alpha < s.alphaMin {
		s.state = StateSettled
	}
	return true
}

// Tick runs n integration steps regardless of the running state, for
// headless layout. It does nothing before Start or after Stop.
func (s *Simulation) Tick(n int) {
	if s.state == StateUninitialized || s.state == StateStopped {
		return
	}
	for range n {
		s.step()
	}
	if s.alpha < s.alphaMin {
		s.state = StateSettled
	}
}

func (s *Simulation) step() {
	s.alpha += (s.alphaTarget - s.alpha) * s.alphaDecay
	for _, nf := range s.forces {
		nf.force.Apply(s.alpha)
	}
	for _, b := range s.bodies {
		if b.Fixed {
			b.X, b.Y = b.FX, b.FY
			b.VX, b.VY = 0, 0
			continue
		}
		b.VX *= s.velocityDecay
		b.VY *= s.velocityDecay
		b.X += b.VX
		b.Y += b.VY
	}
	s.ticks++
}

// Restart re-enters StateRunning from StateSettled (or keeps running).
// It has no effect before Start or after Stop.
func (s *Simulation) Restart() {
	if s.state == StateSettled || s.state == StateRunning {
		s.state = StateRunning
	}
}

// Stop moves the simulation to the terminal StateStopped. Calling it more
// than once is a no-op.
func (s *Simulation) Stop() {
	s.state = StateStopped
}

// State returns the current lifecycle state.
func (s *Simulation) State() State { return s.state }

// Ticks returns the number of integration steps taken so far.
func (s *Simulation) Ticks() int { return s.ticks }

// Alpha returns the current alpha.
func (s *Simulation) Alpha() float64 { return s.alpha }

// SetAlpha sets alpha directly, typically followed by Restart.
func (s *Simulation) SetAlpha(a float64) { s.alpha = a }

// AlphaTarget returns the value alpha decays toward.
func (s *Simulation) AlphaTarget() float64 { return s.alphaTarget }

// SetAlphaTarget sets the value alpha decays toward. A target above alphaMin
// keeps the simulation running indefinitely.
func (s *Simulation) SetAlphaTarget(t float64) { s.alphaTarget = t }

// AlphaMin returns the settle threshold.
func (s *Simulation) AlphaMin() float64 { return s.alphaMin }

// Bodies returns the bodies in node order. Callers must not retain them
// across a snapshot replacement.
func (s *Simulation) Bodies() []*Body { return s.bodies }

// Body returns the body for id, or nil.
func (s *Simulation) Body(id string) *Body { return s.index[id] }

// Pin fixes the body at (x, y). The body keeps exerting forces on others
// but is excluded from free movement until Unpin.
func (s *Simulation) Pin(id string, x, y float64) error {
	b, ok := s.index[id]
	if !ok {
		return errors.New(errors.ErrCodeNodeNotFound, "no body %q", id)
	}
	b.Fixed = true
	b.FX, b.FY = x, y
	return nil
}

// Unpin releases a pinned body.
func (s *Simulation) Unpin(id string) error {
	b, ok := s.index[id]
	if !ok {
		return errors.New(errors.ErrCodeNodeNotFound, "no body %q", id)
	}
	b.Fixed = false
	return nil
}

// Pinned reports whether id is pinned.
func (s *Simulation) Pinned(id string) bool {
	b, ok := s.index[id]
	return ok && b.Fixed
}

// UnpinAll releases every pin.
func (s *Simulation) UnpinAll() {
	for _, b := range s.bodies {
		b.Fixed = false
	}
}

// Find returns the body closest to (x, y) within radius (inclusive), or nil.
// A radius of +Inf matches the closest body overall.
func (s *Simulation) Find(x, y, radius float64) *Body {
	var found *Body
	best := radius * radius
	for _, b := range s.bodies {
		dx, dy := x-b.X, y-b.Y
		if d2 := dx*dx + dy*dy; d2 < best || (found == nil && d2 == best) {
			found, best = b, d2
		}
	}
	return found
}

// Finite reports whether every body has a finite position.
func (s *Simulation) Finite() bool {
	for _, b := range s.bodies {
		if !b.finite() {
			return false
		}
	}
	return true
}

// jiggle returns a tiny random offset used to separate coincident points.
func jiggle(rnd *rand.Rand) float64 {
	return (rnd.Float64() - 0.5) * 1e-6
}
