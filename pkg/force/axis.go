package force

import "math/rand/v2"

// DefaultAxisStrength is the pull of the centering forces.
const DefaultAxisStrength = 0.1

// XForce pulls every free body's x toward Target.
type XForce struct {
	Target   float64
	Strength float64

	bodies []*Body
}

// NewXForce creates a centering force toward x = target.
func NewXForce(target float64) *XForce {
	return &XForce{Target: target, Strength: DefaultAxisStrength}
}

// Initialize records the bodies to act on.
func (f *XForce) Initialize(bodies []*Body, _ *rand.Rand) error {
	f.bodies = bodies
	return nil
}

// Apply adds (target - x) * strength * alpha to each body's x velocity.
func (f *XForce) Apply(alpha float64) {
	k := f.Strength * alpha
	for _, b := range f.bodies {
		b.VX += (f.Target - b.X) * k
	}
}

// YForce pulls every free body's y toward Target.
type YForce struct {
	Target   float64
	Strength float64

	bodies []*Body
}

// NewYForce creates a centering force toward y = target.
func NewYForce(target float64) *YForce {
	return &YForce{Target: target, Strength: DefaultAxisStrength}
}

// Initialize records the bodies to act on.
func (f *YForce) Initialize(bodies []*Body, _ *rand.Rand) error {
	f.bodies = bodies
	return nil
}

// Apply adds (target - y) * strength * alpha to each body's y velocity.
func (f *YForce) Apply(alpha float64) {
	k := f.Strength * alpha
	for _, b := range f.bodies {
		b.VY += (f.Target - b.Y) * k
	}
}
