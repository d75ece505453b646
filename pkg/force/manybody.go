package force

import (
	"math"
	"math/rand/v2"
)

// Defaults for the charge force.
const (
	DefaultCharge = -600
	DefaultTheta  = 0.9
)

// ManyBody applies a pairwise charge between all bodies: negative strength
// repels, positive attracts. Far clusters are approximated by their charge
// centroid when cell width / distance < Theta (Barnes-Hut).
type ManyBody struct {
	Strength    float64
	Theta       float64
	DistanceMin float64
	DistanceMax float64

	bodies []*Body
	rnd    *rand.Rand
}

// NewManyBody creates a charge force with the default strength.
func NewManyBody() *ManyBody {
	return &ManyBody{
		Strength:    DefaultCharge,
		Theta:       DefaultTheta,
		DistanceMin: 1,
		DistanceMax: math.Inf(1),
	}
}

// Initialize records the bodies to act on.
func (f *ManyBody) Initialize(bodies []*Body, rnd *rand.Rand) error {
	f.bodies = bodies
	f.rnd = rnd
	return nil
}

// Apply builds a quadtree over current positions and accumulates the charge
// on every body.
func (f *ManyBody) Apply(alpha float64) {
	tree := newQuadtree(f.bodies)
	tree.visitAfter(f.accumulate)

	theta2 := f.Theta * f.Theta
	dmin2 := f.DistanceMin * f.DistanceMin
	dmax2 := f.DistanceMax * f.DistanceMax

	for _, node := range f.bodies {
		tree.visit(func(q *quad, _, _, size float64) bool {
			if q.value == 0 {
				return true
			}
			x, y := q.cx-node.X, q.cy-node.Y
			l := x*x + y*y

			// Far enough: treat the cell as a single charge.
			if size*size/theta2 < l {
				if l < dmax2 {
					if x == 0 {
						x = jiggle(f.rnd)
						l += x * x
					}
					if y == 0 {
						y = jiggle(f.rnd)
						l += y * y
					}
					if l < dmin2 {
						l = math.Sqrt(dmin2 * l)
					}
					node.VX += x * q.value * alpha / l
					node.VY += y * q.value * alpha / l
				}
				return true
			}
			if !q.leaf() || l >= dmax2 {
				return false
			}

			for _, b := range q.bodies {
				if b == node {
					continue
				}
				x, y := b.X-node.X, b.Y-node.Y
				if x == 0 {
					x = jiggle(f.rnd)
				}
				if y == 0 {
					y = jiggle(f.rnd)
				}
				l := x*x + y*y
				if l < dmin2 {
					l = math.Sqrt(dmin2 * l)
				}
				w := f.Strength * alpha / l
				node.VX += x * w
				node.VY += y * w
			}
			return false
		})
	}
}

// accumulate computes the total charge and charge-weighted centroid of q.
func (f *ManyBody) accumulate(q *quad) {
	if q.leaf() {
		q.value = f.Strength * float64(len(q.bodies))
		q.cx, q.cy = q.bodies[0].X, q.bodies[0].Y
		return
	}
	var strength, weight, x, y float64
	for _, c := range q.children {
		if c == nil || c.value == 0 {
			continue
		}
		w := math.Abs(c.value)
		strength += c.value
		weight += w
		x += w * c.cx
		y += w * c.cy
	}
	q.value = strength
	if weight > 0 {
		q.cx, q.cy = x/weight, y/weight
	}
}
