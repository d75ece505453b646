package force

import (
	"math"
	"math/rand/v2"

	"github.com/matzehuels/sitegraph/pkg/errors"
)

// DefaultLinkDistance is the rest length of a link.
const DefaultLinkDistance = 100

// LinkSpec names the endpoints of one spring by node id.
type LinkSpec struct {
	Source, Target string
}

// Link is a resolved spring between two bodies.
type Link struct {
	Source, Target *Body
	Index          int

	strength float64
	bias     float64
}

// LinkForce pulls linked bodies toward a rest distance. Each link's strength
// is 1/min(deg(source), deg(target)) so hubs are not torn apart, and the
// correction is split between endpoints in proportion to their degree.
type LinkForce struct {
	Distance   float64
	Iterations int

	specs []LinkSpec
	links []Link
	rnd   *rand.Rand
}

// NewLinkForce creates a link force over specs with the default distance.
func NewLinkForce(specs []LinkSpec) *LinkForce {
	return &LinkForce{
		Distance:   DefaultLinkDistance,
		Iterations: 1,
		specs:      specs,
	}
}

// Links returns the resolved links, available after Initialize.
func (f *LinkForce) Links() []Link { return f.links }

// Initialize resolves link endpoints and computes strengths and biases.
// A link naming an unknown body is a DANGLING_LINK error.
func (f *LinkForce) Initialize(bodies []*Body, rnd *rand.Rand) error {
	f.rnd = rnd
	byID := make(map[string]*Body, len(bodies))
	for _, b := range bodies {
		byID[b.ID] = b
	}

	count := make([]int, len(bodies))
	links := make([]Link, len(f.specs))
	for i, spec := range f.specs {
		src, ok := byID[spec.Source]
		if !ok {
			return errors.New(errors.ErrCodeDanglingLink, "link %d: unknown source %q", i, spec.Source)
		}
		tgt, ok := byID[spec.Target]
		if !ok {
			return errors.New(errors.ErrCodeDanglingLink, "link %d: unknown target %q", i, spec.Target)
		}
		links[i] = Link{Source: src, Target: tgt, Index: i}
		count[src.Index]++
		count[tgt.Index]++
	}

	for i := range links {
		l := &links[i]
		cs, ct := float64(count[l.Source.Index]), float64(count[l.Target.Index])
		l.bias = cs / (cs + ct)
		l.strength = 1 / math.Min(cs, ct)
	}
	f.links = links
	return nil
}

// Apply moves linked bodies toward the rest distance using their predicted
// next positions.
func (f *LinkForce) Apply(alpha float64) {
	for range f.Iterations {
		for i := range f.links {
			l := &f.links[i]
			src, tgt := l.Source, l.Target

			x := tgt.X + tgt.VX - src.X - src.VX
			if x == 0 {
				x = jiggle(f.rnd)
			}
			y := tgt.Y + tgt.VY - src.Y - src.VY
			if y == 0 {
				y = jiggle(f.rnd)
			}
			d := math.Sqrt(x*x + y*y)
			k := (d - f.Distance) / d * alpha * l.strength
			x *= k
			y *= k

			tgt.VX -= x * l.bias
			tgt.VY -= y * l.bias
			src.VX += x * (1 - l.bias)
			src.VY += y * (1 - l.bias)
		}
	}
}
