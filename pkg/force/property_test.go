package force

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// randomSim builds a started simulation over n nodes with links taken
// pairwise from ends (mod n).
func randomSim(n int, ends []int, seed uint64) (*Simulation, error) {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("n%d", i)
	}
	var links []LinkSpec
	for i := 0; i+1 < len(ends); i += 2 {
		links = append(links, LinkSpec{Source: ids[ends[i]%n], Target: ids[ends[i+1]%n]})
	}
	s := New(ids, WithSeed(seed))
	_ = s.AddForce("link", NewLinkForce(links))
	_ = s.AddForce("charge", NewManyBody())
	_ = s.AddForce("x", NewXForce(-280))
	_ = s.AddForce("y", NewYForce(0))
	return s, s.Start()
}

// TestSimulationInvariants checks properties that hold for any graph shape.
func TestSimulationInvariants(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30

	properties := gopter.NewProperties(parameters)

	properties.Property("positions stay finite", prop.ForAll(
		func(n int, ends []int, seed uint64) bool {
			s, err := randomSim(n, ends, seed)
			if err != nil {
				return false
			}
			if !s.Finite() {
				return false
			}
			for range 60 {
				s.Step()
				if !s.Finite() {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 40),
		gen.SliceOf(gen.IntRange(0, 1000)),
		gen.UInt64(),
	))

	properties.Property("pinned body sits exactly on its pin", prop.ForAll(
		func(n int, ends []int, px, py float64) bool {
			s, err := randomSim(n, ends, 1)
			if err != nil {
				return false
			}
			id := s.Bodies()[0].ID
			if err := s.Pin(id, px, py); err != nil {
				return false
			}
			for range 20 {
				s.Step()
				b := s.Body(id)
				if b.X != px || b.Y != py {
					return false
				}
			}
			return s.Finite()
		},
		gen.IntRange(1, 25),
		gen.SliceOf(gen.IntRange(0, 1000)),
		gen.Float64Range(-2000, 2000),
		gen.Float64Range(-2000, 2000),
	))

	properties.Property("alpha never increases without a target", prop.ForAll(
		func(steps int) bool {
			s, err := randomSim(5, []int{0, 1, 1, 2, 2, 3, 3, 4}, 9)
			if err != nil {
				return false
			}
			prev := s.Alpha()
			for range steps {
				s.Step()
				if s.Alpha() > prev {
					return false
				}
				prev = s.Alpha()
			}
			return true
		},
		gen.IntRange(1, 400),
	))

	properties.TestingRun(t)
}
