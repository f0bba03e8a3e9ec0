package reference

import (
	"gonum.org/v1/gonum/mat"

	"github.com/CharlesCNorton/gym-electric-motor/config"
	"github.com/CharlesCNorton/gym-electric-motor/physical"
	"github.com/CharlesCNorton/gym-electric-motor/random"
	"github.com/CharlesCNorton/gym-electric-motor/spec"
)

// Switched composes several sub-generators for the same referenced state
// and picks one of them, weighted by the configured probabilities, at every
// episode start. It owns its own random component for the selection; the
// sub-generators keep their own components, all derived deterministically
// from one seed.
type Switched struct {
	subs    []Generator
	weights []float64
	total   float64
	rand    *random.Component
	current int
}

// NewSwitched creates and returns a new Switched generator. The weights
// argument is parallel to subs and need not be normalized.
func NewSwitched(subs []Generator, weights []float64) (*Switched, error) {
	if len(subs) == 0 {
		return nil, config.Errorf("switched", "need at least one "+
			"sub-generator")
	}
	if len(weights) != len(subs) {
		return nil, config.Errorf("switched", "have %v weights for %v "+
			"sub-generators", len(weights), len(subs))
	}

	var total float64
	for i, w := range weights {
		if w < 0 {
			return nil, config.Errorf("switched", "negative weight %v at "+
				"index %v", w, i)
		}
		total += w
	}
	if total == 0 {
		return nil, config.Errorf("switched", "weights sum to zero")
	}

	return &Switched{
		subs:    subs,
		weights: weights,
		total:   total,
		rand:    random.NewComponent("switched"),
	}, nil
}

// SetPhysicalSystem binds every sub-generator to the system. All
// sub-generators must reference the same state.
func (s *Switched) SetPhysicalSystem(sys physical.System) error {
	name := s.subs[0].ReferencedStates()[0]
	for _, sub := range s.subs {
		if sub.ReferencedStates()[0] != name {
			return config.Errorf("switched", "sub-generators reference "+
				"different states (%q and %q)", name,
				sub.ReferencedStates()[0])
		}
		if err := sub.SetPhysicalSystem(sys); err != nil {
			return err
		}
	}
	return nil
}

// Reset picks the episode's sub-generator by weighted draw and resets it
func (s *Switched) Reset() (mat.Vector, error) {
	s.rand.NextGenerator()

	draw := s.rand.Float64() * s.total
	s.current = len(s.subs) - 1
	for i, w := range s.weights {
		if draw < w {
			s.current = i
			break
		}
		draw -= w
	}

	return s.subs[s.current].Reset()
}

// Reference returns the current sub-generator's reference at the argument
// step
func (s *Switched) Reference(step int) mat.Vector {
	return s.subs[s.current].Reference(step)
}

// ReferencedStates returns the referenced state names
func (s *Switched) ReferencedStates() []string {
	return s.subs[0].ReferencedStates()
}

// Space returns the current sub-generator's reference space
func (s *Switched) Space() spec.Space {
	return s.subs[s.current].Space()
}

// Seed seeds the selection component and derives an independent child seed
// for every sub-generator
func (s *Switched) Seed(seed uint64) error {
	if err := s.rand.Seed(seed); err != nil {
		return err
	}
	for i, sub := range s.subs {
		if err := sub.Seed(random.DeriveSeed(seed, uint64(i)+1)); err != nil {
			return err
		}
	}
	return nil
}
