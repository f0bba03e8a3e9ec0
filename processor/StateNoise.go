package processor

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/CharlesCNorton/gym-electric-motor/config"
	"github.com/CharlesCNorton/gym-electric-motor/physical"
)

// StateNoise adds zero-mean Gaussian measurement noise to selected state
// quantities before they are passed upward, modeling sensor noise on the
// measured drive states. Noisy states are clipped back into the state
// space so that no consumer ever observes an out-of-bound state.
//
// The stage owns its random component: a seeded chain reproduces the noise
// sequence exactly.
type StateNoise struct {
	*Base
	sigmas  map[string]float64
	indices []int
	devs    []float64
}

// NewStateNoise creates and returns a new unattached StateNoise stage. The
// sigmas argument maps state names to the standard deviation of the noise
// added to that state, in normalized units.
func NewStateNoise(sigmas map[string]float64) (*StateNoise, error) {
	for name, sigma := range sigmas {
		if sigma < 0 {
			return nil, config.Errorf("state-noise", "negative standard "+
				"deviation %v for state %q", sigma, name)
		}
	}

	return &StateNoise{
		Base:   NewBase("state-noise"),
		sigmas: sigmas,
	}, nil
}

// Attach wires the stage to its inner layer and binds the noisy state
// names to their indices
func (s *StateNoise) Attach(inner physical.System) error {
	if err := s.Base.Attach(inner); err != nil {
		return err
	}

	// Bind in sorted name order: noise draws are consumed per state in
	// binding order, so the order must not depend on map iteration.
	names := make([]string, 0, len(s.sigmas))
	for name := range s.sigmas {
		names = append(names, name)
	}
	sort.Strings(names)

	index := physical.NewNameIndex(inner.StateNames())
	for _, name := range names {
		i, err := index.IndexOf(name)
		if err != nil {
			return config.Errorf(s.Name(), "%v", err)
		}
		s.indices = append(s.indices, i)
		s.devs = append(s.devs, s.sigmas[name])
	}

	return nil
}

// Simulate delegates to the inner layer and perturbs the returned state
func (s *StateNoise) Simulate(action mat.Vector) (mat.Vector, error) {
	if err := s.CheckAction(action); err != nil {
		return nil, err
	}

	state, err := s.Inner().Simulate(action)
	if err != nil {
		return nil, err
	}
	return s.perturb(state), nil
}

// Reset rotates the stage's generator, delegates downward, and perturbs
// the initial state
func (s *StateNoise) Reset() (mat.Vector, error) {
	state, err := s.Base.Reset()
	if err != nil {
		return nil, err
	}
	return s.perturb(state), nil
}

func (s *StateNoise) perturb(state mat.Vector) mat.Vector {
	noisy := mat.VecDenseCopyOf(state)
	space := s.StateSpace()

	for k, i := range s.indices {
		v := noisy.AtVec(i) + s.Rand().Normal(0, s.devs[k])

		if v > space.UpperBound().AtVec(i) {
			v = space.UpperBound().AtVec(i)
		} else if v < space.LowerBound().AtVec(i) {
			v = space.LowerBound().AtVec(i)
		}
		noisy.SetVec(i, v)
	}
	return noisy
}
