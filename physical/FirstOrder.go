package physical

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/CharlesCNorton/gym-electric-motor/random"
	"github.com/CharlesCNorton/gym-electric-motor/spec"
)

// FirstOrderSystem is a minimal System implementation: a bank of
// independent first-order lags, one per state quantity, each driven by one
// continuous action dimension. It stands in for a full drive simulation in
// demos and tests; converter and motor dynamics proper are external
// collaborators.
//
// Each state obeys x <- x + tau * (gain*u - x) / timeConstant and is then
// clipped to its normalized bounds. Initial states are drawn uniformly from
// the configured start intervals.
type FirstOrderSystem struct {
	names        []string
	limits       *mat.VecDense
	nominal      *mat.VecDense
	tau          float64
	gain         float64
	timeConstant float64

	actionSpace spec.Space
	stateSpace  spec.Space

	start []r1.Interval
	rand  *random.Component
	state *mat.VecDense
}

// NewFirstOrderSystem creates and returns a new FirstOrderSystem with one
// first-order lag per name. The limits and nominal arguments are parallel
// to names and give the physical scale and typical value of each state
// quantity; states and actions are normalized to [-1, 1].
func NewFirstOrderSystem(names []string, limits, nominal []float64,
	tau, gain, timeConstant float64,
	start []r1.Interval) (*FirstOrderSystem, error) {
	n := len(names)
	if len(limits) != n || len(nominal) != n || len(start) != n {
		return nil, fmt.Errorf("newFirstOrderSystem: limits (%v), nominal "+
			"(%v), and start (%v) must all have one entry per state name "+
			"(%v)", len(limits), len(nominal), len(start), n)
	}
	if tau <= 0 || timeConstant <= 0 {
		return nil, fmt.Errorf("newFirstOrderSystem: tau (%v) and time "+
			"constant (%v) must be positive", tau, timeConstant)
	}

	bound := make([]float64, n)
	negBound := make([]float64, n)
	for i := range bound {
		bound[i] = 1.0
		negBound[i] = -1.0
	}

	stateSpace, err := spec.NewBox(mat.NewVecDense(n, negBound),
		mat.NewVecDense(n, bound))
	if err != nil {
		return nil, fmt.Errorf("newFirstOrderSystem: %v", err)
	}
	actionSpace, err := spec.NewBox(mat.NewVecDense(n, negBound),
		mat.NewVecDense(n, bound))
	if err != nil {
		return nil, fmt.Errorf("newFirstOrderSystem: %v", err)
	}

	return &FirstOrderSystem{
		names:        append([]string(nil), names...),
		limits:       mat.NewVecDense(n, append([]float64(nil), limits...)),
		nominal:      mat.NewVecDense(n, append([]float64(nil), nominal...)),
		tau:          tau,
		gain:         gain,
		timeConstant: timeConstant,
		actionSpace:  actionSpace,
		stateSpace:   stateSpace,
		start:        append([]r1.Interval(nil), start...),
		rand:         random.NewComponent("first-order system"),
		state:        mat.NewVecDense(n, nil),
	}, nil
}

// Simulate advances every lag by one step of duration Tau and returns the
// new normalized state
func (f *FirstOrderSystem) Simulate(action mat.Vector) (mat.Vector, error) {
	if !f.actionSpace.Contains(action) {
		return nil, fmt.Errorf("simulate: action %v outside action space",
			mat.Formatted(action.T()))
	}

	for i := 0; i < f.state.Len(); i++ {
		x := f.state.AtVec(i)
		x += f.tau * (f.gain*action.AtVec(i) - x) / f.timeConstant

		// Normalized states never leave their declared bounds
		if x > f.stateSpace.UpperBound().AtVec(i) {
			x = f.stateSpace.UpperBound().AtVec(i)
		} else if x < f.stateSpace.LowerBound().AtVec(i) {
			x = f.stateSpace.LowerBound().AtVec(i)
		}
		f.state.SetVec(i, x)
	}

	return mat.VecDenseCopyOf(f.state), nil
}

// Reset rotates the system's random generator and draws a new initial
// state from the start intervals
func (f *FirstOrderSystem) Reset() (mat.Vector, error) {
	f.rand.NextGenerator()

	u := distmv.NewUniform(f.start, f.rand.Source())
	f.state = mat.NewVecDense(f.state.Len(), u.Rand(nil))

	return mat.VecDenseCopyOf(f.state), nil
}

// Seed seeds the system's random generator so that its start states are
// reproducible
func (f *FirstOrderSystem) Seed(seed uint64) error {
	return f.rand.Seed(seed)
}

// ActionSpace returns the system's action space
func (f *FirstOrderSystem) ActionSpace() spec.Space { return f.actionSpace }

// StateSpace returns the system's normalized state space
func (f *FirstOrderSystem) StateSpace() spec.Space { return f.stateSpace }

// StateNames returns the ordered names of the system's state quantities
func (f *FirstOrderSystem) StateNames() []string { return f.names }

// Limits returns the physical scale of each state quantity
func (f *FirstOrderSystem) Limits() mat.Vector { return f.limits }

// NominalState returns the typical operating value of each state quantity
func (f *FirstOrderSystem) NominalState() mat.Vector { return f.nominal }

// Tau returns the fixed control step duration
func (f *FirstOrderSystem) Tau() float64 { return f.tau }
