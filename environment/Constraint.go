package environment

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/CharlesCNorton/gym-electric-motor/config"
	"github.com/CharlesCNorton/gym-electric-motor/physical"
)

// ConstraintCapability is the registry capability under which constraints
// are registered
const ConstraintCapability = "constraint"

// Constraint is a predicate over the normalized state vector. Violation is
// a boolean, independent of reward: the environment treats any violation as
// an immediate terminal condition, while whatever penalty applies is the
// reward function's business.
type Constraint interface {
	// Bind resolves the constraint's state names against the system whose
	// states it monitors
	Bind(sys physical.System) error

	// Violated reports whether the argument state violates the constraint
	Violated(state mat.Vector) bool
}

// LimitConstraint is violated when the magnitude of any monitored state
// exceeds its normalized bound: |state| > 1. A state exactly at the bound
// is not violated.
type LimitConstraint struct {
	names   []string
	indices []int
}

// NewLimitConstraint creates and returns a new LimitConstraint monitoring
// the argument states
func NewLimitConstraint(names ...string) *LimitConstraint {
	return &LimitConstraint{names: names}
}

// Bind resolves the monitored state names to indices
func (l *LimitConstraint) Bind(sys physical.System) error {
	index := physical.NewNameIndex(sys.StateNames())

	l.indices = l.indices[:0]
	for _, name := range l.names {
		i, err := index.IndexOf(name)
		if err != nil {
			return config.Errorf(ConstraintCapability, "%v", err)
		}
		l.indices = append(l.indices, i)
	}
	return nil
}

// Violated reports whether any monitored state left its normalized bound
func (l *LimitConstraint) Violated(state mat.Vector) bool {
	for _, i := range l.indices {
		if math.Abs(state.AtVec(i)) > 1 {
			return true
		}
	}
	return false
}

// SquaredConstraint is violated when the Euclidean norm of the monitored
// states exceeds 1. Its canonical use is bounding the total current of a
// multi-phase machine whose per-phase currents are individually in bounds.
type SquaredConstraint struct {
	names   []string
	indices []int
}

// NewSquaredConstraint creates and returns a new SquaredConstraint
// monitoring the argument states
func NewSquaredConstraint(names ...string) *SquaredConstraint {
	return &SquaredConstraint{names: names}
}

// Bind resolves the monitored state names to indices
func (s *SquaredConstraint) Bind(sys physical.System) error {
	index := physical.NewNameIndex(sys.StateNames())

	s.indices = s.indices[:0]
	for _, name := range s.names {
		i, err := index.IndexOf(name)
		if err != nil {
			return config.Errorf(ConstraintCapability, "%v", err)
		}
		s.indices = append(s.indices, i)
	}
	return nil
}

// Violated reports whether the squared sum of the monitored states exceeds
// the normalized bound
func (s *SquaredConstraint) Violated(state mat.Vector) bool {
	var sum float64
	for _, i := range s.indices {
		sum += state.AtVec(i) * state.AtVec(i)
	}
	return sum > 1
}

func init() {
	config.Register(ConstraintCapability, "limit", limitConstraintFactory)
	config.Register(ConstraintCapability, "squared", squaredConstraintFactory)
}

func limitConstraintFactory(args config.Overrides) (interface{}, error) {
	states, err := constraintStates(args)
	if err != nil {
		return nil, err
	}
	return NewLimitConstraint(states...), nil
}

func squaredConstraintFactory(args config.Overrides) (interface{}, error) {
	states, err := constraintStates(args)
	if err != nil {
		return nil, err
	}
	return NewSquaredConstraint(states...), nil
}

func constraintStates(args config.Overrides) ([]string, error) {
	if err := args.Allow(ConstraintCapability, "states"); err != nil {
		return nil, err
	}

	states, err := args.Strings(ConstraintCapability, "states", nil)
	if err != nil {
		return nil, err
	}
	if len(states) == 0 {
		return nil, config.Errorf(ConstraintCapability, "no states to "+
			"monitor")
	}
	return states, nil
}
