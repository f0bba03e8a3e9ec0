// Package processor implements the decorator chain that sits between a
// controller and the physical system. Each stage wraps either the physical
// system or the previous stage and may transform actions on the way down
// and states on the way up. Because every stage satisfies the full
// physical.System contract, reward functions, constraints, and reference
// generators address the processed states by name and by space, and stages
// can be inserted or removed without touching any other component.
package processor

import (
	"gonum.org/v1/gonum/mat"

	"github.com/CharlesCNorton/gym-electric-motor/config"
	"github.com/CharlesCNorton/gym-electric-motor/physical"
	"github.com/CharlesCNorton/gym-electric-motor/random"
	"github.com/CharlesCNorton/gym-electric-motor/spec"
)

// Processor is one stage of the chain. A Processor is itself a
// physical.System: anything written against the innermost system works
// unmodified against the head of a chain.
//
// A stage is attached to its inner layer exactly once; re-attachment and
// attaching a stage that is already owned by another chain are rejected.
type Processor interface {
	physical.System
	physical.Seeder

	// Attach wires the stage to its inner layer, either the physical
	// system or another stage
	Attach(inner physical.System) error

	// Inner returns the wrapped layer
	Inner() physical.System
}

// owner is satisfied by Base-embedding stages so that Attach can enforce
// single ownership of an inner stage.
type owner interface {
	acquire(chain string) error
}

// Base implements a pass-through stage: every contract method forwards to
// the inner layer unless the embedding stage has installed an override.
// Concrete stages embed Base and override only what they transform.
type Base struct {
	name  string
	inner physical.System
	rand  *random.Component

	// ValidateActions enables the debug membership check in CheckAction.
	// It is off by default; the environment validates actions against the
	// head stage's action space on every step regardless.
	ValidateActions bool

	// overrides; nil means pass through to the inner layer
	actionSpace *spec.Space
	stateSpace  *spec.Space
	stateNames  []string
	limits      mat.Vector
	nominal     mat.Vector

	owned bool
}

// NewBase creates and returns a new unattached Base stage. The name
// argument identifies the stage in error messages.
func NewBase(name string) *Base {
	return &Base{
		name: name,
		rand: random.NewComponent(name),
	}
}

// Name returns the stage's identifying name
func (b *Base) Name() string {
	return b.name
}

// Attach wires the stage to its inner layer. Attach fails if the stage is
// already attached or if the inner layer is a stage that is already owned
// by another chain.
func (b *Base) Attach(inner physical.System) error {
	if inner == nil {
		return config.Errorf(b.name, "cannot attach nil inner layer")
	}
	if b.inner != nil {
		return config.Errorf(b.name, "stage already attached; "+
			"re-attachment is not a supported reconfiguration")
	}
	if o, ok := inner.(owner); ok {
		if err := o.acquire(b.name); err != nil {
			return err
		}
	}

	b.inner = inner
	return nil
}

func (b *Base) acquire(chain string) error {
	if b.owned {
		return config.Errorf(b.name, "stage already owned by another "+
			"chain; cannot also serve %q", chain)
	}
	b.owned = true
	return nil
}

// Inner returns the wrapped layer
func (b *Base) Inner() physical.System {
	return b.inner
}

// Rand returns the stage's own random component
func (b *Base) Rand() *random.Component {
	return b.rand
}

// Simulate forwards the action to the inner layer unchanged
func (b *Base) Simulate(action mat.Vector) (mat.Vector, error) {
	if err := b.CheckAction(action); err != nil {
		return nil, err
	}
	return b.inner.Simulate(action)
}

// CheckAction performs the debug membership check of an action against the
// stage's action space. The check only runs when ValidateActions is set.
func (b *Base) CheckAction(action mat.Vector) error {
	if b.ValidateActions && !b.ActionSpace().Contains(action) {
		return &physical.ActionError{Action: action, Stage: b.name}
	}
	return nil
}

// Reset rotates the stage's random generator to the next sub-generator and
// delegates the reset to the inner layer
func (b *Base) Reset() (mat.Vector, error) {
	b.rand.NextGenerator()
	return b.inner.Reset()
}

// Seed re-derives the stage's own generator from the argument seed and
// forwards a derived child seed to the inner layer if it owns randomness.
// A fixed seed at the head of the chain therefore reproduces the
// randomness of every nested stage.
func (b *Base) Seed(seed uint64) error {
	if err := b.rand.Seed(seed); err != nil {
		return err
	}
	if s, ok := b.inner.(physical.Seeder); ok {
		return s.Seed(random.DeriveSeed(seed, 0))
	}
	return nil
}

// ActionSpace returns the stage's action space override if set, else the
// inner layer's action space
func (b *Base) ActionSpace() spec.Space {
	if b.actionSpace != nil {
		return *b.actionSpace
	}
	return b.inner.ActionSpace()
}

// StateSpace returns the stage's state space override if set, else the
// inner layer's state space
func (b *Base) StateSpace() spec.Space {
	if b.stateSpace != nil {
		return *b.stateSpace
	}
	return b.inner.StateSpace()
}

// StateNames returns the stage's state name override if set, else the
// inner layer's state names
func (b *Base) StateNames() []string {
	if b.stateNames != nil {
		return b.stateNames
	}
	return b.inner.StateNames()
}

// Limits returns the stage's limit override if set, else the inner layer's
// limits
func (b *Base) Limits() mat.Vector {
	if b.limits != nil {
		return b.limits
	}
	return b.inner.Limits()
}

// NominalState returns the stage's nominal state override if set, else the
// inner layer's nominal state
func (b *Base) NominalState() mat.Vector {
	if b.nominal != nil {
		return b.nominal
	}
	return b.inner.NominalState()
}

// Tau returns the inner layer's control step duration. Stages never change
// the step duration.
func (b *Base) Tau() float64 {
	return b.inner.Tau()
}

// OverrideActionSpace installs an action space override
func (b *Base) OverrideActionSpace(s spec.Space) {
	b.actionSpace = &s
}

// OverrideStates installs a consistent override of the state surface: the
// names, the state space, and the parallel limit and nominal vectors. All
// four must have the same length.
func (b *Base) OverrideStates(names []string, stateSpace spec.Space,
	limits, nominal mat.Vector) error {
	n := len(names)
	if stateSpace.Len() != n || limits.Len() != n || nominal.Len() != n {
		return config.Errorf(b.name, "state override must keep names (%v), "+
			"state space (%v), limits (%v), and nominal state (%v) the "+
			"same length", n, stateSpace.Len(), limits.Len(), nominal.Len())
	}

	b.stateNames = names
	b.stateSpace = &stateSpace
	b.limits = limits
	b.nominal = nominal
	return nil
}
