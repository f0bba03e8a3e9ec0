package processor

import (
	"gonum.org/v1/gonum/mat"

	"github.com/CharlesCNorton/gym-electric-motor/physical"
	"github.com/CharlesCNorton/gym-electric-motor/spec"
)

// DeadTime delays every action by one control step, modeling the
// processing dead time of a digitally controlled converter: the action
// applied at step k is the action the controller selected at step k-1. The
// first action of every episode is the idle action (zeros for continuous
// spaces, index 0 for discrete spaces).
type DeadTime struct {
	*Base
	pending *mat.VecDense
}

// NewDeadTime creates and returns a new unattached DeadTime stage
func NewDeadTime() *DeadTime {
	return &DeadTime{Base: NewBase("dead-time")}
}

// Attach wires the stage to its inner layer
func (d *DeadTime) Attach(inner physical.System) error {
	if err := d.Base.Attach(inner); err != nil {
		return err
	}
	d.pending = d.idleAction()
	return nil
}

// Simulate forwards the previously buffered action to the inner layer and
// buffers the argument action for the next step
func (d *DeadTime) Simulate(action mat.Vector) (mat.Vector, error) {
	if err := d.CheckAction(action); err != nil {
		return nil, err
	}

	state, err := d.Inner().Simulate(d.pending)
	if err != nil {
		return nil, err
	}
	d.pending = mat.VecDenseCopyOf(action)

	return state, nil
}

// Reset clears the action buffer, rotates the stage's generator, and
// delegates the reset downward
func (d *DeadTime) Reset() (mat.Vector, error) {
	d.pending = d.idleAction()
	return d.Base.Reset()
}

func (d *DeadTime) idleAction() *mat.VecDense {
	space := d.Inner().ActionSpace()
	idle := mat.NewVecDense(space.Len(), nil)
	if space.Cardinality() == spec.Continuous {
		// Zero may lie outside an asymmetric box; fall back to the lower
		// bound when it does.
		if !space.Contains(idle) {
			idle = mat.VecDenseCopyOf(space.LowerBound())
		}
	}
	return idle
}
