package processor

import (
	"gonum.org/v1/gonum/mat"

	"github.com/CharlesCNorton/gym-electric-motor/config"
	"github.com/CharlesCNorton/gym-electric-motor/physical"
	"github.com/CharlesCNorton/gym-electric-motor/spec"
)

// ActionScale scales each continuous action dimension by a fixed gain
// before forwarding it to the inner layer. The stage's own action space is
// widened by the inverse gain so that the full inner action range stays
// reachable from above.
//
// States pass through unchanged.
type ActionScale struct {
	*Base
	gains  []float64
	scaled *mat.VecDense
}

// NewActionScale creates and returns a new unattached ActionScale stage
// with one gain per action dimension. Gains must be nonzero.
func NewActionScale(gains []float64) (*ActionScale, error) {
	for i, g := range gains {
		if g == 0 {
			return nil, config.Errorf("action-scale", "gain %v is zero", i)
		}
	}

	return &ActionScale{
		Base:  NewBase("action-scale"),
		gains: append([]float64(nil), gains...),
	}, nil
}

// Attach wires the stage to its inner layer and declares the widened
// action space
func (a *ActionScale) Attach(inner physical.System) error {
	if err := a.Base.Attach(inner); err != nil {
		return err
	}

	innerSpace := inner.ActionSpace()
	if innerSpace.Cardinality() != spec.Continuous {
		return config.Errorf(a.Name(), "inner action space must be "+
			"continuous")
	}
	if innerSpace.Len() != len(a.gains) {
		return config.Errorf(a.Name(), "have %v gains but inner action "+
			"space has %v dimensions", len(a.gains), innerSpace.Len())
	}

	low := make([]float64, len(a.gains))
	high := make([]float64, len(a.gains))
	for i, g := range a.gains {
		lo := innerSpace.LowerBound().AtVec(i) / g
		hi := innerSpace.UpperBound().AtVec(i) / g
		if lo > hi {
			lo, hi = hi, lo
		}
		low[i], high[i] = lo, hi
	}

	space, err := spec.NewBox(mat.NewVecDense(len(low), low),
		mat.NewVecDense(len(high), high))
	if err != nil {
		return config.Errorf(a.Name(), "%v", err)
	}
	a.OverrideActionSpace(space)
	a.scaled = mat.NewVecDense(len(a.gains), nil)

	return nil
}

// Simulate scales the action down and forwards it to the inner layer
func (a *ActionScale) Simulate(action mat.Vector) (mat.Vector, error) {
	if err := a.CheckAction(action); err != nil {
		return nil, err
	}

	for i, g := range a.gains {
		a.scaled.SetVec(i, action.AtVec(i)*g)
	}
	return a.Inner().Simulate(a.scaled)
}
