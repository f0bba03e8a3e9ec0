package processor

import (
	"gonum.org/v1/gonum/mat"

	"github.com/CharlesCNorton/gym-electric-motor/config"
	"github.com/CharlesCNorton/gym-electric-motor/physical"
	"github.com/CharlesCNorton/gym-electric-motor/spec"
)

// CurrentSum appends a derived state quantity to the state vector: the
// physically scaled sum of a set of named states, re-normalized by the sum
// of their limits. The canonical use is exposing the total current drawn
// from the supply by several winding currents so that it can be
// referenced, rewarded, and constrained like any measured state.
//
// The stage extends StateNames, StateSpace, Limits, and NominalState by
// one entry; the extension is a documented re-naming of the state surface.
type CurrentSum struct {
	*Base
	sumName  string
	names    []string
	indices  []int
	weights  []float64 // limit of each summand / limit of the sum
	sumIndex int
}

// NewCurrentSum creates and returns a new unattached CurrentSum stage that
// appends a state named sumName holding the normalized sum of the named
// states
func NewCurrentSum(sumName string, names ...string) (*CurrentSum, error) {
	if len(names) < 2 {
		return nil, config.Errorf("current-sum", "need at least two "+
			"states to sum, got %v", len(names))
	}

	return &CurrentSum{
		Base:    NewBase("current-sum"),
		sumName: sumName,
		names:   append([]string(nil), names...),
	}, nil
}

// Attach wires the stage to its inner layer and declares the extended
// state surface
func (c *CurrentSum) Attach(inner physical.System) error {
	if err := c.Base.Attach(inner); err != nil {
		return err
	}

	index := physical.NewNameIndex(inner.StateNames())
	if _, ok := index[c.sumName]; ok {
		return config.Errorf(c.Name(), "inner layer already has a state "+
			"named %q", c.sumName)
	}

	var sumLimit, sumNominal float64
	for _, name := range c.names {
		i, err := index.IndexOf(name)
		if err != nil {
			return config.Errorf(c.Name(), "%v", err)
		}
		c.indices = append(c.indices, i)
		sumLimit += inner.Limits().AtVec(i)
		sumNominal += inner.NominalState().AtVec(i)
	}
	if sumLimit == 0 {
		return config.Errorf(c.Name(), "summed states have zero combined "+
			"limit")
	}
	for _, i := range c.indices {
		c.weights = append(c.weights, inner.Limits().AtVec(i)/sumLimit)
	}

	n := inner.StateSpace().Len()
	c.sumIndex = n

	names := append(append([]string(nil), inner.StateNames()...), c.sumName)
	limits := extend(inner.Limits(), sumLimit)
	nominal := extend(inner.NominalState(), sumNominal)

	low := extend(inner.StateSpace().LowerBound(), -1)
	high := extend(inner.StateSpace().UpperBound(), 1)
	space, err := spec.NewBox(low, high)
	if err != nil {
		return config.Errorf(c.Name(), "%v", err)
	}

	return c.OverrideStates(names, space, limits, nominal)
}

// Simulate delegates to the inner layer and appends the derived sum state
func (c *CurrentSum) Simulate(action mat.Vector) (mat.Vector, error) {
	if err := c.CheckAction(action); err != nil {
		return nil, err
	}

	state, err := c.Inner().Simulate(action)
	if err != nil {
		return nil, err
	}
	return c.extendState(state), nil
}

// Reset rotates the stage's generator, delegates downward, and appends the
// derived sum state to the initial state
func (c *CurrentSum) Reset() (mat.Vector, error) {
	state, err := c.Base.Reset()
	if err != nil {
		return nil, err
	}
	return c.extendState(state), nil
}

func (c *CurrentSum) extendState(state mat.Vector) mat.Vector {
	var sum float64
	for k, i := range c.indices {
		sum += state.AtVec(i) * c.weights[k]
	}
	return extend(state, sum)
}

// extend returns a copy of v with one extra trailing element
func extend(v mat.Vector, value float64) *mat.VecDense {
	out := mat.NewVecDense(v.Len()+1, nil)
	for i := 0; i < v.Len(); i++ {
		out.SetVec(i, v.AtVec(i))
	}
	out.SetVec(v.Len(), value)
	return out
}
