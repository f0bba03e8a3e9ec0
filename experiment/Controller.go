package experiment

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/CharlesCNorton/gym-electric-motor/random"
	"github.com/CharlesCNorton/gym-electric-motor/spec"
	ts "github.com/CharlesCNorton/gym-electric-motor/timestep"
)

// Controller selects the action to apply at each control step. Learning
// agents, classical controllers, and scripted action sequences all plug in
// here.
type Controller interface {
	SelectAction(step ts.TimeStep) mat.Vector
}

// RandomController selects actions uniformly from an action space. It is
// the baseline controller used to exercise an environment.
type RandomController struct {
	space spec.Space
	rand  *random.Component
}

// NewRandomController creates and returns a new RandomController sampling
// from the argument action space with the argument seed
func NewRandomController(space spec.Space, seed uint64) *RandomController {
	c := &RandomController{
		space: space,
		rand:  random.NewComponent("random controller"),
	}
	if err := c.rand.Seed(seed); err != nil {
		panic(err)
	}
	return c
}

// SelectAction draws a uniform action from the controller's action space
func (c *RandomController) SelectAction(ts.TimeStep) mat.Vector {
	if c.space.Cardinality() == spec.Discrete {
		return mat.NewVecDense(1, []float64{float64(c.rand.Intn(c.space.N()))})
	}

	action := mat.NewVecDense(c.space.Len(), nil)
	for i := 0; i < action.Len(); i++ {
		bounds := r1.Interval{
			Min: c.space.LowerBound().AtVec(i),
			Max: c.space.UpperBound().AtVec(i),
		}
		action.SetVec(i, c.rand.Uniform(bounds))
	}
	return action
}
