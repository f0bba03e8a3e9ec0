package reference

import (
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/CharlesCNorton/gym-electric-motor/config"
)

// Const generates a constant reference, clipped to the limit margin. It is
// the degenerate case of the segmented generators and is mostly useful for
// steady-state experiments and tests.
type Const struct {
	*Subepisoded
	value float64
}

// NewConst creates and returns a new Const reference generator holding the
// argument value for the argument state
func NewConst(stateName string, value float64, segmentLengths r1.Interval,
	limitMargin *r1.Interval) (*Const, error) {
	sub, err := NewSubepisoded("const", stateName, segmentLengths,
		limitMargin)
	if err != nil {
		return nil, err
	}

	c := &Const{
		Subepisoded: sub,
		value:       value,
	}
	c.setGenerate(c.generateSegment)

	return c, nil
}

func (c *Const) generateSegment(length int) []float64 {
	x := make([]float64, length)
	for i := range x {
		x[i] = c.value
	}
	return x
}

func init() {
	config.Register(Capability, "const", constFactory)
}

func constFactory(args config.Overrides) (interface{}, error) {
	if err := args.Allow(Capability, "reference_state", "value",
		"segment_lengths", "limit_margin"); err != nil {
		return nil, err
	}

	state, err := args.String(Capability, "reference_state", "omega")
	if err != nil {
		return nil, err
	}
	value, err := args.Float(Capability, "value", 0)
	if err != nil {
		return nil, err
	}
	lengths, err := args.Interval(Capability, "segment_lengths",
		DefaultSegmentLengths)
	if err != nil {
		return nil, err
	}
	margin, err := marginArg(args)
	if err != nil {
		return nil, err
	}

	return NewConst(state, value, lengths, margin)
}
