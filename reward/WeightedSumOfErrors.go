// Package reward implements the standard reward function shipped with the
// environment. The full reward-weight bookkeeping surface (per-experiment
// weight schedules) is an external collaborator; only the weighted
// sum-of-errors itself lives here.
package reward

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/CharlesCNorton/gym-electric-motor/config"
	"github.com/CharlesCNorton/gym-electric-motor/physical"
)

// Capability is the registry capability under which reward functions are
// registered
const Capability = "reward-function"

// WeightedSumOfErrors scores a step by the weighted tracking error of the
// referenced states:
//
//	reward = -sum_i weight_i * (|state_i - reference_i| / span_i)^exponent
//
// where span_i is the referenced state's normalized state-space span, so
// the reward lies in [-sum(weights), 0]. On a constraint violation the
// penalty branch returns ViolationReward instead.
//
// The names argument order must match the ordering of the reference vector,
// i.e. the generator's ReferencedStates.
type WeightedSumOfErrors struct {
	names    []string
	weights  []float64
	exponent float64

	// ViolationReward is returned whenever the violated flag is set.
	ViolationReward float64

	indices []int
	spans   []float64
}

// NewWeightedSumOfErrors creates and returns a new WeightedSumOfErrors
// with one weight per referenced state name
func NewWeightedSumOfErrors(names []string, weights []float64,
	exponent, violationReward float64) (*WeightedSumOfErrors, error) {
	if len(names) == 0 {
		return nil, config.Errorf(Capability, "no referenced states")
	}
	if len(weights) != len(names) {
		return nil, config.Errorf(Capability, "have %v weights for %v "+
			"referenced states", len(weights), len(names))
	}
	if exponent <= 0 {
		return nil, config.Errorf(Capability, "exponent %v must be "+
			"positive", exponent)
	}

	return &WeightedSumOfErrors{
		names:           append([]string(nil), names...),
		weights:         append([]float64(nil), weights...),
		exponent:        exponent,
		ViolationReward: violationReward,
	}, nil
}

// Bind resolves the referenced state names against the processed system
func (w *WeightedSumOfErrors) Bind(sys physical.System) error {
	index := physical.NewNameIndex(sys.StateNames())
	space := sys.StateSpace()

	w.indices = w.indices[:0]
	w.spans = w.spans[:0]
	for _, name := range w.names {
		i, err := index.IndexOf(name)
		if err != nil {
			return config.Errorf(Capability, "%v", err)
		}
		w.indices = append(w.indices, i)

		span := space.UpperBound().AtVec(i) - space.LowerBound().AtVec(i)
		if span == 0 {
			span = 1
		}
		w.spans = append(w.spans, span)
	}
	return nil
}

// Reward scores one transition
func (w *WeightedSumOfErrors) Reward(state, ref, action mat.Vector,
	violated bool) float64 {
	if violated {
		return w.ViolationReward
	}

	var r float64
	for k, i := range w.indices {
		err := math.Abs(state.AtVec(i)-ref.AtVec(k)) / w.spans[k]
		r -= w.weights[k] * math.Pow(err, w.exponent)
	}
	return r
}

func init() {
	config.Register(Capability, "weighted-sum-of-errors", Factory)
}

// Factory constructs a WeightedSumOfErrors from an argument mapping. It is
// exported because the weighted sum of errors is the environment's default
// reward function.
func Factory(args config.Overrides) (interface{}, error) {
	if err := args.Allow(Capability, "weights", "exponent",
		"violation_reward"); err != nil {
		return nil, err
	}

	weightMap, err := args.FloatMap(Capability, "weights", nil)
	if err != nil {
		return nil, err
	}
	if len(weightMap) == 0 {
		return nil, config.Errorf(Capability, "no reward weights")
	}
	exponent, err := args.Float(Capability, "exponent", 1)
	if err != nil {
		return nil, err
	}
	violation, err := args.Float(Capability, "violation_reward", -10)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(weightMap))
	for name := range weightMap {
		names = append(names, name)
	}
	sort.Strings(names)

	weights := make([]float64, len(names))
	for i, name := range names {
		weights[i] = weightMap[name]
	}

	return NewWeightedSumOfErrors(names, weights, exponent, violation)
}
