// Package reference implements episode-segmented stochastic reference
// signal generators. A generator produces, per control step, the value one
// referenced state quantity should track. Internally an episode is split
// into segments; the generating parameters (amplitude, frequency, offset,
// phase, ...) are held constant within a segment and resampled at every
// segment boundary, so a controller is stress-tested against step changes
// of unpredictable size and timing.
package reference

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/CharlesCNorton/gym-electric-motor/config"
	"github.com/CharlesCNorton/gym-electric-motor/physical"
	"github.com/CharlesCNorton/gym-electric-motor/random"
	"github.com/CharlesCNorton/gym-electric-motor/spec"
)

// Capability is the registry capability under which reference generators
// are registered
const Capability = "reference-generator"

// Generator produces reference values for one or more state quantities. A
// Generator starts unbound; SetPhysicalSystem binds it to the system whose
// states it references, after which Reset starts a new episode and
// Reference serves per-step values.
//
// Reference values are always within the generator's limit margin: every
// generated segment is clipped before any consumer can observe it.
type Generator interface {
	// SetPhysicalSystem binds the generator to the system whose state it
	// references and derives the limit margin
	SetPhysicalSystem(sys physical.System) error

	// Reset starts a new episode at segment 0 and returns the reference
	// for step 0
	Reset() (mat.Vector, error)

	// Reference returns the reference value at the argument episode step.
	// Values are precomputed per segment: querying the same step twice
	// without advancing returns identical values.
	Reference(step int) mat.Vector

	// ReferencedStates returns the names of the referenced states
	ReferencedStates() []string

	// Space returns the bounds of the generated reference values
	Space() spec.Space

	physical.Seeder
}

// DefaultSegmentLengths is the default range the per-segment length is
// drawn from, in control steps.
var DefaultSegmentLengths = r1.Interval{Min: 500, Max: 2000}

// Subepisoded is the segment engine shared by the concrete generators. It
// owns the referenced state binding, the limit margin, the segment buffer,
// and the generator's random component. A concrete generator embeds
// *Subepisoded and supplies the generate function that fills one segment.
type Subepisoded struct {
	name       string
	stateName  string
	stateIndex int
	sys        physical.System

	margin      r1.Interval
	marginSet   bool // explicit margin passed at construction
	lengthRange r1.Interval
	rand        *random.Component

	segment      []float64
	segmentStart int

	// generate fills one segment of the argument length; installed by the
	// embedding generator
	generate func(length int) []float64

	// onBind runs after the limit margin is derived; installed by
	// embedding generators that clamp their parameter ranges to the margin
	onBind func() error
}

// NewSubepisoded creates and returns a new segment engine for the argument
// referenced state. If limitMargin is non-nil it overrides the default
// margin (the referenced state's normalized state-space bounds).
func NewSubepisoded(name, stateName string, segmentLengths r1.Interval,
	limitMargin *r1.Interval) (*Subepisoded, error) {
	if segmentLengths.Min < 1 || segmentLengths.Max < segmentLengths.Min {
		return nil, config.Errorf(name, "segment length range [%v, %v] "+
			"must be ascending and at least 1", segmentLengths.Min,
			segmentLengths.Max)
	}

	s := &Subepisoded{
		name:        name,
		stateName:   stateName,
		lengthRange: segmentLengths,
		rand:        random.NewComponent(name),
	}
	if limitMargin != nil {
		s.margin = *limitMargin
		s.marginSet = true
	}
	return s, nil
}

// Name returns the generator's identifying name
func (s *Subepisoded) Name() string {
	return s.name
}

// SetPhysicalSystem binds the engine to the system whose state it
// references
func (s *Subepisoded) SetPhysicalSystem(sys physical.System) error {
	index := physical.NewNameIndex(sys.StateNames())
	i, err := index.IndexOf(s.stateName)
	if err != nil {
		return config.Errorf(s.name, "%v", err)
	}

	s.sys = sys
	s.stateIndex = i
	if !s.marginSet {
		s.margin = r1.Interval{
			Min: sys.StateSpace().LowerBound().AtVec(i),
			Max: sys.StateSpace().UpperBound().AtVec(i),
		}
	}

	if s.onBind != nil {
		return s.onBind()
	}
	return nil
}

// Reset starts a new episode: the random component rotates to a fresh
// sub-generator and segment 0 is generated.
func (s *Subepisoded) Reset() (mat.Vector, error) {
	if s.sys == nil {
		return nil, config.Errorf(s.name, "no physical system bound")
	}

	s.rand.NextGenerator()
	s.drawSegment(0)
	return s.Reference(0), nil
}

// Reference returns the reference value at the argument episode step,
// transparently generating a new segment when the current one is exhausted
func (s *Subepisoded) Reference(step int) mat.Vector {
	i := step - s.segmentStart
	if i < 0 || i >= len(s.segment) {
		s.drawSegment(step)
		i = 0
	}
	return mat.NewVecDense(1, []float64{s.segment[i]})
}

// ReferencedStates returns the name of the referenced state
func (s *Subepisoded) ReferencedStates() []string {
	return []string{s.stateName}
}

// Space returns the limit margin of the generated reference as a
// one-dimensional box
func (s *Subepisoded) Space() spec.Space {
	space, err := spec.NewBox(mat.NewVecDense(1, []float64{s.margin.Min}),
		mat.NewVecDense(1, []float64{s.margin.Max}))
	if err != nil {
		panic(err)
	}
	return space
}

// Seed seeds the generator's random component
func (s *Subepisoded) Seed(seed uint64) error {
	return s.rand.Seed(seed)
}

// Rand returns the generator's random component
func (s *Subepisoded) Rand() *random.Component {
	return s.rand
}

// LimitMargin returns the normalized bound the generated reference is
// clipped to
func (s *Subepisoded) LimitMargin() r1.Interval {
	return s.margin
}

// StateIndex returns the index of the referenced state in the bound
// system's state vector
func (s *Subepisoded) StateIndex() int {
	return s.stateIndex
}

// Tau returns the bound system's control step duration
func (s *Subepisoded) Tau() float64 {
	return s.sys.Tau()
}

func (s *Subepisoded) drawSegment(start int) {
	length := int(s.rand.Uniform(s.lengthRange))
	if length < 1 {
		length = 1
	}

	s.segment = s.generate(length)
	s.segmentStart = start

	// Generated values never leave the limit margin
	for i, v := range s.segment {
		s.segment[i] = clip(v, s.margin)
	}
}

// setGenerate installs the segment fill function of the embedding
// generator
func (s *Subepisoded) setGenerate(g func(length int) []float64) {
	s.generate = g
}

// setOnBind installs the embedding generator's bind hook
func (s *Subepisoded) setOnBind(h func() error) {
	s.onBind = h
}

// clip clamps v into the argument interval
func clip(v float64, bounds r1.Interval) float64 {
	return math.Min(math.Max(v, bounds.Min), bounds.Max)
}

// clipInterval clamps both ends of an interval into the argument bounds
func clipInterval(i, bounds r1.Interval) r1.Interval {
	return r1.Interval{
		Min: clip(i.Min, bounds),
		Max: clip(i.Max, bounds),
	}
}
