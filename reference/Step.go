package reference

import (
	"math"

	"gonum.org/v1/gonum/spatial/r1"

	"github.com/CharlesCNorton/gym-electric-motor/config"
)

// Step generates a randomized rectangular-pulse reference. Per segment it
// draws an amplitude, a frequency, an offset, a duty ratio, and a phase,
// and emits the resulting bipolar square wave:
//
//	reference = amplitude * sign(frequency*(t mod 1/frequency) - duty) + offset
//
// circularly shifted by the phase (expressed as a fraction of one period)
// and hard-clipped to the limit margin. The duty ratio is drawn from a
// triangular distribution peaking at 0.5, so 50% duty cycles are the most
// likely and all-high or all-low segments taper off.
//
// The amplitude range is clamped at bind time so the amplitude never
// exceeds half the margin span, and the offset range is re-clamped per
// segment so offset ± amplitude stays within the margin.
type Step struct {
	*Subepisoded
	amplitudeRange r1.Interval
	frequencyRange r1.Interval
	offsetRange    r1.Interval
}

// NewStep creates and returns a new Step reference generator for the
// argument state
func NewStep(stateName string, amplitudeRange, frequencyRange,
	offsetRange, segmentLengths r1.Interval,
	limitMargin *r1.Interval) (*Step, error) {
	if frequencyRange.Min <= 0 {
		return nil, config.Errorf("step", "frequency range must be "+
			"positive, got minimum %v", frequencyRange.Min)
	}

	sub, err := NewSubepisoded("step", stateName, segmentLengths,
		limitMargin)
	if err != nil {
		return nil, err
	}

	s := &Step{
		Subepisoded:    sub,
		amplitudeRange: amplitudeRange,
		frequencyRange: frequencyRange,
		offsetRange:    offsetRange,
	}
	s.setGenerate(s.generateSegment)
	s.setOnBind(s.clampRanges)

	return s, nil
}

// clampRanges clamps the amplitude and offset ranges to the limit margin
// once the margin is known
func (s *Step) clampRanges() error {
	margin := s.LimitMargin()

	s.amplitudeRange = clipInterval(s.amplitudeRange,
		r1.Interval{Min: 0, Max: (margin.Max - margin.Min) / 2})
	s.offsetRange = clipInterval(s.offsetRange, margin)

	return nil
}

func (s *Step) generateSegment(length int) []float64 {
	amplitude := s.Rand().Uniform(s.amplitudeRange)
	frequency := s.Rand().Uniform(s.frequencyRange)

	offsetRange := clipInterval(s.offsetRange, r1.Interval{
		Min: s.LimitMargin().Min + amplitude,
		Max: s.LimitMargin().Max - amplitude,
	})
	offset := s.Rand().Uniform(offsetRange)

	dutyRatio := s.Rand().Triangular(0, 1, 0.5)

	tau := s.Tau()
	period := 1 / frequency
	x := make([]float64, length)
	for i := range x {
		t := float64(i) * tau
		x[i] = sign(frequency*math.Mod(t, period) - dutyRatio)
	}

	// Phase offset as a fraction of one period, truncated to whole samples
	phase := s.Rand().Float64()
	roll(x, int(phase/frequency/tau))

	for i := range x {
		x[i] = amplitude*x[i] + offset
	}
	return x
}

// sign returns the signum of v. sign(0) is 0, matching the numeric
// convention of the underlying formulation: a sample at the exact
// duty-cycle crossing takes the offset value rather than either level.
func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// roll circularly shifts x right by n samples in place
func roll(x []float64, n int) {
	if len(x) == 0 {
		return
	}
	n %= len(x)
	if n < 0 {
		n += len(x)
	}
	if n == 0 {
		return
	}

	rolled := make([]float64, len(x))
	for i := range x {
		rolled[(i+n)%len(x)] = x[i]
	}
	copy(x, rolled)
}

func init() {
	config.Register(Capability, "step", stepFactory)
}

// stepFactory constructs a Step generator from an argument mapping
func stepFactory(args config.Overrides) (interface{}, error) {
	if err := args.Allow(Capability, "reference_state", "amplitude_range",
		"frequency_range", "offset_range", "segment_lengths",
		"limit_margin"); err != nil {
		return nil, err
	}

	state, err := args.String(Capability, "reference_state", "omega")
	if err != nil {
		return nil, err
	}
	amplitude, err := args.Interval(Capability, "amplitude_range",
		r1.Interval{Min: 0, Max: math.Inf(1)})
	if err != nil {
		return nil, err
	}
	frequency, err := args.Interval(Capability, "frequency_range",
		r1.Interval{Min: 1, Max: 10})
	if err != nil {
		return nil, err
	}
	offset, err := args.Interval(Capability, "offset_range",
		r1.Interval{Min: math.Inf(-1), Max: math.Inf(1)})
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

	return NewStep(state, amplitude, frequency, offset, lengths, margin)
}

// marginArg reads the optional explicit limit margin override. A scalar
// value m is shorthand for the symmetric margin [-m, m].
func marginArg(args config.Overrides) (*r1.Interval, error) {
	switch m := args["limit_margin"].(type) {
	case float64:
		return &r1.Interval{Min: -m, Max: m}, nil
	case int:
		f := float64(m)
		return &r1.Interval{Min: -f, Max: f}, nil
	}

	unset := r1.Interval{Min: math.NaN(), Max: math.NaN()}
	margin, err := args.Interval(Capability, "limit_margin", unset)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(margin.Min) {
		return nil, nil
	}
	return &margin, nil
}
