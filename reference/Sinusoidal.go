package reference

import (
	"math"

	"gonum.org/v1/gonum/spatial/r1"

	"github.com/CharlesCNorton/gym-electric-motor/config"
)

// Sinusoidal generates a sinusoidal reference with amplitude, frequency,
// offset, and phase resampled at every segment boundary. Amplitude and
// offset obey the same margin clamping as the Step generator.
type Sinusoidal struct {
	*Subepisoded
	amplitudeRange r1.Interval
	frequencyRange r1.Interval
	offsetRange    r1.Interval
}

// NewSinusoidal creates and returns a new Sinusoidal reference generator
// for the argument state
func NewSinusoidal(stateName string, amplitudeRange, frequencyRange,
	offsetRange, segmentLengths r1.Interval,
	limitMargin *r1.Interval) (*Sinusoidal, error) {
	if frequencyRange.Min <= 0 {
		return nil, config.Errorf("sinusoidal", "frequency range must be "+
			"positive, got minimum %v", frequencyRange.Min)
	}

	sub, err := NewSubepisoded("sinusoidal", stateName, segmentLengths,
		limitMargin)
	if err != nil {
		return nil, err
	}

	s := &Sinusoidal{
		Subepisoded:    sub,
		amplitudeRange: amplitudeRange,
		frequencyRange: frequencyRange,
		offsetRange:    offsetRange,
	}
	s.setGenerate(s.generateSegment)
	s.setOnBind(s.clampRanges)

	return s, nil
}

func (s *Sinusoidal) clampRanges() error {
	margin := s.LimitMargin()

	s.amplitudeRange = clipInterval(s.amplitudeRange,
		r1.Interval{Min: 0, Max: (margin.Max - margin.Min) / 2})
	s.offsetRange = clipInterval(s.offsetRange, margin)

	return nil
}

func (s *Sinusoidal) generateSegment(length int) []float64 {
	amplitude := s.Rand().Uniform(s.amplitudeRange)
	frequency := s.Rand().Uniform(s.frequencyRange)

	offsetRange := clipInterval(s.offsetRange, r1.Interval{
		Min: s.LimitMargin().Min + amplitude,
		Max: s.LimitMargin().Max - amplitude,
	})
	offset := s.Rand().Uniform(offsetRange)
	phase := 2 * math.Pi * s.Rand().Float64()

	tau := s.Tau()
	x := make([]float64, length)
	for i := range x {
		t := float64(i) * tau
		x[i] = amplitude*math.Sin(2*math.Pi*frequency*t+phase) + offset
	}
	return x
}

func init() {
	config.Register(Capability, "sinusoidal", sinusoidalFactory)
}

func sinusoidalFactory(args config.Overrides) (interface{}, error) {
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

	return NewSinusoidal(state, amplitude, frequency, offset, lengths,
		margin)
}
