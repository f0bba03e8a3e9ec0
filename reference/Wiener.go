package reference

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/CharlesCNorton/gym-electric-motor/config"
)

// WienerProcess generates a clipped Gaussian random walk reference. The
// walk's standard deviation per step is resampled at every segment
// boundary; the walk itself is continuous across segments within an
// episode. Each episode starts from a value drawn uniformly from the limit
// margin.
type WienerProcess struct {
	*Subepisoded
	sigmaRange r1.Interval
	last       float64
	started    bool
}

// NewWienerProcess creates and returns a new WienerProcess reference
// generator for the argument state
func NewWienerProcess(stateName string, sigmaRange,
	segmentLengths r1.Interval,
	limitMargin *r1.Interval) (*WienerProcess, error) {
	if sigmaRange.Min < 0 {
		return nil, config.Errorf("wiener-process", "sigma range must be "+
			"non-negative, got minimum %v", sigmaRange.Min)
	}

	sub, err := NewSubepisoded("wiener-process", stateName, segmentLengths,
		limitMargin)
	if err != nil {
		return nil, err
	}

	w := &WienerProcess{
		Subepisoded: sub,
		sigmaRange:  sigmaRange,
	}
	w.setGenerate(w.generateSegment)

	return w, nil
}

// Reset starts a new episode: the walk restarts from a fresh uniform draw
// within the limit margin
func (w *WienerProcess) Reset() (mat.Vector, error) {
	w.started = false
	return w.Subepisoded.Reset()
}

func (w *WienerProcess) generateSegment(length int) []float64 {
	sigma := w.Rand().Uniform(w.sigmaRange)
	margin := w.LimitMargin()

	if !w.started {
		w.last = w.Rand().Uniform(margin)
		w.started = true
	}

	x := make([]float64, length)
	value := w.last
	for i := range x {
		value = clip(value+w.Rand().Normal(0, sigma), margin)
		x[i] = value
	}
	w.last = value

	return x
}

func init() {
	config.Register(Capability, "wiener-process", WienerProcessFactory)
}

// WienerProcessFactory constructs a WienerProcess generator from an
// argument mapping. It is exported because the WienerProcess is the
// environment's default reference generator.
func WienerProcessFactory(args config.Overrides) (interface{}, error) {
	if err := args.Allow(Capability, "reference_state", "sigma_range",
		"segment_lengths", "limit_margin"); err != nil {
		return nil, err
	}

	state, err := args.String(Capability, "reference_state", "omega")
	if err != nil {
		return nil, err
	}
	sigma, err := args.Interval(Capability, "sigma_range",
		r1.Interval{Min: 1e-3, Max: 1e-1})
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

	return NewWienerProcess(state, sigma, lengths, margin)
}
