package reference

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r1"
)

func TestUnboundResetFails(t *testing.T) {
	s, err := NewConst("omega", 0.5, DefaultSegmentLengths, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Reset(); err == nil {
		t.Error("reset of an unbound generator was not rejected")
	}
}

func TestBindRejectsUnknownState(t *testing.T) {
	s, err := NewConst("u_sup", 0.5, DefaultSegmentLengths, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetPhysicalSystem(newMockSystem(t, 1e-4)); err == nil {
		t.Error("binding to an unknown state name was not rejected")
	}
}

func TestMarginDefaultsToStateBounds(t *testing.T) {
	s, err := NewConst("omega", 0, DefaultSegmentLengths, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetPhysicalSystem(newMockSystem(t, 1e-4)); err != nil {
		t.Fatal(err)
	}

	space := s.Space()
	if space.LowerBound().AtVec(0) != -1 || space.UpperBound().AtVec(0) != 1 {
		t.Errorf("default margin = [%v, %v], want the state bounds [-1, 1]",
			space.LowerBound().AtVec(0), space.UpperBound().AtVec(0))
	}

	if states := s.ReferencedStates(); len(states) != 1 ||
		states[0] != "omega" {
		t.Errorf("ReferencedStates() = %v", states)
	}
}

func TestConstClipsToMargin(t *testing.T) {
	s, err := NewConst("omega", 5, r1.Interval{Min: 10, Max: 10}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetPhysicalSystem(newMockSystem(t, 1e-4)); err != nil {
		t.Fatal(err)
	}
	if err := s.Seed(1); err != nil {
		t.Fatal(err)
	}

	ref, err := s.Reset()
	if err != nil {
		t.Fatal(err)
	}
	if got := ref.AtVec(0); got != 1 {
		t.Errorf("constant 5 clipped to %v, want the margin bound 1", got)
	}
}

func TestWienerProcessStaysWithinMargin(t *testing.T) {
	margin := r1.Interval{Min: -0.5, Max: 0.5}
	w, err := NewWienerProcess("omega",
		r1.Interval{Min: 0.01, Max: 0.1},
		r1.Interval{Min: 10, Max: 50},
		&margin,
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.SetPhysicalSystem(newMockSystem(t, 1e-4)); err != nil {
		t.Fatal(err)
	}
	if err := w.Seed(8); err != nil {
		t.Fatal(err)
	}

	for episode := 0; episode < 3; episode++ {
		if _, err := w.Reset(); err != nil {
			t.Fatal(err)
		}
		for k := 0; k < 500; k++ {
			v := w.Reference(k).AtVec(0)
			if v < margin.Min || v > margin.Max {
				t.Fatalf("episode %v step %v: %v outside margin", episode,
					k, v)
			}
		}
	}
}

func TestWienerProcessSeedReproduces(t *testing.T) {
	build := func() *WienerProcess {
		w, err := NewWienerProcess("omega",
			r1.Interval{Min: 0.01, Max: 0.1},
			r1.Interval{Min: 10, Max: 50},
			nil,
		)
		if err != nil {
			t.Fatal(err)
		}
		if err := w.SetPhysicalSystem(newMockSystem(t, 1e-4)); err != nil {
			t.Fatal(err)
		}
		if err := w.Seed(123); err != nil {
			t.Fatal(err)
		}
		return w
	}

	a, b := build(), build()
	for episode := 0; episode < 2; episode++ {
		if _, err := a.Reset(); err != nil {
			t.Fatal(err)
		}
		if _, err := b.Reset(); err != nil {
			t.Fatal(err)
		}
		for k := 0; k < 200; k++ {
			x, y := a.Reference(k).AtVec(0), b.Reference(k).AtVec(0)
			if x != y {
				t.Fatalf("episode %v step %v: %v != %v", episode, k, x, y)
			}
		}
	}
}

func TestWienerProcessRejectsNegativeSigma(t *testing.T) {
	_, err := NewWienerProcess("omega",
		r1.Interval{Min: -0.1, Max: 0.1},
		DefaultSegmentLengths,
		nil,
	)
	if err == nil {
		t.Error("a negative sigma range was not rejected")
	}
}

func TestSinusoidalStaysWithinMargin(t *testing.T) {
	s, err := NewSinusoidal("omega",
		r1.Interval{Min: 0, Max: 10},
		r1.Interval{Min: 1, Max: 100},
		r1.Interval{Min: -10, Max: 10},
		r1.Interval{Min: 5, Max: 20},
		nil,
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetPhysicalSystem(newMockSystem(t, 1e-3)); err != nil {
		t.Fatal(err)
	}
	if err := s.Seed(77); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Reset(); err != nil {
		t.Fatal(err)
	}
	for k := 0; k < 1000; k++ {
		if v := s.Reference(k).AtVec(0); v < -1 || v > 1 {
			t.Fatalf("step %v: %v outside [-1, 1]", k, v)
		}
	}
}

func TestSwitchedPicksByWeight(t *testing.T) {
	lo, err := NewConst("omega", -0.5, DefaultSegmentLengths, nil)
	if err != nil {
		t.Fatal(err)
	}
	hi, err := NewConst("omega", 0.5, DefaultSegmentLengths, nil)
	if err != nil {
		t.Fatal(err)
	}

	// A zero weight never gets picked
	s, err := NewSwitched([]Generator{lo, hi}, []float64{1, 0})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetPhysicalSystem(newMockSystem(t, 1e-4)); err != nil {
		t.Fatal(err)
	}
	if err := s.Seed(3); err != nil {
		t.Fatal(err)
	}

	for episode := 0; episode < 10; episode++ {
		ref, err := s.Reset()
		if err != nil {
			t.Fatal(err)
		}
		if got := ref.AtVec(0); got != -0.5 {
			t.Fatalf("episode %v picked the zero-weight generator: %v",
				episode, got)
		}
	}
}

func TestSwitchedRejectsMixedStates(t *testing.T) {
	omega, err := NewConst("omega", 0, DefaultSegmentLengths, nil)
	if err != nil {
		t.Fatal(err)
	}
	current, err := NewConst("i", 0, DefaultSegmentLengths, nil)
	if err != nil {
		t.Fatal(err)
	}

	s, err := NewSwitched([]Generator{omega, current}, []float64{1, 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetPhysicalSystem(newMockSystem(t, 1e-4)); err == nil {
		t.Error("sub-generators referencing different states were accepted")
	}
}

func TestSwitchedRejectsBadWeights(t *testing.T) {
	c, err := NewConst("omega", 0, DefaultSegmentLengths, nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := NewSwitched([]Generator{c}, []float64{-1}); err == nil {
		t.Error("a negative weight was not rejected")
	}
	if _, err := NewSwitched([]Generator{c}, []float64{0}); err == nil {
		t.Error("all-zero weights were not rejected")
	}
	if _, err := NewSwitched(nil, nil); err == nil {
		t.Error("an empty sub-generator list was not rejected")
	}
}

func TestSegmentLengthValidation(t *testing.T) {
	_, err := NewSubepisoded("test", "omega",
		r1.Interval{Min: 0, Max: 10}, nil)
	if err == nil {
		t.Error("a zero minimum segment length was not rejected")
	}

	_, err = NewSubepisoded("test", "omega",
		r1.Interval{Min: 10, Max: 5}, nil)
	if err == nil {
		t.Error("a descending segment length range was not rejected")
	}
}
