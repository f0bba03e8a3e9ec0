package environment

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestLimitConstraintBoundary(t *testing.T) {
	c := NewLimitConstraint("omega", "i")
	if err := c.Bind(newRampSystem(t, 0)); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		state []float64
		want  bool
	}{
		{[]float64{0, 0}, false},
		{[]float64{1, 1}, false}, // exactly at the bound is not violated
		{[]float64{-1, -1}, false},
		{[]float64{1.0001, 0}, true},
		{[]float64{0, -1.0001}, true},
	}
	for _, test := range tests {
		state := mat.NewVecDense(2, test.state)
		if got := c.Violated(state); got != test.want {
			t.Errorf("Violated(%v) = %v, want %v", test.state, got, test.want)
		}
	}
}

func TestLimitConstraintMonitorsOnlyItsStates(t *testing.T) {
	c := NewLimitConstraint("omega")
	if err := c.Bind(newRampSystem(t, 0)); err != nil {
		t.Fatal(err)
	}

	// The unmonitored current may exceed its bound freely
	if c.Violated(mat.NewVecDense(2, []float64{0.5, 1.5})) {
		t.Error("an unmonitored state triggered a violation")
	}
	if !c.Violated(mat.NewVecDense(2, []float64{1.5, 0.5})) {
		t.Error("the monitored state did not trigger a violation")
	}
}

func TestSquaredConstraintBoundary(t *testing.T) {
	c := NewSquaredConstraint("omega", "i")
	if err := c.Bind(newRampSystem(t, 0)); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		state []float64
		want  bool
	}{
		{[]float64{0.8, 0.6}, false}, // norm exactly 1 is not violated
		{[]float64{0.81, 0.6}, true},
		{[]float64{1, 0}, false},
		{[]float64{0.9, 0.9}, true},
	}
	for _, test := range tests {
		state := mat.NewVecDense(2, test.state)
		if got := c.Violated(state); got != test.want {
			t.Errorf("Violated(%v) = %v, want %v", test.state, got, test.want)
		}
	}
}

func TestConstraintBindRejectsUnknownState(t *testing.T) {
	if err := NewLimitConstraint("u_sup").Bind(newRampSystem(t, 0)); err == nil {
		t.Error("a limit constraint on an unknown state was accepted")
	}
	if err := NewSquaredConstraint("u_sup").Bind(newRampSystem(t, 0)); err == nil {
		t.Error("a squared constraint on an unknown state was accepted")
	}
}
