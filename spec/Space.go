// Package spec implements declarative action and state spaces. A Space
// tells the shape, bounds, and cardinality of the actions a system accepts
// or the states it emits, and is what downstream consumers use to validate
// values and to initialize controllers.
package spec

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Cardinality determines the cardinality of a space (discrete or continuous)
type Cardinality string

const (
	Continuous Cardinality = "Continuous"
	Discrete   Cardinality = "Discrete"
)

// Space describes a bounded set of vectors. A continuous Space is a box
// with per-dimension lower and upper bounds. A discrete Space is the
// one-dimensional index set {0, 1, ..., N-1}.
//
// A Space is immutable once constructed. The bound vectors returned by
// LowerBound and UpperBound are the Space's own backing data and must not
// be modified by callers.
type Space struct {
	lowerBound  *mat.VecDense
	upperBound  *mat.VecDense
	cardinality Cardinality
}

// NewBox creates and returns a new continuous box Space with the argument
// per-dimension bounds
func NewBox(low, high mat.Vector) (Space, error) {
	if low.Len() != high.Len() {
		return Space{}, fmt.Errorf("newBox: lower bound length %v must "+
			"match upper bound length %v", low.Len(), high.Len())
	}
	for i := 0; i < low.Len(); i++ {
		if low.AtVec(i) > high.AtVec(i) {
			return Space{}, fmt.Errorf("newBox: lower bound %v exceeds "+
				"upper bound %v at dimension %v", low.AtVec(i),
				high.AtVec(i), i)
		}
	}

	return Space{
		lowerBound:  mat.VecDenseCopyOf(low),
		upperBound:  mat.VecDenseCopyOf(high),
		cardinality: Continuous,
	}, nil
}

// NewDiscrete creates and returns a new discrete Space holding the actions
// {0, 1, ..., n-1}
func NewDiscrete(n int) (Space, error) {
	if n < 1 {
		return Space{}, fmt.Errorf("newDiscrete: need at least 1 action, "+
			"got %v", n)
	}

	return Space{
		lowerBound:  mat.NewVecDense(1, []float64{0}),
		upperBound:  mat.NewVecDense(1, []float64{float64(n - 1)}),
		cardinality: Discrete,
	}, nil
}

// Len returns the number of dimensions of vectors in the Space
func (s Space) Len() int {
	return s.lowerBound.Len()
}

// N returns the number of actions in a discrete Space. N panics if called
// on a continuous Space.
func (s Space) N() int {
	if s.cardinality != Discrete {
		panic("n: continuous space has no action count")
	}
	return int(s.upperBound.AtVec(0)) + 1
}

// LowerBound returns the per-dimension lower bound of the Space
func (s Space) LowerBound() mat.Vector {
	return s.lowerBound
}

// UpperBound returns the per-dimension upper bound of the Space
func (s Space) UpperBound() mat.Vector {
	return s.upperBound
}

// Cardinality returns whether the Space is continuous or discrete
func (s Space) Cardinality() Cardinality {
	return s.cardinality
}

// Contains returns whether the argument vector is a member of the Space.
// For discrete spaces, membership requires a single integer-valued element
// within the index set.
func (s Space) Contains(v mat.Vector) bool {
	if v == nil || v.Len() != s.Len() {
		return false
	}

	if s.cardinality == Discrete {
		a := v.AtVec(0)
		return a == math.Trunc(a) && a >= s.lowerBound.AtVec(0) &&
			a <= s.upperBound.AtVec(0)
	}

	for i := 0; i < v.Len(); i++ {
		if v.AtVec(i) < s.lowerBound.AtVec(i) ||
			v.AtVec(i) > s.upperBound.AtVec(i) {
			return false
		}
	}
	return true
}

func (s Space) String() string {
	return fmt.Sprintf("Space | %v  |  Low: %v  |  High: %v", s.cardinality,
		mat.Formatted(s.lowerBound.T()), mat.Formatted(s.upperBound.T()))
}
