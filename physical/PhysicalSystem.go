// Package physical outlines the contract that a physical drive simulation
// must satisfy to be controlled by an environment. The environment core
// never inspects a physical system beyond this contract: supply, converter,
// motor, and load dynamics live behind Simulate and Reset.
package physical

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/CharlesCNorton/gym-electric-motor/spec"
)

// System is the contract of a physical drive simulation. A System advances
// by exactly one fixed time interval Tau per Simulate call and reports its
// state as an ordered vector of named quantities, normalized into the
// bounds declared by StateSpace. Limits and NominalState are parallel to
// StateNames and give the physical scale used for normalization and the
// typical operating value of each quantity.
//
// The state vector length and name ordering are fixed for the lifetime of
// a System.
type System interface {
	// Simulate consumes one action, advances the system state by Tau,
	// and returns the resulting normalized state
	Simulate(action mat.Vector) (mat.Vector, error)

	// Reset returns the system to an initial state and returns it
	Reset() (mat.Vector, error)

	ActionSpace() spec.Space
	StateSpace() spec.Space
	StateNames() []string
	Limits() mat.Vector
	NominalState() mat.Vector

	// Tau returns the fixed duration of one control step in seconds
	Tau() float64
}

// Seeder is implemented by systems and processor stages that own random
// state. Seeding a system makes its episodes reproducible.
type Seeder interface {
	Seed(seed uint64) error
}

// NameIndex is a cached mapping from state names to their indices in the
// state vector. The mapping is derived once per system since name ordering
// is fixed at construction.
type NameIndex map[string]int

// NewNameIndex creates and returns the name-to-index mapping of the
// argument state names
func NewNameIndex(names []string) NameIndex {
	index := make(NameIndex, len(names))
	for i, name := range names {
		index[name] = i
	}
	return index
}

// IndexOf returns the state vector index of the argument name, or an error
// if the system has no state with that name
func (n NameIndex) IndexOf(name string) (int, error) {
	i, ok := n[name]
	if !ok {
		return 0, fmt.Errorf("indexOf: no state named %q", name)
	}
	return i, nil
}
