package environment

import (
	"gonum.org/v1/gonum/mat"

	"github.com/CharlesCNorton/gym-electric-motor/timestep"
)

// Callback observes the control loop at fixed points: before and after
// every reset and every step. Callbacks observe but never mutate the loop:
// a callback error is surfaced next to the (still valid) step result and
// never aborts the episode or corrupts simulation state. Visualization and
// logging attach here as best-effort side observers.
type Callback interface {
	OnResetBegin() error
	OnResetEnd(step timestep.TimeStep) error
	OnStepBegin(number int, action mat.Vector) error
	OnStepEnd(step timestep.TimeStep) error
}
