// Package timestep implements timesteps of the controller-environment
// interaction
package timestep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// StepType denotes the type of step that a TimeStep can be, either the first
// environmental step, a middle step, or a last step
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// EndType describes how an episode ended. An episode may end because a
// monitored limit was violated (the terminal outcome), because the
// configured step horizon was reached (the truncated outcome), or not at
// all (Nil, for First and Mid steps).
type EndType int

const (
	// Nil indicates that the episode has not ended
	Nil EndType = iota

	// LimitViolation indicates that the episode ended because a
	// constraint on the drive state was violated
	LimitViolation

	// StepLimit indicates that the episode ended because the episode
	// step horizon was reached without any violation
	StepLimit
)

func (e EndType) String() string {
	switch e {
	case LimitViolation:
		return "LimitViolation"
	case StepLimit:
		return "StepLimit"
	default:
		return "Nil"
	}
}

// TimeStep packages together a single control step in an environment. The
// observation of a control step is the pair (State, Reference): the
// normalized drive state returned by the processor chain together with the
// reference values the controller should track.
type TimeStep struct {
	StepType
	Reward    float64
	State     mat.Vector
	Reference mat.Vector
	Number    int
	Info      map[string]interface{}

	endType EndType
}

// New creates and returns a new TimeStep
func New(t StepType, reward float64, state, reference mat.Vector,
	number int) TimeStep {
	return TimeStep{
		StepType:  t,
		Reward:    reward,
		State:     state,
		Reference: reference,
		Number:    number,
		endType:   Nil,
	}
}

// SetEnd marks the TimeStep as the last in its episode with the argument
// end type
func (t *TimeStep) SetEnd(e EndType) {
	t.StepType = Last
	t.endType = e
}

// End returns how the episode ended at this TimeStep, or Nil if the
// episode did not end
func (t TimeStep) End() EndType {
	return t.endType
}

// First returns whether a TimeStep is the first in an episode
func (t TimeStep) First() bool {
	return t.StepType == First
}

// Mid returns whether a TimeStep is a middle step in an episode
func (t TimeStep) Mid() bool {
	return t.StepType == Mid
}

// Last returns whether a TimeStep is the last step in an episode
func (t TimeStep) Last() bool {
	return t.StepType == Last
}

// Terminated returns whether the episode ended in a constraint violation
func (t TimeStep) Terminated() bool {
	return t.endType == LimitViolation
}

// Truncated returns whether the episode ended at the step horizon without
// a constraint violation
func (t TimeStep) Truncated() bool {
	return t.endType == StepLimit
}

func (t TimeStep) String() string {
	str := "TimeStep | Type: %v  |  Reward:  %.4f  |  End: %v  |  " +
		"Step Number:  %v"

	return fmt.Sprintf(str, t.StepType, t.Reward, t.endType, t.Number)
}
