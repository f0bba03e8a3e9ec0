// Package experiment implements functionality for running control
// experiments against an environment
package experiment

import (
	"time"

	"github.com/samuelfneumann/progressbar"

	"github.com/CharlesCNorton/gym-electric-motor/environment"
	"github.com/CharlesCNorton/gym-electric-motor/experiment/tracker"
	ts "github.com/CharlesCNorton/gym-electric-motor/timestep"
)

// Online runs a controller against an environment for a maximum number of
// control steps, episode after episode, sending every timestep to the
// registered trackers.
type Online struct {
	env          *environment.Environment
	controller   Controller
	maxSteps     uint
	currentSteps uint
	trackers     []tracker.Tracker
}

// NewOnline creates and returns a new online experiment running the
// argument controller in the argument environment for at most steps
// control steps
func NewOnline(env *environment.Environment, c Controller, steps uint,
	trackers ...tracker.Tracker) *Online {
	return &Online{
		env:        env,
		controller: c,
		maxSteps:   steps,
		trackers:   trackers,
	}
}

// Register registers an additional tracker with the experiment
func (o *Online) Register(t tracker.Tracker) {
	o.trackers = append(o.trackers, t)
}

// RunEpisode runs a single episode, returning whether the experiment's
// step budget has been used up
func (o *Online) RunEpisode() (bool, error) {
	return o.runEpisode(nil)
}

// Run runs episodes until the step budget is used up, displaying progress
func (o *Online) Run() error {
	pbar := progressbar.New(50, int(o.maxSteps), time.Second,
		false)
	pbar.Display()
	defer pbar.Close()

	for {
		done, err := o.runEpisode(pbar)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// Save writes the data cached by every tracker to disk
func (o *Online) Save() error {
	for _, t := range o.trackers {
		if err := t.Save(); err != nil {
			return err
		}
	}
	return nil
}

func (o *Online) runEpisode(pbar *progressbar.ProgressBar) (bool, error) {
	step, err := o.env.Reset()
	if err != nil {
		return false, err
	}
	o.track(step)

	for !step.Last() && o.currentSteps < o.maxSteps {
		o.currentSteps++

		action := o.controller.SelectAction(step)
		step, _, err = o.env.Step(action)
		if err != nil {
			return false, err
		}

		o.track(step)
		if pbar != nil {
			pbar.Increment()
		}
	}

	return o.currentSteps >= o.maxSteps, nil
}

// track sends the timestep to every tracker
func (o *Online) track(step ts.TimeStep) {
	for _, t := range o.trackers {
		t.Track(step)
	}
}
