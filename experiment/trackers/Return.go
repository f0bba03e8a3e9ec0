// Package trackers provides concrete trackers for saving experiment data
package trackers

import (
	"encoding/gob"
	"fmt"
	"os"

	ts "github.com/CharlesCNorton/gym-electric-motor/timestep"
)

// Return tracks and saves the episodic return of an experiment: the
// cumulative reward of every finished episode, in order. If an environment
// is wrapped so that rewards are modified, the modified rewards are what
// is tracked.
//
// An episode must finish for its return to be saved; an unfinished final
// episode is dropped.
type Return struct {
	currentReturn  float64
	episodeReturns []float64
	filename       string
}

// NewReturn creates and returns a new Return tracker saving to the
// argument file
func NewReturn(filename string) *Return {
	return &Return{filename: filename}
}

// Track accumulates the reward of the argument timestep, caching the
// episodic return whenever the timestep ends its episode
func (r *Return) Track(step ts.TimeStep) {
	r.currentReturn += step.Reward

	if step.Last() {
		r.episodeReturns = append(r.episodeReturns, r.currentReturn)
		r.currentReturn = 0
	}
}

// Save writes the tracked episodic returns to disk, gob-encoded
func (r *Return) Save() error {
	file, err := os.Create(r.filename)
	if err != nil {
		return fmt.Errorf("save: could not open save file: %v", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(r.episodeReturns); err != nil {
		return fmt.Errorf("save: could not encode return data: %v", err)
	}
	return nil
}

// LoadData reads back episodic data saved by a tracker in this package
func LoadData(filename string) ([]float64, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("loadData: could not open data file: %v", err)
	}
	defer file.Close()

	var data []float64
	if err := gob.NewDecoder(file).Decode(&data); err != nil {
		return nil, fmt.Errorf("loadData: could not decode data: %v", err)
	}
	return data, nil
}
