package trackers

import (
	"encoding/gob"
	"fmt"
	"os"

	ts "github.com/CharlesCNorton/gym-electric-motor/timestep"
)

// EpisodeLength tracks and saves the length, in control steps, of every
// finished episode of an experiment. Together with the end types it tells
// how long a controller keeps the drive within its limits.
type EpisodeLength struct {
	lengths  []float64
	filename string
}

// NewEpisodeLength creates and returns a new EpisodeLength tracker saving
// to the argument file
func NewEpisodeLength(filename string) *EpisodeLength {
	return &EpisodeLength{filename: filename}
}

// Track caches the episode length whenever the argument timestep ends its
// episode
func (e *EpisodeLength) Track(step ts.TimeStep) {
	if step.Last() {
		e.lengths = append(e.lengths, float64(step.Number))
	}
}

// Save writes the tracked episode lengths to disk, gob-encoded
func (e *EpisodeLength) Save() error {
	file, err := os.Create(e.filename)
	if err != nil {
		return fmt.Errorf("save: could not open save file: %v", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(e.lengths); err != nil {
		return fmt.Errorf("save: could not encode episode lengths: %v", err)
	}
	return nil
}
