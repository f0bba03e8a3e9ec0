// Package tracker outlines the interface for tracking data generated
// while an experiment runs
package tracker

import (
	ts "github.com/CharlesCNorton/gym-electric-motor/timestep"
)

// Tracker tracks data from the timesteps of a running experiment, caching
// it in memory. Save writes all cached data to disk, usually once the
// experiment has finished.
type Tracker interface {
	Track(step ts.TimeStep)
	Save() error
}
