package main

import (
	"fmt"
	"log"
	"math"

	"gonum.org/v1/gonum/spatial/r1"

	"github.com/CharlesCNorton/gym-electric-motor/config"
	"github.com/CharlesCNorton/gym-electric-motor/environment"
	"github.com/CharlesCNorton/gym-electric-motor/experiment"
	"github.com/CharlesCNorton/gym-electric-motor/experiment/trackers"
	"github.com/CharlesCNorton/gym-electric-motor/physical"
	"github.com/CharlesCNorton/gym-electric-motor/processor"
	"github.com/CharlesCNorton/gym-electric-motor/reference"
)

func main() {
	var seed uint64 = 192382

	// A small stand-in drive: angular velocity and current as first-order
	// lags, tau = 100 microseconds
	start := r1.Interval{Min: -0.1, Max: 0.1}
	sys, err := physical.NewFirstOrderSystem(
		[]string{"omega", "i"},
		[]float64{400, 200},
		[]float64{300, 150},
		1e-4, 1.0, 5e-3,
		[]r1.Interval{start, start},
	)
	if err != nil {
		log.Fatal(err)
	}

	// Rectangular-pulse speed reference with fresh amplitude, frequency,
	// duty cycle, offset, and phase every segment
	gen, err := reference.NewStep(
		"omega",
		r1.Interval{Min: 0, Max: math.Inf(1)},
		r1.Interval{Min: 2, Max: 20},
		r1.Interval{Min: math.Inf(-1), Max: math.Inf(1)},
		r1.Interval{Min: 500, Max: 2000},
		nil,
	)
	if err != nil {
		log.Fatal(err)
	}

	// Measurement noise on the current, one step of converter dead time
	noise, err := processor.NewStateNoise(map[string]float64{"i": 0.01})
	if err != nil {
		log.Fatal(err)
	}

	env, err := environment.New(sys, environment.Config{
		Processors: []processor.Processor{
			noise,
			processor.NewDeadTime(),
		},
		ReferenceGenerator: config.Instance{Component: gen},
		RewardFunction: config.Overrides{
			"weights":  map[string]float64{"omega": 1.0},
			"exponent": 2.0,
		},
		Constraints: []config.Spec{
			config.Instance{
				Component: environment.NewLimitConstraint("omega", "i"),
			},
		},
		Horizon: 10_000,
	})
	if err != nil {
		log.Fatal(err)
	}
	if err := env.Seed(seed); err != nil {
		log.Fatal(err)
	}

	controller := experiment.NewRandomController(env.ActionSpace(), seed)

	returns := trackers.NewReturn("./data.bin")
	lengths := trackers.NewEpisodeLength("./lengths.bin")
	e := experiment.NewOnline(env, controller, 100_000, returns, lengths)

	if err := e.Run(); err != nil {
		log.Fatal(err)
	}
	if err := e.Save(); err != nil {
		log.Fatal(err)
	}

	data, err := trackers.LoadData("./data.bin")
	if err != nil {
		log.Fatal(err)
	}
	if len(data) > 10 {
		data = data[len(data)-10:]
	}
	fmt.Println(data)
}
