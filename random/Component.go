// Package random implements exclusively-owned random number generation for
// environment components. Every component that consumes randomness owns its
// own Component: no two components ever share a generator, which is what
// makes a run reproducible from a single top-level seed — reseeding one
// component never perturbs the sequence drawn by a sibling.
package random

import (
	"fmt"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distuv"
)

// ConsistencyError indicates that a component was reseeded after it had
// already consumed randomness for the current episode. Accepting such a
// reseed would break the guarantee that a fixed top-level seed reproduces
// an entire run, so the orchestrator rejects it.
type ConsistencyError struct {
	Component string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("random: %v reseeded after consuming randomness "+
		"for the current episode", e.Component)
}

// Component is a seeded source of randomness owned by exactly one
// environment component. The zero seed state draws an entropy-based seed so
// that unseeded environments still vary between runs; calling Seed is what
// makes a run reproducible.
//
// A Component steps through a deterministic stream of sub-generators. Each
// call to NextGenerator rotates to the next sub-generator in the stream, so
// that every episode of a run consumes a fresh, reproducible generator.
type Component struct {
	name   string
	seed   uint64
	stream uint64
	rng    *rand.Rand
}

// NewComponent creates and returns a new Component with an unset seed. The
// name argument identifies the owning component in error messages.
func NewComponent(name string) *Component {
	c := &Component{
		name: name,
		seed: uint64(time.Now().UnixNano()),
	}
	c.NextGenerator()
	return c
}

// Name returns the name of the owning component
func (c *Component) Name() string {
	return c.name
}

// Seed re-bases the Component's sub-generator stream on the argument seed
// and rotates to the stream's first sub-generator. Reseeding mid-episode
// is rejected by the orchestrator, which is the one place episode
// boundaries are known; see environment.Environment.Seed.
func (c *Component) Seed(seed uint64) error {
	c.seed = seed
	c.stream = 0
	c.NextGenerator()
	return nil
}

// NextGenerator rotates the Component to the next sub-generator in its
// seed's stream. Rotation happens once per episode, at reset, before any
// randomness is consumed.
func (c *Component) NextGenerator() {
	c.rng = rand.New(rand.NewSource(mix(c.seed, c.stream)))
	c.stream++
}

// DeriveSeed returns a deterministic child seed for a nested component. A
// parent seeded with s always derives the same child seed for the same
// index, so nested randomness is reproduced bit-for-bit from the top-level
// seed.
func DeriveSeed(seed, index uint64) uint64 {
	return mix(seed, ^index)
}

// Source returns the Component's current random source
func (c *Component) Source() rand.Source {
	return c.rng
}

// Uniform draws a value uniformly from the argument interval. A degenerate
// interval returns its single value without consuming randomness.
func (c *Component) Uniform(interval r1.Interval) float64 {
	if interval.Min == interval.Max {
		return interval.Min
	}
	return interval.Min + c.rng.Float64()*(interval.Max-interval.Min)
}

// Float64 draws a value uniformly from [0, 1)
func (c *Component) Float64() float64 {
	return c.rng.Float64()
}

// Triangular draws a value from a triangular distribution with the argument
// support and mode
func (c *Component) Triangular(min, max, mode float64) float64 {
	return distuv.NewTriangle(min, max, mode, c.rng).Rand()
}

// Normal draws a value from a normal distribution with the argument mean
// and standard deviation
func (c *Component) Normal(mu, sigma float64) float64 {
	return distuv.Normal{Mu: mu, Sigma: sigma, Src: c.rng}.Rand()
}

// Intn draws an integer uniformly from {0, 1, ..., n-1}
func (c *Component) Intn(n int) int {
	return c.rng.Intn(n)
}

// mix hashes a (seed, stream) pair into an independent sub-generator seed
// using the splitmix64 finalizer.
func mix(seed, stream uint64) uint64 {
	z := seed + 0x9e3779b97f4a7c15*(stream+1)
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
