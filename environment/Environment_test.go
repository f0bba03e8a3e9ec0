package environment

import (
	"fmt"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/CharlesCNorton/gym-electric-motor/config"
	"github.com/CharlesCNorton/gym-electric-motor/physical"
	"github.com/CharlesCNorton/gym-electric-motor/processor"
	"github.com/CharlesCNorton/gym-electric-motor/random"
	"github.com/CharlesCNorton/gym-electric-motor/reference"
	"github.com/CharlesCNorton/gym-electric-motor/spec"
	"github.com/CharlesCNorton/gym-electric-motor/timestep"
)

// rampSystem ramps its first state by a fixed increment per step so that
// constraint behavior can be pinned to exact step numbers. The state space
// is wider than the normalized limit, so the ramp crosses the limit while
// remaining a valid state.
type rampSystem struct {
	increment float64
	sims      int
	action    spec.Space
	state     spec.Space
}

func newRampSystem(t *testing.T, increment float64) *rampSystem {
	t.Helper()

	state, err := spec.NewBox(
		mat.NewVecDense(2, []float64{-2, -2}),
		mat.NewVecDense(2, []float64{2, 2}),
	)
	if err != nil {
		t.Fatal(err)
	}
	action, err := spec.NewBox(
		mat.NewVecDense(2, []float64{-1, -1}),
		mat.NewVecDense(2, []float64{1, 1}),
	)
	if err != nil {
		t.Fatal(err)
	}

	return &rampSystem{increment: increment, action: action, state: state}
}

func (r *rampSystem) Simulate(mat.Vector) (mat.Vector, error) {
	r.sims++
	return mat.NewVecDense(2,
		[]float64{r.increment * float64(r.sims), 0}), nil
}

func (r *rampSystem) Reset() (mat.Vector, error) {
	r.sims = 0
	return mat.NewVecDense(2, nil), nil
}

func (r *rampSystem) ActionSpace() spec.Space  { return r.action }
func (r *rampSystem) StateSpace() spec.Space   { return r.state }
func (r *rampSystem) StateNames() []string     { return []string{"omega", "i"} }
func (r *rampSystem) Limits() mat.Vector       { return mat.NewVecDense(2, []float64{400, 200}) }
func (r *rampSystem) NominalState() mat.Vector { return mat.NewVecDense(2, []float64{300, 150}) }
func (r *rampSystem) Tau() float64             { return 1e-4 }

var noAction = mat.NewVecDense(2, nil)

// TestDefaultsResolve checks that an empty configuration yields a fully
// wired environment: wiener-process reference generator over the first
// state and the weighted sum-of-errors reward.
func TestDefaultsResolve(t *testing.T) {
	env, err := New(newRampSystem(t, 0.01), Config{})
	if err != nil {
		t.Fatal(err)
	}

	states := env.ReferenceGenerator().ReferencedStates()
	if len(states) != 1 || states[0] != "omega" {
		t.Errorf("default generator references %v, want [omega]", states)
	}

	if err := env.Seed(11); err != nil {
		t.Fatal(err)
	}
	step, err := env.Reset()
	if err != nil {
		t.Fatal(err)
	}
	if !step.First() || step.Number != 0 {
		t.Errorf("reset returned %v", step)
	}
	if step.State == nil || step.Reference == nil {
		t.Error("reset returned an incomplete observation")
	}

	step, done, err := env.Step(noAction)
	if err != nil {
		t.Fatal(err)
	}
	if done || !step.Mid() || step.Number != 1 {
		t.Errorf("first step returned (%v, %v)", step, done)
	}
	if step.Reward > 0 {
		t.Errorf("tracking reward %v is positive", step.Reward)
	}
}

// TestLimitViolationTerminates ramps the monitored state across the
// normalized limit and checks the exact termination step: a state exactly
// at the bound does not violate, the first state beyond it does.
func TestLimitViolationTerminates(t *testing.T) {
	env, err := New(newRampSystem(t, 0.25), Config{
		Constraints: []config.Spec{
			config.Instance{Component: NewLimitConstraint("omega")},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := env.Seed(5); err != nil {
		t.Fatal(err)
	}
	if _, err := env.Reset(); err != nil {
		t.Fatal(err)
	}

	// Steps 1 through 4 ramp omega to exactly 1.0, all within the limit
	for k := 1; k <= 4; k++ {
		step, done, err := env.Step(noAction)
		if err != nil {
			t.Fatal(err)
		}
		if done || step.Terminated() {
			t.Fatalf("step %v (omega = %v) terminated early", k,
				step.State.AtVec(0))
		}
	}

	// Step 5 ramps to 1.25, the first state beyond the limit
	step, done, err := env.Step(noAction)
	if err != nil {
		t.Fatal(err)
	}
	if !done || !step.Terminated() || step.Truncated() {
		t.Errorf("limit crossing did not terminate: %v", step)
	}
	if step.End() != timestep.LimitViolation {
		t.Errorf("end type = %v, want LimitViolation", step.End())
	}
	if step.Reward != -10 {
		t.Errorf("violation reward = %v, want the default -10", step.Reward)
	}
}

// TestHorizonTruncates checks that reaching the step horizon without a
// violation truncates rather than terminates.
func TestHorizonTruncates(t *testing.T) {
	env, err := New(newRampSystem(t, 0.0), Config{Horizon: 3})
	if err != nil {
		t.Fatal(err)
	}
	if err := env.Seed(5); err != nil {
		t.Fatal(err)
	}
	if _, err := env.Reset(); err != nil {
		t.Fatal(err)
	}

	var step timestep.TimeStep
	var done bool
	for k := 1; k <= 3; k++ {
		step, done, err = env.Step(noAction)
		if err != nil {
			t.Fatal(err)
		}
	}
	if !done || !step.Truncated() || step.Terminated() {
		t.Errorf("horizon did not truncate: %v", step)
	}

	// The episode is over: stepping again without a reset fails
	if _, _, err := env.Step(noAction); err == nil {
		t.Error("stepping a finished episode was not rejected")
	}
}

// TestActionValidation checks that a rejected action has no side effect:
// the physical system is never touched and the episode stays live.
func TestActionValidation(t *testing.T) {
	sys := newRampSystem(t, 0.01)
	env, err := New(sys, Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := env.Seed(5); err != nil {
		t.Fatal(err)
	}
	if _, err := env.Reset(); err != nil {
		t.Fatal(err)
	}

	outside := mat.NewVecDense(2, []float64{3, 0})
	_, _, err = env.Step(outside)
	if _, ok := err.(*physical.ActionError); !ok {
		t.Errorf("out-of-space action returned %T, want *ActionError", err)
	}
	if sys.sims != 0 {
		t.Error("a rejected action reached the physical system")
	}

	step, _, err := env.Step(noAction)
	if err != nil {
		t.Fatal(err)
	}
	if step.Number != 1 {
		t.Errorf("episode did not survive the rejected action: step %v",
			step.Number)
	}
}

// TestStepBeforeResetFails checks the protocol guard
func TestStepBeforeResetFails(t *testing.T) {
	env, err := New(newRampSystem(t, 0.01), Config{})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := env.Step(noAction); err == nil {
		t.Error("stepping before the first reset was not rejected")
	}
}

// TestMidEpisodeReseedRejected checks the randomness consistency guard:
// reseeding is legal between episodes only.
func TestMidEpisodeReseedRejected(t *testing.T) {
	env, err := New(newRampSystem(t, 0.25), Config{
		Constraints: []config.Spec{
			config.Instance{Component: NewLimitConstraint("omega")},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := env.Seed(5); err != nil {
		t.Fatal(err)
	}
	if _, err := env.Reset(); err != nil {
		t.Fatal(err)
	}

	err = env.Seed(6)
	if _, ok := err.(*random.ConsistencyError); !ok {
		t.Errorf("mid-episode reseed returned %T, want *ConsistencyError",
			err)
	}

	// Finish the episode; reseeding is legal again
	for done := false; !done; {
		_, d, err := env.Step(noAction)
		if err != nil {
			t.Fatal(err)
		}
		done = d
	}
	if err := env.Seed(6); err != nil {
		t.Errorf("between-episode reseed failed: %v", err)
	}
}

// TestSeedReproducesRun drives two identically configured and seeded
// environments with the same action sequence and checks that states,
// references, and rewards match bit for bit, including the randomness of a
// noise stage and the stochastic reference generator.
func TestSeedReproducesRun(t *testing.T) {
	build := func() *Environment {
		start := r1.Interval{Min: -0.1, Max: 0.1}
		sys, err := physical.NewFirstOrderSystem(
			[]string{"omega", "i"},
			[]float64{400, 200},
			[]float64{300, 150},
			1e-4, 1.0, 5e-3,
			[]r1.Interval{start, start},
		)
		if err != nil {
			t.Fatal(err)
		}

		noise, err := processor.NewStateNoise(map[string]float64{"i": 0.01})
		if err != nil {
			t.Fatal(err)
		}
		gen, err := reference.NewStep("omega",
			r1.Interval{Min: 0, Max: 1},
			r1.Interval{Min: 1, Max: 10},
			r1.Interval{Min: -1, Max: 1},
			r1.Interval{Min: 20, Max: 50},
			nil,
		)
		if err != nil {
			t.Fatal(err)
		}

		env, err := New(sys, Config{
			Processors:         []processor.Processor{noise},
			ReferenceGenerator: config.Instance{Component: gen},
		})
		if err != nil {
			t.Fatal(err)
		}
		if err := env.Seed(192382); err != nil {
			t.Fatal(err)
		}
		return env
	}

	a, b := build(), build()
	action := mat.NewVecDense(2, []float64{0.5, -0.5})

	for episode := 0; episode < 3; episode++ {
		x, err := a.Reset()
		if err != nil {
			t.Fatal(err)
		}
		y, err := b.Reset()
		if err != nil {
			t.Fatal(err)
		}
		if !mat.Equal(x.State, y.State) || !mat.Equal(x.Reference, y.Reference) {
			t.Fatalf("episode %v initial observations differ", episode)
		}

		for k := 0; k < 100; k++ {
			x, _, err := a.Step(action)
			if err != nil {
				t.Fatal(err)
			}
			y, _, err := b.Step(action)
			if err != nil {
				t.Fatal(err)
			}

			if !mat.Equal(x.State, y.State) {
				t.Fatalf("episode %v step %v: states differ", episode, k)
			}
			if !mat.Equal(x.Reference, y.Reference) {
				t.Fatalf("episode %v step %v: references differ", episode, k)
			}
			if x.Reward != y.Reward {
				t.Fatalf("episode %v step %v: rewards differ: %v != %v",
					episode, k, x.Reward, y.Reward)
			}
		}
	}
}

// failingCallback errors on every hook
type failingCallback struct{}

func (failingCallback) OnResetBegin() error { return fmt.Errorf("reset begin") }

func (failingCallback) OnResetEnd(timestep.TimeStep) error {
	return fmt.Errorf("reset end")
}

func (failingCallback) OnStepBegin(int, mat.Vector) error {
	return fmt.Errorf("step begin")
}

func (failingCallback) OnStepEnd(timestep.TimeStep) error {
	return fmt.Errorf("step end")
}

// TestCallbackErrorsDoNotAbort checks that callback errors are surfaced
// next to a valid result and never corrupt the loop.
func TestCallbackErrorsDoNotAbort(t *testing.T) {
	env, err := New(newRampSystem(t, 0.01), Config{
		Callbacks: []Callback{failingCallback{}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := env.Seed(9); err != nil {
		t.Fatal(err)
	}

	step, err := env.Reset()
	if err == nil {
		t.Error("callback errors at reset were swallowed")
	}
	if !step.First() {
		t.Errorf("callback errors corrupted the reset result: %v", step)
	}

	step, done, err := env.Step(noAction)
	if err == nil {
		t.Error("callback errors at step were swallowed")
	}
	if done || step.Number != 1 {
		t.Errorf("callback errors corrupted the step result: %v", step)
	}

	// The next step proceeds normally
	step, _, _ = env.Step(noAction)
	if step.Number != 2 {
		t.Errorf("the loop did not continue past callback errors: %v",
			step.Number)
	}
}

// TestConstraintResolution checks the three specification shapes for
// constraints against the registry.
func TestConstraintResolution(t *testing.T) {
	// Override mapping over the default limit constraint
	env, err := New(newRampSystem(t, 0.25), Config{
		Constraints: []config.Spec{
			config.Overrides{"states": []string{"omega"}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := env.Seed(5); err != nil {
		t.Fatal(err)
	}
	if _, err := env.Reset(); err != nil {
		t.Fatal(err)
	}
	var step timestep.TimeStep
	for done := false; !done; {
		var err error
		step, done, err = env.Step(noAction)
		if err != nil {
			t.Fatal(err)
		}
	}
	if !step.Terminated() || step.Number != 5 {
		t.Errorf("resolved constraint terminated at step %v, want 5",
			step.Number)
	}

	// An unbindable constraint fails construction
	_, err = New(newRampSystem(t, 0.25), Config{
		Constraints: []config.Spec{
			config.Overrides{"states": []string{"u_sup"}},
		},
	})
	if err == nil {
		t.Error("a constraint on an unknown state was accepted")
	}
}
