// Package environment implements the orchestrator of the electric-drive
// control loop. An Environment owns one processor-chain head over a
// physical system, one reference generator, one reward function, and a set
// of constraints, and ties them into a deterministic reset/step protocol:
// each step consumes an action, advances the drive by one fixed interval,
// fetches the reference, evaluates the constraints, and scores the reward.
package environment

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/CharlesCNorton/gym-electric-motor/config"
	"github.com/CharlesCNorton/gym-electric-motor/physical"
	"github.com/CharlesCNorton/gym-electric-motor/processor"
	"github.com/CharlesCNorton/gym-electric-motor/random"
	"github.com/CharlesCNorton/gym-electric-motor/reference"
	"github.com/CharlesCNorton/gym-electric-motor/reward"
	"github.com/CharlesCNorton/gym-electric-motor/spec"
	"github.com/CharlesCNorton/gym-electric-motor/timestep"
)

// RewardFunction maps a transition to a scalar reward. The violated flag
// tells the function that a constraint was violated on this step so that
// it can apply its penalty branch; the termination decision itself belongs
// to the environment, not the reward.
type RewardFunction interface {
	Reward(state, ref, action mat.Vector, violated bool) float64
}

// Binder is implemented by components (reward functions, visualization
// callbacks) that need to resolve state names against the processed system
// before the first episode.
type Binder interface {
	Bind(sys physical.System) error
}

// Config configures an Environment. The pluggable roles accept component
// specifications (instance, override mapping, or registry name); zero
// values select the documented defaults.
type Config struct {
	// Processors are the chain stages to wrap around the physical system,
	// ordered innermost first. Stages must be unattached.
	Processors []processor.Processor

	// ReferenceGenerator defaults to a wiener-process generator
	// referencing the system's first state
	ReferenceGenerator config.Spec

	// RewardFunction defaults to a weighted sum of errors over the
	// referenced states
	RewardFunction config.Spec

	// Constraints default to none
	Constraints []config.Spec

	Callbacks []Callback

	// Horizon is the episode step limit; episodes reaching it without a
	// violation are truncated. Zero means no limit.
	Horizon int
}

// Environment is the control-loop orchestrator. Use New to construct one;
// construction fails fast, so an Environment that exists is fully wired.
type Environment struct {
	system      physical.System // head of the processor chain
	generator   reference.Generator
	rewardFn    RewardFunction
	constraints []Constraint
	callbacks   []Callback
	horizon     int

	active    bool
	stepCount int
	lastStep  timestep.TimeStep
}

// New creates and returns a new Environment controlling the argument
// physical system
func New(sys physical.System, cfg Config) (*Environment, error) {
	if sys == nil {
		return nil, config.Errorf("environment", "no physical system")
	}
	if cfg.Horizon < 0 {
		return nil, config.Errorf("environment", "negative horizon %v",
			cfg.Horizon)
	}

	head := sys
	for _, p := range cfg.Processors {
		if err := p.Attach(head); err != nil {
			return nil, err
		}
		head = p
	}

	gen, err := resolveGenerator(cfg.ReferenceGenerator, head)
	if err != nil {
		return nil, err
	}
	if err := gen.SetPhysicalSystem(head); err != nil {
		return nil, err
	}

	rewardFn, err := resolveReward(cfg.RewardFunction, gen)
	if err != nil {
		return nil, err
	}
	if b, ok := rewardFn.(Binder); ok {
		if err := b.Bind(head); err != nil {
			return nil, err
		}
	}

	var constraints []Constraint
	for _, s := range cfg.Constraints {
		c, err := resolveConstraint(s)
		if err != nil {
			return nil, err
		}
		if err := c.Bind(head); err != nil {
			return nil, err
		}
		constraints = append(constraints, c)
	}

	for _, cb := range cfg.Callbacks {
		if b, ok := cb.(Binder); ok {
			if err := b.Bind(head); err != nil {
				return nil, err
			}
		}
	}

	return &Environment{
		system:      head,
		generator:   gen,
		rewardFn:    rewardFn,
		constraints: constraints,
		callbacks:   cfg.Callbacks,
		horizon:     cfg.Horizon,
	}, nil
}

// Seed seeds every owned random generator from one top-level seed. Each
// component receives an independently derived sub-seed, so a fixed seed
// reproduces an entire run bit-for-bit, including nested stage randomness.
//
// Seed returns a *random.ConsistencyError if an episode is in progress:
// the components have already consumed randomness for the current episode,
// and reseeding them now would make the run irreproducible. Seed between
// episodes instead.
func (e *Environment) Seed(seed uint64) error {
	if e.active {
		return &random.ConsistencyError{Component: "environment"}
	}
	if s, ok := e.system.(physical.Seeder); ok {
		if err := s.Seed(random.DeriveSeed(seed, 1)); err != nil {
			return err
		}
	}
	if err := e.generator.Seed(random.DeriveSeed(seed, 2)); err != nil {
		return err
	}
	if s, ok := e.rewardFn.(physical.Seeder); ok {
		if err := s.Seed(random.DeriveSeed(seed, 3)); err != nil {
			return err
		}
	}
	return nil
}

// Reset starts a new episode: every owned random generator rotates, the
// processor chain resets to an initial state, and the reference generator
// starts a fresh episode. Reset returns the First timestep holding the
// initial state and reference.
//
// A non-nil error with a First timestep indicates callback errors only;
// the timestep is valid and the episode is active.
func (e *Environment) Reset() (timestep.TimeStep, error) {
	var cbErrs []error
	for _, cb := range e.callbacks {
		if err := cb.OnResetBegin(); err != nil {
			cbErrs = append(cbErrs, err)
		}
	}

	state, err := e.system.Reset()
	if err != nil {
		return timestep.TimeStep{}, fmt.Errorf("reset: %v", err)
	}
	ref, err := e.generator.Reset()
	if err != nil {
		return timestep.TimeStep{}, fmt.Errorf("reset: %v", err)
	}

	e.stepCount = 0
	e.active = true
	e.lastStep = timestep.New(timestep.First, 0, state, ref, 0)

	for _, cb := range e.callbacks {
		if err := cb.OnResetEnd(e.lastStep); err != nil {
			cbErrs = append(cbErrs, err)
		}
	}

	return e.lastStep, combineErrors(cbErrs)
}

// Step advances the control loop by one step: the action is validated
// against the current action space, simulated through the processor chain,
// the reference is fetched, constraints are evaluated, and the reward is
// computed. The returned bool reports whether the episode ended, either by
// constraint violation (Terminated) or by reaching the horizon
// (Truncated).
//
// A rejected action has no side effect: validation happens before the
// physical system is touched.
func (e *Environment) Step(action mat.Vector) (timestep.TimeStep, bool, error) {
	if !e.active {
		return timestep.TimeStep{}, false, fmt.Errorf("step: no active " +
			"episode; call Reset first")
	}
	if !e.ActionSpace().Contains(action) {
		return timestep.TimeStep{}, false,
			&physical.ActionError{Action: action, Stage: "environment"}
	}

	var cbErrs []error
	for _, cb := range e.callbacks {
		if err := cb.OnStepBegin(e.stepCount, action); err != nil {
			cbErrs = append(cbErrs, err)
		}
	}

	state, err := e.system.Simulate(action)
	if err != nil {
		return timestep.TimeStep{}, false, fmt.Errorf("step: %v", err)
	}
	e.stepCount++

	ref := e.generator.Reference(e.stepCount)
	violated := e.violated(state)
	r := e.rewardFn.Reward(state, ref, action, violated)

	step := timestep.New(timestep.Mid, r, state, ref, e.stepCount)
	if violated {
		step.SetEnd(timestep.LimitViolation)
	} else if e.horizon > 0 && e.stepCount >= e.horizon {
		step.SetEnd(timestep.StepLimit)
	}

	e.lastStep = step
	if step.Last() {
		e.active = false
	}

	for _, cb := range e.callbacks {
		if err := cb.OnStepEnd(step); err != nil {
			cbErrs = append(cbErrs, err)
		}
	}

	return step, step.Last(), combineErrors(cbErrs)
}

// violated evaluates every constraint against the argument state
func (e *Environment) violated(state mat.Vector) bool {
	for _, c := range e.constraints {
		if c.Violated(state) {
			return true
		}
	}
	return false
}

// LastTimeStep returns the most recent TimeStep of the environment
func (e *Environment) LastTimeStep() timestep.TimeStep {
	return e.lastStep
}

// PhysicalSystem returns the head of the processor chain. Everything the
// environment reports (states, spaces, limits, names) is in the head's
// processed terms.
func (e *Environment) PhysicalSystem() physical.System {
	return e.system
}

// ReferenceGenerator returns the environment's reference generator
func (e *Environment) ReferenceGenerator() reference.Generator {
	return e.generator
}

// ActionSpace returns the processed action space actions are validated
// against
func (e *Environment) ActionSpace() spec.Space {
	return e.system.ActionSpace()
}

// StateSpace returns the processed state space
func (e *Environment) StateSpace() spec.Space {
	return e.system.StateSpace()
}

// StateNames returns the processed state names
func (e *Environment) StateNames() []string {
	return e.system.StateNames()
}

// ReferenceSpace returns the bounds of the generated reference values
func (e *Environment) ReferenceSpace() spec.Space {
	return e.generator.Space()
}

// resolveGenerator resolves the reference generator specification. The
// default is a wiener-process generator referencing the system's first
// state.
func resolveGenerator(s config.Spec,
	head physical.System) (reference.Generator, error) {
	defaults := config.Overrides{"reference_state": head.StateNames()[0]}

	component, err := config.Resolve(reference.Capability, s,
		reference.WienerProcessFactory, defaults)
	if err != nil {
		return nil, err
	}

	gen, ok := component.(reference.Generator)
	if !ok {
		return nil, config.Errorf(reference.Capability, "component %T "+
			"does not expose the reference generator capability", component)
	}
	return gen, nil
}

// resolveReward resolves the reward function specification. The default is
// a weighted sum of errors over the generator's referenced states.
func resolveReward(s config.Spec,
	gen reference.Generator) (RewardFunction, error) {
	weights := make(map[string]float64)
	for _, name := range gen.ReferencedStates() {
		weights[name] = 1 / float64(len(gen.ReferencedStates()))
	}
	defaults := config.Overrides{"weights": weights}

	component, err := config.Resolve(reward.Capability, s, reward.Factory,
		defaults)
	if err != nil {
		return nil, err
	}

	fn, ok := component.(RewardFunction)
	if !ok {
		return nil, config.Errorf(reward.Capability, "component %T does "+
			"not expose the reward function capability", component)
	}
	return fn, nil
}

// resolveConstraint resolves one constraint specification. The default is
// a limit constraint, which requires the monitored states as arguments.
func resolveConstraint(s config.Spec) (Constraint, error) {
	component, err := config.Resolve(ConstraintCapability, s,
		limitConstraintFactory, nil)
	if err != nil {
		return nil, err
	}

	c, ok := component.(Constraint)
	if !ok {
		return nil, config.Errorf(ConstraintCapability, "component %T "+
			"does not expose the constraint capability", component)
	}
	return c, nil
}

// combineErrors folds callback errors into one error without hiding any
func combineErrors(errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	}

	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return fmt.Errorf("callbacks: %v", strings.Join(msgs, "; "))
}
