// Package config implements the component specification surface of the
// environment. Every pluggable role (reference generator, reward function,
// constraint) accepts one of three specification shapes: a ready instance,
// an override mapping merged onto the role's documented defaults, or a
// symbolic registry name. Resolve turns any of the three into a concrete
// component, which is what lets an experiment be expressed declaratively
// without hard-wiring concrete types into the environment.
package config

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r1"
)

// ConfigurationError indicates an unresolvable component specification: an
// unknown symbolic name, an override key unknown to the target constructor,
// an ill-typed override value, or a shape mismatch between components.
// Configuration errors are always fatal at construction time.
type ConfigurationError struct {
	Capability string
	Message    string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("config: %v: %v", e.Capability, e.Message)
}

// Errorf creates and returns a new *ConfigurationError for the argument
// capability
func Errorf(capability, format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{
		Capability: capability,
		Message:    fmt.Sprintf(format, args...),
	}
}

// Spec is a component specification. Exactly three shapes implement it:
// Instance, Overrides, and Name. A nil Spec selects the role's default
// component with its default arguments.
type Spec interface {
	isSpec()
}

// Instance specifies a component by passing it ready-built. The component
// is used unchanged; it must expose the capability required by the role it
// is passed for.
type Instance struct {
	Component interface{}
}

func (Instance) isSpec() {}

// Name specifies a component symbolically. The name is looked up in the
// role's registry and the registered factory is run with its own defaults.
type Name string

func (Name) isSpec() {}

// Overrides specifies a component as an argument mapping merged over the
// role's default arguments; override keys win. Keys unknown to the target
// constructor are rejected.
type Overrides map[string]interface{}

func (Overrides) isSpec() {}

// Factory constructs a component of some capability from an argument
// mapping
type Factory func(args Overrides) (interface{}, error)

var registries = map[string]map[string]Factory{}

// Register registers a factory under a symbolic name for one capability.
// Register panics if the name is already taken, since silently replacing a
// registered component would make experiment configurations ambiguous.
func Register(capability, name string, factory Factory) {
	reg, ok := registries[capability]
	if !ok {
		reg = map[string]Factory{}
		registries[capability] = reg
	}

	if _, ok := reg[name]; ok {
		panic(fmt.Sprintf("register: %v %q registered twice", capability,
			name))
	}
	reg[name] = factory
}

// Resolve produces a concrete component for one capability from a Spec:
//
//	nil        -> defaultFactory(defaults)
//	Instance   -> the instance, unchanged
//	Overrides  -> defaultFactory(overrides merged over defaults)
//	Name       -> the registered factory, with its own defaults
//
// The caller is responsible for asserting the returned component to the
// capability's interface type.
func Resolve(capability string, s Spec, defaultFactory Factory,
	defaults Overrides) (interface{}, error) {
	switch v := s.(type) {
	case nil:
		return defaultFactory(defaults.merge(nil))

	case Instance:
		if v.Component == nil {
			return nil, Errorf(capability, "instance specification holds "+
				"no component")
		}
		return v.Component, nil

	case Overrides:
		return defaultFactory(defaults.merge(v))

	case Name:
		factory, ok := registries[capability][string(v)]
		if !ok {
			return nil, Errorf(capability, "no component registered under "+
				"name %q", string(v))
		}
		return factory(Overrides{})

	default:
		return nil, Errorf(capability, "unknown specification shape %T", s)
	}
}

// merge returns a copy of the defaults with the argument overrides merged
// on top; override keys win.
func (o Overrides) merge(over Overrides) Overrides {
	merged := make(Overrides, len(o)+len(over))
	for k, v := range o {
		merged[k] = v
	}
	for k, v := range over {
		merged[k] = v
	}
	return merged
}

// Allow rejects any key in the mapping that is not in the argument list of
// keys known to the target constructor
func (o Overrides) Allow(capability string, known ...string) error {
	var unknown []string
	for key := range o {
		found := false
		for _, k := range known {
			if key == k {
				found = true
				break
			}
		}
		if !found {
			unknown = append(unknown, key)
		}
	}

	if len(unknown) > 0 {
		sort.Strings(unknown)
		return Errorf(capability, "unknown argument keys %v", unknown)
	}
	return nil
}

// Float returns the float64 stored under key, or def if the key is absent
func (o Overrides) Float(capability, key string, def float64) (float64, error) {
	v, ok := o[key]
	if !ok {
		return def, nil
	}

	switch f := v.(type) {
	case float64:
		return f, nil
	case int:
		return float64(f), nil
	}
	return 0, Errorf(capability, "argument %q must be a number, got %T",
		key, v)
}

// Int returns the int stored under key, or def if the key is absent
func (o Overrides) Int(capability, key string, def int) (int, error) {
	v, ok := o[key]
	if !ok {
		return def, nil
	}

	i, ok := v.(int)
	if !ok {
		return 0, Errorf(capability, "argument %q must be an int, got %T",
			key, v)
	}
	return i, nil
}

// String returns the string stored under key, or def if the key is absent
func (o Overrides) String(capability, key, def string) (string, error) {
	v, ok := o[key]
	if !ok {
		return def, nil
	}

	s, ok := v.(string)
	if !ok {
		return "", Errorf(capability, "argument %q must be a string, got "+
			"%T", key, v)
	}
	return s, nil
}

// Strings returns the string slice stored under key, or def if the key is
// absent
func (o Overrides) Strings(capability, key string, def []string) ([]string, error) {
	v, ok := o[key]
	if !ok {
		return def, nil
	}

	s, ok := v.([]string)
	if !ok {
		return nil, Errorf(capability, "argument %q must be a string "+
			"slice, got %T", key, v)
	}
	return s, nil
}

// Interval returns the r1.Interval stored under key, or def if the key is
// absent. Both r1.Interval values and two-element [min, max] float slices
// are accepted.
func (o Overrides) Interval(capability, key string,
	def r1.Interval) (r1.Interval, error) {
	v, ok := o[key]
	if !ok {
		return def, nil
	}

	switch r := v.(type) {
	case r1.Interval:
		return r, nil
	case [2]float64:
		return r1.Interval{Min: r[0], Max: r[1]}, nil
	case []float64:
		if len(r) == 2 {
			return r1.Interval{Min: r[0], Max: r[1]}, nil
		}
	}
	return r1.Interval{}, Errorf(capability, "argument %q must be an "+
		"interval or [min, max] pair, got %T", key, v)
}

// FloatMap returns the string-to-float64 mapping stored under key, or def
// if the key is absent
func (o Overrides) FloatMap(capability, key string,
	def map[string]float64) (map[string]float64, error) {
	v, ok := o[key]
	if !ok {
		return def, nil
	}

	m, ok := v.(map[string]float64)
	if !ok {
		return nil, Errorf(capability, "argument %q must map state names "+
			"to numbers, got %T", key, v)
	}
	return m, nil
}
