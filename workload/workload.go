// Package workload defines benchmark units, the registry that holds them,
// and the expansion of their parameter axes into runnable combinations.
package workload

import (
	"github.com/weiihann/seqbench/config"
)

// Axis is one declared parameter with its ordered candidate values.
type Axis struct {
	Name   string
	Values []string
}

// SetupFunc builds the trial state for c and returns the timed body closed
// over that state.
type SetupFunc func(c Combination) (func(), error)

// Spec identifies one benchmark unit.
type Spec struct {
	Name        string
	Description string
	Setup       SetupFunc
	Axes        []Axis
	// Settings are the workload's own defaults; configuration files and
	// flags override them.
	Settings config.Overrides
}

// New builds a Spec from a typed setup and body. Setup runs once per
// trial; body is the timed operation and receives the state setup built.
func New[S any](
	name string,
	setup func(c Combination) (S, error),
	body func(state S),
	axes ...Axis,
) Spec {
	return Spec{
		Name: name,
		Setup: func(c Combination) (func(), error) {
			state, err := setup(c)
			if err != nil {
				return nil, err
			}

			return func() { body(state) }, nil
		},
		Axes: axes,
	}
}

// WithSettings returns a copy of s with declared settings o.
func (s Spec) WithSettings(o config.Overrides) Spec {
	s.Settings = o
	return s
}

// WithDescription returns a copy of s with a human-readable description.
func (s Spec) WithDescription(d string) Spec {
	s.Description = d
	return s
}

// Axis returns the declared axis called name.
func (s Spec) Axis(name string) (Axis, bool) {
	for _, a := range s.Axes {
		if a.Name == name {
			return a, true
		}
	}

	return Axis{}, false
}
