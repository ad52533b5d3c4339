package workload

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Param is one axis assignment.
type Param struct {
	Axis  string `json:"axis"`
	Value string `json:"value"`
}

// Combination assigns one value to every axis of a workload, in axis
// declaration order.
type Combination struct {
	params []Param
}

// NewCombination builds a Combination from ordered params.
func NewCombination(params ...Param) Combination {
	return Combination{params: slices.Clone(params)}
}

// Params returns the ordered assignments.
func (c Combination) Params() []Param {
	return slices.Clone(c.params)
}

// Value returns the value assigned to axis.
func (c Combination) Value(axis string) (string, bool) {
	for _, p := range c.params {
		if p.Axis == axis {
			return p.Value, true
		}
	}

	return "", false
}

// Int parses the value assigned to axis as an integer.
func (c Combination) Int(axis string) (int, error) {
	v, ok := c.Value(axis)
	if !ok {
		return 0, fmt.Errorf("no value for axis %q", axis)
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("axis %q: %w", axis, err)
	}

	return n, nil
}

// Map returns the assignments keyed by axis.
func (c Combination) Map() map[string]string {
	m := make(map[string]string, len(c.params))
	for _, p := range c.params {
		m[p.Axis] = p.Value
	}

	return m
}

// String renders the combination as "axis=value,axis=value".
func (c Combination) String() string {
	parts := make([]string, len(c.params))
	for i, p := range c.params {
		parts[i] = p.Axis + "=" + p.Value
	}

	return strings.Join(parts, ",")
}

// Expand returns the cartesian product of spec's axes. The last declared
// axis varies fastest. A spec without axes has exactly one, empty,
// combination.
func Expand(spec Spec) ([]Combination, error) {
	return ExpandWith(spec, nil)
}

// ExpandWith is Expand with overrides restricting axes to a subset of
// their declared values. Declared order is kept regardless of the order
// the override lists values in.
func ExpandWith(spec Spec, overrides map[string][]string) ([]Combination, error) {
	axes, err := restrict(spec, overrides)
	if err != nil {
		return nil, err
	}

	total := 1
	for _, a := range axes {
		total *= len(a.Values)
	}

	out := make([]Combination, 0, total)
	idx := make([]int, len(axes))

	for range total {
		params := make([]Param, len(axes))
		for i, a := range axes {
			params[i] = Param{Axis: a.Name, Value: a.Values[idx[i]]}
		}

		out = append(out, Combination{params: params})

		for i := len(axes) - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(axes[i].Values) {
				break
			}

			idx[i] = 0
		}
	}

	return out, nil
}

// Count returns the number of combinations Expand would produce.
func Count(spec Spec) int {
	total := 1
	for _, a := range spec.Axes {
		total *= len(a.Values)
	}

	return total
}

func restrict(spec Spec, overrides map[string][]string) ([]Axis, error) {
	for _, a := range spec.Axes {
		if len(a.Values) == 0 {
			return nil, &EmptyAxisError{Workload: spec.Name, Axis: a.Name}
		}
	}

	for name, values := range overrides {
		a, ok := spec.Axis(name)
		if !ok {
			return nil, &ParamOverrideError{Workload: spec.Name, Axis: name}
		}

		for _, v := range values {
			if !slices.Contains(a.Values, v) {
				return nil, &ParamOverrideError{Workload: spec.Name, Axis: name, Value: v}
			}
		}
	}

	axes := make([]Axis, len(spec.Axes))
	for i, a := range spec.Axes {
		axes[i] = a

		values, ok := overrides[a.Name]
		if !ok || len(values) == 0 {
			continue
		}

		kept := make([]string, 0, len(values))
		for _, v := range a.Values {
			if slices.Contains(values, v) {
				kept = append(kept, v)
			}
		}

		axes[i] = Axis{Name: a.Name, Values: kept}
	}

	return axes, nil
}
