package workload

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandOrderLastAxisFastest(t *testing.T) {
	spec := noopSpec("get",
		Axis{Name: "container", Values: []string{"slice", "list"}},
		Axis{Name: "size", Values: []string{"10", "100", "1000"}},
	)

	combos, err := Expand(spec)
	require.NoError(t, err)

	got := make([]string, len(combos))
	for i, c := range combos {
		got[i] = c.String()
	}

	assert.Equal(t, []string{
		"container=slice,size=10",
		"container=slice,size=100",
		"container=slice,size=1000",
		"container=list,size=10",
		"container=list,size=100",
		"container=list,size=1000",
	}, got)
}

func TestExpandProductSizeAndUniqueness(t *testing.T) {
	tests := []struct {
		name  string
		sizes []int
	}{
		{"one axis", []int{4}},
		{"two axes", []int{2, 3}},
		{"three axes", []int{3, 1, 5}},
		{"four axes", []int{2, 2, 2, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			axes := make([]Axis, len(tt.sizes))
			want := 1

			for i, n := range tt.sizes {
				values := make([]string, n)
				for j := range values {
					values[j] = string(rune('a' + j))
				}

				axes[i] = Axis{Name: string(rune('p' + i)), Values: values}
				want *= n
			}

			spec := noopSpec("w", axes...)

			combos, err := Expand(spec)
			require.NoError(t, err)
			assert.Len(t, combos, want)
			assert.Equal(t, want, Count(spec))

			seen := make(map[string]bool, len(combos))
			for _, c := range combos {
				assert.False(t, seen[c.String()], "duplicate %s", c)
				seen[c.String()] = true
			}
		})
	}
}

func TestExpandNoAxes(t *testing.T) {
	combos, err := Expand(noopSpec("plain"))
	require.NoError(t, err)
	require.Len(t, combos, 1)
	assert.Empty(t, combos[0].Params())
	assert.Equal(t, "", combos[0].String())
}

func TestExpandEmptyAxis(t *testing.T) {
	spec := noopSpec("broken",
		Axis{Name: "size", Values: []string{"10"}},
		Axis{Name: "container"},
	)

	combos, err := Expand(spec)

	var empty *EmptyAxisError
	require.True(t, errors.As(err, &empty))
	assert.Equal(t, "container", empty.Axis)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Nil(t, combos)

	// The spec is left untouched.
	assert.Equal(t, []string{"10"}, spec.Axes[0].Values)
	assert.Empty(t, spec.Axes[1].Values)
}

func TestExpandWithOverrides(t *testing.T) {
	spec := noopSpec("get",
		Axis{Name: "container", Values: []string{"slice", "list", "deque"}},
		Axis{Name: "size", Values: []string{"10", "100", "1000"}},
	)

	combos, err := ExpandWith(spec, map[string][]string{
		"size":      {"1000", "10"},
		"container": {"deque"},
	})
	require.NoError(t, err)

	require.Len(t, combos, 2)
	assert.Equal(t, "container=deque,size=10", combos[0].String())
	assert.Equal(t, "container=deque,size=1000", combos[1].String())

	// Declared values stay intact.
	assert.Len(t, spec.Axes[1].Values, 3)
}

func TestExpandWithInvalidOverrides(t *testing.T) {
	spec := noopSpec("get", Axis{Name: "size", Values: []string{"10"}})

	_, err := ExpandWith(spec, map[string][]string{"size": {"20"}})

	var override *ParamOverrideError
	require.True(t, errors.As(err, &override))
	assert.Equal(t, "20", override.Value)

	_, err = ExpandWith(spec, map[string][]string{"length": {"10"}})
	require.True(t, errors.As(err, &override))
	assert.Equal(t, "length", override.Axis)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestCombinationAccessors(t *testing.T) {
	c := NewCombination(Param{Axis: "container", Value: "slice"}, Param{Axis: "size", Value: "100"})

	v, ok := c.Value("container")
	require.True(t, ok)
	assert.Equal(t, "slice", v)

	n, err := c.Int("size")
	require.NoError(t, err)
	assert.Equal(t, 100, n)

	_, err = c.Int("container")
	assert.Error(t, err)

	_, err = c.Int("missing")
	assert.Error(t, err)

	assert.Equal(t, map[string]string{"container": "slice", "size": "100"}, c.Map())

	params := c.Params()
	params[0].Value = "changed"
	assert.Equal(t, "container=slice,size=100", c.String())
}
