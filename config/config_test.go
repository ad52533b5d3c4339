package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiihann/seqbench/timing"
)

func TestDefaultsAreValid(t *testing.T) {
	d := Defaults()
	require.NoError(t, d.Validate())
	assert.Equal(t, 1, d.ForkCount)
	assert.Equal(t, timing.Microseconds, d.Unit)
}

func TestOverridesApply(t *testing.T) {
	base := Defaults()
	base.Params = map[string][]string{"size": {"10"}}

	got := Overrides{
		ForkCount:       Int(0),
		WarmupTime:      Duration(5 * time.Millisecond),
		Unit:            UnitOf(timing.Nanoseconds),
		GC:              Bool(true),
		Params:          map[string][]string{"container": {"slice"}},
		MeasurementTime: nil,
	}.Apply(base)

	assert.Equal(t, 0, got.ForkCount)
	assert.Equal(t, 5*time.Millisecond, got.WarmupTime)
	assert.Equal(t, time.Second, got.MeasurementTime)
	assert.Equal(t, timing.Nanoseconds, got.Unit)
	assert.True(t, got.GC)
	assert.Equal(t, map[string][]string{
		"size":      {"10"},
		"container": {"slice"},
	}, got.Params)

	// The base map must not be mutated.
	assert.Len(t, base.Params, 1)
}

func TestResolvePrecedence(t *testing.T) {
	declared := Overrides{
		ForkCount:             Int(0),
		WarmupIterations:      Int(1),
		MeasurementIterations: Int(2),
	}

	file := &File{
		Global: Overrides{
			WarmupIterations: Int(4),
			Unit:             UnitOf(timing.Milliseconds),
		},
		Workloads: map[string]Overrides{
			"get": {WarmupIterations: Int(6)},
		},
	}

	flags := Overrides{MeasurementIterations: Int(9)}

	got, err := Resolve("get", declared, file, flags)
	require.NoError(t, err)

	assert.Equal(t, 0, got.ForkCount, "declared beats defaults")
	assert.Equal(t, 6, got.WarmupIterations, "workload section beats global")
	assert.Equal(t, timing.Milliseconds, got.Unit, "global beats declared")
	assert.Equal(t, 9, got.MeasurementIterations, "flags win")

	other, err := Resolve("iterate", declared, file, Overrides{})
	require.NoError(t, err)
	assert.Equal(t, 4, other.WarmupIterations)
	assert.Equal(t, 2, other.MeasurementIterations)
}

func TestResolveRejectsInvalid(t *testing.T) {
	_, err := Resolve("get", Overrides{ForkCount: Int(-1)}, nil, Overrides{})
	assert.Error(t, err)

	_, err = Resolve("get", Overrides{}, nil, Overrides{Confidence: Float(1.5)})
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	data := []byte(`
run:
  parallel: 2
  fork_interval: 200ms
  cpu: 3
global:
  warmup_time: 250ms
  unit: µs
  gc: true
workloads:
  get:
    fork_count: 0
    params:
      size: ["100", "1000"]
`)

	file, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, 2, file.Run.Parallel)
	assert.Equal(t, 200*time.Millisecond, file.Run.ForkInterval)
	require.NotNil(t, file.Run.CPU)
	assert.Equal(t, 3, *file.Run.CPU)

	require.NotNil(t, file.Global.WarmupTime)
	assert.Equal(t, 250*time.Millisecond, *file.Global.WarmupTime)
	require.NotNil(t, file.Global.Unit)
	assert.Equal(t, timing.Microseconds, *file.Global.Unit)

	get := file.Workloads["get"]
	require.NotNil(t, get.ForkCount)
	assert.Equal(t, 0, *get.ForkCount)
	assert.Equal(t, []string{"100", "1000"}, get.Params["size"])
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown key", "global:\n  forks: 2\n"},
		{"negative iterations", "global:\n  measurement_iterations: -1\n"},
		{"bad unit", "global:\n  unit: weeks\n"},
		{"bad workload section", "workloads:\n  get:\n    fork_count: 100\n"},
		{"negative parallel", "run:\n  parallel: -3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestParseEmpty(t *testing.T) {
	file, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, file.Workloads)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seqbench.yaml")
	require.NoError(t, os.WriteFile(path, []byte("global:\n  fork_count: 2\n"), 0o600))

	file, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, file.Global.ForkCount)
	assert.Equal(t, 2, *file.Global.ForkCount)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestPhases(t *testing.T) {
	s := Defaults()
	s.BatchSize = 10
	s.GC = true

	p := s.Phases()
	assert.Equal(t, s.WarmupIterations, p.WarmupIterations)
	assert.Equal(t, s.MeasurementTime, p.MeasurementTime)
	assert.Equal(t, 10, p.BatchSize)
	assert.True(t, p.GC)
}
