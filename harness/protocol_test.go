package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiihann/seqbench/phase"
	"github.com/weiihann/seqbench/timing"
	"github.com/weiihann/seqbench/workload"
)

func TestParseResponse(t *testing.T) {
	input := `{
		"workload": "sum",
		"samples": [
			{"elapsed_ns": 1500000, "ops": 300},
			{"elapsed_ns": 1200000, "ops": 256}
		],
		"warmup_iterations": 2
	}`

	resp, err := parseResponse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, "sum", resp.Workload)
	assert.Equal(t, 2, resp.WarmupIterations)
	require.Len(t, resp.Samples, 2)
	assert.Equal(t, 1500*time.Microsecond, resp.Samples[0].Elapsed)
	assert.Equal(t, int64(256), resp.Samples[1].Ops)
	assert.Nil(t, resp.Failure)
}

func TestParseResponseInvalidJSON(t *testing.T) {
	_, err := parseResponse(strings.NewReader("not json at all"))
	assert.Error(t, err)
}

func TestWorkerFailureRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		kind  FailureKind
		check func(t *testing.T, err error)
	}{
		{
			name: "setup",
			err:  &phase.SetupFailure{Cause: errors.New("fixture too large")},
			kind: KindSetup,
			check: func(t *testing.T, err error) {
				var setup *phase.SetupFailure
				require.True(t, errors.As(err, &setup))
				assert.Equal(t, "fixture too large", setup.Cause.Error())
			},
		},
		{
			name: "panic",
			err:  &phase.BodyPanic{State: phase.Measurement, Value: "bad index"},
			kind: KindPanic,
			check: func(t *testing.T, err error) {
				var p *phase.BodyPanic
				require.True(t, errors.As(err, &p))
				assert.Equal(t, phase.Measurement, p.State)
				assert.Equal(t, "bad index", p.Value)
			},
		},
		{
			name: "clock",
			err:  &timing.ClockInvariantViolation{Elapsed: -time.Millisecond},
			kind: KindClock,
			check: func(t *testing.T, err error) {
				var v *timing.ClockInvariantViolation
				require.True(t, errors.As(err, &v))
				assert.Equal(t, -time.Millisecond, v.Elapsed)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(newWorkerFailure(tt.err))
			require.NoError(t, err)

			var f WorkerFailure
			require.NoError(t, json.Unmarshal(data, &f))
			assert.Equal(t, tt.kind, f.Kind)

			tt.check(t, f.Err())
		})
	}
}

func serve(t *testing.T, req WorkerRequest) (*WorkerResponse, error) {
	t.Helper()

	payload, err := json.Marshal(req)
	require.NoError(t, err)

	var out bytes.Buffer
	if err := ServeWorker(context.Background(), testRegistry(), bytes.NewReader(payload), &out, discardLogger()); err != nil {
		return nil, err
	}

	return parseResponse(&out)
}

func TestServeWorker(t *testing.T) {
	resp, err := serve(t, WorkerRequest{
		Workload: "sum",
		Params:   []workload.Param{{Axis: "size", Value: "100"}},
		Phases: phase.Config{
			WarmupIterations:      2,
			MeasurementIterations: 3,
			MeasurementTime:       100 * time.Microsecond,
		},
		CPU: -1,
	})
	require.NoError(t, err)

	assert.Nil(t, resp.Failure)
	assert.Equal(t, 2, resp.WarmupIterations)
	assert.Len(t, resp.Samples, 3)
}

func TestServeWorkerPinned(t *testing.T) {
	resp, err := serve(t, WorkerRequest{
		Workload: "sum",
		Params:   []workload.Param{{Axis: "size", Value: "10"}},
		Phases:   phase.Config{MeasurementIterations: 1},
		CPU:      0,
	})
	require.NoError(t, err)
	assert.Len(t, resp.Samples, 1)
}

func TestServeWorkerReportsSetupFailure(t *testing.T) {
	resp, err := serve(t, WorkerRequest{
		Workload: "fragile",
		Params:   []workload.Param{{Axis: "size", Value: "100"}},
		Phases:   phase.Config{MeasurementIterations: 3},
		CPU:      -1,
	})
	require.NoError(t, err)

	require.NotNil(t, resp.Failure)
	assert.Equal(t, KindSetup, resp.Failure.Kind)
	assert.Empty(t, resp.Samples)
}

func TestServeWorkerUnknownWorkload(t *testing.T) {
	_, err := serve(t, WorkerRequest{Workload: "missing", CPU: -1})
	assert.Error(t, err)

	var out bytes.Buffer
	err = ServeWorker(context.Background(), testRegistry(), strings.NewReader("{"), &out, discardLogger())
	assert.Error(t, err)
}
