package stats

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiihann/seqbench/timing"
)

func TestAggregateWeightsByInvocations(t *testing.T) {
	samples := []timing.Sample{
		{Elapsed: 10 * time.Millisecond, Ops: 100},
		{Elapsed: 1 * time.Millisecond, Ops: 1},
	}

	sum, err := Aggregate(samples, DefaultConfidence)
	require.NoError(t, err)

	meanMs := sum.MeanPerOp / float64(time.Millisecond)

	// 11ms over 101 ops.
	assert.InDelta(t, 11.0/101.0, meanMs, 1e-9)

	// Averaging the per-sample rates (0.1ms and 1ms) would give 0.55ms.
	naive := (samples[0].PerOp() + samples[1].PerOp()) / 2 / float64(time.Millisecond)
	assert.InDelta(t, 0.55, naive, 1e-9)
	assert.Greater(t, naive-meanMs, 0.4)

	assert.Equal(t, 2, sum.Samples)
	assert.Equal(t, int64(101), sum.TotalOps)
	assert.Equal(t, 11*time.Millisecond, sum.TotalElapsed)
}

func TestAggregateOrderInvariantForEqualWeights(t *testing.T) {
	a := []timing.Sample{
		{Elapsed: 100 * time.Microsecond, Ops: 10},
		{Elapsed: 300 * time.Microsecond, Ops: 10},
		{Elapsed: 200 * time.Microsecond, Ops: 10},
	}
	b := []timing.Sample{a[2], a[0], a[1]}

	sa, err := Aggregate(a, DefaultConfidence)
	require.NoError(t, err)

	sb, err := Aggregate(b, DefaultConfidence)
	require.NoError(t, err)

	assert.InDelta(t, sa.MeanPerOp, sb.MeanPerOp, 1e-9)
	assert.InDelta(t, sa.Error, sb.Error, 1e-9)
}

func TestAggregateErrorBound(t *testing.T) {
	samples := []timing.Sample{
		{Elapsed: 10 * time.Microsecond, Ops: 1},
		{Elapsed: 12 * time.Microsecond, Ops: 1},
		{Elapsed: 14 * time.Microsecond, Ops: 1},
	}

	sum, err := Aggregate(samples, 0.95)
	require.NoError(t, err)

	// Sample stddev is 2000ns; t(0.975, 2) = 4.302653.
	assert.InDelta(t, 2000, sum.StdDev, 1e-6)
	assert.InDelta(t, 4.302653*2000/1.7320508, sum.Error, 1)
	assert.InDelta(t, 10000, sum.MinPerOp, 1e-9)
	assert.InDelta(t, 14000, sum.MaxPerOp, 1e-9)
	assert.InDelta(t, sum.MeanPerOp-sum.Error, sum.CILower, 1e-9)
}

func TestAggregateSingleSample(t *testing.T) {
	sum, err := Aggregate([]timing.Sample{{Elapsed: time.Microsecond, Ops: 4}}, DefaultConfidence)
	require.NoError(t, err)

	assert.InDelta(t, 250, sum.MeanPerOp, 1e-9)
	assert.Zero(t, sum.Error)
	assert.Equal(t, 1, sum.Samples)
}

func TestAggregateNoSamples(t *testing.T) {
	_, err := Aggregate(nil, DefaultConfidence)

	var insufficient *InsufficientSamplesError
	assert.True(t, errors.As(err, &insufficient))
}

func TestAggregateRejectsNegativeElapsed(t *testing.T) {
	_, err := Aggregate([]timing.Sample{{Elapsed: -1, Ops: 1}}, DefaultConfidence)

	var violation *timing.ClockInvariantViolation
	assert.True(t, errors.As(err, &violation))
}

func TestAggregateFallsBackToDefaultConfidence(t *testing.T) {
	samples := []timing.Sample{
		{Elapsed: 10, Ops: 1},
		{Elapsed: 20, Ops: 1},
	}

	sum, err := Aggregate(samples, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfidence, sum.Confidence)
}
