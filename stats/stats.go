// Package stats reduces measurement samples into a per-operation score
// with a confidence-interval error bound.
package stats

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/weiihann/seqbench/timing"
)

// DefaultConfidence is the confidence level of the reported error bound.
const DefaultConfidence = 0.999

// Summary is the aggregate of one job's samples. All times are raw
// nanoseconds; conversion to an output unit is left to the caller.
type Summary struct {
	MeanPerOp    float64
	Error        float64
	StdDev       float64
	MinPerOp     float64
	MaxPerOp     float64
	CILower      float64
	CIUpper      float64
	Confidence   float64
	Samples      int
	TotalOps     int64
	TotalElapsed time.Duration
}

// InsufficientSamplesError is returned when there is nothing to aggregate.
type InsufficientSamplesError struct {
	Got int
}

func (e *InsufficientSamplesError) Error() string {
	return fmt.Sprintf("insufficient samples: got %d, need at least 1", e.Got)
}

// Aggregate computes the per-op score as total elapsed time over total
// invocations, so iterations that ran more invocations weigh more. The
// error is the half-width of the Student-t confidence interval of the
// per-iteration scores. A single sample has no spread and yields a zero
// error.
func Aggregate(samples []timing.Sample, confidence float64) (Summary, error) {
	if len(samples) == 0 {
		return Summary{}, &InsufficientSamplesError{}
	}

	if confidence <= 0 || confidence >= 1 {
		confidence = DefaultConfidence
	}

	var (
		totalElapsed time.Duration
		totalOps     int64
	)

	scores := make([]float64, len(samples))

	for i, s := range samples {
		if s.Ops <= 0 {
			return Summary{}, fmt.Errorf("sample %d has %d ops", i, s.Ops)
		}

		if s.Elapsed < 0 {
			return Summary{}, &timing.ClockInvariantViolation{Elapsed: s.Elapsed}
		}

		totalElapsed += s.Elapsed
		totalOps += s.Ops
		scores[i] = s.PerOp()
	}

	sum := Summary{
		MeanPerOp:    float64(totalElapsed) / float64(totalOps),
		Confidence:   confidence,
		Samples:      len(samples),
		TotalOps:     totalOps,
		TotalElapsed: totalElapsed,
		MinPerOp:     math.Inf(1),
		MaxPerOp:     math.Inf(-1),
	}

	for _, v := range scores {
		sum.MinPerOp = math.Min(sum.MinPerOp, v)
		sum.MaxPerOp = math.Max(sum.MaxPerOp, v)
	}

	if n := len(scores); n > 1 {
		sum.StdDev = stat.StdDev(scores, nil)

		t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}
		sum.Error = t.Quantile(0.5+confidence/2) * sum.StdDev / math.Sqrt(float64(n))
	}

	sum.CILower = sum.MeanPerOp - sum.Error
	sum.CIUpper = sum.MeanPerOp + sum.Error

	return sum, nil
}
