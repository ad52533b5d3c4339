package harness

import (
	"context"
	"errors"
	"fmt"

	"github.com/weiihann/seqbench/phase"
	"github.com/weiihann/seqbench/stats"
	"github.com/weiihann/seqbench/timing"
)

// ErrTimeout is the cause of an isolation context killed by the per-job
// timeout.
var ErrTimeout = errors.New("timeout")

// IsolationFailure is an isolation context that terminated abnormally.
type IsolationFailure struct {
	Workload    string
	Combination string
	Fork        int
	Cause       error
	Stderr      string
}

func (e *IsolationFailure) Error() string {
	msg := fmt.Sprintf("workload %s [%s]", e.Workload, e.Combination)
	if e.Fork > 0 {
		msg += fmt.Sprintf(" fork %d", e.Fork)
	}

	msg += ": " + e.Cause.Error()

	if e.Stderr != "" {
		msg += "\nstderr: " + e.Stderr
	}

	return msg
}

func (e *IsolationFailure) Unwrap() error {
	return e.Cause
}

// Classify maps a job error onto a FailureKind.
func Classify(err error) FailureKind {
	var (
		setup   *phase.SetupFailure
		panicE  *phase.BodyPanic
		clock   *timing.ClockInvariantViolation
		samples *stats.InsufficientSamplesError
	)

	switch {
	case errors.As(err, &clock):
		return KindClock
	case errors.As(err, &setup):
		return KindSetup
	case errors.As(err, &panicE):
		return KindPanic
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.As(err, &samples):
		return KindInsufficientSamples
	default:
		return KindIsolation
	}
}

// fatal reports errors that must stop the whole run instead of failing a
// single job.
func fatal(err error) bool {
	var clock *timing.ClockInvariantViolation
	return errors.As(err, &clock)
}
