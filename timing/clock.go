// Package timing records measurement samples against a monotonic clock.
package timing

import (
	"fmt"
	"time"
)

// Clock is the time source used by the phase scheduler.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now, which carries a monotonic reading on every
// supported platform.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// ClockInvariantViolation reports a timer that went backwards. No sample
// taken from such a source can be trusted, so the run must stop.
type ClockInvariantViolation struct {
	Elapsed time.Duration
}

func (e *ClockInvariantViolation) Error() string {
	return fmt.Sprintf("clock invariant violated: negative elapsed time %s", e.Elapsed)
}

// Elapsed returns end-start and fails if the result is negative.
func Elapsed(start, end time.Time) (time.Duration, error) {
	d := end.Sub(start)
	if d < 0 {
		return 0, &ClockInvariantViolation{Elapsed: d}
	}

	return d, nil
}
