package timing

import (
	"fmt"
	"time"
)

// Sample is one measurement iteration: elapsed time and the number of
// body invocations it covered.
type Sample struct {
	Elapsed time.Duration `json:"elapsed_ns"`
	Ops     int64         `json:"ops"`
}

// PerOp returns the raw nanoseconds per invocation of s.
func (s Sample) PerOp() float64 {
	return float64(s.Elapsed) / float64(s.Ops)
}

// Collector holds the ordered samples of one job. It is written only by
// the goroutine running that job's scheduler.
type Collector struct {
	samples []Sample
}

// NewCollector returns a collector with room for n samples.
func NewCollector(n int) *Collector {
	return &Collector{samples: make([]Sample, 0, n)}
}

// Record appends s. Samples are stored as raw durations; unit conversion
// happens when results are read.
func (c *Collector) Record(s Sample) error {
	if s.Elapsed < 0 {
		return &ClockInvariantViolation{Elapsed: s.Elapsed}
	}

	if s.Ops <= 0 {
		return fmt.Errorf("sample with %d ops", s.Ops)
	}

	c.samples = append(c.samples, s)

	return nil
}

// Len returns the number of recorded samples.
func (c *Collector) Len() int {
	return len(c.samples)
}

// Samples returns a copy of the recorded samples in execution order.
func (c *Collector) Samples() []Sample {
	out := make([]Sample, len(c.samples))
	copy(out, c.samples)

	return out
}
