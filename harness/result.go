// Package harness plans benchmark jobs and runs each one in an isolated
// context, either in-process or in a freshly started worker process.
package harness

import (
	"github.com/weiihann/seqbench/stats"
	"github.com/weiihann/seqbench/timing"
)

// Status is the outcome of one job.
type Status string

const (
	StatusOk     Status = "Ok"
	StatusFailed Status = "Failed"
)

// FailureKind classifies why a job failed.
type FailureKind string

const (
	KindSetup               FailureKind = "setup"
	KindPanic               FailureKind = "panic"
	KindTimeout             FailureKind = "timeout"
	KindIsolation           FailureKind = "isolation"
	KindInsufficientSamples FailureKind = "insufficient-samples"
	KindClock               FailureKind = "clock"
)

// Result is the reported record of one (workload, combination) job. Times
// are already converted to Unit.
type Result struct {
	Workload    string            `json:"workload"`
	Params      map[string]string `json:"params"`
	Combination string            `json:"combination"`
	MeanPerOp   float64           `json:"mean_per_op"`
	Error       float64           `json:"error"`
	MinPerOp    float64           `json:"min_per_op"`
	MaxPerOp    float64           `json:"max_per_op"`
	Unit        timing.Unit       `json:"unit"`
	SampleCount int               `json:"sample_count"`
	TotalOps    int64             `json:"total_ops"`
	Forks       int               `json:"forks"`
	Status      Status            `json:"status"`
	FailureKind FailureKind       `json:"failure_kind,omitempty"`
	Cause       string            `json:"cause,omitempty"`
}

// OK reports whether the job produced a score.
func (r Result) OK() bool {
	return r.Status == StatusOk
}

func newResult(job Job) Result {
	return Result{
		Workload:    job.Spec.Name,
		Params:      job.Combination.Map(),
		Combination: job.Combination.String(),
		Unit:        job.Settings.Unit,
		Forks:       job.Settings.ForkCount,
	}
}

func okResult(job Job, sum stats.Summary) Result {
	r := newResult(job)
	u := job.Settings.Unit

	r.Status = StatusOk
	r.MeanPerOp = u.FromNanos(sum.MeanPerOp)
	r.Error = u.FromNanos(sum.Error)
	r.MinPerOp = u.FromNanos(sum.MinPerOp)
	r.MaxPerOp = u.FromNanos(sum.MaxPerOp)
	r.SampleCount = sum.Samples
	r.TotalOps = sum.TotalOps

	return r
}

func failedResult(job Job, err error) Result {
	r := newResult(job)
	r.Status = StatusFailed
	r.FailureKind = Classify(err)
	r.Cause = err.Error()

	return r
}
