package harness

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/weiihann/seqbench/phase"
	"github.com/weiihann/seqbench/timing"
	"github.com/weiihann/seqbench/workload"
)

// WorkerRequest is written to a worker's stdin.
type WorkerRequest struct {
	Workload string           `json:"workload"`
	Params   []workload.Param `json:"params"`
	Phases   phase.Config     `json:"phases"`
	// CPU pins the measuring thread; negative disables pinning.
	CPU  int `json:"cpu"`
	Fork int `json:"fork"`
}

// WorkerResponse is the single JSON document a worker prints on stdout.
type WorkerResponse struct {
	Workload         string          `json:"workload"`
	Samples          []timing.Sample `json:"samples"`
	WarmupIterations int             `json:"warmup_iterations"`
	Failure          *WorkerFailure  `json:"failure,omitempty"`
}

// WorkerFailure carries a typed trial error across the process boundary.
type WorkerFailure struct {
	Kind    FailureKind   `json:"kind"`
	Message string        `json:"message"`
	State   phase.State   `json:"state,omitempty"`
	Elapsed time.Duration `json:"elapsed_ns,omitempty"`
}

func newWorkerFailure(err error) *WorkerFailure {
	f := &WorkerFailure{Kind: Classify(err), Message: err.Error()}

	var (
		setup  *phase.SetupFailure
		panicE *phase.BodyPanic
		clock  *timing.ClockInvariantViolation
	)

	switch {
	case errors.As(err, &clock):
		f.Elapsed = clock.Elapsed
	case errors.As(err, &setup):
		f.Message = setup.Cause.Error()
	case errors.As(err, &panicE):
		f.State = panicE.State
		f.Message = fmt.Sprint(panicE.Value)
	}

	return f
}

// Err rebuilds the typed error the worker reported.
func (f *WorkerFailure) Err() error {
	switch f.Kind {
	case KindClock:
		return &timing.ClockInvariantViolation{Elapsed: f.Elapsed}
	case KindSetup:
		return &phase.SetupFailure{Cause: errors.New(f.Message)}
	case KindPanic:
		return &phase.BodyPanic{State: f.State, Value: f.Message}
	case KindTimeout:
		return fmt.Errorf("%w: %s", ErrTimeout, f.Message)
	default:
		return errors.New(f.Message)
	}
}

func parseResponse(r io.Reader) (*WorkerResponse, error) {
	var resp WorkerResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}

	return &resp, nil
}
