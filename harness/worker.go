package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/weiihann/seqbench/phase"
	"github.com/weiihann/seqbench/workload"
)

// ServeWorker runs one fork: it reads a WorkerRequest from r, runs the
// trial in this process and writes a WorkerResponse to w. Trial failures
// are reported in the response; the returned error is reserved for
// protocol problems, which the parent sees as a crashed worker.
func ServeWorker(
	ctx context.Context,
	reg *workload.Registry,
	r io.Reader,
	w io.Writer,
	logger *slog.Logger,
) error {
	var req WorkerRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}

	spec, ok := reg.Lookup(req.Workload)
	if !ok {
		return fmt.Errorf("unknown workload %q", req.Workload)
	}

	comb := workload.NewCombination(req.Params...)

	logger = logger.With(
		slog.String("workload", spec.Name),
		slog.String("params", comb.String()),
		slog.Int("fork", req.Fork),
	)

	if req.CPU >= 0 {
		release, err := pinThread(req.CPU)
		if err != nil {
			logger.Warn("cpu pinning failed", slog.String("error", err.Error()))
		}
		defer release()
	}

	sched := phase.NewScheduler(logger)

	trial, err := sched.Run(ctx, func() (func(), error) {
		return spec.Setup(comb)
	}, req.Phases)

	resp := WorkerResponse{
		Workload:         spec.Name,
		Samples:          trial.Samples,
		WarmupIterations: trial.WarmupIterations,
	}

	if err != nil {
		logger.Warn("trial failed", slog.String("error", err.Error()))

		resp.Samples = nil
		resp.Failure = newWorkerFailure(err)
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}
