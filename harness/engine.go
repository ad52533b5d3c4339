package harness

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/weiihann/seqbench/stats"
)

// Engine runs planned jobs and turns their samples into results.
type Engine struct {
	Isolator Isolator
	// Parallel is how many jobs may run at once; values below one mean
	// one.
	Parallel int
	Logger   *slog.Logger
	// OnResult is called once per finished job, never concurrently.
	OnResult func(Result)
}

// Run executes every job and returns one result per job, in job order.
// Per-job failures become Failed results. Only fatal errors, such as a
// clock that went backwards or ctx being cancelled, abort the run.
func (e *Engine) Run(ctx context.Context, jobs []Job) ([]Result, error) {
	results := make([]Result, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, e.Parallel))

	var mu sync.Mutex

	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res, err := e.runJob(gctx, job)
			if err != nil {
				return fmt.Errorf("job %s: %w", job.Name(), err)
			}

			results[i] = res

			if e.OnResult != nil {
				mu.Lock()
				e.OnResult(res)
				mu.Unlock()
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func (e *Engine) runJob(ctx context.Context, job Job) (Result, error) {
	logger := e.logger().With(slog.String("job", job.Name()))

	logger.Info("running job",
		slog.Int("forks", job.Settings.ForkCount),
		slog.Int("warmup_iterations", job.Settings.WarmupIterations),
		slog.Int("measurement_iterations", job.Settings.MeasurementIterations),
	)

	samples, err := e.Isolator.RunIsolated(ctx, job)
	if err != nil {
		if fatal(err) || ctx.Err() != nil {
			return Result{}, err
		}

		return e.failed(logger, job, err), nil
	}

	sum, err := stats.Aggregate(samples, job.Settings.Confidence)
	if err != nil {
		if fatal(err) {
			return Result{}, err
		}

		return e.failed(logger, job, err), nil
	}

	res := okResult(job, sum)

	logger.Info("job complete",
		slog.Float64("mean", res.MeanPerOp),
		slog.Float64("error", res.Error),
		slog.String("unit", res.Unit.PerOp()),
		slog.Int("samples", res.SampleCount),
	)

	return res, nil
}

func (e *Engine) failed(logger *slog.Logger, job Job, err error) Result {
	res := failedResult(job, err)

	logger.Warn("job failed",
		slog.String("kind", string(res.FailureKind)),
		slog.String("error", err.Error()),
	)

	return res
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}

	return e.Logger
}
