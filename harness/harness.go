package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"golang.org/x/time/rate"

	"github.com/weiihann/seqbench/phase"
	"github.com/weiihann/seqbench/timing"
)

// stderrTail bounds how much worker stderr is kept in failure causes.
const stderrTail = 2048

// Isolator runs one job and returns its measurement samples in execution
// order.
type Isolator interface {
	RunIsolated(ctx context.Context, job Job) ([]timing.Sample, error)
}

// Runner runs jobs in-process when their fork count is zero, or in that
// many sequential worker processes otherwise.
type Runner struct {
	Command   CommandConfig
	Scheduler *phase.Scheduler
	// Limiter spaces consecutive worker launches. Nil launches
	// immediately.
	Limiter *rate.Limiter
	// CPU is forwarded to workers for thread pinning; negative disables it.
	CPU    int
	Logger *slog.Logger
}

// NewRunner creates a Runner that starts workers with command. A positive
// forkInterval is the minimum gap between two worker launches.
func NewRunner(
	command CommandConfig,
	forkInterval time.Duration,
	cpu int,
	logger *slog.Logger,
) *Runner {
	r := &Runner{
		Command:   command,
		Scheduler: phase.NewScheduler(logger),
		CPU:       cpu,
		Logger:    logger,
	}

	if forkInterval > 0 {
		r.Limiter = rate.NewLimiter(rate.Every(forkInterval), 1)
	}

	return r
}

// RunIsolated executes job under its timeout. Samples from all forks are
// concatenated in fork order.
func (r *Runner) RunIsolated(ctx context.Context, job Job) ([]timing.Sample, error) {
	if job.Settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Settings.Timeout)
		defer cancel()
	}

	if job.Settings.ForkCount == 0 {
		return r.runInProcess(ctx, job)
	}

	samples := make([]timing.Sample, 0, job.Settings.ForkCount*job.Settings.MeasurementIterations)

	for fork := 1; fork <= job.Settings.ForkCount; fork++ {
		s, err := r.runFork(ctx, job, fork)
		if err != nil {
			return nil, err
		}

		samples = append(samples, s...)
	}

	return samples, nil
}

func (r *Runner) runInProcess(ctx context.Context, job Job) ([]timing.Sample, error) {
	sched := r.Scheduler
	if sched == nil {
		sched = phase.NewScheduler(r.logger())
	}

	trial, err := sched.Run(ctx, func() (func(), error) {
		return job.Spec.Setup(job.Combination)
	}, job.Settings.Phases())
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, r.failure(job, 0, fmt.Errorf("%w: %v", ErrTimeout, err), "")
		}

		return nil, err
	}

	return trial.Samples, nil
}

func (r *Runner) runFork(ctx context.Context, job Job, fork int) ([]timing.Sample, error) {
	if r.Limiter != nil {
		if err := r.Limiter.Wait(ctx); err != nil {
			return nil, r.contextFailure(ctx, job, fork, err, "")
		}
	}

	payload, err := json.Marshal(WorkerRequest{
		Workload: job.Spec.Name,
		Params:   job.Combination.Params(),
		Phases:   job.Settings.Phases(),
		CPU:      r.CPU,
		Fork:     fork,
	})
	if err != nil {
		return nil, fmt.Errorf("encode worker request: %w", err)
	}

	cmd := exec.CommandContext(ctx, r.Command.Binary, r.Command.ExtraArgs...)
	cmd.WaitDelay = time.Second

	if len(r.Command.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Command.Env...)
	}

	cmd.Stdin = bytes.NewReader(payload)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger := r.logger().With(
		slog.String("job", job.Name()),
		slog.Int("fork", fork),
	)

	logger.Debug("starting worker", slog.String("binary", r.Command.Binary))

	wallStart := time.Now()

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, r.contextFailure(ctx, job, fork, ctx.Err(), tail(stderr.Bytes()))
		}

		return nil, r.failure(job, fork,
			fmt.Errorf("worker exited: %w", err), tail(stderr.Bytes()))
	}

	logger.Debug("worker finished", slog.Duration("wall_time", time.Since(wallStart)))

	resp, err := parseResponse(&stdout)
	if err != nil {
		return nil, r.failure(job, fork,
			fmt.Errorf("parse worker output: %w", err), tail(stderr.Bytes()))
	}

	if resp.Failure != nil {
		return nil, r.failure(job, fork, resp.Failure.Err(), "")
	}

	return resp.Samples, nil
}

func (r *Runner) contextFailure(ctx context.Context, job Job, fork int, err error, stderr string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return r.failure(job, fork,
			fmt.Errorf("%w after %s", ErrTimeout, job.Settings.Timeout), stderr)
	}

	return err
}

func (r *Runner) failure(job Job, fork int, cause error, stderr string) error {
	return &IsolationFailure{
		Workload:    job.Spec.Name,
		Combination: job.Combination.String(),
		Fork:        fork,
		Cause:       cause,
		Stderr:      stderr,
	}
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}

	return r.Logger
}

func tail(b []byte) string {
	b = bytes.TrimSpace(b)
	if len(b) > stderrTail {
		b = b[len(b)-stderrTail:]
	}

	return string(b)
}
