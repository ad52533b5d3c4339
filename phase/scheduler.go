package phase

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/weiihann/seqbench/timing"
)

// maxBatch caps how many invocations run between two clock reads.
const maxBatch = 1 << 20

// SetupFunc builds the trial state and returns the timed body closed over
// it. It is called exactly once per trial.
type SetupFunc func() (func(), error)

// Config describes the iteration shape of a trial.
type Config struct {
	WarmupIterations      int           `json:"warmup_iterations"`
	WarmupTime            time.Duration `json:"warmup_time"`
	MeasurementIterations int           `json:"measurement_iterations"`
	MeasurementTime       time.Duration `json:"measurement_time"`
	// BatchSize, when positive, makes every iteration run exactly that many
	// invocations instead of running for a minimum time.
	BatchSize int  `json:"batch_size"`
	GC        bool `json:"gc"`
}

// Observer is notified of every state transition.
type Observer func(from, to State)

// Trial is the outcome of one scheduler run.
type Trial struct {
	State            State
	Samples          []timing.Sample
	WarmupIterations int
	WarmupOps        int64
	Err              error
}

// Scheduler runs trials. The zero value uses the system clock and
// discards logs.
type Scheduler struct {
	Clock    timing.Clock
	Logger   *slog.Logger
	Observer Observer
}

// NewScheduler creates a Scheduler on the system clock.
func NewScheduler(logger *slog.Logger) *Scheduler {
	return &Scheduler{Clock: timing.SystemClock{}, Logger: logger}
}

// Run executes setup once, the warmup iterations, then the measurement
// iterations. The returned Trial is always non-nil; its State is Complete
// on success and Failed otherwise, with the cause in both Trial.Err and the
// returned error.
func (s *Scheduler) Run(ctx context.Context, setup SetupFunc, cfg Config) (*Trial, error) {
	r := &run{
		sched:     s,
		clock:     s.Clock,
		logger:    s.Logger,
		cfg:       cfg,
		collector: timing.NewCollector(cfg.MeasurementIterations),
		trial:     &Trial{State: Setup},
	}

	if r.clock == nil {
		r.clock = timing.SystemClock{}
	}

	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}

	err := r.execute(ctx, setup)
	r.trial.Samples = r.collector.Samples()

	if err != nil {
		r.trial.Err = err
		r.transition(Failed)

		return r.trial, err
	}

	r.transition(Complete)

	return r.trial, nil
}

type run struct {
	sched     *Scheduler
	clock     timing.Clock
	logger    *slog.Logger
	cfg       Config
	collector *timing.Collector
	trial     *Trial
	body      func()
}

func (r *run) transition(to State) {
	from := r.trial.State
	r.trial.State = to

	r.logger.Debug("phase transition",
		slog.String("from", from.String()),
		slog.String("to", to.String()),
	)

	if r.sched.Observer != nil {
		r.sched.Observer(from, to)
	}
}

func (r *run) execute(ctx context.Context, setup SetupFunc) error {
	body, err := runSetup(setup)
	if err != nil {
		return err
	}

	r.body = body

	r.transition(Warmup)

	for i := 0; i < r.cfg.WarmupIterations; i++ {
		sample, err := r.iteration(ctx, r.cfg.WarmupTime)
		if err != nil {
			return fmt.Errorf("warmup iteration %d: %w", i+1, err)
		}

		r.trial.WarmupIterations++
		r.trial.WarmupOps += sample.Ops

		r.logger.Debug("warmup iteration",
			slog.Int("iteration", i+1),
			slog.Int64("ops", sample.Ops),
			slog.Duration("elapsed", sample.Elapsed),
		)
	}

	r.transition(Measurement)

	for i := 0; i < r.cfg.MeasurementIterations; i++ {
		sample, err := r.iteration(ctx, r.cfg.MeasurementTime)
		if err != nil {
			return fmt.Errorf("measurement iteration %d: %w", i+1, err)
		}

		if err := r.collector.Record(sample); err != nil {
			return err
		}

		r.logger.Debug("measurement iteration",
			slog.Int("iteration", i+1),
			slog.Int64("ops", sample.Ops),
			slog.Duration("elapsed", sample.Elapsed),
		)
	}

	return nil
}

func runSetup(setup SetupFunc) (body func(), err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &SetupFailure{Cause: fmt.Errorf("panic: %v", v)}
		}
	}()

	body, err = setup()
	if err != nil {
		return nil, &SetupFailure{Cause: err}
	}

	if body == nil {
		return nil, &SetupFailure{Cause: fmt.Errorf("setup returned a nil body")}
	}

	return body, nil
}

// iteration runs the body until minTime has elapsed, or exactly BatchSize
// times when configured. The clock is read once per batch; batch sizes
// follow the observed rate so the iteration ends close to minTime.
func (r *run) iteration(ctx context.Context, minTime time.Duration) (timing.Sample, error) {
	if r.cfg.GC {
		runtime.GC()
	}

	if err := ctx.Err(); err != nil {
		return timing.Sample{}, err
	}

	if r.cfg.BatchSize > 0 {
		start := r.clock.Now()

		if err := r.invoke(int64(r.cfg.BatchSize)); err != nil {
			return timing.Sample{}, err
		}

		elapsed, err := timing.Elapsed(start, r.clock.Now())
		if err != nil {
			return timing.Sample{}, err
		}

		return timing.Sample{Elapsed: elapsed, Ops: int64(r.cfg.BatchSize)}, nil
	}

	var (
		ops   int64
		batch int64 = 1
	)

	start := r.clock.Now()

	for {
		if err := r.invoke(batch); err != nil {
			return timing.Sample{}, err
		}

		ops += batch

		elapsed, err := timing.Elapsed(start, r.clock.Now())
		if err != nil {
			return timing.Sample{}, err
		}

		if elapsed >= minTime {
			return timing.Sample{Elapsed: elapsed, Ops: ops}, nil
		}

		if err := ctx.Err(); err != nil {
			return timing.Sample{}, err
		}

		batch = nextBatch(batch, ops, elapsed, minTime)
	}
}

// nextBatch predicts how many more invocations reach minTime from the rate
// observed so far, with 20% headroom. Growth is capped at 100x the previous
// batch and at maxBatch.
func nextBatch(batch, ops int64, elapsed, minTime time.Duration) int64 {
	limit := min(batch*100, maxBatch)

	if elapsed <= 0 {
		return limit
	}

	predicted := float64(minTime-elapsed) * float64(ops) / float64(elapsed) * 1.2

	return max(1, min(int64(predicted), limit))
}

func (r *run) invoke(n int64) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &BodyPanic{State: r.trial.State, Value: v}
		}
	}()

	body := r.body
	for i := int64(0); i < n; i++ {
		body()
	}

	return nil
}
