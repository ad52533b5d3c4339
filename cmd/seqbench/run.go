package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/weiihann/seqbench/config"
	"github.com/weiihann/seqbench/harness"
	"github.com/weiihann/seqbench/report"
	"github.com/weiihann/seqbench/timing"
	"github.com/weiihann/seqbench/workload"
)

type runFlags struct {
	configPath       string
	forks            int
	warmupIterations int
	warmupTime       time.Duration
	iterations       int
	measurementTime  time.Duration
	batchSize        int
	unit             string
	timeout          time.Duration
	confidence       float64
	gc               bool
	params           []string
	parallel         int
	forkInterval     time.Duration
	cpu              int
	format           string
	promTextfile     string
	noProgress       bool
}

func newRunCmd(logger *slog.Logger, reg *workload.Registry) *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run [filter]",
		Short: "Run workloads matching filter",
		Long: `Expand every workload whose name matches the regular expression filter
(all workloads when omitted) and run each combination in its own isolation
context. Failed combinations are reported; they do not stop the run.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := ""
			if len(args) > 0 {
				filter = args[0]
			}

			overrides, err := f.overrides(cmd)
			if err != nil {
				return err
			}

			return runBenchmark(cmd.Context(), logger, reg, cmd, filter, f, overrides)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.configPath, "config", "",
		"Path to a YAML config file")
	flags.IntVar(&f.forks, "forks", 1,
		"Worker processes per combination (0 = run in-process)")
	flags.IntVar(&f.warmupIterations, "warmup-iterations", 2,
		"Warmup iterations per trial")
	flags.DurationVar(&f.warmupTime, "warmup-time", time.Second,
		"Minimum duration of one warmup iteration")
	flags.IntVar(&f.iterations, "iterations", 3,
		"Measurement iterations per trial")
	flags.DurationVar(&f.measurementTime, "time", time.Second,
		"Minimum duration of one measurement iteration")
	flags.IntVar(&f.batchSize, "batch-size", 0,
		"Fixed invocations per iteration (0 = time based)")
	flags.StringVar(&f.unit, "unit", "us",
		"Reporting unit: ns, us, ms, s")
	flags.DurationVar(&f.timeout, "timeout", 10*time.Minute,
		"Per-combination timeout (0 = none)")
	flags.Float64Var(&f.confidence, "confidence", 0.999,
		"Confidence level of the reported error")
	flags.BoolVar(&f.gc, "gc", false,
		"Force a garbage collection before every iteration")
	flags.StringArrayVar(&f.params, "param", nil,
		"Restrict an axis, e.g. --param size=100,1000 (repeatable)")
	flags.IntVar(&f.parallel, "parallel", 1,
		"Combinations run at the same time")
	flags.DurationVar(&f.forkInterval, "fork-interval", 0,
		"Minimum gap between two worker launches")
	flags.IntVar(&f.cpu, "cpu", -1,
		"Pin measuring threads to this CPU (-1 = no pinning)")
	flags.StringVar(&f.format, "format", "table",
		"Output format: table, markdown, json")
	flags.StringVar(&f.promTextfile, "prom-textfile", "",
		"Also write results as a Prometheus textfile to this path")
	flags.BoolVar(&f.noProgress, "no-progress", false,
		"Disable the progress bar")

	return cmd
}

// overrides collects the settings flags that were set explicitly.
func (f runFlags) overrides(cmd *cobra.Command) (config.Overrides, error) {
	var o config.Overrides

	changed := cmd.Flags().Changed

	if changed("forks") {
		o.ForkCount = config.Int(f.forks)
	}
	if changed("warmup-iterations") {
		o.WarmupIterations = config.Int(f.warmupIterations)
	}
	if changed("warmup-time") {
		o.WarmupTime = config.Duration(f.warmupTime)
	}
	if changed("iterations") {
		o.MeasurementIterations = config.Int(f.iterations)
	}
	if changed("time") {
		o.MeasurementTime = config.Duration(f.measurementTime)
	}
	if changed("batch-size") {
		o.BatchSize = config.Int(f.batchSize)
	}
	if changed("timeout") {
		o.Timeout = config.Duration(f.timeout)
	}
	if changed("confidence") {
		o.Confidence = config.Float(f.confidence)
	}
	if changed("gc") {
		o.GC = config.Bool(f.gc)
	}

	if changed("unit") {
		u, err := timing.ParseUnit(f.unit)
		if err != nil {
			return o, fmt.Errorf("%w: %v", workload.ErrConfiguration, err)
		}

		o.Unit = config.UnitOf(u)
	}

	params, err := parseParams(f.params)
	if err != nil {
		return o, err
	}

	o.Params = params

	if err := config.ValidateOverrides(o); err != nil {
		return o, fmt.Errorf("%w: flags: %v", workload.ErrConfiguration, err)
	}

	return o, nil
}

// parseParams turns repeated axis=v1,v2 flags into axis overrides. Values
// given for the same axis in several flags are concatenated.
func parseParams(raw []string) (map[string][]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	params := make(map[string][]string, len(raw))

	for _, p := range raw {
		axis, values, ok := strings.Cut(p, "=")
		axis = strings.TrimSpace(axis)

		if !ok || axis == "" || strings.TrimSpace(values) == "" {
			return nil, fmt.Errorf("%w: --param %q: want axis=v1,v2", workload.ErrConfiguration, p)
		}

		for _, v := range strings.Split(values, ",") {
			v = strings.TrimSpace(v)
			if v == "" {
				return nil, fmt.Errorf("%w: --param %q: empty value", workload.ErrConfiguration, p)
			}

			params[axis] = append(params[axis], v)
		}
	}

	return params, nil
}

func runBenchmark(
	ctx context.Context,
	logger *slog.Logger,
	reg *workload.Registry,
	cmd *cobra.Command,
	filter string,
	f runFlags,
	flags config.Overrides,
) error {
	var file *config.File

	if f.configPath != "" {
		var err error

		file, err = config.Load(f.configPath)
		if err != nil {
			return fmt.Errorf("%w: %v", workload.ErrConfiguration, err)
		}
	}

	opts := runOptions(cmd, f, file)

	if err := validateFormat(f.format); err != nil {
		return err
	}

	jobs, err := harness.Plan(reg, filter, file, flags)
	if err != nil {
		return fmt.Errorf("plan: %w", err)
	}

	runID := uuid.NewString()
	startedAt := time.Now().UTC()

	logger = logger.With(slog.String("run_id", runID))

	logger.InfoContext(ctx, "starting benchmark",
		slog.String("filter", filter),
		slog.Int("jobs", len(jobs)),
		slog.Int("parallel", opts.Parallel),
		slog.Int("cpu", opts.CPU),
	)

	command, err := harness.SelfCommand(logger.Enabled(ctx, slog.LevelDebug))
	if err != nil {
		return err
	}

	bar := newProgressBar(len(jobs), f.noProgress)

	engine := &harness.Engine{
		Isolator: harness.NewRunner(command, opts.ForkInterval, opts.CPU, logger),
		Parallel: opts.Parallel,
		Logger:   logger,
		OnResult: func(harness.Result) {
			if bar != nil {
				_ = bar.Add(1)
			}
		},
	}

	results, err := engine.Run(ctx, jobs)

	if bar != nil {
		_ = bar.Finish()
	}

	if err != nil {
		return fmt.Errorf("run aborted: %w", err)
	}

	if err := writeReport(cmd.OutOrStdout(), f.format, report.Run{
		RunID:     runID,
		StartedAt: startedAt,
		Results:   results,
	}); err != nil {
		return err
	}

	if f.promTextfile != "" {
		if err := report.WriteTextfile(f.promTextfile, results); err != nil {
			return err
		}
	}

	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}

	logger.InfoContext(ctx, "benchmark complete",
		slog.Int("jobs", len(results)),
		slog.Int("failed", failed),
		slog.Duration("wall_time", time.Since(startedAt)),
	)

	return nil
}

type resolvedRun struct {
	Parallel     int
	ForkInterval time.Duration
	CPU          int
}

// runOptions layers the file's run section under explicitly set flags.
func runOptions(cmd *cobra.Command, f runFlags, file *config.File) resolvedRun {
	opts := resolvedRun{Parallel: f.parallel, ForkInterval: f.forkInterval, CPU: f.cpu}

	if file == nil {
		return opts
	}

	changed := cmd.Flags().Changed

	if !changed("parallel") && file.Run.Parallel > 0 {
		opts.Parallel = file.Run.Parallel
	}
	if !changed("fork-interval") && file.Run.ForkInterval > 0 {
		opts.ForkInterval = file.Run.ForkInterval
	}
	if !changed("cpu") && file.Run.CPU != nil {
		opts.CPU = *file.Run.CPU
	}

	return opts
}

func validateFormat(format string) error {
	switch format {
	case "table", "markdown", "json":
		return nil
	default:
		return fmt.Errorf("%w: unknown format %q", workload.ErrConfiguration, format)
	}
}

func writeReport(w io.Writer, format string, run report.Run) error {
	var err error

	switch format {
	case "markdown":
		err = report.Markdown(w, run.Results)
	case "json":
		err = report.JSON(w, run)
	default:
		err = report.Table(w, run.Results)
	}

	if err != nil {
		return fmt.Errorf("write %s report: %w", format, err)
	}

	return nil
}

func newProgressBar(jobs int, disabled bool) *progressbar.ProgressBar {
	if disabled || jobs == 0 {
		return nil
	}

	fd := os.Stderr.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return nil
	}

	return progressbar.NewOptions(jobs,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Running jobs"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}
