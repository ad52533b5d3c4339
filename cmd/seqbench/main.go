// Package main provides the CLI entry point for seqbench, a microbenchmark
// harness comparing sequential containers.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/weiihann/seqbench/suite"
	"github.com/weiihann/seqbench/workload"
)

func main() {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(logger, level, suite.Registry())
	if err := root.ExecuteContext(ctx); err != nil {
		logger.Error("seqbench failed", slog.String("error", err.Error()))
		stop()
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger, level *slog.LevelVar, reg *workload.Registry) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "seqbench",
		Short: "Microbenchmarks for sequential containers",
		Long: `Seqbench measures slices, linked lists, deques and array lists under
the same workloads. Every workload is expanded over its parameter axes and
each combination is warmed up, measured and reported with a confidence
interval.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if verbose {
				level.Set(slog.LevelDebug)
			}
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	root.AddCommand(
		newRunCmd(logger, reg),
		newListCmd(reg),
		newWorkerCmd(logger, reg),
	)

	return root
}
