package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/weiihann/seqbench/harness"
	"github.com/weiihann/seqbench/workload"
)

func newWorkerCmd(logger *slog.Logger, reg *workload.Registry) *cobra.Command {
	return &cobra.Command{
		Use:    "worker",
		Short:  "Run one fork of a job (internal)",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return harness.ServeWorker(cmd.Context(), reg, os.Stdin, os.Stdout, logger)
		},
	}
}
