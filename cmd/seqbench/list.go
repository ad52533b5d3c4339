package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/weiihann/seqbench/config"
	"github.com/weiihann/seqbench/workload"
)

func newListCmd(reg *workload.Registry) *cobra.Command {
	return &cobra.Command{
		Use:   "list [filter]",
		Short: "List registered workloads",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := ""
			if len(args) > 0 {
				filter = args[0]
			}

			specs, err := reg.Filter(filter)
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("Workload", "Axes", "Jobs", "Forks", "Iterations", "Description")

			for _, spec := range specs {
				settings, err := config.Resolve(spec.Name, spec.Settings, nil, config.Overrides{})
				if err != nil {
					return err
				}

				if err := table.Append(
					spec.Name,
					formatAxes(spec.Axes),
					strconv.Itoa(workload.Count(spec)),
					strconv.Itoa(settings.ForkCount),
					fmt.Sprintf("%d+%d", settings.WarmupIterations, settings.MeasurementIterations),
					spec.Description,
				); err != nil {
					return fmt.Errorf("append row: %w", err)
				}
			}

			return table.Render()
		},
	}
}

func formatAxes(axes []workload.Axis) string {
	if len(axes) == 0 {
		return "-"
	}

	parts := make([]string, len(axes))
	for i, a := range axes {
		parts[i] = a.Name + "=" + strings.Join(a.Values, ",")
	}

	return strings.Join(parts, " ")
}
