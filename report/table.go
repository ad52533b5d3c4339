package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/weiihann/seqbench/harness"
)

var (
	bold  = color.New(color.Bold)
	green = color.New(color.FgGreen)
	red   = color.New(color.FgRed)
)

// Table writes a terminal table of results followed by the causes of any
// failed jobs.
func Table(w io.Writer, results []harness.Result) error {
	if len(results) == 0 {
		return fmt.Errorf("no results to report")
	}

	table := tablewriter.NewWriter(w)
	table.Header("Workload", "Params", "Score", "Error", "Units", "Samples", "Status")

	for _, r := range results {
		status := green.Sprint(formatStatus(r))
		if !r.OK() {
			status = red.Sprint(formatStatus(r))
		}

		if err := table.Append(
			r.Workload,
			formatParams(r),
			formatScore(r),
			formatError(r),
			r.Unit.PerOp(),
			formatSamples(r),
			status,
		); err != nil {
			return fmt.Errorf("append row: %w", err)
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}

	ok, failed := split(results)

	fmt.Fprintln(w)
	bold.Fprintf(w, "%d/%d jobs completed\n", len(ok), len(results))

	if len(failed) > 0 {
		fmt.Fprintln(w)
		red.Fprintln(w, "Failed jobs:")

		for _, r := range failed {
			red.Fprintf(w, "  • %s [%s]: %s\n", jobName(r), r.FailureKind, firstLine(r.Cause))
		}
	}

	return nil
}
