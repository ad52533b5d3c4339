// Package report formats benchmark results as tables, JSON and metrics.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/weiihann/seqbench/harness"
)

// Run is the JSON envelope of one harness invocation.
type Run struct {
	RunID     string           `json:"run_id"`
	StartedAt time.Time        `json:"started_at"`
	Results   []harness.Result `json:"results"`
}

// Markdown writes a markdown table with one row per result, failed jobs
// included.
func Markdown(w io.Writer, results []harness.Result) error {
	if len(results) == 0 {
		return fmt.Errorf("no results to report")
	}

	ok, failed := split(results)

	fmt.Fprintln(w, "## Benchmark Results")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Jobs: **%d ok**, **%d failed**\n", len(ok), len(failed))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "| Workload | Params | Score | Error | Units | Samples | Status |")
	fmt.Fprintln(w, "|----------|--------|-------|-------|-------|---------|--------|")

	for _, r := range results {
		fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %s | %s |\n",
			r.Workload,
			formatParams(r),
			formatScore(r),
			formatError(r),
			r.Unit.PerOp(),
			formatSamples(r),
			formatStatus(r),
		)
	}

	if len(failed) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "### Failures")
	fmt.Fprintln(w)

	for _, r := range failed {
		fmt.Fprintf(w, "- `%s`: %s\n", jobName(r), firstLine(r.Cause))
	}

	return nil
}

// JSON writes run as indented JSON to w.
func JSON(w io.Writer, run Run) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(run)
}

func split(results []harness.Result) (ok, failed []harness.Result) {
	for _, r := range results {
		if r.OK() {
			ok = append(ok, r)
		} else {
			failed = append(failed, r)
		}
	}

	return ok, failed
}

func jobName(r harness.Result) string {
	if r.Combination == "" {
		return r.Workload
	}

	return r.Workload + "[" + r.Combination + "]"
}

func formatParams(r harness.Result) string {
	if r.Combination == "" {
		return "-"
	}

	return r.Combination
}

func formatScore(r harness.Result) string {
	if !r.OK() {
		return "-"
	}

	return formatFloat(r.MeanPerOp)
}

func formatError(r harness.Result) string {
	if !r.OK() {
		return "-"
	}

	return "± " + formatFloat(r.Error)
}

func formatSamples(r harness.Result) string {
	if !r.OK() {
		return "-"
	}

	return strconv.Itoa(r.SampleCount)
}

func formatStatus(r harness.Result) string {
	if r.OK() {
		return string(r.Status)
	}

	return fmt.Sprintf("%s (%s)", r.Status, r.FailureKind)
}

// formatFloat keeps three significant decimals for small scores and drops
// them for large ones.
func formatFloat(v float64) string {
	switch {
	case v >= 1000:
		return strconv.FormatFloat(v, 'f', 0, 64)
	case v >= 10:
		return strconv.FormatFloat(v, 'f', 2, 64)
	default:
		return strconv.FormatFloat(v, 'f', 3, 64)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}

	return s
}
