package report

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/weiihann/seqbench/harness"
)

const namespace = "seqbench"

// WriteTextfile writes results in the Prometheus text exposition format,
// suitable for the node exporter textfile collector.
func WriteTextfile(path string, results []harness.Result) error {
	reg, err := gather(results)
	if err != nil {
		return err
	}

	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("write textfile %s: %w", path, err)
	}

	return nil
}

func gather(results []harness.Result) (*prometheus.Registry, error) {
	labels := []string{"workload", "params", "unit"}

	mean := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "mean_per_op",
		Help:      "Mean time per operation, in the job's unit.",
	}, labels)

	errorBound := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "error_per_op",
		Help:      "Confidence interval half-width of the mean, in the job's unit.",
	}, labels)

	samples := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "samples",
		Help:      "Measurement iterations aggregated into the score.",
	}, labels)

	failed := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "job_failed",
		Help:      "Set to 1 for every job that produced no score.",
	}, []string{"workload", "params", "kind"})

	reg := prometheus.NewRegistry()
	for _, c := range []prometheus.Collector{mean, errorBound, samples, failed} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}

	for _, r := range results {
		if !r.OK() {
			failed.WithLabelValues(r.Workload, r.Combination, string(r.FailureKind)).Set(1)
			continue
		}

		lv := []string{r.Workload, r.Combination, string(r.Unit)}
		mean.WithLabelValues(lv...).Set(r.MeanPerOp)
		errorBound.WithLabelValues(lv...).Set(r.Error)
		samples.WithLabelValues(lv...).Set(float64(r.SampleCount))
	}

	return reg, nil
}
