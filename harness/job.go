package harness

import (
	"fmt"
	"slices"
	"sort"

	"github.com/weiihann/seqbench/config"
	"github.com/weiihann/seqbench/workload"
)

// Job is one runnable (workload, combination) pair with its resolved
// settings.
type Job struct {
	Spec        workload.Spec
	Combination workload.Combination
	Settings    config.Settings
}

// Name identifies the job in logs, e.g. "get[container=slice,size=100]".
func (j Job) Name() string {
	if c := j.Combination.String(); c != "" {
		return j.Spec.Name + "[" + c + "]"
	}

	return j.Spec.Name
}

// Plan selects workloads by filter, resolves their settings and expands
// every one into jobs. Any error here is a configuration error and no job
// should run. file may be nil.
//
// Params from a file's workloads.<name> section must name declared axes
// and values of that workload. Global and flag params only restrict the
// workloads declaring the axis: each is narrowed to the values it declares
// and skipped when none remain. Every requested value must match at least
// one selected workload.
func Plan(
	reg *workload.Registry,
	filter string,
	file *config.File,
	flags config.Overrides,
) ([]Job, error) {
	specs, err := reg.Filter(filter)
	if err != nil {
		return nil, err
	}

	if file != nil {
		names := make([]string, 0, len(file.Workloads))
		for name := range file.Workloads {
			names = append(names, name)
		}

		sort.Strings(names)

		for _, name := range names {
			if _, ok := reg.Lookup(name); !ok {
				return nil, &workload.UnknownWorkloadError{Name: name}
			}
		}
	}

	requested := make(map[workload.Param]bool)

	var jobs []Job

	for _, spec := range specs {
		settings, err := config.Resolve(spec.Name, spec.Settings, file, flags)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", workload.ErrConfiguration, err)
		}

		params, ok := restrictParams(spec, settings.Params, strictAxes(spec.Name, file, flags), requested)
		if !ok {
			continue
		}

		combos, err := workload.ExpandWith(spec, params)
		if err != nil {
			return nil, err
		}

		for _, c := range combos {
			jobs = append(jobs, Job{Spec: spec, Combination: c, Settings: settings})
		}
	}

	var unmatched []workload.Param
	for p, matched := range requested {
		if !matched {
			unmatched = append(unmatched, p)
		}
	}

	if len(unmatched) > 0 {
		sort.Slice(unmatched, func(i, j int) bool {
			if unmatched[i].Axis != unmatched[j].Axis {
				return unmatched[i].Axis < unmatched[j].Axis
			}

			return unmatched[i].Value < unmatched[j].Value
		})

		return nil, &workload.ParamOverrideError{
			Workload: "*",
			Axis:     unmatched[0].Axis,
			Value:    unmatched[0].Value,
		}
	}

	return jobs, nil
}

// strictAxes returns the axes whose values come from the file section of
// workload name rather than from global params or flags.
func strictAxes(name string, file *config.File, flags config.Overrides) map[string]bool {
	strict := make(map[string]bool)
	if file == nil {
		return strict
	}

	for axis := range file.Workloads[name].Params {
		if _, ok := flags.Params[axis]; !ok {
			strict[axis] = true
		}
	}

	return strict
}

// restrictParams narrows the lenient axes of params to the values spec
// declares and records in requested which (axis, value) pairs matched.
// Strict axes pass through untouched so the expander rejects anything
// undeclared. It reports false when a lenient axis keeps no value.
func restrictParams(
	spec workload.Spec,
	params map[string][]string,
	strict map[string]bool,
	requested map[workload.Param]bool,
) (map[string][]string, bool) {
	out := make(map[string][]string, len(params))
	keep := true

	for axis, values := range params {
		if strict[axis] {
			out[axis] = values
			continue
		}

		declared, ok := spec.Axis(axis)

		var kept []string

		for _, v := range values {
			p := workload.Param{Axis: axis, Value: v}
			if ok && slices.Contains(declared.Values, v) {
				kept = append(kept, v)
				requested[p] = true
			} else if _, seen := requested[p]; !seen {
				requested[p] = false
			}
		}

		if !ok {
			continue
		}

		if len(kept) == 0 {
			keep = false
			continue
		}

		out[axis] = kept
	}

	return out, keep
}
