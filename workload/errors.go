package workload

import (
	"errors"
	"fmt"
)

// ErrConfiguration is matched by every error that indicates a malformed
// benchmark definition. Such errors abort the run before any measurement.
var ErrConfiguration = errors.New("configuration error")

// DuplicateWorkloadError is returned when a name is registered twice.
type DuplicateWorkloadError struct {
	Name string
}

func (e *DuplicateWorkloadError) Error() string {
	return fmt.Sprintf("workload %q already registered", e.Name)
}

func (e *DuplicateWorkloadError) Is(target error) bool {
	return target == ErrConfiguration
}

// EmptyAxisError is returned when an axis declares no values.
type EmptyAxisError struct {
	Workload string
	Axis     string
}

func (e *EmptyAxisError) Error() string {
	return fmt.Sprintf("workload %q: axis %q has no values", e.Workload, e.Axis)
}

func (e *EmptyAxisError) Is(target error) bool {
	return target == ErrConfiguration
}

// InvalidSpecError reports a structurally broken Spec.
type InvalidSpecError struct {
	Workload string
	Reason   string
}

func (e *InvalidSpecError) Error() string {
	return fmt.Sprintf("workload %q: %s", e.Workload, e.Reason)
}

func (e *InvalidSpecError) Is(target error) bool {
	return target == ErrConfiguration
}

// ParamOverrideError reports an override naming an unknown axis or a value
// the axis does not declare.
type ParamOverrideError struct {
	Workload string
	Axis     string
	Value    string
}

func (e *ParamOverrideError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("workload %q: override for unknown axis %q", e.Workload, e.Axis)
	}

	return fmt.Sprintf("workload %q: axis %q does not declare value %q",
		e.Workload, e.Axis, e.Value)
}

func (e *ParamOverrideError) Is(target error) bool {
	return target == ErrConfiguration
}

// NoMatchError is returned when a filter selects no workloads.
type NoMatchError struct {
	Pattern string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no workloads match %q", e.Pattern)
}

func (e *NoMatchError) Is(target error) bool {
	return target == ErrConfiguration
}

// UnknownWorkloadError is returned when configuration names a workload
// that is not registered.
type UnknownWorkloadError struct {
	Name string
}

func (e *UnknownWorkloadError) Error() string {
	return fmt.Sprintf("unknown workload %q", e.Name)
}

func (e *UnknownWorkloadError) Is(target error) bool {
	return target == ErrConfiguration
}
