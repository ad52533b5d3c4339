// Package config resolves per-workload run settings from built-in
// defaults, workload declarations, a YAML file and command-line flags.
package config

import (
	"time"

	"github.com/weiihann/seqbench/phase"
	"github.com/weiihann/seqbench/stats"
	"github.com/weiihann/seqbench/timing"
)

// Settings is the fully resolved configuration of one workload.
type Settings struct {
	ForkCount             int                 `json:"fork_count" validate:"gte=0,lte=64"`
	WarmupIterations      int                 `json:"warmup_iterations" validate:"gte=0"`
	WarmupTime            time.Duration       `json:"warmup_time" validate:"gte=0"`
	MeasurementIterations int                 `json:"measurement_iterations" validate:"gte=0"`
	MeasurementTime       time.Duration       `json:"measurement_time" validate:"gte=0"`
	BatchSize             int                 `json:"batch_size" validate:"gte=0"`
	Unit                  timing.Unit         `json:"unit" validate:"oneof=ns us ms s"`
	Timeout               time.Duration       `json:"timeout" validate:"gte=0"`
	Confidence            float64             `json:"confidence" validate:"gt=0,lt=1"`
	GC                    bool                `json:"gc"`
	Params                map[string][]string `json:"params,omitempty"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		ForkCount:             1,
		WarmupIterations:      2,
		WarmupTime:            time.Second,
		MeasurementIterations: 3,
		MeasurementTime:       time.Second,
		Unit:                  timing.Microseconds,
		Timeout:               10 * time.Minute,
		Confidence:            stats.DefaultConfidence,
	}
}

// Phases returns the iteration shape handed to the phase scheduler.
func (s Settings) Phases() phase.Config {
	return phase.Config{
		WarmupIterations:      s.WarmupIterations,
		WarmupTime:            s.WarmupTime,
		MeasurementIterations: s.MeasurementIterations,
		MeasurementTime:       s.MeasurementTime,
		BatchSize:             s.BatchSize,
		GC:                    s.GC,
	}
}

// Overrides is a partial Settings. Nil fields leave the underlying value
// untouched.
type Overrides struct {
	ForkCount             *int                `yaml:"fork_count" validate:"omitempty,gte=0,lte=64"`
	WarmupIterations      *int                `yaml:"warmup_iterations" validate:"omitempty,gte=0"`
	WarmupTime            *time.Duration      `yaml:"warmup_time" validate:"omitempty,gte=0"`
	MeasurementIterations *int                `yaml:"measurement_iterations" validate:"omitempty,gte=0"`
	MeasurementTime       *time.Duration      `yaml:"measurement_time" validate:"omitempty,gte=0"`
	BatchSize             *int                `yaml:"batch_size" validate:"omitempty,gte=0"`
	Unit                  *timing.Unit        `yaml:"unit"`
	Timeout               *time.Duration      `yaml:"timeout" validate:"omitempty,gte=0"`
	Confidence            *float64            `yaml:"confidence" validate:"omitempty,gt=0,lt=1"`
	GC                    *bool               `yaml:"gc"`
	Params                map[string][]string `yaml:"params"`
}

// Apply returns s with every set field of o written over it. Params are
// merged per axis.
func (o Overrides) Apply(s Settings) Settings {
	setInt(&s.ForkCount, o.ForkCount)
	setInt(&s.WarmupIterations, o.WarmupIterations)
	setDuration(&s.WarmupTime, o.WarmupTime)
	setInt(&s.MeasurementIterations, o.MeasurementIterations)
	setDuration(&s.MeasurementTime, o.MeasurementTime)
	setInt(&s.BatchSize, o.BatchSize)
	setDuration(&s.Timeout, o.Timeout)

	if o.Unit != nil {
		s.Unit = *o.Unit
	}

	if o.Confidence != nil {
		s.Confidence = *o.Confidence
	}

	if o.GC != nil {
		s.GC = *o.GC
	}

	if len(o.Params) > 0 {
		merged := make(map[string][]string, len(s.Params)+len(o.Params))
		for axis, values := range s.Params {
			merged[axis] = values
		}

		for axis, values := range o.Params {
			merged[axis] = values
		}

		s.Params = merged
	}

	return s
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *time.Duration) {
	if v != nil {
		*dst = *v
	}
}

// Int returns a pointer to v, for building Overrides literals.
func Int(v int) *int { return &v }

// Duration returns a pointer to v.
func Duration(v time.Duration) *time.Duration { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// UnitOf returns a pointer to u.
func UnitOf(u timing.Unit) *timing.Unit { return &u }
