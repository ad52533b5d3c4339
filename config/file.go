package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// maxFileSize bounds the config file read into memory.
const maxFileSize = 1 << 20

var validate = validator.New()

// RunOptions are harness-wide settings that do not vary per workload.
type RunOptions struct {
	// Parallel is how many jobs may run at once.
	Parallel int `yaml:"parallel" validate:"gte=0,lte=256"`
	// ForkInterval spaces consecutive child process launches.
	ForkInterval time.Duration `yaml:"fork_interval" validate:"gte=0"`
	// CPU pins forked workers to one logical CPU; negative disables pinning.
	CPU *int `yaml:"cpu" validate:"omitempty,gte=-1"`
}

// File is the YAML configuration file.
//
//	run:
//	  parallel: 1
//	  fork_interval: 200ms
//	global:
//	  measurement_iterations: 5
//	workloads:
//	  get:
//	    params:
//	      size: ["100", "1000"]
type File struct {
	Run       RunOptions           `yaml:"run"`
	Global    Overrides            `yaml:"global"`
	Workloads map[string]Overrides `yaml:"workloads"`
}

// Load reads and validates a config file. Unknown keys are rejected.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if len(data) > maxFileSize {
		return nil, fmt.Errorf("config %s exceeds %d bytes", path, maxFileSize)
	}

	file, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return file, nil
}

// Parse decodes and validates YAML config data.
func Parse(data []byte) (*File, error) {
	var file File

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	if err := file.Validate(); err != nil {
		return nil, err
	}

	return &file, nil
}

// Validate checks every section of the file.
func (f *File) Validate() error {
	if err := validate.Struct(f.Run); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	if err := ValidateOverrides(f.Global); err != nil {
		return fmt.Errorf("global: %w", err)
	}

	for name, o := range f.Workloads {
		if err := ValidateOverrides(o); err != nil {
			return fmt.Errorf("workloads.%s: %w", name, err)
		}
	}

	return nil
}

// ValidateOverrides checks the set fields of o.
func ValidateOverrides(o Overrides) error {
	return validate.Struct(o)
}

// Validate checks a resolved Settings value.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	return nil
}

// Resolve layers the sources in precedence order: defaults, the workload's
// own declaration, the file's global section, the file's section for the
// workload, then explicit flags. file may be nil.
func Resolve(name string, declared Overrides, file *File, flags Overrides) (Settings, error) {
	s := declared.Apply(Defaults())

	if file != nil {
		s = file.Global.Apply(s)
		if o, ok := file.Workloads[name]; ok {
			s = o.Apply(s)
		}
	}

	s = flags.Apply(s)

	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("workload %s: %w", name, err)
	}

	return s, nil
}
