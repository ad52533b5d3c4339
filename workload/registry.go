package workload

import (
	"fmt"
	"regexp"
	"sync"
)

// Registry holds workloads in registration order. It is safe for
// concurrent use.
type Registry struct {
	mu    sync.RWMutex
	specs []Spec
	index map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register adds spec. Names are unique.
func (r *Registry) Register(spec Spec) error {
	if err := check(spec); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.index[spec.Name]; ok {
		return &DuplicateWorkloadError{Name: spec.Name}
	}

	r.index[spec.Name] = len(r.specs)
	r.specs = append(r.specs, spec)

	return nil
}

// MustRegister is Register for package-level registration; it panics on
// error.
func (r *Registry) MustRegister(specs ...Spec) {
	for _, s := range specs {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
}

// List returns all workloads in registration order.
func (r *Registry) List() []Spec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Spec, len(r.specs))
	copy(out, r.specs)

	return out
}

// Lookup returns the workload called name.
func (r *Registry) Lookup(name string) (Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[name]
	if !ok {
		return Spec{}, false
	}

	return r.specs[i], true
}

// Filter returns the workloads whose name matches the regular expression
// pattern, in registration order. An empty pattern selects everything.
func (r *Registry) Filter(pattern string) ([]Spec, error) {
	all := r.List()
	if pattern == "" {
		return all, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: filter %q: %v", ErrConfiguration, pattern, err)
	}

	var out []Spec
	for _, s := range all {
		if re.MatchString(s.Name) {
			out = append(out, s)
		}
	}

	if len(out) == 0 {
		return nil, &NoMatchError{Pattern: pattern}
	}

	return out, nil
}

func check(spec Spec) error {
	if spec.Name == "" {
		return &InvalidSpecError{Reason: "empty name"}
	}

	if spec.Setup == nil {
		return &InvalidSpecError{Workload: spec.Name, Reason: "nil setup"}
	}

	seen := make(map[string]bool, len(spec.Axes))
	for _, a := range spec.Axes {
		if a.Name == "" {
			return &InvalidSpecError{Workload: spec.Name, Reason: "unnamed axis"}
		}

		if seen[a.Name] {
			return &InvalidSpecError{
				Workload: spec.Name,
				Reason:   fmt.Sprintf("axis %q declared twice", a.Name),
			}
		}

		seen[a.Name] = true
	}

	return nil
}
