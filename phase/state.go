// Package phase drives one trial of a workload through setup, warmup and
// measurement.
package phase

// State is a trial's position in the phase state machine.
type State int

const (
	Setup State = iota
	Warmup
	Measurement
	Complete
	Failed
)

func (s State) String() string {
	switch s {
	case Setup:
		return "setup"
	case Warmup:
		return "warmup"
	case Measurement:
		return "measurement"
	case Complete:
		return "complete"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions can happen.
func (s State) Terminal() bool {
	return s == Complete || s == Failed
}
