package timing

import (
	"fmt"
	"strings"
	"time"
)

// Unit is the time unit results are reported in.
type Unit string

const (
	Nanoseconds  Unit = "ns"
	Microseconds Unit = "us"
	Milliseconds Unit = "ms"
	Seconds      Unit = "s"
)

// ParseUnit resolves a unit name or one of its common aliases.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ns", "nano", "nanos", "nanoseconds":
		return Nanoseconds, nil
	case "us", "µs", "μs", "micro", "micros", "microseconds":
		return Microseconds, nil
	case "ms", "milli", "millis", "milliseconds":
		return Milliseconds, nil
	case "s", "sec", "secs", "seconds":
		return Seconds, nil
	default:
		return "", fmt.Errorf("unknown time unit %q", s)
	}
}

// Duration returns the length of one unit.
func (u Unit) Duration() time.Duration {
	switch u {
	case Nanoseconds:
		return time.Nanosecond
	case Milliseconds:
		return time.Millisecond
	case Seconds:
		return time.Second
	default:
		return time.Microsecond
	}
}

// FromNanos converts a raw nanosecond value into u.
func (u Unit) FromNanos(ns float64) float64 {
	return ns / float64(u.Duration())
}

// PerOp is the score label, e.g. "us/op".
func (u Unit) PerOp() string {
	return string(u) + "/op"
}

func (u Unit) String() string {
	return string(u)
}

// UnmarshalText implements encoding.TextUnmarshaler so units can be
// spelled with aliases in config files.
func (u *Unit) UnmarshalText(text []byte) error {
	parsed, err := ParseUnit(string(text))
	if err != nil {
		return err
	}

	*u = parsed

	return nil
}
