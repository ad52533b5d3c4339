//go:build linux

package harness

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// pinThread locks the calling goroutine to its OS thread and pins that
// thread to cpu (modulo the number of logical CPUs). The returned func
// unlocks the thread.
func pinThread(cpu int) (func(), error) {
	runtime.LockOSThread()

	cpu %= runtime.NumCPU()

	var mask unix.CPUSet
	mask.Zero()
	mask.Set(cpu)

	if err := unix.SchedSetaffinity(0, &mask); err != nil {
		return runtime.UnlockOSThread, fmt.Errorf("pin to cpu %d: %w", cpu, err)
	}

	return runtime.UnlockOSThread, nil
}
