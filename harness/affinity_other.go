//go:build !linux

package harness

import "runtime"

// pinThread locks the calling goroutine to its OS thread. CPU pinning is
// only available on Linux.
func pinThread(int) (func(), error) {
	runtime.LockOSThread()

	return runtime.UnlockOSThread, nil
}
