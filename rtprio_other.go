//go:build !linux

package mixcore

import "runtime"

// RaiseThreadPriority locks the calling goroutine to its OS thread.
// Thread priorities are left alone on this platform.
func RaiseThreadPriority(nice int) (release func(), err error) {
	runtime.LockOSThread()
	return runtime.UnlockOSThread, nil
}
