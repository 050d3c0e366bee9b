//go:build linux

package mixcore

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// RaiseThreadPriority locks the calling goroutine to its OS thread and
// sets the nice value of that thread. The returned function unlocks the
// thread. Lowering the nice value below zero needs CAP_SYS_NICE.
func RaiseThreadPriority(nice int) (release func(), err error) {
	runtime.LockOSThread()
	tid := unix.Gettid()
	if err := unix.Setpriority(unix.PRIO_PROCESS, tid, nice); err != nil {
		runtime.UnlockOSThread()
		return func() {}, fmt.Errorf("set priority of thread %d to %d: %w", tid, nice, err)
	}
	logger().Debug("raised thread priority", "tid", tid, "nice", nice)
	return runtime.UnlockOSThread, nil
}
