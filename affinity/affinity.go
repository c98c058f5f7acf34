// File: affinity/affinity.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral API for CPU affinity. Platform-specific implementations
// live in separate files (affinity_linux.go, affinity_windows.go, ...)
// guarded by build tags. Used by core/sched to give the "at most one
// kernel thread runs kernel code per CPU at a time" assumption a concrete
// backing on real hardware threads when pinning is enabled.

package affinity

import "runtime"

// SetAffinity pins the calling OS thread to a given logical CPU. Locks the
// goroutine to its OS thread first, since affinity only means anything if
// the goroutine can't migrate out from under it.
func SetAffinity(cpuID int) error {
	runtime.LockOSThread()
	if err := setAffinityPlatform(cpuID); err != nil {
		runtime.UnlockOSThread()
		return err
	}
	return nil
}

// Unpin releases a prior SetAffinity, letting the runtime migrate the
// goroutine freely again.
func Unpin() error {
	defer runtime.UnlockOSThread()
	return unpinAffinityPlatform()
}
