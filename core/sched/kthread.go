// File: core/sched/kthread.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// KThread models a cooperative-blocking checkpoint: save enough state that
// another thread may later resume this execution at the point after the
// save. A goroutine blocked on a buffered channel receive is the idiomatic
// Go realization of a fork/resume checkpoint pair — the channel receive is
// the park; Resume unblocks it.

package sched

// KThread represents one cooperatively-scheduled kernel thread of
// execution — concretely, the goroutine that called wait_for_events.
type KThread struct {
	id   uint64
	wake chan struct{}
}

// NewKThread constructs a parkable thread handle.
func NewKThread(id uint64) *KThread {
	return &KThread{id: id, wake: make(chan struct{}, 1)}
}

// ID returns the thread's identity, stable for its lifetime.
func (t *KThread) ID() uint64 { return t.id }

// Park blocks the calling goroutine until Resume is called. The buffered
// wake channel means a Resume that races ahead of Park is not lost.
func (t *KThread) Park() {
	<-t.wake
}

// Resume implements api.Resumable: it wakes the parked goroutine. It never
// blocks, so callers may hold a lock (Hub.Destroy calls it under the hub
// lock).
func (t *KThread) Resume() {
	select {
	case t.wake <- struct{}{}:
	default:
		// already has a pending wake; spurious wakeups are acceptable.
	}
}
