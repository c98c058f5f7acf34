// File: core/evcore/hub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Hub is the single synchronization point between producers (completing
// operations) and consumers (threads draining events). Its event queue and
// waiter list are both backed by eapache/queue, carrying the completion
// FIFO and the sleeping-thread FIFO respectively.

package evcore

import (
	"github.com/eapache/queue"

	"github.com/arvokernel/evcore/api"
	"github.com/arvokernel/evcore/core/sched"
	"github.com/arvokernel/evcore/core/weakref"
)

// Hub is an MPMC queue of completed operations plus a FIFO of sleeping
// threads, guarded by a single interrupt-safe ticket lock.
type Hub struct {
	mu sched.TicketLock

	events  *queue.Queue
	waiters *queue.Queue

	// threads gives BlockCurrent a place to mint a weak reference to the
	// calling thread for the duration of one sleep — a thread appears in
	// at most one hub's waiters at a time, so a per-hub registry is
	// sufficient; it never needs to track threads across hubs.
	threads *weakref.Registry[api.Resumable]

	tracer    api.TraceSink
	destroyed bool
}

// NewHub constructs an empty hub. tracer may be nil; if non-nil it is
// notified (TraceDrop) whenever a waiter's weak reference fails to
// upgrade during a raise — a non-blocking, non-allocating diagnostic path.
func NewHub(tracer api.TraceSink) *Hub {
	return &Hub{
		events:  queue.New(),
		waiters: queue.New(),
		threads: weakref.NewRegistry[api.Resumable](),
		tracer:  tracer,
	}
}

// Lock acquires the hub's lock. Every other method on Hub requires the
// caller to already hold it.
func (h *Hub) Lock() { h.mu.Lock() }

// Unlock releases the hub's lock.
func (h *Hub) Unlock() { h.mu.Unlock() }

// HasEvent reports whether event_queue is non-empty. Caller must hold the
// lock.
func (h *Hub) HasEvent() bool {
	h.mu.AssertHeld()
	return h.events.Length() > 0
}

// Dequeue pops the front of event_queue. Calling it while HasEvent would
// report false is a contract violation, not a recoverable error.
func (h *Hub) Dequeue() *AsyncOperation {
	h.mu.AssertHeld()
	if h.events.Length() == 0 {
		api.Fatal("Hub.Dequeue called on an empty event_queue")
	}
	return h.events.Remove().(*AsyncOperation)
}

// Len reports the number of queued completions. Caller must hold the lock.
func (h *Hub) Len() int {
	h.mu.AssertHeld()
	return h.events.Length()
}

// WaiterCount reports the number of currently sleeping threads. Caller
// must hold the lock.
func (h *Hub) WaiterCount() int {
	h.mu.AssertHeld()
	return h.waiters.Length()
}

// Raise appends op to the tail of event_queue, then drains every sleeping
// waiter to the given scheduler's ready queue. Caller must hold the hub
// lock on entry and retains it on return — draining acquires and releases
// the scheduler lock once per waiter so the hub lock is never held across
// a long scheduler wait.
func (h *Hub) Raise(op *AsyncOperation, ks api.KernelScheduler) {
	h.mu.AssertHeld()
	h.events.Add(op)

	for h.waiters.Length() > 0 {
		wref := h.waiters.Remove().(weakref.WeakRef[api.Resumable])
		thread, ok := wref.Upgrade()
		if !ok {
			if h.tracer != nil {
				h.tracer.TraceDrop(op.Kind, "waiter weak reference expired")
			}
			continue
		}
		ks.Enqueue(thread)
	}
}

// BlockCurrent implements the sleep discipline: append the caller's weak
// reference to waiters, release the hub lock, park the calling goroutine
// (see core/sched/kthread.go), then on wake re-acquire the hub lock before
// returning. Precondition: caller holds the hub lock; interrupts are
// modeled as disabled by that same acquisition (TicketLock.irqDisabled).
// Postcondition: caller holds the hub lock again; the scheduler lock is
// held neither on entry nor on return.
func (h *Hub) BlockCurrent(thread *sched.KThread) {
	h.mu.AssertHeld()

	id := h.threads.Insert(api.Resumable(thread))
	wref := weakref.New[api.Resumable](h.threads, id)
	h.waiters.Add(wref)

	h.mu.Unlock()
	thread.Park()
	h.mu.Lock()

	h.threads.Remove(id)
}

// Destroy tears the hub down: every queued operation is released (their
// storage simply becomes unreachable), every thread currently parked in
// BlockCurrent is resumed directly so none leaks, and the thread registry
// is cleared so any in-flight Raise racing the destruction harmlessly
// fails to upgrade its waiter references. Callers must hold the hub lock.
func (h *Hub) Destroy() (releasedCount int) {
	h.mu.AssertHeld()
	releasedCount = h.events.Length()
	h.events = queue.New()

	for h.waiters.Length() > 0 {
		wref := h.waiters.Remove().(weakref.WeakRef[api.Resumable])
		if thread, ok := wref.Upgrade(); ok {
			thread.Resume()
		}
	}
	h.waiters = queue.New()
	h.threads = weakref.NewRegistry[api.Resumable]()
	h.destroyed = true
	return releasedCount
}
