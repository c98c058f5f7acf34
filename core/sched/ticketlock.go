// File: core/sched/ticketlock.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fair FIFO spinlock used as the hub lock. A real kernel folds "disable
// local interrupts" into the same primitive that acquires the lock
// (lock_irqsave); Go has no user-space interrupt mask, so irqDisabled
// tracks that discipline for the assertions block_current and raise rely
// on rather than actually masking hardware interrupts.

package sched

import (
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sys/cpu"
)

// spinThreshold bounds how many spin iterations Lock makes (yielding via
// runtime.Gosched on SSE2-capable CPUs) before it falls back to sleeping
// between checks.
const spinThreshold = 512

// TicketLock is a fair, FIFO, interrupt-safe spinlock.
type TicketLock struct {
	_           cpu.CacheLinePad
	nowServing  atomic.Uint64
	_           cpu.CacheLinePad
	nextTicket  atomic.Uint64
	_           cpu.CacheLinePad
	irqDisabled atomic.Bool
}

// Lock acquires the lock in ticket order and marks interrupts disabled for
// the critical section's duration — the hub lock must be interrupt-safe,
// an interrupt that runs on a CPU already holding the hub lock on that CPU
// is prevented by this discipline.
func (l *TicketLock) Lock() {
	my := l.nextTicket.Add(1) - 1
	spins := 0
	for l.nowServing.Load() != my {
		if spins < spinThreshold {
			spins++
			if cpu.X86.HasSSE2 {
				runtime.Gosched()
			}
		} else {
			time.Sleep(time.Microsecond)
		}
	}
	l.irqDisabled.Store(true)
}

// Unlock releases the lock and restores the interrupt-enabled assumption.
func (l *TicketLock) Unlock() {
	l.irqDisabled.Store(false)
	l.nowServing.Add(1)
}

// AssertHeld panics if the lock is not currently held — used to enforce the
// "caller holds the hub lock" preconditions of block_current and raise. The
// lock records no owner, so it cannot tell whether the caller or another
// goroutine is the holder.
func (l *TicketLock) AssertHeld() {
	if !l.irqDisabled.Load() {
		panic("evcore: hub lock precondition violated: lock not held")
	}
}
