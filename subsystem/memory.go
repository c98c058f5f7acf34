// File: subsystem/memory.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Memory models the physical-memory subsystem that exposes page
// allocation to the event-delivery core. It keeps two distinct async
// operations for a page-in: the lock/reservation phase (KindMemoryLock)
// and the data-transfer completion (KindMemoryLoad) — InitiateLoad and
// HandleLoad below preserve that split rather than collapsing it.

package subsystem

import (
	"github.com/arvokernel/evcore/api"
	"github.com/arvokernel/evcore/core/evcore"
	"github.com/arvokernel/evcore/core/sched"
	"github.com/arvokernel/evcore/pool"
)

// Memory drives memory-lock and memory-load operations to completion on a
// worker pool, standing in for the real page-fault/paging-setup machinery,
// which is out of scope here. Neither KindMemoryLock nor KindMemoryLoad
// carries a failure mode — a page-in that cannot proceed is a kernel-level
// fault, not something reported back through the completion's error field.
type Memory struct {
	exec       *sched.Executor
	dispatcher *evcore.CompletionDispatcher
	ks         api.KernelScheduler
	pages      *pool.PagePool
}

// NewMemory wires Memory to the worker pool, dispatcher and scheduler it
// needs to complete operations asynchronously, plus the page pool it draws
// on when a caller doesn't supply its own load callback.
func NewMemory(exec *sched.Executor, dispatcher *evcore.CompletionDispatcher, ks api.KernelScheduler, pages *pool.PagePool) *Memory {
	return &Memory{exec: exec, dispatcher: dispatcher, ks: ks, pages: pages}
}

// InitiateLoad reserves the page range described by op (KindMemoryLock) and
// completes it. lockFn performs the actual page-table bookkeeping; a nil
// lockFn always succeeds immediately. Any error lockFn returns is logged by
// the caller's own instrumentation, if any — the completion itself always
// reports success.
func (m *Memory) InitiateLoad(op *evcore.AsyncOperation, lockFn func() error) error {
	return m.exec.Submit(func() {
		if lockFn != nil {
			_ = lockFn()
		}
		m.dispatcher.Complete(op, m.ks)
	})
}

// HandleLoad performs the page-in transfer described by op (KindMemoryLoad)
// and completes it with the transferred offset/length. loadFn performs the
// actual data movement; a nil loadFn draws a zeroed page from the pool and
// releases it again before the operation is completed, standing in for a
// page-in that always succeeds.
func (m *Memory) HandleLoad(op *evcore.AsyncOperation, offset, length uint64, loadFn func(offset, length uint64) error) error {
	return m.exec.Submit(func() {
		if loadFn != nil {
			_ = loadFn(offset, length)
		} else if m.pages != nil {
			page := m.pages.Acquire()
			m.pages.Release(page)
		}
		op.SetOffsetLength(offset, length)
		m.dispatcher.Complete(op, m.ks)
	})
}
