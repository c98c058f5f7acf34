// File: subsystem/irq.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// IRQ models interrupt delivery. Unlike Memory and IPC it never hands work
// to the worker pool: interrupt handlers call complete(op) directly for
// IRQ-kind operations, on whatever goroutine stands in for interrupt
// context, which is exactly why the hub lock must be interrupt-safe
// (core/sched.TicketLock's irqDisabled bookkeeping).

package subsystem

import (
	"github.com/arvokernel/evcore/api"
	"github.com/arvokernel/evcore/core/evcore"
)

// IRQ completes Irq-kind operations synchronously from the caller's own
// goroutine, standing in for an interrupt handler.
type IRQ struct {
	dispatcher *evcore.CompletionDispatcher
	ks         api.KernelScheduler
}

// NewIRQ wires IRQ to the dispatcher and scheduler it needs.
func NewIRQ(dispatcher *evcore.CompletionDispatcher, ks api.KernelScheduler) *IRQ {
	return &IRQ{dispatcher: dispatcher, ks: ks}
}

// Raise completes op immediately, on the calling goroutine — no worker
// pool hop, matching an interrupt handler's own execution context.
func (q *IRQ) Raise(op *evcore.AsyncOperation) {
	q.dispatcher.Complete(op, q.ks)
}
