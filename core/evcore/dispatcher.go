// File: core/evcore/dispatcher.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// CompletionDispatcher is the single routing function for finished
// operations: given a finished operation, inspect its CompletionDescriptor
// and either drop it, post it to a hub, or resume a forked thread. Dispatch
// never returns an error — the driving subsystem has already finished its
// work by the time it calls Complete, so any inability to deliver is
// terminal for that completion alone and is only ever logged at trace
// level.

package evcore

import "github.com/arvokernel/evcore/api"

// CompletionDispatcher routes finished operations per their completion
// descriptor. It holds no state of its own beyond an optional trace sink.
type CompletionDispatcher struct {
	tracer api.TraceSink
}

// NewCompletionDispatcher constructs a dispatcher. tracer may be nil.
func NewCompletionDispatcher(tracer api.TraceSink) *CompletionDispatcher {
	return &CompletionDispatcher{tracer: tracer}
}

// Complete freezes op and routes it per its CompletionDescriptor. ks is
// the kernel scheduler used both by PostToHub (to wake drained waiters)
// and ResumeForkedThread (to re-queue the forked thread).
func (d *CompletionDispatcher) Complete(op *AsyncOperation, ks api.KernelScheduler) {
	op.Freeze()

	switch op.Completion.Tag {
	case Discard:
		// No side effects; op becomes unreachable once the caller drops it.

	case PostToHub:
		hub, ok := op.Completion.Hub.Upgrade()
		if !ok {
			d.drop(op, "hub weak reference expired")
			return
		}
		hub.Lock()
		hub.Raise(op, ks)
		hub.Unlock()

	case ResumeForkedThread:
		thread, ok := op.Completion.Thread.Upgrade()
		if !ok {
			d.drop(op, "thread weak reference expired")
			return
		}
		ks.Enqueue(thread)

	default:
		api.Fatal("CompletionDispatcher.Complete: unknown CompletionDescriptor tag")
	}
}

func (d *CompletionDispatcher) drop(op *AsyncOperation, reason string) {
	if d.tracer != nil {
		d.tracer.TraceDrop(op.Kind, reason)
	}
}
