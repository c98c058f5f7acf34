// File: core/evcore/operation.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// AsyncOperation is the shared, heap-lived object representing one
// outstanding long-running request. Go has no closed tagged-sum type, so
// the per-kind result fields are flattened into one struct exactly like
// api.EventRecord's payload union — only the fields meaningful for a given
// Kind are ever written or read back by ProjectEvent.

package evcore

import (
	"sync/atomic"

	"github.com/arvokernel/evcore/api"
)

// AsyncOperation is one in-flight or completed kernel request.
type AsyncOperation struct {
	Kind       api.OperationKind
	Completion CompletionDescriptor

	frozen atomic.Bool

	err         api.OperationErrorCode
	offset      uint64
	length      uint64
	msgRequest  int64
	msgSequence int64
	handle      uint64
}

// NewAsyncOperation constructs an operation of the given kind with the
// supplied completion descriptor. Result fields start zero/success and are
// filled in by the driving subsystem before Complete freezes them.
func NewAsyncOperation(kind api.OperationKind, completion CompletionDescriptor) *AsyncOperation {
	return &AsyncOperation{Kind: kind, Completion: completion, err: api.OperationSuccess}
}

// SetError records the operation's outcome. Panics if called after
// Complete — a completed operation's mutable fields are never written
// again.
func (op *AsyncOperation) SetError(code api.OperationErrorCode) {
	op.assertNotFrozen()
	op.err = code
}

// SetOffsetLength records the MemoryLoad result fields.
func (op *AsyncOperation) SetOffsetLength(offset, length uint64) {
	op.assertNotFrozen()
	op.offset = offset
	op.length = length
}

// SetMessage records the RecvString result fields.
func (op *AsyncOperation) SetMessage(msgRequest, msgSequence int64, length uint64) {
	op.assertNotFrozen()
	op.msgRequest = msgRequest
	op.msgSequence = msgSequence
	op.length = length
}

// SetMessageToRing records the RecvString-to-ring result fields.
func (op *AsyncOperation) SetMessageToRing(msgRequest, msgSequence int64, offset, length uint64) {
	op.assertNotFrozen()
	op.msgRequest = msgRequest
	op.msgSequence = msgSequence
	op.offset = offset
	op.length = length
}

// SetDescriptorMessage records the RecvDescriptor result fields.
func (op *AsyncOperation) SetDescriptorMessage(msgRequest, msgSequence int64, handle uint64) {
	op.assertNotFrozen()
	op.msgRequest = msgRequest
	op.msgSequence = msgSequence
	op.handle = handle
}

// SetHandle records the Accept/Connect result field.
func (op *AsyncOperation) SetHandle(handle uint64) {
	op.assertNotFrozen()
	op.handle = handle
}

// Freeze marks the operation complete: no further Set* call may succeed.
// The driving subsystem calls this immediately before handing the
// operation to the CompletionDispatcher.
func (op *AsyncOperation) Freeze() {
	op.frozen.Store(true)
}

func (op *AsyncOperation) assertNotFrozen() {
	if op.frozen.Load() {
		api.Fatal("write to AsyncOperation result fields after Freeze")
	}
}

// ProjectEvent is the pure mapping from a frozen operation's state to its
// wire-format EventRecord. Ring-item operations must never reach here —
// doing so is a fatal contract violation, not a recoverable error.
func (op *AsyncOperation) ProjectEvent() api.EventRecord {
	if op.Kind == api.KindRingItem() {
		api.Fatal("ProjectEvent called on an internal ring-item operation")
	}
	if !op.frozen.Load() {
		api.Fatal("ProjectEvent called on an operation that was never frozen")
	}

	rec := api.EventRecord{Kind: op.Kind, Error: api.OperationSuccess}
	if op.Completion.Tag == PostToHub {
		rec.SubmitInfo = op.Completion.SubmitInfo
	}

	switch op.Kind {
	case api.KindMemoryLoad:
		// Page-in always succeeds from the caller's perspective — the
		// original kernel's AsyncHandleLoad hardcodes kErrSuccess and
		// carries no error field at all.
		rec.Offset = op.offset
		rec.Length = op.length
	case api.KindMemoryLock:
		// Same as above: lock completion carries no failure mode.
	case api.KindObserve, api.KindJoin, api.KindIrq:
		// no data; always reports success.
	case api.KindSendString, api.KindSendDescriptor:
		rec.Error = op.err
	case api.KindRecvString:
		rec.Error = op.err
		rec.MsgRequest = op.msgRequest
		rec.MsgSequence = op.msgSequence
		rec.Length = op.length
	case api.KindRecvStringToRing:
		rec.Error = op.err
		rec.MsgRequest = op.msgRequest
		rec.MsgSequence = op.msgSequence
		rec.Offset = op.offset
		rec.Length = op.length
	case api.KindRecvDescriptor:
		rec.Error = op.err
		rec.MsgRequest = op.msgRequest
		rec.MsgSequence = op.msgSequence
		rec.Handle = op.handle
	case api.KindAccept, api.KindConnect:
		rec.Handle = op.handle
	default:
		api.Fatal("ProjectEvent called on an operation with unknown kind")
	}
	return rec
}
