// File: subsystem/ipc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// IPC models the message-passing and connection-handling subsystem that
// produces concrete completion objects feeding the event-delivery core.
// Each method drives one operation kind to completion on the worker pool,
// standing in for the real send/recv/accept/connect state machines, which
// are out of scope here — only their completion shape matters to this
// layer.

package subsystem

import (
	"github.com/arvokernel/evcore/api"
	"github.com/arvokernel/evcore/core/evcore"
	"github.com/arvokernel/evcore/core/sched"
)

// IPC drives send/recv/accept/connect/observe/join operations to
// completion.
type IPC struct {
	exec       *sched.Executor
	dispatcher *evcore.CompletionDispatcher
	ks         api.KernelScheduler
}

// NewIPC wires IPC to the worker pool, dispatcher and scheduler it needs.
func NewIPC(exec *sched.Executor, dispatcher *evcore.CompletionDispatcher, ks api.KernelScheduler) *IPC {
	return &IPC{exec: exec, dispatcher: dispatcher, ks: ks}
}

// Send drives KindSendString/KindSendDescriptor; sendFn performs the
// actual transfer and reports the operation outcome.
func (i *IPC) Send(op *evcore.AsyncOperation, sendFn func() api.OperationErrorCode) error {
	return i.exec.Submit(func() {
		code := api.OperationSuccess
		if sendFn != nil {
			code = sendFn()
		}
		op.SetError(code)
		i.dispatcher.Complete(op, i.ks)
	})
}

// Recv drives KindRecvString; recvFn performs the actual receive and
// returns the message's request/sequence/length along with its outcome.
func (i *IPC) Recv(op *evcore.AsyncOperation, recvFn func() (msgRequest, msgSequence int64, length uint64, code api.OperationErrorCode)) error {
	return i.exec.Submit(func() {
		msgRequest, msgSequence, length, code := recvFn()
		op.SetMessage(msgRequest, msgSequence, length)
		op.SetError(code)
		i.dispatcher.Complete(op, i.ks)
	})
}

// RecvToRing drives KindRecvStringToRing; recvFn additionally reports the
// ring offset the message landed at.
func (i *IPC) RecvToRing(op *evcore.AsyncOperation, recvFn func() (msgRequest, msgSequence int64, offset, length uint64, code api.OperationErrorCode)) error {
	return i.exec.Submit(func() {
		msgRequest, msgSequence, offset, length, code := recvFn()
		op.SetMessageToRing(msgRequest, msgSequence, offset, length)
		op.SetError(code)
		i.dispatcher.Complete(op, i.ks)
	})
}

// RecvDescriptor drives KindRecvDescriptor; recvFn reports the received
// handle along with the message's request/sequence and outcome.
func (i *IPC) RecvDescriptor(op *evcore.AsyncOperation, recvFn func() (msgRequest, msgSequence int64, handle uint64, code api.OperationErrorCode)) error {
	return i.exec.Submit(func() {
		msgRequest, msgSequence, handle, code := recvFn()
		op.SetDescriptorMessage(msgRequest, msgSequence, handle)
		op.SetError(code)
		i.dispatcher.Complete(op, i.ks)
	})
}

// Accept drives KindAccept; acceptFn reports the accepted connection's
// handle.
func (i *IPC) Accept(op *evcore.AsyncOperation, acceptFn func() uint64) error {
	return i.exec.Submit(func() {
		op.SetHandle(acceptFn())
		i.dispatcher.Complete(op, i.ks)
	})
}

// Connect drives KindConnect; connectFn reports the established
// connection's handle.
func (i *IPC) Connect(op *evcore.AsyncOperation, connectFn func() uint64) error {
	return i.exec.Submit(func() {
		op.SetHandle(connectFn())
		i.dispatcher.Complete(op, i.ks)
	})
}

// Observe drives KindObserve/KindJoin, both of which carry no result data
// beyond success.
func (i *IPC) Observe(op *evcore.AsyncOperation, waitFn func()) error {
	return i.exec.Submit(func() {
		if waitFn != nil {
			waitFn()
		}
		i.dispatcher.Complete(op, i.ks)
	})
}
