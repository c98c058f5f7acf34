// File: api/record.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// EventRecord is the flat, POSIX-style payload copied to user-space by
// wait_for_events. It is a union-like projection over OperationKind; see
// core/evcore/operation.go for the projection that fills it.

package api

// SubmitInfo is the opaque 128-bit correlation token user-space attaches to
// a submit_* call and that is echoed back verbatim in the completion record.
type SubmitInfo struct {
	Hi uint64
	Lo uint64
}

// EventRecord is the fixed-size record wait_for_events writes into the
// caller's out_buffer, one per drained completion.
type EventRecord struct {
	Kind       OperationKind
	Error      OperationErrorCode
	SubmitInfo SubmitInfo

	// Payload union — only the fields meaningful for a given Kind are
	// filled in; the rest are zero.
	Offset      uint64
	Length      uint64
	MsgRequest  int64
	MsgSequence int64
	Handle      uint64
}
