// File: api/errors.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Two parallel error taxonomies, per the core's error handling design:
// SyscallError for immediate synchronous failures (never surfaced through
// events) and OperationError for asynchronous per-completion outcomes
// (carried in the EventRecord.Error field, never returned by a syscall).

package api

import "fmt"

// SyscallErrorCode enumerates the errors a syscall may return directly.
type SyscallErrorCode int

const (
	SyscallOK SyscallErrorCode = iota
	ErrNoSuchHandle
	ErrWrongHandleType
	ErrBufferTooSmall
	ErrSyscallTimeout
)

func (c SyscallErrorCode) String() string {
	switch c {
	case SyscallOK:
		return "success"
	case ErrNoSuchHandle:
		return "no_such_handle"
	case ErrWrongHandleType:
		return "wrong_handle_type"
	case ErrBufferTooSmall:
		return "buffer_too_small"
	case ErrSyscallTimeout:
		return "timeout"
	default:
		return "unknown_syscall_error"
	}
}

// SyscallError is the structured error type returned directly by the three
// core syscalls (create_event_hub, wait_for_events, submit_*).
type SyscallError struct {
	Code SyscallErrorCode
}

func (e *SyscallError) Error() string { return e.Code.String() }

// NewSyscallError constructs a SyscallError for the given code.
func NewSyscallError(code SyscallErrorCode) *SyscallError {
	return &SyscallError{Code: code}
}

// Common SyscallError sentinels for cheap comparison via errors.Is.
var (
	ErrHandleNotFound    = NewSyscallError(ErrNoSuchHandle)
	ErrHandleWrongType   = NewSyscallError(ErrWrongHandleType)
	ErrOutBufferTooSmall = NewSyscallError(ErrBufferTooSmall)
	ErrWaitTimedOut      = NewSyscallError(ErrSyscallTimeout)
)

// OperationErrorCode enumerates the asynchronous, per-completion error set
// embedded in an EventRecord's Error field — never returned by a syscall.
type OperationErrorCode int

const (
	OperationSuccess OperationErrorCode = iota
	ErrClosedRemotely
	ErrBufferExhausted
	ErrHandleGone
)

func (c OperationErrorCode) String() string {
	switch c {
	case OperationSuccess:
		return "success"
	case ErrClosedRemotely:
		return "closed_remotely"
	case ErrBufferExhausted:
		return "buffer_exhausted"
	case ErrHandleGone:
		return "handle_gone"
	default:
		return "unknown_operation_error"
	}
}

// ContractViolation is raised (via panic) for internal contract violations
// that are fatal by design: dequeue-on-empty, projecting a ring-item or an
// unfrozen operation, writing a frozen operation, or an unknown kind or
// completion tag. Lock ordering is not checked at run time, and a missing
// hub lock (TicketLock.AssertHeld) panics with a plain string instead. It
// must never be recovered from inside the core, only a hosted test harness
// may catch it for a death test.
type ContractViolation struct {
	What string
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("evcore: contract violation: %s", e.What)
}

// Fatal panics with a ContractViolation, matching the original's assert(false).
func Fatal(what string) {
	panic(&ContractViolation{What: what})
}
