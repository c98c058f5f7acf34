// File: api/kinds.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// OperationKind enumerates every long-running kernel request the async
// event-delivery core can carry to completion. The set is closed: adding a
// kind means adding a case to AsyncOperation.ProjectEvent as well.

package api

// OperationKind tags an AsyncOperation with which result fields are meaningful.
type OperationKind uint32

const (
	KindMemoryLoad OperationKind = iota
	KindMemoryLock
	KindObserve
	KindSendString
	KindSendDescriptor
	KindRecvString
	KindRecvStringToRing
	KindRecvDescriptor
	KindAccept
	KindConnect
	KindJoin
	KindIrq

	// kindRingItem is an internal-only bookkeeping record; it is never
	// user-visible and must never be projected directly — see
	// AsyncOperation.ProjectEvent. (The timer's wakeup is a KindIrq
	// operation, not a ring item.)
	kindRingItem OperationKind = 0xffffffff
)

// KindRingItem exposes the internal ring-item tag to code outside this
// package that needs to construct one (the core/evcore tests of the fatal
// projection path) without listing it in the public enumeration above.
func KindRingItem() OperationKind { return kindRingItem }

func (k OperationKind) String() string {
	switch k {
	case KindMemoryLoad:
		return "memory_load"
	case KindMemoryLock:
		return "memory_lock"
	case KindObserve:
		return "observe"
	case KindSendString:
		return "send_string"
	case KindSendDescriptor:
		return "send_descriptor"
	case KindRecvString:
		return "recv_string"
	case KindRecvStringToRing:
		return "recv_string_to_ring"
	case KindRecvDescriptor:
		return "recv_descriptor"
	case KindAccept:
		return "accept"
	case KindConnect:
		return "connect"
	case KindJoin:
		return "join"
	case KindIrq:
		return "irq"
	case kindRingItem:
		return "ring_item"
	default:
		return "unknown"
	}
}
