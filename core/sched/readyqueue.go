// File: core/sched/readyqueue.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// RingBuffer is a bounded ring used as each Executor worker's local task
// queue; head/tail padded to avoid false sharing between producer and
// consumer cache lines. Dequeue is lock-free and assumes a single
// consumer (the owning worker goroutine); Enqueue is guarded by a mutex
// because Executor.Submit is called concurrently by every facade caller
// and several submitters can land on the same worker's queue at once.

package sched

import (
	"sync"
	"sync/atomic"

	"github.com/arvokernel/evcore/api"
)

var _ api.Ring[any] = (*RingBuffer[any])(nil)

// RingBuffer is a fixed-capacity, power-of-two-sized ring buffer.
type RingBuffer[T any] struct {
	data []T
	mask uint64
	enq  sync.Mutex
	head atomic.Uint64
	_    [64]byte
	tail atomic.Uint64
	_    [64]byte
}

// NewRingBuffer allocates a ring buffer of power-of-two size.
func NewRingBuffer[T any](size uint64) *RingBuffer[T] {
	if size == 0 || size&(size-1) != 0 {
		panic("sched: ring buffer size must be a power of two")
	}
	return &RingBuffer[T]{
		data: make([]T, size),
		mask: size - 1,
	}
}

// Enqueue adds item; returns false if full. Safe for concurrent callers —
// the tail advance and the slot write it guards both happen under enq, so
// two producers racing for the same ring can never interleave their
// writes or double-claim a slot.
func (r *RingBuffer[T]) Enqueue(item T) bool {
	r.enq.Lock()
	defer r.enq.Unlock()
	head := r.head.Load()
	tail := r.tail.Load()
	if tail-head >= uint64(len(r.data)) {
		return false
	}
	r.data[tail&r.mask] = item
	r.tail.Store(tail + 1)
	return true
}

// Dequeue removes and returns item; ok is false if empty.
func (r *RingBuffer[T]) Dequeue() (T, bool) {
	head := r.head.Load()
	tail := r.tail.Load()
	if head >= tail {
		var zero T
		return zero, false
	}
	item := r.data[head&r.mask]
	r.head.Store(head + 1)
	return item, true
}

// Len returns the number of items currently buffered.
func (r *RingBuffer[T]) Len() int {
	return int(r.tail.Load() - r.head.Load())
}

// Cap returns the fixed buffer capacity.
func (r *RingBuffer[T]) Cap() int {
	return len(r.data)
}
