// File: core/sched/executor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Executor models the kernel subsystems that drive long-running operations
// to completion (memory, IPC, IRQ — each hands its operation off to a
// worker). Each worker has a bounded local queue, with a global channel as
// fallback when a worker's local queue is full; workers optionally pin to
// a single CPU via affinity.Affinity.

package sched

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arvokernel/evcore/affinity"
	"github.com/arvokernel/evcore/api"
)

// ErrExecutorClosed is returned by Submit once Close has been called.
var ErrExecutorClosed = errors.New("sched: executor is closed")

// Executor dispatches work across worker goroutines using per-worker
// bounded local queues plus a global fallback channel.
type Executor struct {
	global  chan func()
	queues  []*RingBuffer[func()]
	workers []*worker
	stopCh  chan struct{}
	closed  atomic.Bool
	numW    atomic.Int32
	mu      sync.Mutex
	pin     bool

	submitted atomic.Int64
	completed atomic.Int64
}

var _ api.Executor = (*Executor)(nil)

// NewExecutor creates an Executor with n workers (runtime.NumCPU() if
// n<=0). When pin is true, each worker pins its OS thread to a CPU via
// affinity.SetAffinity, matching the "at most one thread per CPU runs
// kernel code at a time" assumption for the subsystem worker pool.
func NewExecutor(n int, pin bool) *Executor {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	e := &Executor{
		global: make(chan func(), n*4),
		stopCh: make(chan struct{}),
		pin:    pin,
	}
	e.numW.Store(int32(n))
	e.queues = make([]*RingBuffer[func()], n)
	e.workers = make([]*worker, n)
	for i := 0; i < n; i++ {
		e.queues[i] = NewRingBuffer[func()](1024)
	}
	for i := 0; i < n; i++ {
		w := &worker{id: i, executor: e, local: e.queues[i], stop: make(chan struct{})}
		e.workers[i] = w
		go w.run()
	}
	return e
}

// Submit implements api.Executor.
func (e *Executor) Submit(task func()) error {
	if e.closed.Load() {
		return ErrExecutorClosed
	}
	n := e.submitted.Add(1)
	idx := int(n % int64(e.NumWorkers()))
	if e.queues[idx].Enqueue(task) {
		return nil
	}
	select {
	case e.global <- task:
		return nil
	case <-e.stopCh:
		return ErrExecutorClosed
	default:
		return errors.New("sched: executor queues are full")
	}
}

// NumWorkers implements api.Executor.
func (e *Executor) NumWorkers() int { return int(e.numW.Load()) }

// Resize implements api.Executor, adding or stopping workers to reach
// newCount.
func (e *Executor) Resize(newCount int) {
	if newCount <= 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	cur := len(e.workers)
	if newCount > cur {
		for i := cur; i < newCount; i++ {
			q := NewRingBuffer[func()](1024)
			w := &worker{id: i, executor: e, local: q, stop: make(chan struct{})}
			e.queues = append(e.queues, q)
			e.workers = append(e.workers, w)
			go w.run()
		}
	} else if newCount < cur {
		for i := newCount; i < cur; i++ {
			close(e.workers[i].stop)
		}
		e.workers = e.workers[:newCount]
		e.queues = e.queues[:newCount]
	}
	e.numW.Store(int32(newCount))
}

// Stats returns basic throughput counters.
func (e *Executor) Stats() map[string]int64 {
	return map[string]int64{
		"submitted": e.submitted.Load(),
		"completed": e.completed.Load(),
		"workers":   int64(e.NumWorkers()),
	}
}

// Close shuts the executor down, signaling every worker to stop.
func (e *Executor) Close() {
	if e.closed.CompareAndSwap(false, true) {
		close(e.stopCh)
		e.mu.Lock()
		defer e.mu.Unlock()
		for _, w := range e.workers {
			close(w.stop)
		}
	}
}

type worker struct {
	id       int
	executor *Executor
	local    *RingBuffer[func()]
	stop     chan struct{}
}

func (w *worker) run() {
	if w.executor.pin {
		if err := affinity.SetAffinity(w.id % runtime.NumCPU()); err == nil {
			defer affinity.Unpin()
		}
	}
	for {
		select {
		case <-w.stop:
			return
		default:
			if task, ok := w.local.Dequeue(); ok {
				w.exec(task)
				continue
			}
			select {
			case task := <-w.executor.global:
				w.exec(task)
			case <-w.stop:
				return
			default:
				time.Sleep(time.Millisecond)
			}
		}
	}
}

func (w *worker) exec(task func()) {
	defer func() {
		recover() // a subsystem task panicking must not kill the worker
		w.executor.completed.Add(1)
	}()
	task()
}
