// File: core/sched/scheduler.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Scheduler is the ready-queue scheduler collaborator: it exposes
// enqueue(thread) and drives a dispatch loop that resumes them. Hub.Raise
// calls Enqueue while holding the hub lock, so the scheduler lock is always
// taken after the hub lock; the dispatch loop releases the scheduler lock
// before resuming anyone, so the reverse order never occurs.

package sched

import (
	"github.com/eapache/queue"

	"github.com/arvokernel/evcore/api"
)

// Scheduler drains a ready queue of woken threads and resumes them. In a
// real kernel, schedule() would long-jump into the chosen thread's context;
// here, resuming a parked goroutine (KThread.Resume) is that long jump, so
// the drain loop's only remaining job is FIFO-fair dispatch order and
// bounding how long the scheduler lock is held.
type Scheduler struct {
	lock  TicketLock
	ready *queue.Queue
	wake  chan struct{}
	stop  chan struct{}
}

var _ api.KernelScheduler = (*Scheduler)(nil)

// NewScheduler starts a Scheduler with its dispatch loop running.
func NewScheduler() *Scheduler {
	s := &Scheduler{
		ready: queue.New(),
		wake:  make(chan struct{}, 1),
		stop:  make(chan struct{}),
	}
	go s.run()
	return s
}

// Enqueue places t on the ready queue. Implements api.KernelScheduler.
func (s *Scheduler) Enqueue(t api.Resumable) {
	s.lock.Lock()
	s.ready.Add(t)
	s.lock.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Len reports how many threads are currently waiting to be dispatched.
func (s *Scheduler) Len() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.ready.Length()
}

func (s *Scheduler) run() {
	for {
		s.lock.Lock()
		var batch []api.Resumable
		for s.ready.Length() > 0 {
			batch = append(batch, s.ready.Remove().(api.Resumable))
		}
		s.lock.Unlock()

		for _, t := range batch {
			t.Resume()
		}

		select {
		case <-s.wake:
		case <-s.stop:
			return
		}
	}
}

// Close stops the dispatch loop. Threads already enqueued but not yet
// drained are simply never resumed — callers tear down the scheduler only
// after there is no one left waiting.
func (s *Scheduler) Close() {
	close(s.stop)
}
