// File: adapters/executor_adapter.go
// Package adapters provides glue between core/sched and api.Executor.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// ExecutorAdapter implements the api.Executor interface by delegating to
// core/sched.Executor, the worker pool standing in for the memory/IPC/IRQ
// subsystems.

package adapters

import (
	"github.com/arvokernel/evcore/api"
	"github.com/arvokernel/evcore/core/sched"
)

// ExecutorAdapter wraps a core/sched.Executor to satisfy the api.Executor
// contract.
type ExecutorAdapter struct {
	exec *sched.Executor
}

// NewExecutorAdapter constructs an api.Executor with the given number of
// worker goroutines. pin requests per-worker CPU affinity (affinity.SetAffinity).
func NewExecutorAdapter(workers int, pin bool) api.Executor {
	return &ExecutorAdapter{exec: sched.NewExecutor(workers, pin)}
}

// Submit dispatches a task function to be executed asynchronously.
func (ea *ExecutorAdapter) Submit(task func()) error {
	return ea.exec.Submit(task)
}

// NumWorkers returns the current number of active worker goroutines.
func (ea *ExecutorAdapter) NumWorkers() int {
	return ea.exec.NumWorkers()
}

// Resize dynamically adjusts the size of the worker pool.
func (ea *ExecutorAdapter) Resize(newCount int) {
	ea.exec.Resize(newCount)
}

// Close shuts down the executor, signaling all workers to exit.
func (ea *ExecutorAdapter) Close() {
	ea.exec.Close()
}

// Unwrap returns the underlying core/sched.Executor, for callers (the
// facade) that need the concrete type rather than the api.Executor
// interface — e.g. to hand it to subsystem.NewMemory.
func (ea *ExecutorAdapter) Unwrap() *sched.Executor {
	return ea.exec
}
