// File: facade/kernel.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Kernel aggregates the async event-delivery core behind a single facade:
// one immutable Config drives construction, and every syscall
// (create_event_hub, submit_*, wait_for_events) is exposed as a method.

package facade

import (
	"log"
	"sync"
	"sync/atomic"

	"github.com/arvokernel/evcore/adapters"
	"github.com/arvokernel/evcore/api"
	"github.com/arvokernel/evcore/control"
	"github.com/arvokernel/evcore/core/evcore"
	"github.com/arvokernel/evcore/core/sched"
	"github.com/arvokernel/evcore/core/timer"
	"github.com/arvokernel/evcore/core/weakref"
	"github.com/arvokernel/evcore/pool"
	"github.com/arvokernel/evcore/subsystem"
)

// Config holds parameters immutable per run.
type Config struct {
	NumWorkers    int  // worker goroutines driving memory/IPC operations to completion
	PinWorkers    bool // whether to pin each worker to a CPU via affinity.SetAffinity
	EnableMetrics bool // recorded as control.MetricsEnabledKey; Control.Stats reports dropped-completion counters either way
	EnableDebug   bool // whether the kernel.* debug probes are registered (platform.* probes always are)
}

// DefaultConfig returns sane defaults.
func DefaultConfig() *Config {
	return &Config{
		NumWorkers:    4,
		PinWorkers:    false,
		EnableMetrics: true,
		EnableDebug:   true,
	}
}

// Kernel is the facade over the async event-delivery core.
type Kernel struct {
	config *Config

	control *adapters.ControlAdapter
	tracer  api.TraceSink

	hubs    *weakref.Registry[*evcore.Hub]
	threads *weakref.Registry[api.Resumable]

	scheduler *sched.Scheduler
	executor  *sched.Executor
	timer     api.TimerScheduler

	dispatcher *evcore.CompletionDispatcher
	pages      *pool.PagePool
	memory     *subsystem.Memory
	ipc        *subsystem.IPC
	irq        *subsystem.IRQ

	nextTicket atomic.Uint64
	nextThread atomic.Uint64

	mu      sync.RWMutex
	started bool
}

var _ api.GracefulShutdown = (*Kernel)(nil)

// New constructs a Kernel with the given configuration.
func New(cfg *Config) (*Kernel, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	k := &Kernel{config: cfg}

	k.control = adapters.NewControlAdapter()
	k.tracer = adapters.NewTraceAdapter(k.control)

	k.hubs = weakref.NewRegistry[*evcore.Hub]()
	k.threads = weakref.NewRegistry[api.Resumable]()

	k.scheduler = sched.NewScheduler()
	k.executor = sched.NewExecutor(cfg.NumWorkers, cfg.PinWorkers)

	ts, err := timer.New()
	if err != nil {
		return nil, err
	}
	k.timer = ts

	k.dispatcher = evcore.NewCompletionDispatcher(k.tracer)
	k.pages = pool.NewPagePool()
	k.memory = subsystem.NewMemory(k.executor, k.dispatcher, k.scheduler, k.pages)
	k.ipc = subsystem.NewIPC(k.executor, k.dispatcher, k.scheduler)
	k.irq = subsystem.NewIRQ(k.dispatcher, k.scheduler)

	if cfg.EnableMetrics {
		k.control.SetConfig(map[string]any{control.MetricsEnabledKey: true})
	}
	if cfg.EnableDebug {
		k.control.SetConfig(map[string]any{control.DebugProbesEnabledKey: true})
		k.registerKernelProbes()
	}
	k.control.SetConfig(map[string]any{control.ExecutorWorkersKey: cfg.NumWorkers})
	return k, nil
}

// Start marks the kernel as running. Idempotent.
func (k *Kernel) Start() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.started {
		return nil
	}
	k.started = true
	return nil
}

// Stop tears the kernel's worker pool and scheduler down. Idempotent.
func (k *Kernel) Stop() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if !k.started {
		return nil
	}
	k.executor.Close()
	k.scheduler.Close()
	if closer, ok := k.timer.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			log.Printf("[facade] timer close: %v", err)
		}
	}
	k.started = false
	return nil
}

// Shutdown implements api.GracefulShutdown.
func (k *Kernel) Shutdown() error { return k.Stop() }

// Control exposes the dynamic config/metrics/debug surface.
func (k *Kernel) Control() api.Control { return k.control }

// registerKernelProbes wires the kernel's own live counters into the
// generic debug registry control.DebugProbes exposes, so Control.Stats
// reports hub/thread/executor occupancy without DebugProbes needing to
// know what a Hub or a Scheduler is.
func (k *Kernel) registerKernelProbes() {
	k.control.RegisterDebugProbe("kernel.hubs", func() any { return k.hubs.Len() })
	k.control.RegisterDebugProbe("kernel.forked_threads", func() any { return k.threads.Len() })
	k.control.RegisterDebugProbe("kernel.scheduler_ready", func() any { return k.scheduler.Len() })
	k.control.RegisterDebugProbe("kernel.executor", func() any { return k.executor.Stats() })
}

// CreateEventHub implements the create_event_hub syscall: (error, handle).
func (k *Kernel) CreateEventHub() (uint64, *api.SyscallError) {
	hub := evcore.NewHub(k.tracer)
	handle := k.hubs.Insert(hub)
	return handle, nil
}

// CloseEventHub destroys the hub addressed by handle, releasing every
// queued operation and removing it from the handle table so later
// completions targeting it harmlessly fail to upgrade.
func (k *Kernel) CloseEventHub(handle uint64) (releasedCount int, serr *api.SyscallError) {
	hub, ok := k.hubs.Lookup(handle)
	if !ok {
		return 0, api.ErrHandleNotFound
	}
	hub.Lock()
	n := hub.Destroy()
	hub.Unlock()
	k.hubs.Remove(handle)
	return n, nil
}

func (k *Kernel) resolveHub(handle uint64) (*evcore.Hub, weakref.WeakRef[*evcore.Hub], *api.SyscallError) {
	wref := weakref.New(k.hubs, handle)
	hub, ok := wref.Upgrade()
	if !ok {
		return nil, wref, api.ErrHandleNotFound
	}
	return hub, wref, nil
}

func (k *Kernel) newTicket() uint64 { return k.nextTicket.Add(1) }

// WaitForEvents implements the wait_for_events syscall: drain up to max
// completions from hub, blocking up to timeoutNanos if it is empty. A
// non-positive timeout means poll-only; max=0 always returns immediately
// with count 0 regardless of queue state.
func (k *Kernel) WaitForEvents(handle uint64, out []api.EventRecord, max int, timeoutNanos int64) (int, *api.SyscallError) {
	if max == 0 {
		return 0, nil
	}
	if len(out) < max {
		return 0, api.ErrOutBufferTooSmall
	}
	hub, wref, serr := k.resolveHub(handle)
	if serr != nil {
		return 0, serr
	}

	var timerHandle api.Cancelable
	if timeoutNanos > 0 {
		c, err := k.timer.Schedule(timeoutNanos, func() {
			op := evcore.NewAsyncOperation(api.KindIrq, evcore.NewPostToHubDescriptor(wref, api.SubmitInfo{}))
			k.irq.Raise(op)
		})
		if err == nil {
			timerHandle = c
		} else {
			log.Printf("[facade] timer schedule failed: %v", err)
		}
	}

	thread := sched.NewKThread(k.nextThread.Add(1))

	hub.Lock()
	for {
		if hub.HasEvent() {
			n := 0
			for n < max && hub.HasEvent() {
				out[n] = hub.Dequeue().ProjectEvent()
				n++
			}
			hub.Unlock()
			if timerHandle != nil {
				_ = k.timer.Cancel(timerHandle)
			}
			return n, nil
		}
		if timeoutNanos <= 0 {
			hub.Unlock()
			return 0, nil
		}
		hub.BlockCurrent(thread)
		// hub lock held again here; loop rechecks HasEvent.
	}
}

// SubmitMemoryLock implements submit_memory_lock: the page-reservation
// phase of a load.
func (k *Kernel) SubmitMemoryLock(hub uint64, sinfo api.SubmitInfo, lockFn func() error) (uint64, *api.SyscallError) {
	_, wref, serr := k.resolveHub(hub)
	if serr != nil {
		return 0, serr
	}
	ticket := k.newTicket()
	op := evcore.NewAsyncOperation(api.KindMemoryLock, evcore.NewPostToHubDescriptor(wref, sinfo))
	if err := k.memory.InitiateLoad(op, lockFn); err != nil {
		return 0, api.ErrOutBufferTooSmall
	}
	return ticket, nil
}

// SubmitMemoryLoad implements submit_memory_load: the data-transfer phase
// of a load.
func (k *Kernel) SubmitMemoryLoad(hub uint64, sinfo api.SubmitInfo, offset, length uint64, loadFn func(offset, length uint64) error) (uint64, *api.SyscallError) {
	_, wref, serr := k.resolveHub(hub)
	if serr != nil {
		return 0, serr
	}
	ticket := k.newTicket()
	op := evcore.NewAsyncOperation(api.KindMemoryLoad, evcore.NewPostToHubDescriptor(wref, sinfo))
	if err := k.memory.HandleLoad(op, offset, length, loadFn); err != nil {
		return 0, api.ErrOutBufferTooSmall
	}
	return ticket, nil
}

// SubmitObserve implements submit_observe.
func (k *Kernel) SubmitObserve(hub uint64, sinfo api.SubmitInfo, waitFn func()) (uint64, *api.SyscallError) {
	return k.submitObserveLike(api.KindObserve, hub, sinfo, waitFn)
}

// SubmitJoin implements submit_join.
func (k *Kernel) SubmitJoin(hub uint64, sinfo api.SubmitInfo, waitFn func()) (uint64, *api.SyscallError) {
	return k.submitObserveLike(api.KindJoin, hub, sinfo, waitFn)
}

func (k *Kernel) submitObserveLike(kind api.OperationKind, hub uint64, sinfo api.SubmitInfo, waitFn func()) (uint64, *api.SyscallError) {
	_, wref, serr := k.resolveHub(hub)
	if serr != nil {
		return 0, serr
	}
	ticket := k.newTicket()
	op := evcore.NewAsyncOperation(kind, evcore.NewPostToHubDescriptor(wref, sinfo))
	if err := k.ipc.Observe(op, waitFn); err != nil {
		return 0, api.ErrOutBufferTooSmall
	}
	return ticket, nil
}

// SubmitSendString implements submit_send_string.
func (k *Kernel) SubmitSendString(hub uint64, sinfo api.SubmitInfo, sendFn func() api.OperationErrorCode) (uint64, *api.SyscallError) {
	return k.submitSendLike(api.KindSendString, hub, sinfo, sendFn)
}

// SubmitSendDescriptor implements submit_send_descriptor.
func (k *Kernel) SubmitSendDescriptor(hub uint64, sinfo api.SubmitInfo, sendFn func() api.OperationErrorCode) (uint64, *api.SyscallError) {
	return k.submitSendLike(api.KindSendDescriptor, hub, sinfo, sendFn)
}

func (k *Kernel) submitSendLike(kind api.OperationKind, hub uint64, sinfo api.SubmitInfo, sendFn func() api.OperationErrorCode) (uint64, *api.SyscallError) {
	_, wref, serr := k.resolveHub(hub)
	if serr != nil {
		return 0, serr
	}
	ticket := k.newTicket()
	op := evcore.NewAsyncOperation(kind, evcore.NewPostToHubDescriptor(wref, sinfo))
	if err := k.ipc.Send(op, sendFn); err != nil {
		return 0, api.ErrOutBufferTooSmall
	}
	return ticket, nil
}

// SubmitRecvString implements submit_recv_string.
func (k *Kernel) SubmitRecvString(hub uint64, sinfo api.SubmitInfo, recvFn func() (int64, int64, uint64, api.OperationErrorCode)) (uint64, *api.SyscallError) {
	_, wref, serr := k.resolveHub(hub)
	if serr != nil {
		return 0, serr
	}
	ticket := k.newTicket()
	op := evcore.NewAsyncOperation(api.KindRecvString, evcore.NewPostToHubDescriptor(wref, sinfo))
	if err := k.ipc.Recv(op, recvFn); err != nil {
		return 0, api.ErrOutBufferTooSmall
	}
	return ticket, nil
}

// SubmitRecvStringToRing implements submit_recv_string_to_ring.
func (k *Kernel) SubmitRecvStringToRing(hub uint64, sinfo api.SubmitInfo, recvFn func() (int64, int64, uint64, uint64, api.OperationErrorCode)) (uint64, *api.SyscallError) {
	_, wref, serr := k.resolveHub(hub)
	if serr != nil {
		return 0, serr
	}
	ticket := k.newTicket()
	op := evcore.NewAsyncOperation(api.KindRecvStringToRing, evcore.NewPostToHubDescriptor(wref, sinfo))
	if err := k.ipc.RecvToRing(op, recvFn); err != nil {
		return 0, api.ErrOutBufferTooSmall
	}
	return ticket, nil
}

// SubmitRecvDescriptor implements submit_recv_descriptor.
func (k *Kernel) SubmitRecvDescriptor(hub uint64, sinfo api.SubmitInfo, recvFn func() (int64, int64, uint64, api.OperationErrorCode)) (uint64, *api.SyscallError) {
	_, wref, serr := k.resolveHub(hub)
	if serr != nil {
		return 0, serr
	}
	ticket := k.newTicket()
	op := evcore.NewAsyncOperation(api.KindRecvDescriptor, evcore.NewPostToHubDescriptor(wref, sinfo))
	if err := k.ipc.RecvDescriptor(op, recvFn); err != nil {
		return 0, api.ErrOutBufferTooSmall
	}
	return ticket, nil
}

// SubmitAccept implements submit_accept.
func (k *Kernel) SubmitAccept(hub uint64, sinfo api.SubmitInfo, acceptFn func() uint64) (uint64, *api.SyscallError) {
	_, wref, serr := k.resolveHub(hub)
	if serr != nil {
		return 0, serr
	}
	ticket := k.newTicket()
	op := evcore.NewAsyncOperation(api.KindAccept, evcore.NewPostToHubDescriptor(wref, sinfo))
	if err := k.ipc.Accept(op, acceptFn); err != nil {
		return 0, api.ErrOutBufferTooSmall
	}
	return ticket, nil
}

// SubmitConnect implements submit_connect.
func (k *Kernel) SubmitConnect(hub uint64, sinfo api.SubmitInfo, connectFn func() uint64) (uint64, *api.SyscallError) {
	_, wref, serr := k.resolveHub(hub)
	if serr != nil {
		return 0, serr
	}
	ticket := k.newTicket()
	op := evcore.NewAsyncOperation(api.KindConnect, evcore.NewPostToHubDescriptor(wref, sinfo))
	if err := k.ipc.Connect(op, connectFn); err != nil {
		return 0, api.ErrOutBufferTooSmall
	}
	return ticket, nil
}

// SubmitIrq implements submit_irq — typically called from an interrupt
// handler's own goroutine, never the worker pool.
func (k *Kernel) SubmitIrq(hub uint64, sinfo api.SubmitInfo) (uint64, *api.SyscallError) {
	_, wref, serr := k.resolveHub(hub)
	if serr != nil {
		return 0, serr
	}
	ticket := k.newTicket()
	op := evcore.NewAsyncOperation(api.KindIrq, evcore.NewPostToHubDescriptor(wref, sinfo))
	k.irq.Raise(op)
	return ticket, nil
}

// RegisterForkedThread makes t eligible to be resumed directly by a
// ResumeForkedThread completion, distinct from the hub-based wait above.
func (k *Kernel) RegisterForkedThread(t api.Resumable) uint64 {
	return k.threads.Insert(t)
}

// SubmitForkedJoin constructs a Join-kind operation whose completion
// resumes the registered forked thread directly, bypassing any event hub.
func (k *Kernel) SubmitForkedJoin(threadHandle uint64) (uint64, *api.SyscallError) {
	wref := weakref.New(k.threads, threadHandle)
	if _, ok := wref.Upgrade(); !ok {
		return 0, api.ErrHandleNotFound
	}
	ticket := k.newTicket()
	op := evcore.NewAsyncOperation(api.KindJoin, evcore.NewResumeForkedThreadDescriptor(wref))
	k.dispatcher.Complete(op, k.scheduler)
	return ticket, nil
}
