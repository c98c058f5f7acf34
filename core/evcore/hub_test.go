package evcore_test

import (
	"sync"
	"testing"
	"time"

	"github.com/arvokernel/evcore/api"
	"github.com/arvokernel/evcore/core/evcore"
	"github.com/arvokernel/evcore/core/sched"
	"github.com/arvokernel/evcore/core/weakref"
)

// raiseDirect locks hub, raises op, unlocks — the shape every producer in
// these tests uses instead of going through a CompletionDispatcher, since
// the tests exercise the hub in isolation.
func raiseDirect(hub *evcore.Hub, op *evcore.AsyncOperation, ks api.KernelScheduler) {
	op.Freeze()
	hub.Lock()
	hub.Raise(op, ks)
	hub.Unlock()
}

func newObserve(sinfo api.SubmitInfo) *evcore.AsyncOperation {
	return evcore.NewAsyncOperation(api.KindObserve, evcore.NewPostToHubDescriptor(weakref.WeakRef[*evcore.Hub]{}, sinfo))
}

// TestRaiseFIFOOrder checks that raises in order dequeue in the same order.
func TestRaiseFIFOOrder(t *testing.T) {
	hub := evcore.NewHub(nil)
	ks := sched.NewScheduler()
	defer ks.Close()

	for i := uint64(0); i < 10; i++ {
		op := newObserve(api.SubmitInfo{Lo: i})
		raiseDirect(hub, op, ks)
	}

	hub.Lock()
	defer hub.Unlock()
	for i := uint64(0); i < 10; i++ {
		rec := hub.Dequeue().ProjectEvent()
		if rec.SubmitInfo.Lo != i {
			t.Fatalf("FIFO order violated: expected submit_info %d, got %d", i, rec.SubmitInfo.Lo)
		}
	}
}

// TestProjectEventIsPure checks that projecting a frozen operation twice
// yields byte-identical records.
func TestProjectEventIsPure(t *testing.T) {
	op := evcore.NewAsyncOperation(api.KindMemoryLoad, evcore.NewDiscardDescriptor())
	op.SetOffsetLength(0x2000, 0x800)
	op.Freeze()

	a := op.ProjectEvent()
	b := op.ProjectEvent()
	if a != b {
		t.Fatalf("ProjectEvent not pure: %+v != %+v", a, b)
	}
}

// TestSetAfterFreezeIsFatal checks that a write after Freeze panics.
func TestSetAfterFreezeIsFatal(t *testing.T) {
	op := evcore.NewAsyncOperation(api.KindMemoryLoad, evcore.NewDiscardDescriptor())
	op.Freeze()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic writing to a frozen AsyncOperation")
		}
	}()
	op.SetOffsetLength(1, 1)
}

// TestDequeueOnEmptyIsFatal exercises the dequeue-on-empty contract
// violation.
func TestDequeueOnEmptyIsFatal(t *testing.T) {
	hub := evcore.NewHub(nil)
	hub.Lock()
	defer hub.Unlock()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic dequeuing an empty hub")
		}
	}()
	hub.Dequeue()
}

// TestProjectRingItemIsFatal checks that projecting a ring-item operation
// hits the fatal-assertion path.
func TestProjectRingItemIsFatal(t *testing.T) {
	op := evcore.NewAsyncOperation(api.KindRingItem(), evcore.NewDiscardDescriptor())
	op.Freeze()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic projecting a ring-item operation")
		}
	}()
	op.ProjectEvent()
}

// TestDeadHubDropsCleanly checks that a completion descriptor whose hub
// has been destroyed and removed from its registry causes Complete to
// return cleanly, without panicking.
func TestDeadHubDropsCleanly(t *testing.T) {
	hubs := weakref.NewRegistry[*evcore.Hub]()
	hub := evcore.NewHub(nil)
	handle := hubs.Insert(hub)
	wref := weakref.New(hubs, handle)

	hub.Lock()
	hub.Destroy()
	hub.Unlock()
	hubs.Remove(handle)

	op := evcore.NewAsyncOperation(api.KindObserve, evcore.NewPostToHubDescriptor(wref, api.SubmitInfo{}))
	ks := sched.NewScheduler()
	defer ks.Close()

	dispatcher := evcore.NewCompletionDispatcher(nil)
	dispatcher.Complete(op, ks) // must not panic
}

// TestHubDestroyReleasesAllQueued checks that destroying a hub with N
// queued operations releases exactly N.
func TestHubDestroyReleasesAllQueued(t *testing.T) {
	hub := evcore.NewHub(nil)
	ks := sched.NewScheduler()
	defer ks.Close()

	const n = 7
	for i := 0; i < n; i++ {
		raiseDirect(hub, newObserve(api.SubmitInfo{}), ks)
	}

	hub.Lock()
	released := hub.Destroy()
	hub.Unlock()

	if released != n {
		t.Fatalf("expected %d released operations, got %d", n, released)
	}
}

// TestBlockingWaiterWakesOnRaise checks that a thread blocked on an empty
// hub wakes once another goroutine raises onto it.
func TestBlockingWaiterWakesOnRaise(t *testing.T) {
	hub := evcore.NewHub(nil)
	ks := sched.NewScheduler()
	defer ks.Close()

	thread := sched.NewKThread(1)
	woke := make(chan struct{})

	go func() {
		hub.Lock()
		for !hub.HasEvent() {
			hub.BlockCurrent(thread)
		}
		rec := hub.Dequeue().ProjectEvent()
		hub.Unlock()
		if rec.Offset != 0x1000 || rec.Length != 0x400 {
			t.Errorf("unexpected record: %+v", rec)
		}
		close(woke)
	}()

	time.Sleep(20 * time.Millisecond) // give the waiter a chance to block

	op := evcore.NewAsyncOperation(api.KindMemoryLoad, evcore.NewDiscardDescriptor())
	op.SetOffsetLength(0x1000, 0x400)
	raiseDirect(hub, op, ks)

	select {
	case <-woke:
	case <-time.After(2 * time.Second):
		t.Fatal("waiter never woke up")
	}
}

// TestMultipleWaitersBothDrained checks that raise drains every waiter to
// the ready queue, not just one.
func TestMultipleWaitersBothDrained(t *testing.T) {
	hub := evcore.NewHub(nil)
	ks := sched.NewScheduler()
	defer ks.Close()

	var wg sync.WaitGroup

	// Each waiter blocks at most once: raise drains every waiter to the
	// ready queue, but only whichever runs first still finds an event to
	// dequeue — the other must not be required to find one.
	for i := 0; i < 2; i++ {
		wg.Add(1)
		id := uint64(i + 1)
		go func() {
			defer wg.Done()
			thread := sched.NewKThread(id)
			hub.Lock()
			if !hub.HasEvent() {
				hub.BlockCurrent(thread)
			}
			if hub.HasEvent() {
				hub.Dequeue()
			}
			hub.Unlock()
		}()
	}

	time.Sleep(20 * time.Millisecond)

	op := evcore.NewAsyncOperation(api.KindObserve, evcore.NewDiscardDescriptor())
	raiseDirect(hub, op, ks)

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("not every waiter was resumed after a single raise")
	}
}

// TestDestroyResumesBlockedWaiter checks that a thread parked in
// BlockCurrent when the hub is destroyed is resumed rather than leaked —
// Destroy must not just drop the waiter list on the floor.
func TestDestroyResumesBlockedWaiter(t *testing.T) {
	hub := evcore.NewHub(nil)
	thread := sched.NewKThread(1)
	returned := make(chan struct{})

	go func() {
		hub.Lock()
		hub.BlockCurrent(thread)
		hub.Unlock()
		close(returned)
	}()

	time.Sleep(20 * time.Millisecond) // give the waiter a chance to block

	hub.Lock()
	hub.Destroy()
	hub.Unlock()

	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("blocked waiter was never resumed by Destroy")
	}
}

// TestFIFOAcrossKinds checks FIFO ordering is preserved across different
// operation kinds sharing one hub.
func TestFIFOAcrossKinds(t *testing.T) {
	hub := evcore.NewHub(nil)
	ks := sched.NewScheduler()
	defer ks.Close()

	load := evcore.NewAsyncOperation(api.KindMemoryLoad, evcore.NewDiscardDescriptor())
	load.SetOffsetLength(0, 0)
	raiseDirect(hub, load, ks)

	send := evcore.NewAsyncOperation(api.KindSendString, evcore.NewDiscardDescriptor())
	send.SetError(api.ErrClosedRemotely)
	raiseDirect(hub, send, ks)

	accept := evcore.NewAsyncOperation(api.KindAccept, evcore.NewDiscardDescriptor())
	accept.SetHandle(42)
	raiseDirect(hub, accept, ks)

	hub.Lock()
	defer hub.Unlock()

	r1 := hub.Dequeue().ProjectEvent()
	r2 := hub.Dequeue().ProjectEvent()
	r3 := hub.Dequeue().ProjectEvent()

	if r1.Kind != api.KindMemoryLoad || r2.Kind != api.KindSendString || r3.Kind != api.KindAccept {
		t.Fatalf("unexpected kind order: %s, %s, %s", r1.Kind, r2.Kind, r3.Kind)
	}
	if r2.Error != api.ErrClosedRemotely {
		t.Fatalf("expected closed_remotely, got %s", r2.Error)
	}
	if r3.Handle != 42 {
		t.Fatalf("expected handle 42, got %d", r3.Handle)
	}
}
