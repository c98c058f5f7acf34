package facade_test

import (
	"testing"
	"time"

	"github.com/arvokernel/evcore/api"
	"github.com/arvokernel/evcore/facade"
)

func newTestKernel(t *testing.T) *facade.Kernel {
	t.Helper()
	k, err := facade.New(facade.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := k.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { k.Stop() })
	return k
}

// TestPolledDequeue checks poll-only draining with no timeout.
func TestPolledDequeue(t *testing.T) {
	k := newTestKernel(t)

	hub, serr := k.CreateEventHub()
	if serr != nil {
		t.Fatal(serr)
	}
	if _, serr := k.SubmitObserve(hub, api.SubmitInfo{Lo: 0xA}, nil); serr != nil {
		t.Fatal(serr)
	}

	time.Sleep(20 * time.Millisecond)

	out := make([]api.EventRecord, 4)
	n, serr := k.WaitForEvents(hub, out, 4, 0)
	if serr != nil {
		t.Fatal(serr)
	}
	if n != 1 {
		t.Fatalf("expected count=1, got %d", n)
	}
	rec := out[0]
	if rec.Kind != api.KindObserve || rec.Error != api.OperationSuccess || rec.SubmitInfo.Lo != 0xA {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.Offset != 0 || rec.Length != 0 || rec.Handle != 0 {
		t.Fatalf("expected zeroed payload, got %+v", rec)
	}

	n, serr = k.WaitForEvents(hub, out, 4, 0)
	if serr != nil {
		t.Fatal(serr)
	}
	if n != 0 {
		t.Fatalf("expected second poll to return count=0, got %d", n)
	}
}

// TestWaitForEventsMaxZero checks max=0 always returns count 0
// regardless of queue state.
func TestWaitForEventsMaxZero(t *testing.T) {
	k := newTestKernel(t)
	hub, serr := k.CreateEventHub()
	if serr != nil {
		t.Fatal(serr)
	}
	if _, serr := k.SubmitObserve(hub, api.SubmitInfo{}, nil); serr != nil {
		t.Fatal(serr)
	}
	time.Sleep(20 * time.Millisecond)

	n, serr := k.WaitForEvents(hub, nil, 0, int64(time.Second))
	if serr != nil {
		t.Fatal(serr)
	}
	if n != 0 {
		t.Fatalf("expected count=0 for max=0 regardless of queue state, got %d", n)
	}
}

// TestBlockingWaitWithConcurrentSubmit checks a blocking wait that wakes
// once a concurrent submit completes.
func TestBlockingWaitWithConcurrentSubmit(t *testing.T) {
	k := newTestKernel(t)
	hub, serr := k.CreateEventHub()
	if serr != nil {
		t.Fatal(serr)
	}

	go func() {
		time.Sleep(30 * time.Millisecond)
		k.SubmitMemoryLoad(hub, api.SubmitInfo{Lo: 0xB}, 0x1000, 0x400, nil)
	}()

	out := make([]api.EventRecord, 1)
	n, serr := k.WaitForEvents(hub, out, 1, int64(5*time.Second))
	if serr != nil {
		t.Fatal(serr)
	}
	if n != 1 {
		t.Fatalf("expected count=1, got %d", n)
	}
	rec := out[0]
	if rec.Offset != 0x1000 || rec.Length != 0x400 || rec.SubmitInfo.Lo != 0xB {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

// TestWaitForEventsUnknownHandle exercises the no_such_handle syscall error.
func TestWaitForEventsUnknownHandle(t *testing.T) {
	k := newTestKernel(t)
	out := make([]api.EventRecord, 1)
	_, serr := k.WaitForEvents(999, out, 1, 0)
	if serr == nil || serr.Code != api.ErrNoSuchHandle {
		t.Fatalf("expected no_such_handle, got %v", serr)
	}
}

// TestCloseEventHubReleasesQueued checks that closing a hub releases
// every queued operation, driven through the facade rather than the hub
// directly.
func TestCloseEventHubReleasesQueued(t *testing.T) {
	k := newTestKernel(t)
	hub, serr := k.CreateEventHub()
	if serr != nil {
		t.Fatal(serr)
	}
	for i := 0; i < 3; i++ {
		if _, serr := k.SubmitObserve(hub, api.SubmitInfo{}, nil); serr != nil {
			t.Fatal(serr)
		}
	}
	time.Sleep(20 * time.Millisecond)

	released, serr := k.CloseEventHub(hub)
	if serr != nil {
		t.Fatal(serr)
	}
	if released != 3 {
		t.Fatalf("expected 3 released operations, got %d", released)
	}

	if _, serr := k.CloseEventHub(hub); serr == nil || serr.Code != api.ErrNoSuchHandle {
		t.Fatalf("expected no_such_handle closing an already-closed hub, got %v", serr)
	}
}
