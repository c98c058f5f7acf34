package sched

import (
	"sync"
	"testing"
)

// TestRingBufferConcurrentEnqueueNoLoss drives many goroutines enqueueing
// concurrently into one ring, then drains it from a single consumer and
// checks every item arrived exactly once.
func TestRingBufferConcurrentEnqueueNoLoss(t *testing.T) {
	const producers = 8
	const perProducer = 200
	r := NewRingBuffer[int](4096)

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				for !r.Enqueue(base + i) {
				}
			}
		}(p * perProducer)
	}
	wg.Wait()

	seen := make(map[int]bool, producers*perProducer)
	for i := 0; i < producers*perProducer; i++ {
		item, ok := r.Dequeue()
		if !ok {
			t.Fatalf("expected %d items, ring ran dry after %d", producers*perProducer, i)
		}
		if seen[item] {
			t.Fatalf("item %d delivered more than once", item)
		}
		seen[item] = true
	}
	if _, ok := r.Dequeue(); ok {
		t.Fatal("expected ring to be empty after draining all produced items")
	}
}
