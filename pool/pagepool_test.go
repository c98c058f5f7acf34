package pool_test

import (
	"testing"

	"github.com/arvokernel/evcore/pool"
)

func TestPagePoolZeroesOnAcquire(t *testing.T) {
	p := pool.NewPagePool()
	page := p.Acquire()
	page[0] = 0xFF
	page[pool.PageSize-1] = 0xAA
	p.Release(page)

	again := p.Acquire()
	for i, b := range again {
		if b != 0 {
			t.Fatalf("expected zeroed page at index %d, got %x", i, b)
		}
	}
}

func TestObjectPoolRoundtrip(t *testing.T) {
	created := 0
	sp := pool.NewSyncPool(func() int {
		created++
		return created
	})
	v := sp.Get()
	sp.Put(v)
	if got := sp.Get(); got != v {
		t.Fatalf("expected reused value %d, got %d", v, got)
	}
}
