// File: pool/pagepool.go
// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT
//
// PagePool stands in for the physical-memory layer that exposes page
// allocation to the rest of the core. subsystem.Memory's HandleLoad
// callback may use it to back a page-in with a real fixed-size buffer
// instead of a no-op, without the memory subsystem needing to know how
// pages are actually sourced.

package pool

// PageSize is the fixed page granularity pages are allocated in.
const PageSize = 4096

// PagePool hands out and reclaims fixed-size page buffers, backed by the
// generic SyncPool above.
type PagePool struct {
	pages *SyncPool[*[PageSize]byte]
}

// NewPagePool constructs a PagePool.
func NewPagePool() *PagePool {
	return &PagePool{
		pages: NewSyncPool(func() *[PageSize]byte {
			return new([PageSize]byte)
		}),
	}
}

// Acquire returns a page, zeroing it first — page-in must never leak a
// prior tenant's contents to the requesting operation.
func (p *PagePool) Acquire() *[PageSize]byte {
	page := p.pages.Get()
	for i := range page {
		page[i] = 0
	}
	return page
}

// Release returns a page to the pool.
func (p *PagePool) Release(page *[PageSize]byte) {
	p.pages.Put(page)
}
