// File: api/pool.go
// Author: momentics <momentics@gmail.com>
//
// Generic pooling contract satisfied by pool.SyncPool (pool.PagePool wraps
// one behind its own Acquire/Release methods).

package api

// ObjectPool provides generic pooling of Go objects allocated transiently.
type ObjectPool[T any] interface {
	// Get returns an available instance from pool
	Get() T

	// Put returns an instance for reuse
	Put(obj T)
}
