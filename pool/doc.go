// Package pool
// Author: momentics <momentics@gmail.com>
//
// Generic object pooling plus the page pool standing in for the
// physical-memory subsystem's page allocation, used by subsystem.Memory's
// load path. See objpool.go, pagepool.go for implementation details.
package pool
