// Package api
// Author: momentics <momentics@gmail.com>
//
// TraceSink contract for diagnosing dropped completions.

package api

// TraceSink is a non-blocking, non-allocating trace hook. The completion
// dispatcher uses it on the weak-ref-upgrade-failure path: logging there
// must not allocate or block.
type TraceSink interface {
	// TraceDrop records that a completion was silently dropped.
	TraceDrop(kind OperationKind, reason string)
}
