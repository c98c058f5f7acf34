// File: api/control.go
// Package api defines Control interface.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Control manages the kernel facade's dynamic config and runtime metrics:
// the metrics.enabled/debug.enabled/executor.workers keys control/config.go
// names, the dropped-completion counters TraceSink feeds, and the
// kernel.hubs/kernel.scheduler_ready/kernel.executor debug probes the
// facade registers at startup when debug.enabled is set.
type Control interface {
	GetConfig() map[string]any
	SetConfig(cfg map[string]any) error
	Stats() map[string]any
	OnReload(fn func())
	RegisterDebugProbe(name string, fn func() any)
}
