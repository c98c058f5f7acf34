// Package adapters
// Author: momentics <momentics@gmail.com>
//
// Control adapter implementing api.Control interface using control package primitives.

package adapters

import (
	"github.com/arvokernel/evcore/api"
	"github.com/arvokernel/evcore/control"
)

type ControlAdapter struct {
	config  *control.ConfigStore
	metrics *control.MetricsRegistry
	debug   *control.DebugProbes
}

func NewControlAdapter() *ControlAdapter {
	adapter := &ControlAdapter{
		config:  control.NewConfigStore(),
		metrics: control.NewMetricsRegistry(),
		debug:   control.NewDebugProbes(),
	}
	control.RegisterPlatformProbes(adapter.debug)
	return adapter
}

var _ api.Control = (*ControlAdapter)(nil)

func (c *ControlAdapter) GetConfig() map[string]any {
	return c.config.GetSnapshot()
}
func (c *ControlAdapter) SetConfig(cfg map[string]any) error {
	c.config.SetConfig(cfg)
	return nil
}
func (c *ControlAdapter) Stats() map[string]any {
	stats := c.metrics.GetSnapshot()
	debugStats := c.debug.DumpState()
	combined := make(map[string]any)
	for k, v := range stats {
		combined[k] = v
	}
	for k, v := range debugStats {
		combined["debug."+k] = v
	}
	return combined
}
func (c *ControlAdapter) OnReload(fn func()) {
	c.config.OnReload(fn)
}
func (c *ControlAdapter) SetMetric(key string, value any) {
	c.metrics.Set(key, value)
}
func (c *ControlAdapter) RegisterDebugProbe(name string, fn func() any) {
	c.debug.RegisterProbe(name, fn)
}

// Metrics exposes the underlying registry to the TraceAdapter, which needs
// Inc rather than the read-only api.Control surface.
func (c *ControlAdapter) Metrics() *control.MetricsRegistry {
	return c.metrics
}

// TraceAdapter implements api.TraceSink by incrementing a per-kind dropped
// completion counter in the same MetricsRegistry the facade exposes via
// Control.Stats. Each call builds the counter key by string concatenation
// and takes the registry's mutex, so it allocates and may briefly block.
type TraceAdapter struct {
	metrics *control.MetricsRegistry
}

// NewTraceAdapter wraps a ControlAdapter's metrics registry as a TraceSink.
func NewTraceAdapter(c *ControlAdapter) *TraceAdapter {
	return &TraceAdapter{metrics: c.metrics}
}

var _ api.TraceSink = (*TraceAdapter)(nil)

// TraceDrop implements api.TraceSink.
func (t *TraceAdapter) TraceDrop(kind api.OperationKind, reason string) {
	t.metrics.Inc("dropped_completions."+kind.String(), 1)
}
