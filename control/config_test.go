package control

import "testing"

func TestConfigStoreBool(t *testing.T) {
	cs := NewConfigStore()
	if cs.Bool(MetricsEnabledKey) {
		t.Fatal("expected false before SetConfig")
	}
	cs.SetConfig(map[string]any{MetricsEnabledKey: true})
	if !cs.Bool(MetricsEnabledKey) {
		t.Fatal("expected true after SetConfig")
	}
	cs.SetConfig(map[string]any{MetricsEnabledKey: "not a bool"})
	if cs.Bool(MetricsEnabledKey) {
		t.Fatal("expected false for a non-bool value")
	}
}
