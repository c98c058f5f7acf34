// File: adapters/affinity_adapter.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// AffinityAdapter implements api.Affinity, delegating to the affinity
// package's per-platform pthread/Win32 pinning.

package adapters

import (
	"github.com/arvokernel/evcore/affinity"
	"github.com/arvokernel/evcore/api"
)

// AffinityAdapter implements api.Affinity using the affinity package.
type AffinityAdapter struct {
	currentCPU int
	pinned     bool
}

// NewAffinityAdapter creates a new AffinityAdapter with no binding.
func NewAffinityAdapter() api.Affinity {
	return &AffinityAdapter{currentCPU: -1}
}

var _ api.Affinity = (*AffinityAdapter)(nil)

// Pin binds the calling goroutine's OS thread to cpuID.
func (a *AffinityAdapter) Pin(cpuID int) error {
	if err := affinity.SetAffinity(cpuID); err != nil {
		return err
	}
	a.currentCPU = cpuID
	a.pinned = true
	return nil
}

// Unpin releases any binding, letting the runtime migrate the goroutine.
func (a *AffinityAdapter) Unpin() error {
	if !a.pinned {
		return nil
	}
	if err := affinity.Unpin(); err != nil {
		return err
	}
	a.currentCPU = -1
	a.pinned = false
	return nil
}

// Get returns the currently bound CPU, or -1 if unbound.
func (a *AffinityAdapter) Get() (cpuID int, err error) {
	return a.currentCPU, nil
}
