//go:build !linux
// +build !linux

// File: core/timer/timer_portable.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Portable one-shot timer built on time.AfterFunc, used wherever the
// timerfd+epoll path of timer_linux.go is unavailable.

package timer

import (
	"errors"
	"sync"
	"time"

	"github.com/arvokernel/evcore/api"
)

// PortableScheduler implements api.TimerScheduler with the stdlib's own
// timer wheel — the honest choice when the platform offers nothing closer
// to the kernel's own one-shot IRQ timer.
type PortableScheduler struct {
	start time.Time
}

func newPlatformScheduler() (api.TimerScheduler, error) {
	return &PortableScheduler{start: time.Now()}, nil
}

// Schedule implements api.TimerScheduler.
func (s *PortableScheduler) Schedule(delayNanos int64, fn func()) (api.Cancelable, error) {
	if delayNanos < 0 {
		return nil, errors.New("timer: negative delay")
	}
	c := &portableCancelable{done: make(chan struct{})}
	c.timer = time.AfterFunc(time.Duration(delayNanos), func() {
		fn()
		close(c.done)
	})
	return c, nil
}

// Cancel implements api.TimerScheduler.
func (s *PortableScheduler) Cancel(c api.Cancelable) error {
	pc, ok := c.(*portableCancelable)
	if !ok {
		return errors.New("timer: foreign Cancelable")
	}
	return pc.Cancel()
}

// Now implements api.TimerScheduler.
func (s *PortableScheduler) Now() int64 {
	return time.Since(s.start).Nanoseconds()
}

type portableCancelable struct {
	timer     *time.Timer
	done      chan struct{}
	mu        sync.Mutex
	cancelled bool
}

func (c *portableCancelable) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelled {
		return nil
	}
	c.cancelled = true
	if c.timer.Stop() {
		close(c.done)
	}
	return nil
}

func (c *portableCancelable) Done() <-chan struct{} { return c.done }

func (c *portableCancelable) Err() error {
	select {
	case <-c.done:
		return nil
	default:
		return errors.New("timer: not yet fired")
	}
}
