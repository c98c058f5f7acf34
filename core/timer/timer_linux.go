//go:build linux
// +build linux

// File: core/timer/timer_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux timerfd+epoll one-shot timer: a single epoll instance backs every
// scheduled timer, each represented by its own timerfd so Cancel is just an
// EPOLL_CTL_DEL plus close, no timer-wheel bookkeeping of our own.

package timer

import (
	"errors"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/arvokernel/evcore/api"
)

// LinuxScheduler implements api.TimerScheduler using one timerfd per
// scheduled callback, multiplexed on a single epoll instance.
type LinuxScheduler struct {
	epfd int

	mu      sync.Mutex
	pending map[int]*linuxCancelable

	closeCh chan struct{}
}

func newPlatformScheduler() (api.TimerScheduler, error) {
	epfd, err := unix.EpollCreate1(0)
	if err != nil {
		return nil, err
	}
	s := &LinuxScheduler{
		epfd:    epfd,
		pending: make(map[int]*linuxCancelable),
		closeCh: make(chan struct{}),
	}
	go s.loop()
	return s, nil
}

// Schedule implements api.TimerScheduler.
func (s *LinuxScheduler) Schedule(delayNanos int64, fn func()) (api.Cancelable, error) {
	if delayNanos < 0 {
		return nil, errors.New("timer: negative delay")
	}

	fd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, 0)
	if err != nil {
		return nil, err
	}
	spec := unix.ItimerSpec{Value: unix.NsecToTimespec(delayNanos)}
	if err := unix.TimerfdSettime(fd, 0, &spec, nil); err != nil {
		unix.Close(fd)
		return nil, err
	}

	c := &linuxCancelable{fd: fd, done: make(chan struct{}), fn: fn, sched: s}

	s.mu.Lock()
	s.pending[fd] = c
	s.mu.Unlock()

	ev := &unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
	if err := unix.EpollCtl(s.epfd, unix.EPOLL_CTL_ADD, fd, ev); err != nil {
		s.mu.Lock()
		delete(s.pending, fd)
		s.mu.Unlock()
		unix.Close(fd)
		return nil, err
	}
	return c, nil
}

// Cancel implements api.TimerScheduler.
func (s *LinuxScheduler) Cancel(c api.Cancelable) error {
	lc, ok := c.(*linuxCancelable)
	if !ok {
		return errors.New("timer: foreign Cancelable")
	}
	return lc.Cancel()
}

// Now implements api.TimerScheduler.
func (s *LinuxScheduler) Now() int64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return 0
	}
	return ts.Nano()
}

// Close stops the epoll loop. Timers still pending are never fired.
func (s *LinuxScheduler) Close() error {
	close(s.closeCh)
	return unix.Close(s.epfd)
}

func (s *LinuxScheduler) loop() {
	events := make([]unix.EpollEvent, 16)
	for {
		n, err := unix.EpollWait(s.epfd, events, 500)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			select {
			case <-s.closeCh:
				return
			default:
				continue
			}
		}
		for i := 0; i < n; i++ {
			fd := int(events[i].Fd)
			s.mu.Lock()
			c, ok := s.pending[fd]
			if ok {
				delete(s.pending, fd)
			}
			s.mu.Unlock()
			if !ok {
				continue
			}
			var buf [8]byte
			unix.Read(fd, buf[:])
			unix.EpollCtl(s.epfd, unix.EPOLL_CTL_DEL, fd, nil)
			unix.Close(fd)
			c.fire()
		}
		select {
		case <-s.closeCh:
			return
		default:
		}
	}
}

type linuxCancelable struct {
	fd    int
	done  chan struct{}
	fn    func()
	sched *LinuxScheduler

	mu       sync.Mutex
	fired    bool
	canceled bool
}

func (c *linuxCancelable) fire() {
	c.mu.Lock()
	if c.canceled || c.fired {
		c.mu.Unlock()
		return
	}
	c.fired = true
	c.mu.Unlock()
	c.fn()
	close(c.done)
}

func (c *linuxCancelable) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fired || c.canceled {
		return nil
	}
	c.canceled = true
	c.sched.mu.Lock()
	delete(c.sched.pending, c.fd)
	c.sched.mu.Unlock()
	unix.EpollCtl(c.sched.epfd, unix.EPOLL_CTL_DEL, c.fd, nil)
	unix.Close(c.fd)
	close(c.done)
	return nil
}

func (c *linuxCancelable) Done() <-chan struct{} { return c.done }

func (c *linuxCancelable) Err() error {
	select {
	case <-c.done:
		return nil
	default:
		return errors.New("timer: not yet fired")
	}
}
