// File: core/timer/timer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Platform-neutral one-shot timer used by wait_for_events' positive-timeout
// path: a positive timeout installs a one-shot timer that raises a
// synthetic Irq-kind event on the hub. Platform-specific constructors live
// in timer_linux.go / timer_portable.go.

package timer

import "github.com/arvokernel/evcore/api"

// New constructs the best available api.TimerScheduler for the running
// platform: a timerfd+epoll backed one on Linux, falling back to a
// time.AfterFunc wrapper everywhere else.
func New() (api.TimerScheduler, error) {
	return newPlatformScheduler()
}
