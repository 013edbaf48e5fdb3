//go:build linux

package reactor

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// Timer is a one-shot monotonic timer backed by a timerfd. Its fd becomes
// readable when the timer expires, so it registers with a Poller like any
// other source, and unlike time.Timer its remaining time can be read back
// without disturbing it.
type Timer struct {
	fd int
}

// NewTimer creates a disarmed nonblocking timer on CLOCK_MONOTONIC.
func NewTimer() (*Timer, error) {
	fd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, unix.TFD_NONBLOCK|unix.TFD_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("timerfd_create: %w", err)
	}
	return &Timer{fd: fd}, nil
}

// Set arms the timer to fire once after d. A zero timerfd value would
// disarm the timer instead of firing, so non-positive durations are
// clamped to the minimum representable delay.
func (t *Timer) Set(d time.Duration) error {
	ns := d.Nanoseconds()
	if ns <= 0 {
		ns = 1
	}
	spec := unix.ItimerSpec{Value: unix.NsecToTimespec(ns)}
	if err := unix.TimerfdSettime(t.fd, 0, &spec, nil); err != nil {
		return fmt.Errorf("timerfd_settime: %w", err)
	}
	return nil
}

// Remaining returns the time left until expiry, or zero if the timer has
// expired or is disarmed.
func (t *Timer) Remaining() (time.Duration, error) {
	var spec unix.ItimerSpec
	if err := unix.TimerfdGettime(t.fd, &spec); err != nil {
		return 0, fmt.Errorf("timerfd_gettime: %w", err)
	}
	return time.Duration(spec.Value.Nano()), nil
}

// Consume reads and discards the expiration count, clearing readiness.
// Consuming an unexpired timer is a no-op.
func (t *Timer) Consume() error {
	var buf [8]byte
	_, err := unix.Read(t.fd, buf[:])
	if err != nil && err != unix.EAGAIN {
		return fmt.Errorf("timerfd read: %w", err)
	}
	return nil
}

// Fd returns the timer's file descriptor for poller registration.
func (t *Timer) Fd() int {
	return t.fd
}

// Close releases the timerfd.
func (t *Timer) Close() error {
	return unix.Close(t.fd)
}
