//go:build linux

// Package pingee receives heartbeat datagrams from the supervised
// application and maintains the inactivity deadline that kills the daemon
// when heartbeats stop.
package pingee

import (
	"fmt"
	"net"
	"time"

	"golang.org/x/sys/unix"
)

// Default heartbeat endpoint and deadline magnitudes.
const (
	DefaultListen = "127.0.0.1:20001"

	// DefaultGrace is the initial countdown armed at startup, giving the
	// supervised application time to boot.
	DefaultGrace = 120 * time.Second

	// DefaultTimeout is the steady-state window heartbeats must arrive
	// within once the countdown has decayed below it.
	DefaultTimeout = 30 * time.Second
)

// DeadlineTimer is the inactivity countdown. *reactor.Timer satisfies it;
// tests use a fake. Its expiry is observed by the reactor as the terminal
// timeout, not by the Pingee.
type DeadlineTimer interface {
	Set(d time.Duration) error
	Remaining() (time.Duration, error)
}

// Pingee owns the heartbeat socket and the inactivity deadline. All
// methods are called from the reactor goroutine only.
type Pingee struct {
	fd     int
	timer  DeadlineTimer
	steady time.Duration

	pings    uint64
	lastPing time.Time
}

// New binds a nonblocking UDP socket on listen and arms the deadline
// timer to the grace magnitude. Bind and arm failures are fatal startup
// errors.
func New(listen string, timer DeadlineTimer, grace, steady time.Duration) (*Pingee, error) {
	addr, err := net.ResolveUDPAddr("udp4", listen)
	if err != nil {
		return nil, fmt.Errorf("resolve listen address %q: %w", listen, err)
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("create heartbeat socket: %w", err)
	}

	sa := &unix.SockaddrInet4{Port: addr.Port}
	if ip4 := addr.IP.To4(); ip4 != nil {
		copy(sa.Addr[:], ip4)
	}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("bind %s: %w", listen, err)
	}

	if err := timer.Set(grace); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("arm inactivity timer: %w", err)
	}

	return &Pingee{fd: fd, timer: timer, steady: steady}, nil
}

// OnReadable drains every queued datagram, then extends the deadline to
// the steady-state magnitude — but only if the countdown has already
// decayed below it. Heartbeats landing earlier are counted and otherwise
// ignored, so the startup grace window is never shortened.
//
// Draining fully is mandatory: a datagram left queued would keep the
// socket readable and spin the poller.
func (p *Pingee) OnReadable() error {
	// Content is irrelevant; one byte is enough to consume a datagram,
	// the rest is truncated.
	var buf [1]byte
	for {
		_, _, err := unix.Recvfrom(p.fd, buf[:], 0)
		if err == unix.EAGAIN {
			break
		}
		if err != nil {
			return fmt.Errorf("heartbeat socket read: %w", err)
		}
		p.pings++
		p.lastPing = time.Now()
	}

	remaining, err := p.timer.Remaining()
	if err != nil {
		return fmt.Errorf("read inactivity timer: %w", err)
	}
	if remaining < p.steady {
		if err := p.timer.Set(p.steady); err != nil {
			return fmt.Errorf("rearm inactivity timer: %w", err)
		}
	}
	return nil
}

// Fd returns the socket's file descriptor for poller registration.
func (p *Pingee) Fd() int {
	return p.fd
}

// Addr returns the socket's bound address, useful when listening on an
// ephemeral port in tests.
func (p *Pingee) Addr() (*net.UDPAddr, error) {
	sa, err := unix.Getsockname(p.fd)
	if err != nil {
		return nil, fmt.Errorf("getsockname: %w", err)
	}
	sa4, ok := sa.(*unix.SockaddrInet4)
	if !ok {
		return nil, fmt.Errorf("unexpected sockaddr type %T", sa)
	}
	return &net.UDPAddr{IP: net.IP(sa4.Addr[:]), Port: sa4.Port}, nil
}

// Pings returns the number of heartbeats received.
func (p *Pingee) Pings() uint64 {
	return p.pings
}

// LastPing returns the arrival time of the most recent heartbeat, zero if
// none has arrived.
func (p *Pingee) LastPing() time.Time {
	return p.lastPing
}

// Close releases the socket.
func (p *Pingee) Close() error {
	return unix.Close(p.fd)
}
