//go:build linux

// Package reactor provides the single-threaded readiness machinery for
// the daemon: an epoll poller dispatching by identity token, one-shot
// monotonic timers with readable remaining time, and a bridge that
// surfaces process signals as ordinary readiness events.
package reactor

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Token identifies a registered readiness source.
type Token int

// Event is a single readiness notification.
type Event struct {
	Token Token
}

// Poller multiplexes file descriptors over one blocking epoll wait.
// It is not safe for concurrent use; the daemon drives it from a single
// goroutine.
type Poller struct {
	epfd   int
	tokens map[int32]Token
	buf    []unix.EpollEvent
}

// NewPoller creates an epoll instance.
func NewPoller() (*Poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll_create1: %w", err)
	}
	return &Poller{
		epfd:   epfd,
		tokens: make(map[int32]Token),
		buf:    make([]unix.EpollEvent, 16),
	}, nil
}

// Register adds fd as a readable-interest source identified by token.
func (p *Poller) Register(fd int, token Token) error {
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return fmt.Errorf("epoll_ctl add fd %d: %w", fd, err)
	}
	p.tokens[int32(fd)] = token
	return nil
}

// Wait blocks indefinitely until at least one source is ready, then fills
// events in the order the kernel reports them and returns the count.
// Interrupted waits are retried.
func (p *Poller) Wait(events []Event) (int, error) {
	if len(p.buf) < len(events) {
		p.buf = make([]unix.EpollEvent, len(events))
	}
	for {
		n, err := unix.EpollWait(p.epfd, p.buf[:len(events)], -1)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("epoll_wait: %w", err)
		}
		for i := 0; i < n; i++ {
			token, ok := p.tokens[p.buf[i].Fd]
			if !ok {
				return 0, fmt.Errorf("readiness on unregistered fd %d", p.buf[i].Fd)
			}
			events[i] = Event{Token: token}
		}
		return n, nil
	}
}

// Close releases the epoll instance. Registered fds are owned by their
// sources and are not closed here.
func (p *Poller) Close() error {
	return unix.Close(p.epfd)
}
