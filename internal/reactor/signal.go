//go:build linux

package reactor

import (
	"fmt"
	"os"
	"os/signal"
	"sync"

	"golang.org/x/sys/unix"
)

// SignalBridge converts asynchronous signal delivery into poller
// readiness. The signals are taken off their default disposition with
// signal.Notify, and a forwarding goroutine writes one byte to a
// nonblocking pipe per delivery; the read end registers with the Poller,
// so the reactor observes signals only through its normal dispatch.
type SignalBridge struct {
	notify chan os.Signal
	done   chan struct{}
	rfd    int
	wfd    int

	mu   sync.Mutex
	last os.Signal
}

// NewSignalBridge intercepts the given signals and surfaces them as
// readiness on Fd.
func NewSignalBridge(sigs ...os.Signal) (*SignalBridge, error) {
	var p [2]int
	if err := unix.Pipe2(p[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		return nil, fmt.Errorf("signal pipe: %w", err)
	}

	b := &SignalBridge{
		notify: make(chan os.Signal, 8),
		done:   make(chan struct{}),
		rfd:    p[0],
		wfd:    p[1],
	}
	signal.Notify(b.notify, sigs...)

	go func() {
		defer close(b.done)
		for s := range b.notify {
			b.mu.Lock()
			b.last = s
			b.mu.Unlock()
			// A full pipe already reads as pending; dropping the byte is fine.
			_, _ = unix.Write(b.wfd, []byte{0})
		}
	}()

	return b, nil
}

// Fd returns the readable end for poller registration.
func (b *SignalBridge) Fd() int {
	return b.rfd
}

// Consume drains pending notifications and returns the most recently
// delivered signal. The identity is informational only; any readiness on
// the bridge means shutdown was requested.
func (b *SignalBridge) Consume() os.Signal {
	var buf [16]byte
	for {
		_, err := unix.Read(b.rfd, buf[:])
		if err != nil {
			break
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}

// Close restores signal disposition and tears down the pipe.
func (b *SignalBridge) Close() error {
	signal.Stop(b.notify)
	close(b.notify)
	<-b.done
	err1 := unix.Close(b.wfd)
	err2 := unix.Close(b.rfd)
	if err1 != nil {
		return err1
	}
	return err2
}
