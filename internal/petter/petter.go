package petter

import (
	"fmt"
	"time"

	"github.com/sweeney/watchdog-petter/internal/gpio"
)

// Timer is the one-shot timer the Petter re-arms after each toggle.
// *reactor.Timer satisfies it; tests use a fake.
type Timer interface {
	Set(d time.Duration) error
	Consume() error
}

// Petter owns the watchdog line and its toggle timer. All methods are
// called from the reactor goroutine only.
type Petter struct {
	line  gpio.Line
	timer Timer
	sched Schedule

	pets  uint64
	level bool
}

// New creates a Petter over an already-acquired line. The line is
// expected to be inactive (lines are requested that way); nothing is
// written until the first Pet.
func New(line gpio.Line, timer Timer, on, off time.Duration) *Petter {
	return &Petter{
		line:  line,
		timer: timer,
		sched: NewSchedule(on, off),
	}
}

// Pet advances the duty cycle one phase: writes the new level and re-arms
// the timer for the phase's duration. Errors are fatal to the daemon —
// an ambiguous failure must not risk continuing to pet the watchdog.
func (p *Petter) Pet() error {
	active, d := p.sched.Advance()
	if err := p.line.SetValue(active); err != nil {
		return fmt.Errorf("pet: %w", err)
	}
	if err := p.timer.Set(d); err != nil {
		return fmt.Errorf("arm pet timer: %w", err)
	}
	p.level = active
	p.pets++
	return nil
}

// OnTimerFired consumes the expiration and performs the next toggle.
// This is the sole steady-state entry point.
func (p *Petter) OnTimerFired() error {
	if err := p.timer.Consume(); err != nil {
		return fmt.Errorf("consume pet timer: %w", err)
	}
	return p.Pet()
}

// Pets returns the number of toggles performed.
func (p *Petter) Pets() uint64 {
	return p.pets
}

// Level returns the last level written.
func (p *Petter) Level() bool {
	return p.level
}

// Close forces the line inactive and releases it. The write is
// best-effort: release must never fail in a way that skips the line
// going low, so errors are swallowed. Safe on every exit path.
func (p *Petter) Close() {
	_ = p.line.SetValue(false)
	_ = p.line.Close()
}
