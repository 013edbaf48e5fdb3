// Package petter drives the watchdog line's fixed duty cycle.
// The schedule is pure state with no dependencies; the Petter couples it
// to a line and a timer.
package petter

import "time"

// Phase is one half of the duty cycle.
type Phase int

const (
	// PhaseInactive is the idle (line low) half of the cycle. A fresh
	// schedule starts here so the first Advance enters PhaseActive.
	PhaseInactive Phase = iota
	// PhaseActive is the petting (line high) half of the cycle.
	PhaseActive
)

// Default duty cycle: a 100ms pulse each second. Distinguishable by the
// watchdog circuit while leaving the line low most of the time, so an
// unexpected crash defaults to "not petted".
const (
	DefaultOnDuration  = 100 * time.Millisecond
	DefaultOffDuration = 900 * time.Millisecond
)

// Schedule is the two-phase toggle cycle: each Advance enters the next
// phase and reports the level to drive and how long the phase lasts.
type Schedule struct {
	phase Phase
	on    time.Duration
	off   time.Duration
}

// NewSchedule creates a schedule with the given phase durations,
// positioned so the first Advance enters the active phase.
func NewSchedule(on, off time.Duration) Schedule {
	return Schedule{phase: PhaseInactive, on: on, off: off}
}

// Advance flips to the next phase and returns the level to apply and the
// duration of the phase just entered.
func (s *Schedule) Advance() (active bool, d time.Duration) {
	if s.phase == PhaseInactive {
		s.phase = PhaseActive
		return true, s.on
	}
	s.phase = PhaseInactive
	return false, s.off
}

// Phase returns the current phase.
func (s *Schedule) Phase() Phase {
	return s.phase
}
