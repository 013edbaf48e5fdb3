// Package status provides a thread-safe status tracker for the
// watchdog-petter daemon. The reactor goroutine writes it; HTTP handlers
// and MQTT payload builders read it.
package status

import (
	"sync"
	"time"
)

// Config contains daemon configuration for display.
type Config struct {
	Chip      string
	Line      int
	Label     string
	Listen    string
	GraceMs   int64
	TimeoutMs int64
	PetOnMs   int64
	PetOffMs  int64
	Broker    string
	HTTPAddr  string
	Sim       bool
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Pets              uint64
	Level             bool
	Pings             uint64
	LastPing          time.Time
	DeadlineRemaining time.Duration
	StartTime         time.Time
	Now               time.Time
	MQTTConnected     bool
	Config            Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// UpdatePetter records the toggle counter and current line level.
// Called from the reactor after every pet.
func (t *Tracker) UpdatePetter(pets uint64, level bool) {
	t.mu.Lock()
	t.snap.Pets = pets
	t.snap.Level = level
	t.mu.Unlock()
}

// UpdatePingee records heartbeat counters and the deadline remaining.
// Called from the reactor after every heartbeat dispatch.
func (t *Tracker) UpdatePingee(pings uint64, lastPing time.Time, remaining time.Duration) {
	t.mu.Lock()
	t.snap.Pings = pings
	t.snap.LastPing = lastPing
	t.snap.DeadlineRemaining = remaining
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
