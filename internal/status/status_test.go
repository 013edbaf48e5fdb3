package status

import (
	"encoding/json"
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		Chip:      "gpiochip2",
		Line:      25,
		Label:     "PET_WDT",
		Listen:    "127.0.0.1:20001",
		GraceMs:   120000,
		TimeoutMs: 30000,
		PetOnMs:   100,
		PetOffMs:  900,
		Broker:    "tcp://broker:1883",
		HTTPAddr:  ":8080",
	}
}

func TestNewTracker(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tr := NewTracker(start, testConfig())

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("start time: got %v, want %v", snap.StartTime, start)
	}
	if snap.Pets != 0 || snap.Pings != 0 {
		t.Errorf("fresh tracker should have zero counters, got pets=%d pings=%d", snap.Pets, snap.Pings)
	}
	if snap.Config.Chip != "gpiochip2" {
		t.Errorf("config chip: got %q", snap.Config.Chip)
	}
}

func TestUpdatePetter(t *testing.T) {
	tr := NewTracker(time.Now(), testConfig())

	tr.UpdatePetter(3, true)
	snap := tr.Snapshot()
	if snap.Pets != 3 {
		t.Errorf("pets: got %d, want 3", snap.Pets)
	}
	if !snap.Level {
		t.Error("level: got inactive, want active")
	}
}

func TestUpdatePingee(t *testing.T) {
	tr := NewTracker(time.Now(), testConfig())
	last := time.Date(2026, 1, 1, 12, 0, 5, 0, time.UTC)

	tr.UpdatePingee(7, last, 30*time.Second)
	snap := tr.Snapshot()
	if snap.Pings != 7 {
		t.Errorf("pings: got %d, want 7", snap.Pings)
	}
	if !snap.LastPing.Equal(last) {
		t.Errorf("last ping: got %v, want %v", snap.LastPing, last)
	}
	if snap.DeadlineRemaining != 30*time.Second {
		t.Errorf("remaining: got %v, want 30s", snap.DeadlineRemaining)
	}
}

func TestSnapshotSetsNow(t *testing.T) {
	tr := NewTracker(time.Now().Add(-time.Minute), testConfig())

	snap := tr.Snapshot()
	if snap.Now.IsZero() {
		t.Fatal("snapshot Now must be set")
	}
	if snap.Uptime() < 59*time.Second {
		t.Errorf("uptime: got %v, want about a minute", snap.Uptime())
	}
}

func TestFormatJSON(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tr := NewTracker(start, testConfig())
	tr.UpdatePetter(5, true)
	tr.UpdatePingee(2, start.Add(3*time.Second), 25*time.Second)
	tr.SetMQTTConnected(true)

	var parsed StatusJSON
	if err := json.Unmarshal(FormatJSON(tr.Snapshot()), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	inner := parsed.Status
	if inner.Line != "ACTIVE" {
		t.Errorf("line: got %q, want ACTIVE", inner.Line)
	}
	if inner.Pets != 5 {
		t.Errorf("pets: got %d, want 5", inner.Pets)
	}
	if inner.Pings != 2 {
		t.Errorf("pings: got %d, want 2", inner.Pings)
	}
	if inner.LastPing != "2026-01-01T12:00:03Z" {
		t.Errorf("last ping: got %q", inner.LastPing)
	}
	if inner.DeadlineRemainingS != 25.0 {
		t.Errorf("remaining: got %v, want 25", inner.DeadlineRemainingS)
	}
	if !inner.MQTT.Connected {
		t.Error("mqtt should report connected")
	}
	if inner.Config.TimeoutMs != 30000 {
		t.Errorf("config timeout: got %d", inner.Config.TimeoutMs)
	}
	if inner.Event != "" {
		t.Errorf("web JSON must not carry an event, got %q", inner.Event)
	}
}

func TestFormatJSONOmitsLastPingWhenNever(t *testing.T) {
	tr := NewTracker(time.Now(), testConfig())

	var parsed StatusJSON
	if err := json.Unmarshal(FormatJSON(tr.Snapshot()), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Status.LastPing != "" {
		t.Errorf("expected empty last_ping before any heartbeat, got %q", parsed.Status.LastPing)
	}
	if parsed.Status.Line != "INACTIVE" {
		t.Errorf("line: got %q, want INACTIVE", parsed.Status.Line)
	}
}

func TestFormatStatusEvent(t *testing.T) {
	tr := NewTracker(time.Now(), testConfig())

	var parsed StatusJSON
	data := FormatStatusEvent(tr.Snapshot(), "SHUTDOWN", "SIGTERM")
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Status.Event != "SHUTDOWN" {
		t.Errorf("event: got %q, want SHUTDOWN", parsed.Status.Event)
	}
	if parsed.Status.Reason != "SIGTERM" {
		t.Errorf("reason: got %q, want SIGTERM", parsed.Status.Reason)
	}
}
