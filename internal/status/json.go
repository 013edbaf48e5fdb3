package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event              string     `json:"event,omitempty"`
	Reason             string     `json:"reason,omitempty"`
	Line               string     `json:"line"`
	Pets               uint64     `json:"pets"`
	Pings              uint64     `json:"pings"`
	LastPing           string     `json:"last_ping,omitempty"`
	DeadlineRemainingS float64    `json:"deadline_remaining_seconds"`
	UptimeSeconds      int64      `json:"uptime_seconds"`
	StartTime          string     `json:"start_time"`
	Timestamp          string     `json:"timestamp"`
	MQTT               MQTTStatus `json:"mqtt"`
	Config             ConfigJSON `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Chip      string `json:"chip"`
	Line      int    `json:"line"`
	Label     string `json:"label"`
	Listen    string `json:"listen"`
	GraceMs   int64  `json:"grace_ms"`
	TimeoutMs int64  `json:"timeout_ms"`
	PetOnMs   int64  `json:"pet_on_ms"`
	PetOffMs  int64  `json:"pet_off_ms"`
	HTTPAddr  string `json:"http_addr,omitempty"`
	Sim       bool   `json:"sim,omitempty"`
}

func levelString(active bool) string {
	if active {
		return "ACTIVE"
	}
	return "INACTIVE"
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Line:               levelString(snap.Level),
		Pets:               snap.Pets,
		Pings:              snap.Pings,
		DeadlineRemainingS: snap.DeadlineRemaining.Seconds(),
		UptimeSeconds:      int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:          snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:          snap.Now.UTC().Format(time.RFC3339),
		MQTT:               MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Config: ConfigJSON{
			Chip:      snap.Config.Chip,
			Line:      snap.Config.Line,
			Label:     snap.Config.Label,
			Listen:    snap.Config.Listen,
			GraceMs:   snap.Config.GraceMs,
			TimeoutMs: snap.Config.TimeoutMs,
			PetOnMs:   snap.Config.PetOnMs,
			PetOffMs:  snap.Config.PetOffMs,
			HTTPAddr:  snap.Config.HTTPAddr,
			Sim:       snap.Config.Sim,
		},
	}
	if !snap.LastPing.IsZero() {
		inner.LastPing = snap.LastPing.UTC().Format(time.RFC3339)
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
