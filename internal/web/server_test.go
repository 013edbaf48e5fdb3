package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/watchdog-petter/internal/status"
)

func newTestTracker() *status.Tracker {
	tr := status.NewTracker(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC), status.Config{
		Chip:      "gpiochip2",
		Line:      25,
		Label:     "PET_WDT",
		Listen:    "127.0.0.1:20001",
		GraceMs:   120000,
		TimeoutMs: 30000,
		PetOnMs:   100,
		PetOffMs:  900,
		HTTPAddr:  ":8080",
	})
	tr.UpdatePetter(42, true)
	tr.UpdatePingee(7, time.Date(2026, 1, 1, 12, 0, 30, 0, time.UTC), 25*time.Second)
	return tr
}

func TestHandleIndexHTML(t *testing.T) {
	s := New(":0", newTestTracker())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.handleIndex(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type: got %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Watchdog Petter") {
		t.Error("page should contain the title")
	}
	if !strings.Contains(body, "ACTIVE") {
		t.Error("page should show the line level")
	}
	if !strings.Contains(body, "42") {
		t.Error("page should show the pet count")
	}
}

func TestHandleIndexNotFound(t *testing.T) {
	s := New(":0", newTestTracker())

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	s.handleIndex(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rec.Code)
	}
}

func TestHandleJSON(t *testing.T) {
	s := New(":0", newTestTracker())

	req := httptest.NewRequest(http.MethodGet, "/index.json", nil)
	rec := httptest.NewRecorder()
	s.handleJSON(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type: got %q", ct)
	}

	var parsed status.StatusJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Status.Pets != 42 {
		t.Errorf("pets: got %d, want 42", parsed.Status.Pets)
	}
	if parsed.Status.Pings != 7 {
		t.Errorf("pings: got %d, want 7", parsed.Status.Pings)
	}
	if parsed.Status.Line != "ACTIVE" {
		t.Errorf("line: got %q, want ACTIVE", parsed.Status.Line)
	}
}

func TestRenderHTMLNeverPings(t *testing.T) {
	tr := status.NewTracker(time.Now(), status.Config{Chip: "gpiochip0"})
	s := New(":0", tr)

	req := httptest.NewRequest(http.MethodGet, "/index.html", nil)
	rec := httptest.NewRecorder()
	s.handleIndex(rec, req)

	if !strings.Contains(rec.Body.String(), "never") {
		t.Error("page should show 'never' before any heartbeat")
	}
}
