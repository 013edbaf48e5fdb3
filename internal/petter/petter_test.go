package petter

import (
	"errors"
	"testing"
	"time"

	"github.com/sweeney/watchdog-petter/internal/gpio"
)

// fakeTimer records Set calls and scripted errors.
type fakeTimer struct {
	sets     []time.Duration
	consumed int

	setError     error
	consumeError error
}

func (f *fakeTimer) Set(d time.Duration) error {
	if f.setError != nil {
		return f.setError
	}
	f.sets = append(f.sets, d)
	return nil
}

func (f *fakeTimer) Consume() error {
	if f.consumeError != nil {
		return f.consumeError
	}
	f.consumed++
	return nil
}

func TestPetAlternatesStartingActive(t *testing.T) {
	line := gpio.NewFakeLine()
	timer := &fakeTimer{}
	p := New(line, timer, 100*time.Millisecond, 900*time.Millisecond)

	for i := 0; i < 10; i++ {
		if err := p.Pet(); err != nil {
			t.Fatalf("pet %d: unexpected error: %v", i, err)
		}
	}

	if len(line.History) != 10 {
		t.Fatalf("expected 10 writes, got %d", len(line.History))
	}
	for i, level := range line.History {
		want := i%2 == 0
		if level != want {
			t.Errorf("write %d: got level %v, want %v", i, level, want)
		}
	}
}

func TestPetArmsTimerForPhaseEntered(t *testing.T) {
	line := gpio.NewFakeLine()
	timer := &fakeTimer{}
	p := New(line, timer, 100*time.Millisecond, 900*time.Millisecond)

	p.Pet()
	p.Pet()
	p.Pet()

	want := []time.Duration{100 * time.Millisecond, 900 * time.Millisecond, 100 * time.Millisecond}
	if len(timer.sets) != len(want) {
		t.Fatalf("expected %d timer arms, got %d", len(want), len(timer.sets))
	}
	for i, d := range timer.sets {
		if d != want[i] {
			t.Errorf("arm %d: got %v, want %v", i, d, want[i])
		}
	}
}

func TestOnTimerFiredConsumesThenPets(t *testing.T) {
	line := gpio.NewFakeLine()
	timer := &fakeTimer{}
	p := New(line, timer, 100*time.Millisecond, 900*time.Millisecond)

	if err := p.OnTimerFired(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if timer.consumed != 1 {
		t.Errorf("expected 1 consume, got %d", timer.consumed)
	}
	if len(line.History) != 1 {
		t.Fatalf("expected 1 write, got %d", len(line.History))
	}
	if !line.History[0] {
		t.Error("first pet should drive the line active")
	}
}

func TestPetCounters(t *testing.T) {
	line := gpio.NewFakeLine()
	p := New(line, &fakeTimer{}, 100*time.Millisecond, 900*time.Millisecond)

	if p.Pets() != 0 {
		t.Errorf("fresh petter pets: got %d, want 0", p.Pets())
	}
	p.Pet()
	p.Pet()
	if p.Pets() != 2 {
		t.Errorf("pets: got %d, want 2", p.Pets())
	}
	if p.Level() {
		t.Error("level after two pets should be inactive")
	}
}

func TestPetWriteErrorPropagates(t *testing.T) {
	line := gpio.NewFakeLine()
	line.SetError = errors.New("write failed")
	p := New(line, &fakeTimer{}, 100*time.Millisecond, 900*time.Millisecond)

	if err := p.Pet(); err == nil {
		t.Fatal("expected error from failed write")
	}
	if p.Pets() != 0 {
		t.Errorf("failed pet must not count, got %d", p.Pets())
	}
}

func TestPetArmErrorPropagates(t *testing.T) {
	line := gpio.NewFakeLine()
	timer := &fakeTimer{setError: errors.New("arm failed")}
	p := New(line, timer, 100*time.Millisecond, 900*time.Millisecond)

	if err := p.Pet(); err == nil {
		t.Fatal("expected error from failed timer arm")
	}
}

func TestConsumeErrorPropagates(t *testing.T) {
	line := gpio.NewFakeLine()
	timer := &fakeTimer{consumeError: errors.New("read failed")}
	p := New(line, timer, 100*time.Millisecond, 900*time.Millisecond)

	if err := p.OnTimerFired(); err == nil {
		t.Fatal("expected error from failed consume")
	}
	if len(line.History) != 0 {
		t.Error("no level must be written when consume fails")
	}
}

func TestCloseForcesLineInactive(t *testing.T) {
	line := gpio.NewFakeLine()
	p := New(line, &fakeTimer{}, 100*time.Millisecond, 900*time.Millisecond)

	p.Pet() // line now active
	if !line.Level() {
		t.Fatal("precondition: line should be active after first pet")
	}

	p.Close()
	if line.Level() {
		t.Error("line must be inactive after Close")
	}
	if !line.Closed {
		t.Error("line must be released after Close")
	}
}

func TestCloseSwallowsWriteError(t *testing.T) {
	line := gpio.NewFakeLine()
	p := New(line, &fakeTimer{}, 100*time.Millisecond, 900*time.Millisecond)
	p.Pet()

	line.SetError = errors.New("write failed")
	line.CloseError = errors.New("close failed")
	p.Close() // must not panic or return anything
	if !line.Closed {
		t.Error("line must be released even when the final write fails")
	}
}
