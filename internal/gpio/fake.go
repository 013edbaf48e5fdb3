package gpio

// FakeLine is a test double that records every level written to it.
type FakeLine struct {
	// History contains every level passed to SetValue, in order.
	History []bool

	// Closed tracks if Close was called.
	Closed bool

	// SetError, if set, will be returned by SetValue.
	SetError error

	// CloseError, if set, will be returned by Close.
	CloseError error
}

// NewFakeLine creates a FakeLine.
func NewFakeLine() *FakeLine {
	return &FakeLine{}
}

// SetValue records the level.
func (f *FakeLine) SetValue(active bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.History = append(f.History, active)
	return nil
}

// Close marks the line as closed.
func (f *FakeLine) Close() error {
	f.Closed = true
	return f.CloseError
}

// Level returns the most recently written level, or false if nothing has
// been written yet (lines are requested inactive).
func (f *FakeLine) Level() bool {
	if len(f.History) == 0 {
		return false
	}
	return f.History[len(f.History)-1]
}

// Reset clears recorded state.
func (f *FakeLine) Reset() {
	f.History = nil
	f.Closed = false
	f.SetError = nil
	f.CloseError = nil
}
