// Package gpio provides the watchdog output line with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Line is an exclusively-owned GPIO output line.
type Line interface {
	// SetValue drives the line active (true) or inactive (false).
	SetValue(active bool) error

	// Close releases the line. The caller is responsible for driving the
	// line inactive first; Close itself does not touch the level.
	Close() error
}

// Hardware defaults for the C3 carrier board.
const (
	DefaultChip  = "gpiochip2"
	DefaultLine  = 25
	DefaultLabel = "PET_WDT"

	// Consumer is the tag attached to the requested line, visible in
	// gpioinfo output for diagnostics.
	Consumer = "C3_Watchdog"
)
