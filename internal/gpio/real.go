//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealLine drives a line on actual hardware using the Linux GPIO
// character device.
type RealLine struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// RequestWatchdogLine opens the named chip and requests the given line as
// an output initialized inactive. If label is non-empty, the line's
// configured name is read back first and must match exactly; a mismatch
// means the daemon is pointed at the wrong pin and is a fatal error.
func RequestWatchdogLine(chip string, offset int, label, consumer string) (*RealLine, error) {
	c, err := gpiocdev.NewChip(chip)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chip, err)
	}

	if label != "" {
		info, err := c.LineInfo(offset)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("read line %d info: %w", offset, err)
		}
		if info.Name != label {
			c.Close()
			return nil, fmt.Errorf("line %d label mismatch: expected %q, found %q", offset, label, info.Name)
		}
	}

	line, err := c.RequestLine(offset,
		gpiocdev.AsOutput(0),
		gpiocdev.WithConsumer(consumer))
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("request line %d: %w", offset, err)
	}

	return &RealLine{chip: c, line: line}, nil
}

// SetValue drives the line level.
func (l *RealLine) SetValue(active bool) error {
	v := 0
	if active {
		v = 1
	}
	if err := l.line.SetValue(v); err != nil {
		return fmt.Errorf("set line value: %w", err)
	}
	return nil
}

// Close releases the line and the chip.
func (l *RealLine) Close() error {
	var errs []error
	if l.line != nil {
		if err := l.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close line: %w", err))
		}
	}
	if l.chip != nil {
		if err := l.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
