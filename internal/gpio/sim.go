//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiosim"
)

// SimChip wraps a kernel gpio-sim chip carrying the watchdog line. It is
// used by the -sim flag and by integration tests, so the daemon can run
// against a fully simulated chip with the expected label in place.
type SimChip struct {
	sim    *gpiosim.Sim
	offset int
}

// NewSimChip creates a live simulated chip with a single bank whose line
// at offset carries the given label. Requires the gpio-sim kernel module.
func NewSimChip(offset int, label string) (*SimChip, error) {
	s, err := gpiosim.NewSim(
		gpiosim.WithName("watchdog_sim"),
		gpiosim.WithBank(gpiosim.NewBank("sim_bank", 32,
			gpiosim.WithNamedLine(offset, label),
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("create gpio-sim chip: %w", err)
	}
	return &SimChip{sim: s, offset: offset}, nil
}

// DevPath returns the simulated chip's device path, suitable for
// RequestWatchdogLine's chip argument.
func (s *SimChip) DevPath() string {
	return s.sim.Chips[0].DevPath()
}

// Level reads the watchdog line's level as seen from the kernel side.
func (s *SimChip) Level() (bool, error) {
	v, err := s.sim.Chips[0].Level(s.offset)
	if err != nil {
		return false, fmt.Errorf("read sim line value: %w", err)
	}
	return v != 0, nil
}

// Close tears down the simulated chip.
func (s *SimChip) Close() error {
	s.sim.Close()
	return nil
}
