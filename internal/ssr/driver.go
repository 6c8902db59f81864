package ssr

import (
	"fmt"
	"log"
	"sync"

	"github.com/dennisrathgeb/kilnctl/internal/fixedpoint"
)

// Driver couples a Window state machine to a Coils hardware boundary,
// serializing hardware writes the same way epicfatigue-drivers/pcf8575
// serializes its shadow-latch writes: one mutex held across the
// compute-then-write sequence so no concurrent caller can observe or cause a
// torn state.
type Driver struct {
	mu     sync.Mutex
	window *Window
	coils  Coils
	debug  bool

	lastOn bool
}

// NewDriver wires a Window to a Coils implementation.
func NewDriver(window *Window, coils Coils, debug bool) *Driver {
	return &Driver{window: window, coils: coils, debug: debug}
}

// Tick advances the window and writes the resulting state to the coils.
// nowMs must be monotonically non-decreasing across calls.
func (d *Driver) Tick(nowMs int64, uRaw fixedpoint.Q16, doorOpen bool) (windowStarted bool, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	on, started := d.window.Update(nowMs, uRaw, doorOpen)
	if err := d.coils.Set(on); err != nil {
		return started, fmt.Errorf("ssr: write coils: %w", err)
	}
	d.lastOn = on

	if d.debug {
		log.Printf("ssr: now=%dms duty=%.4f on=%v door=%v window_started=%v",
			nowMs, fixedpoint.ToFloatDebug(d.window.Duty()), on, doorOpen, started)
	}
	return started, nil
}

// ForceOff immediately commands the coils off without disturbing window
// bookkeeping, used by program_stop and SafetyHold (spec.md §5, §7).
func (d *Driver) ForceOff() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastOn = false
	if err := d.coils.Set(false); err != nil {
		return fmt.Errorf("ssr: force off: %w", err)
	}
	return nil
}

// LastOn reports the last commanded coil state, for telemetry and for
// preserving SSR state across a sensor-miss tick (spec.md §4.9 step 1).
func (d *Driver) LastOn() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastOn
}
