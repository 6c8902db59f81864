// Package tick runs the kiln.Controller's Tick method on a real-time
// cadence. spec.md §4.9 specifies a hardware RTC alarm; a portable Go
// binary has no such thing, so this substitutes a time.Ticker -- noted in
// DESIGN.md as a platform substitution, not a behavioral redesign. Ordering
// is unaffected: Controller.Tick still performs the full per-tick sequence
// under its own lock on every fire.
package tick

import (
	"context"
	"time"
)

// Tickable is the single method the driver needs from kiln.Controller.
type Tickable interface {
	Tick()
}

// Driver fires Tickable.Tick() once per period until its context is
// canceled.
type Driver struct {
	target Tickable
	period time.Duration
}

// New builds a Driver for the given controller and tick period (spec.md
// §4.9: Ts = 1s).
func New(target Tickable, period time.Duration) *Driver {
	return &Driver{target: target, period: period}
}

// Run blocks, firing Tick once per period, until ctx is done. Intended to
// be started in its own goroutine from cmd/kilnctl.
func (d *Driver) Run(ctx context.Context) {
	ticker := time.NewTicker(d.period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.target.Tick()
		}
	}
}
