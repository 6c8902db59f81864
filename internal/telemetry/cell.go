package telemetry

import "sync/atomic"

// Cell is a lock-free single-writer/single-reader snapshot cell
// (SPEC_FULL.md §4.11, resolving spec.md §9's globals/back-reference note):
// the tick driver is the sole writer via Publish; any number of readers call
// Load concurrently without ever blocking the tick.
type Cell struct {
	p atomic.Pointer[Snapshot]
}

// NewCell returns a Cell pre-populated with a zero-value idle snapshot, so
// Load never has to special-case an unpublished cell.
func NewCell() *Cell {
	c := &Cell{}
	c.Publish(Snapshot{Mode: ModeIdle})
	return c
}

// Publish stores a new snapshot. Called once per window-start tick and once
// per sensor-miss tick.
func (c *Cell) Publish(s Snapshot) {
	c.p.Store(&s)
}

// Load returns the most recently published snapshot.
func (c *Cell) Load() Snapshot {
	return *c.p.Load()
}
