package control

import "github.com/dennisrathgeb/kilnctl/internal/fixedpoint"

// CoolingBrake is the hysteretic P controller that re-engages heat when
// natural cooling exceeds the program's allowed descent rate (spec.md §4.6).
type CoolingBrake struct {
	kb    fixedpoint.Q16
	uMax  fixedpoint.Q16

	gMin fixedpoint.Q16 // negative
	hyst fixedpoint.Q16 // positive

	latched bool
}

// NewCoolingBrake builds a CoolingBrake with the given proportional gain and
// output ceiling.
func NewCoolingBrake(kb, uMax fixedpoint.Q16) *CoolingBrake {
	return &CoolingBrake{kb: kb, uMax: uMax}
}

// Retune swaps in new proportional gain and output ceiling (apply_settings).
func (b *CoolingBrake) Retune(kb, uMax fixedpoint.Q16) {
	b.kb = kb
	b.uMax = uMax
}

// SetLimit configures the allowed descent rate (negative, °C/s Q16.16) and
// hysteresis band (positive) for the active cooling step.
func (b *CoolingBrake) SetLimit(gMin, hysteresis fixedpoint.Q16) {
	b.gMin = gMin
	b.hyst = hysteresis
}

// Reset clears the latch, used when entering a heating step or stopping the
// program.
func (b *CoolingBrake) Reset() {
	b.latched = false
}

// Latched reports the current hysteresis state, for telemetry and tests.
func (b *CoolingBrake) Latched() bool { return b.latched }

// Update applies the hysteresis latch and, when latched, the proportional
// brake law from spec.md §4.6.
func (b *CoolingBrake) Update(gF fixedpoint.Q16) fixedpoint.Q16 {
	switch {
	case gF >= 0:
		b.latched = false
	case gF < fixedpoint.Sub(b.gMin, b.hyst):
		b.latched = true
	case gF > fixedpoint.Add(b.gMin, b.hyst):
		b.latched = false
	}

	if !b.latched {
		return 0
	}

	u := fixedpoint.Mul(b.kb, fixedpoint.Sub(b.gMin, gF))
	return fixedpoint.Clamp(u, 0, b.uMax)
}
