package control

import "github.com/dennisrathgeb/kilnctl/internal/fixedpoint"

// OuterP is the outer temperature P-controller: converts a temperature
// error into a rate setpoint, heating-only, saturated by the active step's
// gMax (spec.md §4.5).
type OuterP struct {
	kpT       fixedpoint.Q16
	tBandMdeg int32

	tSetMdeg  int32
	gMaxQ16   fixedpoint.Q16
	isCooling bool
	enabled   bool
}

// NewOuterP builds an OuterP with the given proportional gain (per °C,
// Q16.16) and deadband (millidegrees).
func NewOuterP(kpT fixedpoint.Q16, tBandMdeg int32) *OuterP {
	return &OuterP{kpT: kpT, tBandMdeg: tBandMdeg}
}

// Retune swaps in new proportional gain and deadband (apply_settings).
func (o *OuterP) Retune(kpT fixedpoint.Q16, tBandMdeg int32) {
	o.kpT = kpT
	o.tBandMdeg = tBandMdeg
}

// LoadStep arms the controller for a new program step.
func (o *OuterP) LoadStep(targetMdeg int32, gMax fixedpoint.Q16, cooling bool) {
	o.tSetMdeg = targetMdeg
	o.gMaxQ16 = gMax
	o.isCooling = cooling
	o.enabled = true
}

// Disable stops the outer loop from producing a nonzero rate setpoint
// (program_stop, spec.md §4.7).
func (o *OuterP) Disable() {
	o.enabled = false
}

// Enabled reports whether a step is currently loaded and active.
func (o *OuterP) Enabled() bool { return o.enabled }

// IsCooling reports the active step's polarity.
func (o *OuterP) IsCooling() bool { return o.isCooling }

// TargetMdeg returns the active step's target temperature in millidegrees.
func (o *OuterP) TargetMdeg() int32 { return o.tSetMdeg }

// Update computes the rate setpoint for the current measured temperature,
// following the decision table in spec.md §4.5.
func (o *OuterP) Update(tMdeg int32) fixedpoint.Q16 {
	if !o.enabled || o.isCooling {
		return 0
	}
	if tMdeg >= o.tSetMdeg {
		return 0
	}
	errMdeg := o.tSetMdeg - tMdeg
	if errMdeg < o.tBandMdeg {
		return 0
	}

	// Kp_T is per degree C; errMdeg/1000 converts millidegrees to degrees
	// while errMdeg stays an integer until the final multiply.
	scaled := fixedpoint.Mul(o.kpT, fixedpoint.FromRatio(errMdeg, 1000))
	return fixedpoint.Clamp(scaled, fixedpoint.Min, o.gMaxQ16)
}

// AtTarget reports the step-completion predicate: for heating steps, true
// once the remaining error is inside the deadband; for cooling steps, true
// once measured temperature has reached or passed the target (spec.md §4.5,
// resolved explicitly per spec.md §9 rather than left to an unreached branch).
func (o *OuterP) AtTarget(tMdeg int32) bool {
	if o.isCooling {
		return tMdeg <= o.tSetMdeg
	}
	errMdeg := o.tSetMdeg - tMdeg
	return errMdeg < o.tBandMdeg
}
