package control

import "github.com/dennisrathgeb/kilnctl/internal/fixedpoint"

// InnerPI is the inner rate-controller: tracks a gradient setpoint and
// produces a duty in [uMin,uMax] with back-calculation anti-windup
// (spec.md §4.4). State is owned exclusively by the tick driver.
type InnerPI struct {
	kc        fixedpoint.Q16
	tsOverTi  fixedpoint.Q16
	tsOverTaw fixedpoint.Q16
	uMin      fixedpoint.Q16
	uMax      fixedpoint.Q16

	integrator fixedpoint.Q16
	setpoint   fixedpoint.Q16
}

// NewInnerPI builds an InnerPI for a Ts-second tick from Kc/Ti/Taw tunables
// and output bounds.
func NewInnerPI(kc, ti, taw fixedpoint.Q16, tsSeconds, uMin, uMax fixedpoint.Q16) *InnerPI {
	return &InnerPI{
		kc:        kc,
		tsOverTi:  fixedpoint.Div(tsSeconds, ti),
		tsOverTaw: fixedpoint.Div(tsSeconds, taw),
		uMin:      uMin,
		uMax:      uMax,
	}
}

// Retune swaps in new Kc/Ti/Taw tunables (e.g. from apply_settings) without
// disturbing the integrator or setpoint; Ts/Ti and Ts/Taw are recomputed
// from the tsSeconds passed here.
func (p *InnerPI) Retune(kc, ti, taw, tsSeconds fixedpoint.Q16) {
	p.kc = kc
	p.tsOverTi = fixedpoint.Div(tsSeconds, ti)
	p.tsOverTaw = fixedpoint.Div(tsSeconds, taw)
}

// SetSetpoint updates the tracked gradient setpoint (°C/s, Q16.16).
func (p *InnerPI) SetSetpoint(gSp fixedpoint.Q16) {
	p.setpoint = gSp
}

// Reset zeros the integrator and setpoint (spec.md §4.4).
func (p *InnerPI) Reset() {
	p.integrator = 0
	p.setpoint = 0
}

// FreezeIntegrator decays the integrator toward zero. Called during passive
// cooling, when the heater cannot influence the plant, to prevent windup
// (spec.md §4.4).
func (p *InnerPI) FreezeIntegrator() {
	// Decay by the same Ts/Taw time constant used for back-calculation, so
	// the integrator bleeds off on the same timescale it would wind down on
	// if it were being actively unwound.
	decay := fixedpoint.Mul(p.integrator, fixedpoint.Sub(fixedpoint.One, p.tsOverTaw))
	p.integrator = decay
}

// Run computes one control step from the current filtered gradient and
// returns the clamped duty (spec.md §4.4, steps 1-4).
func (p *InnerPI) Run(gF fixedpoint.Q16) fixedpoint.Q16 {
	e := fixedpoint.Sub(p.setpoint, gF)

	uUnsat := fixedpoint.Mul(p.kc, fixedpoint.Add(e, p.integrator))
	u := fixedpoint.Clamp(uUnsat, p.uMin, p.uMax)

	backCalc := fixedpoint.Mul(p.tsOverTaw, fixedpoint.Sub(u, uUnsat))
	integratorStep := fixedpoint.Add(fixedpoint.Mul(p.tsOverTi, e), backCalc)
	p.integrator = fixedpoint.Add(p.integrator, integratorStep)

	return u
}

// Integrator exposes the current integrator value for tests and telemetry.
func (p *InnerPI) Integrator() fixedpoint.Q16 { return p.integrator }
