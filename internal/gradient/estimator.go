// Package gradient implements the discrete derivative + EMA filter that
// turns raw temperature samples into a filtered rate-of-change, per
// spec.md §4.3. Its state is owned exclusively by the tick driver.
package gradient

import "github.com/dennisrathgeb/kilnctl/internal/fixedpoint"

// Estimator tracks the previous sample and the previous filtered gradient.
// Call Update exactly once per tick, even on ticks where the control loop
// doesn't otherwise run, or the EMA's implicit timing assumption drifts.
type Estimator struct {
	alpha fixedpoint.Q16 // EMA coefficient, [0,1]
	tsMs  int32          // sample interval, milliseconds

	prevMdeg    int32
	filteredQ16 fixedpoint.Q16
	initialized bool
}

// New creates an Estimator sampling every tsMs milliseconds with EMA
// coefficient alpha.
func New(alpha fixedpoint.Q16, tsMs int32) *Estimator {
	return &Estimator{alpha: alpha, tsMs: tsMs}
}

// Reset clears the estimator back to its just-constructed state. Called on
// program_start/program_stop/door_open->closed per spec.md §3 lifecycles.
func (e *Estimator) Reset() {
	e.initialized = false
	e.prevMdeg = 0
	e.filteredQ16 = 0
}

// Update feeds one new temperature sample (millidegrees) and returns the
// filtered gradient in °C/s, Q16.16. The first call after construction or
// Reset returns exactly 0 and only primes prevMdeg.
func (e *Estimator) Update(tMdeg int32) fixedpoint.Q16 {
	if !e.initialized {
		e.prevMdeg = tMdeg
		e.initialized = true
		e.filteredQ16 = 0
		return 0
	}

	dT := tMdeg - e.prevMdeg
	gHat := fixedpoint.ShiftDiv(int64(dT), int64(e.tsMs))

	oneMinusAlpha := fixedpoint.Sub(fixedpoint.One, e.alpha)
	filtered := fixedpoint.Add(
		fixedpoint.Mul(e.alpha, e.filteredQ16),
		fixedpoint.Mul(oneMinusAlpha, gHat),
	)

	e.prevMdeg = tMdeg
	e.filteredQ16 = filtered
	return filtered
}

// Filtered returns the last computed filtered gradient without advancing
// state; useful for telemetry between ticks.
func (e *Estimator) Filtered() fixedpoint.Q16 {
	return e.filteredQ16
}
