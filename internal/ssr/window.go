// Package ssr implements time-proportioning control of solid-state relays:
// a continuous duty in [0,1] is converted into fixed-period ON/OFF pulses,
// with minimum-pulse clamping and a door-open safety override (spec.md §4.8).
package ssr

import "github.com/dennisrathgeb/kilnctl/internal/fixedpoint"

// Coils is the hardware boundary the windowing driver drives. All three
// physical coils must be written identically from one state; implementations
// must not expose a way to diverge them (spec.md §4.8: "writing different
// values to the three outputs is a bug").
type Coils interface {
	Set(on bool) error
}

// Window is the SSR windowing driver's owned state.
type Window struct {
	windowMs    int64
	minSwitchMs int64

	windowStartMs int64
	tonMs         int64
	started       bool

	on         bool
	dutyQ16    fixedpoint.Q16
}

// New creates a Window with the given period and minimum switch time in
// seconds. Panics if the runtime invariant Tmin < Tw/2 doesn't hold, since
// that is a configuration bug the caller (settings validation) must prevent
// before construction.
func New(windowSeconds, minSwitchSeconds int32) *Window {
	if int64(minSwitchSeconds)*2 >= int64(windowSeconds) {
		panic("ssr: minSwitchSeconds must be less than half windowSeconds")
	}
	return &Window{
		windowMs:    int64(windowSeconds) * 1000,
		minSwitchMs: int64(minSwitchSeconds) * 1000,
	}
}

// clampDuty applies the minimum-pulse rule from spec.md §4.8: a duty that
// would produce a sub-Tmin pulse (ON or OFF) is snapped to the nearer
// extreme.
func (w *Window) clampDuty(u fixedpoint.Q16) fixedpoint.Q16 {
	minFrac := fixedpoint.Div(fixedpoint.FromInt(int32(w.minSwitchMs)), fixedpoint.FromInt(int32(w.windowMs)))
	if u < minFrac {
		return 0
	}
	if u > fixedpoint.Sub(fixedpoint.One, minFrac) {
		return fixedpoint.One
	}
	return u
}

// Update advances the windowing state machine by one tick. nowMs is a
// monotonic millisecond clock. It returns whether the SSR should be on this
// tick and whether a new window was started this tick (spec.md §4.8, §4.9
// step 6 uses the latter to gate telemetry).
func (w *Window) Update(nowMs int64, uRaw fixedpoint.Q16, doorOpen bool) (ssrOn bool, windowStarted bool) {
	u := w.clampDuty(uRaw)
	w.dutyQ16 = u

	if !w.started || nowMs-w.windowStartMs >= w.windowMs {
		w.windowStartMs = nowMs
		// ton_ms = u (Q16 fraction) * Tw_ms, shifted back down by 16 — the
		// literal "q16 multiplied by Tw_ms and shifted" from spec.md §4.8.
		w.tonMs = (int64(u) * w.windowMs) >> 16
		w.started = true
		windowStarted = true
	}

	elapsed := nowMs - w.windowStartMs
	on := elapsed < w.tonMs

	if doorOpen {
		on = false
	}
	w.on = on
	return on, windowStarted
}

// On reports the last computed SSR state.
func (w *Window) On() bool { return w.on }

// Duty reports the last clamped duty, for telemetry.
func (w *Window) Duty() fixedpoint.Q16 { return w.dutyQ16 }

// WindowStartMs exposes the current window's start time, for tests.
func (w *Window) WindowStartMs() int64 { return w.windowStartMs }
