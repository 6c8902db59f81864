package model

import "github.com/dennisrathgeb/kilnctl/internal/fixedpoint"

// Settings is the flat record of controller tunables described in
// spec.md §3. Every field has a documented [min, max]; ValidateParameters
// follows the same per-field-error-map shape the pack's driver factories use
// (see epicfatigue-drivers/*/factory.go ValidateParameters) so a UI or test
// can report every invalid field at once instead of failing fast.
type Settings struct {
	// Inner PI (rate controller)
	InnerKc  fixedpoint.Q16
	InnerTi  fixedpoint.Q16 // seconds
	InnerTaw fixedpoint.Q16 // seconds
	InnerAlpha fixedpoint.Q16 // gradient EMA coefficient, [0,1]

	// Outer P (temperature controller)
	OuterKpT     fixedpoint.Q16
	OuterTBandMdeg int32

	// Cooling brake
	BrakeGMinPerHour  int32 // °C/h, negative; range-checked and persisted only, the brake limit comes from the cooling step's gradient
	BrakeHysteresisPerHour int32 // °C/h, positive
	BrakeKb           fixedpoint.Q16
	BrakeUMax         fixedpoint.Q16 // [0,1]

	// SSR window
	WindowSeconds    int32
	MinSwitchSeconds int32
}

// Defaults returns the compiled-in fallback settings used when a persisted
// record is invalid (spec.md §4.10 boot contract).
func Defaults() Settings {
	return Settings{
		InnerKc:    fixedpoint.FromRatio(8, 1),
		InnerTi:    fixedpoint.FromRatio(120, 1),
		InnerTaw:   fixedpoint.FromRatio(30, 1),
		InnerAlpha: fixedpoint.FromRatio(8, 10),

		OuterKpT:       fixedpoint.FromRatio(1, 2),
		OuterTBandMdeg: 2000,

		BrakeGMinPerHour:       -150,
		BrakeHysteresisPerHour: 20,
		BrakeKb:                fixedpoint.FromRatio(2, 1),
		BrakeUMax:              fixedpoint.FromRatio(6, 10),

		WindowSeconds:    10,
		MinSwitchSeconds: 1,
	}
}

// ValidateParameters range-checks every field and returns the set of failures
// keyed by field name, mirroring the pack's factory.ValidateParameters shape.
// An out-of-range value invalidates the whole record (spec.md §3).
func (s Settings) ValidateParameters() (bool, map[string][]string) {
	errs := map[string][]string{}

	addErr := func(field, msg string) {
		errs[field] = append(errs[field], msg)
	}

	if s.InnerKc <= 0 {
		addErr("InnerKc", "must be positive")
	}
	if s.InnerTi <= 0 {
		addErr("InnerTi", "must be positive (seconds)")
	}
	if s.InnerTaw <= 0 {
		addErr("InnerTaw", "must be positive (seconds)")
	}
	if s.InnerAlpha < 0 || s.InnerAlpha > fixedpoint.One {
		addErr("InnerAlpha", "must be in [0,1]")
	}
	if s.OuterKpT <= 0 {
		addErr("OuterKpT", "must be positive")
	}
	if s.OuterTBandMdeg < 0 || s.OuterTBandMdeg > 50000 {
		addErr("OuterTBandMdeg", "must be in [0,50000] millidegrees")
	}
	if s.BrakeGMinPerHour >= 0 {
		addErr("BrakeGMinPerHour", "must be negative (a descent rate limit)")
	}
	if s.BrakeGMinPerHour < -int32(MaxGradientPerHour) {
		addErr("BrakeGMinPerHour", "must not exceed the program schema's gradient magnitude in magnitude")
	}
	if s.BrakeHysteresisPerHour <= 0 {
		addErr("BrakeHysteresisPerHour", "must be positive")
	}
	if s.BrakeKb <= 0 {
		addErr("BrakeKb", "must be positive")
	}
	if s.BrakeUMax <= 0 || s.BrakeUMax > fixedpoint.One {
		addErr("BrakeUMax", "must be in (0,1]")
	}
	if s.WindowSeconds <= 0 {
		addErr("WindowSeconds", "must be positive")
	}
	if s.MinSwitchSeconds <= 0 {
		addErr("MinSwitchSeconds", "must be positive")
	}
	if s.WindowSeconds > 0 && 2*s.MinSwitchSeconds >= s.WindowSeconds {
		addErr("MinSwitchSeconds", "must be less than half the window period")
	}

	if len(errs) > 0 {
		return false, errs
	}
	return true, nil
}
