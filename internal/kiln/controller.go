// Package kiln is the controller facade: it owns every piece of mutable
// controller state (spec.md §5 "the controller-state aggregate is
// exclusively owned by the tick context") and exposes the four foreground
// entry points -- ProgramStart, ProgramStop, ApplySettings, SetDoorOpen --
// plus the Tick method the periodic driver in internal/tick calls once per
// second. A single mutex serializes all five against each other, the same
// "hold the lock across the whole sequence" technique
// epicfatigue-drivers/pcf8575 uses for its release->write->read hardware
// sequences (see hal.go), here generalized from one hardware latch to the
// whole controller-state aggregate.
package kiln

import (
	"fmt"
	"log"
	"sync"

	"github.com/dennisrathgeb/kilnctl/internal/control"
	"github.com/dennisrathgeb/kilnctl/internal/fixedpoint"
	"github.com/dennisrathgeb/kilnctl/internal/gradient"
	"github.com/dennisrathgeb/kilnctl/internal/model"
	"github.com/dennisrathgeb/kilnctl/internal/sequencer"
	"github.com/dennisrathgeb/kilnctl/internal/ssr"
	"github.com/dennisrathgeb/kilnctl/internal/telemetry"
	"github.com/dennisrathgeb/kilnctl/internal/thermocouple"
)

// maxConsecutiveFaults is the spec.md §7 SafetyHold escalation threshold.
const maxConsecutiveFaults = 3

// Sensor is the hardware boundary the tick reads from once per tick
// (spec.md §4.2). internal/hwthermo.SPIReader implements it; tests use a
// fake.
type Sensor interface {
	Read() (thermocouple.Reading, error)
}

// Controller is the kiln's entire controller-state aggregate.
type Controller struct {
	mu sync.Mutex

	sensor    Sensor
	ssrDriver *ssr.Driver
	estimator *gradient.Estimator
	outer     *control.OuterP
	inner     *control.InnerPI
	brake     *control.CoolingBrake
	seq       *sequencer.Sequencer
	cell      *telemetry.Cell

	settings model.Settings
	tsMs     int32

	doorOpen          bool
	consecutiveFaults int
	safetyHold        bool
	safetyHoldReadOK  bool // a good read has arrived since SafetyHold was entered
	tickIndex         int64

	logger *log.Logger
}

// New wires a Controller from its hardware-facing Sensor and Coils, initial
// settings, and a telemetry.Cell to publish into. tsMs is the tick period
// in milliseconds (spec.md §4.9: Ts = 1 s in the reference design).
func New(sensor Sensor, coils ssr.Coils, settings model.Settings, cell *telemetry.Cell, tsMs int32, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.New(log.Writer(), "kiln/tick: ", log.LstdFlags)
	}

	tsQ16 := fixedpoint.FromRatio(tsMs, 1000)
	inner := control.NewInnerPI(settings.InnerKc, settings.InnerTi, settings.InnerTaw, tsQ16, 0, fixedpoint.One)
	outer := control.NewOuterP(settings.OuterKpT, settings.OuterTBandMdeg)
	brake := control.NewCoolingBrake(settings.BrakeKb, settings.BrakeUMax)
	seq := sequencer.New(outer, inner, brake)

	window := ssr.New(settings.WindowSeconds, settings.MinSwitchSeconds)
	driver := ssr.NewDriver(window, coils, false)

	return &Controller{
		sensor:    sensor,
		ssrDriver: driver,
		estimator: gradient.New(settings.InnerAlpha, tsMs),
		outer:     outer,
		inner:     inner,
		brake:     brake,
		seq:       seq,
		cell:      cell,
		settings:  settings,
		tsMs:      tsMs,
		logger:    logger,
	}
}

// ProgramStart arms the sequencer with a new program (spec.md §4.7 "On
// start"). Rejected with PreconditionFailed while in SafetyHold, per
// spec.md §7's recovery gate ("recovery requires a successful read followed
// by an explicit program_start" -- a good read only opens the gate, and
// SafetyHold itself is cleared here).
func (c *Controller) ProgramStart(p model.Program) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.safetyHold {
		if !c.safetyHoldReadOK {
			return telemetry.NewFault(telemetry.FaultPreconditionFailed, "controller is in SafetyHold, awaiting a successful sensor read")
		}
		c.safetyHold = false
		c.safetyHoldReadOK = false
	}
	if len(p.Steps) == 0 {
		return telemetry.NewFault(telemetry.FaultProgramEmpty, "program has no steps")
	}
	if err := c.seq.Start(p); err != nil {
		return fmt.Errorf("kiln: program_start: %w", err)
	}
	c.estimator.Reset()
	return nil
}

// ProgramStop disables the outer loop, detaches the program, and forces the
// SSR off synchronously, so no intermediate tick can re-energize the coils
// (spec.md §5 "Cancellation & timeouts").
func (c *Controller) ProgramStop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq.Stop()
	c.estimator.Reset()
	return c.ssrDriver.ForceOff()
}

// ApplySettings range-checks and swaps in a new tunable record atomically
// with respect to the tick (spec.md §5: "the controller observes the new
// value on the next tick with no partial-update tearing"). SSR window
// geometry (WindowSeconds/MinSwitchSeconds) is intentionally excluded from
// live retuning -- see DESIGN.md -- and only takes effect on the next
// controller restart.
func (c *Controller) ApplySettings(s model.Settings) error {
	if ok, errs := s.ValidateParameters(); !ok {
		return fmt.Errorf("kiln: apply_settings: %w: %v", telemetry.NewFault(telemetry.FaultRangeCheck, "settings failed validation"), errs)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	tsQ16 := fixedpoint.FromRatio(c.tsMs, 1000)
	c.inner.Retune(s.InnerKc, s.InnerTi, s.InnerTaw, tsQ16)
	c.outer.Retune(s.OuterKpT, s.OuterTBandMdeg)
	c.brake.Retune(s.BrakeKb, s.BrakeUMax)
	c.estimator = gradient.New(s.InnerAlpha, c.tsMs)
	c.settings = s
	return nil
}

// SetDoorOpen records the current door state, delivered as an input event
// from the (out-of-scope) UI/interrupt layer rather than polled by the tick
// itself (spec.md §6 "Input events consumed").
func (c *Controller) SetDoorOpen(open bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.doorOpen && !open {
		c.estimator.Reset()
	}
	c.doorOpen = open
}

// Settings returns a copy of the currently active settings record.
func (c *Controller) Settings() model.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// SafetyHold reports whether the controller is currently latched into
// SafetyHold (spec.md §7).
func (c *Controller) SafetyHold() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.safetyHold
}

// Snapshot returns the most recently published telemetry snapshot.
func (c *Controller) Snapshot() telemetry.Snapshot {
	return c.cell.Load()
}

// Tick runs the exact per-tick sequence from spec.md §4.9. It must be
// called at most once per real tick period and never concurrently with
// itself; internal/tick's driver enforces that by construction (one
// goroutine, one Ticker).
func (c *Controller) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() { c.tickIndex++ }()

	nowMs := c.tickIndex * int64(c.tsMs)

	reading, err := c.sensor.Read()
	if err != nil {
		c.handleSensorMiss(nowMs, fmt.Errorf("sensor read: %w", err))
		return
	}
	if reading.Fault != thermocouple.FaultNone {
		c.handleSensorMiss(nowMs, fmt.Errorf("sensor fault: %s", reading.Fault))
		return
	}
	c.consecutiveFaults = 0
	if c.safetyHold {
		c.safetyHoldReadOK = true
	}

	tMdeg := reading.ThermoMdeg
	gF := c.estimator.Update(tMdeg)

	u := fixedpoint.Q16(0)
	mode := telemetry.ModeIdle
	gradientEnabled := c.seq.Active() && !c.safetyHold

	if gradientEnabled {
		if c.outer.IsCooling() {
			hyst := fixedpoint.PerHourToPerSecond(c.settings.BrakeHysteresisPerHour)
			gMin := fixedpoint.Sub(0, c.seq.GMaxQ16())
			c.brake.SetLimit(gMin, hyst)

			uBrake := c.brake.Update(gF)
			if uBrake > 0 {
				u = uBrake
				mode = telemetry.ModeColdBrake
			} else {
				u = 0
				mode = telemetry.ModeColdPassive
			}
			c.inner.FreezeIntegrator()
		} else {
			c.brake.Reset()
			gSp := c.outer.Update(tMdeg)
			c.inner.SetSetpoint(gSp)
			u = c.inner.Run(gF)
			mode = telemetry.ModeHeat
		}
		c.seq.Advance(tMdeg)
	}

	// With no program running (finished this tick, stopped, or SafetyHold)
	// the coils are held off through the same override an open door uses,
	// so ON time scheduled earlier in the current window is not replayed.
	forceOff := c.doorOpen || !c.seq.Active()
	windowStarted, err := c.ssrDriver.Tick(nowMs, u, forceOff)
	if err != nil {
		c.logger.Printf("ssr write failed: %v", err)
		return
	}

	if windowStarted {
		c.publishSnapshot(tMdeg, gF, u, mode)
	}
}

// handleSensorMiss implements spec.md §7's local-recovery and SafetyHold
// escalation. A single fault freezes the tick (the previous SSR state is
// left untouched, deliberately not re-commanded); three consecutive faults
// force the coils off and disable the sequencer.
func (c *Controller) handleSensorMiss(nowMs int64, err error) {
	c.consecutiveFaults++
	c.logger.Printf("sensor miss (%d/%d consecutive): %v", c.consecutiveFaults, maxConsecutiveFaults, err)

	if c.consecutiveFaults < maxConsecutiveFaults {
		c.publishFaultSnapshot()
		return
	}

	c.logger.Printf("entering SafetyHold after %d consecutive sensor faults", c.consecutiveFaults)
	c.safetyHold = true
	c.seq.Stop()
	if ffErr := c.ssrDriver.ForceOff(); ffErr != nil {
		c.logger.Printf("SafetyHold force-off failed: %v", ffErr)
	}
	c.publishFaultSnapshot()
}

func (c *Controller) publishFaultSnapshot() {
	mode := telemetry.ModeIdle
	if c.safetyHold {
		mode = telemetry.ModeSafetyHold
	}
	c.cell.Publish(telemetry.Snapshot{
		SSROn:            c.ssrDriver.LastOn(),
		Mode:             mode,
		StepIndex:        c.seq.StepIndex(),
		ProgramActive:    c.seq.Active(),
		SensorFaultCount: c.consecutiveFaults,
	})
}

func (c *Controller) publishSnapshot(tMdeg int32, gF, u fixedpoint.Q16, mode telemetry.ControlMode) {
	c.cell.Publish(telemetry.Snapshot{
		MeasuredMdeg:       tMdeg,
		GradientPerHourQ16: int32(fixedpoint.PerSecondToPerHour(gF)),
		DutyQ16:            int32(u),
		SSROn:              c.ssrDriver.LastOn(),
		Mode:               mode,
		StepIndex:          c.seq.StepIndex(),
		ProgramActive:      c.seq.Active(),
		SensorFaultCount:   c.consecutiveFaults,
	})
}
