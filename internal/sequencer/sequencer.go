// Package sequencer advances a firing program step by step, loading each
// step's setpoint into the outer controller and resetting the inner loop's
// state at program boundaries (spec.md §4.7).
package sequencer

import (
	"fmt"

	"github.com/dennisrathgeb/kilnctl/internal/control"
	"github.com/dennisrathgeb/kilnctl/internal/fixedpoint"
	"github.com/dennisrathgeb/kilnctl/internal/model"
)

// Sequencer owns the active program and step cursor, and drives the outer
// P-controller's loaded step. It holds no gradient math of its own; the
// tick driver still runs outer/inner/brake each tick and calls Advance once
// their output for the tick has been computed, per spec.md §4.9 step 3.
type Sequencer struct {
	outer *control.OuterP
	inner *control.InnerPI
	brake *control.CoolingBrake

	program   model.Program
	stepIndex int
	active    bool
}

// New builds a Sequencer around the three control loops it drives. The
// loops must already be constructed with their tunables; Sequencer only
// calls their Reset/LoadStep/Disable entry points.
func New(outer *control.OuterP, inner *control.InnerPI, brake *control.CoolingBrake) *Sequencer {
	return &Sequencer{outer: outer, inner: inner, brake: brake}
}

// Active reports whether a program is currently running.
func (s *Sequencer) Active() bool { return s.active }

// StepIndex returns the index of the currently loaded step.
func (s *Sequencer) StepIndex() int { return s.stepIndex }

// CurrentStep returns the step currently loaded into the outer controller.
// ok is false when no program is active.
func (s *Sequencer) CurrentStep() (step model.Step, ok bool) {
	if !s.active || s.stepIndex >= len(s.program.Steps) {
		return model.Step{}, false
	}
	return s.program.Steps[s.stepIndex], true
}

// GMaxQ16 returns the active step's gradient ceiling in Q16.16 °C/s, used by
// the tick driver to arm the cooling brake's limit on cooling steps.
func (s *Sequencer) GMaxQ16() fixedpoint.Q16 {
	step, ok := s.CurrentStep()
	if !ok {
		return 0
	}
	return fixedpoint.PerHourToPerSecond(int32(step.GradientPerHour))
}

// Start validates and arms a new program (spec.md §4.7 "On start"): resets
// the inner PI and outer P, loads step 0, enables the outer loop, and arms
// the gradient-enabled flag (Active() doubles as that flag here).
func (s *Sequencer) Start(p model.Program) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("sequencer: %w", err)
	}

	s.inner.Reset()
	s.brake.Reset()
	s.program = p
	s.stepIndex = 0
	s.active = true
	s.loadCurrentStep()
	return nil
}

// Stop disables the outer loop and detaches the program (spec.md §4.7 "On
// stop"). The caller is still responsible for commanding the SSR off; a
// Sequencer has no handle on ssr.Coils.
func (s *Sequencer) Stop() {
	s.outer.Disable()
	s.program = model.Program{}
	s.stepIndex = 0
	s.active = false
}

// Advance evaluates the step-completion predicate for the measured
// temperature and, if met, moves to the next step (or stops the program if
// that was the last one). It must be called exactly once per tick, after
// that tick's outer/inner/brake computation has already run (spec.md §4.7
// tie-break / §4.9 step 3), so the outgoing step's last tick still produces
// a duty before the cursor moves.
//
// advanced reports whether the step index moved (including the case where
// the program just finished); finished reports whether the program ended.
func (s *Sequencer) Advance(tMdeg int32) (advanced, finished bool) {
	if !s.active || !s.outer.Enabled() {
		return false, false
	}
	if !s.outer.AtTarget(tMdeg) {
		return false, false
	}

	s.stepIndex++
	if s.stepIndex >= len(s.program.Steps) {
		s.Stop()
		return true, true
	}
	s.loadCurrentStep()
	return true, false
}

func (s *Sequencer) loadCurrentStep() {
	step := s.program.Steps[s.stepIndex]
	targetMdeg := int32(step.TargetTemperature) * 1000
	gMax := fixedpoint.PerHourToPerSecond(int32(step.GradientPerHour))
	s.outer.LoadStep(targetMdeg, gMax, step.Cooling)
}
