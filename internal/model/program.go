// Package model holds the plain data types shared across the controller
// core: firing programs/steps and controller tuning settings. These types
// carry no behavior beyond field-level validation; persistence (flash
// encode/decode, CRC) lives in internal/persistence.
package model

import "fmt"

// MaxProgramSteps and MaxPrograms bound the persisted layouts (spec.md §3).
const (
	MaxProgramSteps = 10
	MaxPrograms     = 10

	MaxGradientPerHour   = 650  // °C/h
	MaxTargetTemperature = 1300 // °C
)

// Step is one declarative leg of a firing program: ramp at GradientPerHour
// toward TargetTemperature, heating or cooling depending on Cooling.
type Step struct {
	GradientPerHour   uint16 // °C/h, [0, MaxGradientPerHour]
	Cooling           bool
	TargetTemperature uint16 // °C, [0, MaxTargetTemperature]
}

// Validate checks a single step's field ranges per spec.md §3.
func (s Step) Validate() error {
	if s.GradientPerHour > MaxGradientPerHour {
		return fmt.Errorf("model: gradient_magnitude %d exceeds max %d", s.GradientPerHour, MaxGradientPerHour)
	}
	if s.TargetTemperature > MaxTargetTemperature {
		return fmt.Errorf("model: target_temperature %d exceeds max %d", s.TargetTemperature, MaxTargetTemperature)
	}
	return nil
}

// Program is an ordered sequence of 1..MaxProgramSteps steps.
type Program struct {
	Steps []Step
}

// Validate checks the program's length invariant and every step in it.
func (p Program) Validate() error {
	if len(p.Steps) < 1 || len(p.Steps) > MaxProgramSteps {
		return fmt.Errorf("model: program length %d out of range [1,%d]", len(p.Steps), MaxProgramSteps)
	}
	for i, s := range p.Steps {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("model: step %d: %w", i, err)
		}
	}
	return nil
}

// ProgramSet is the persisted collection of saved programs (spec.md §3).
// Magic and CRC32 are handled by internal/persistence; ProgramSet only owns
// the payload.
type ProgramSet struct {
	Programs []Program
}

// Validate checks the set's count invariant and every program in it.
func (ps ProgramSet) Validate() error {
	if len(ps.Programs) > MaxPrograms {
		return fmt.Errorf("model: program count %d exceeds max %d", len(ps.Programs), MaxPrograms)
	}
	for i, p := range ps.Programs {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("model: program %d: %w", i, err)
		}
	}
	return nil
}
