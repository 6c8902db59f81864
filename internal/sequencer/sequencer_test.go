package sequencer

import (
	"testing"

	"github.com/dennisrathgeb/kilnctl/internal/control"
	"github.com/dennisrathgeb/kilnctl/internal/fixedpoint"
	"github.com/dennisrathgeb/kilnctl/internal/model"
)

func newTestLoops() (*control.OuterP, *control.InnerPI, *control.CoolingBrake) {
	outer := control.NewOuterP(fixedpoint.FromInt(1), 500) // 0.5 degC deadband
	inner := control.NewInnerPI(fixedpoint.FromInt(1), fixedpoint.FromInt(100), fixedpoint.FromInt(10),
		fixedpoint.One, fixedpoint.Min, fixedpoint.One)
	brake := control.NewCoolingBrake(fixedpoint.FromInt(1), fixedpoint.One)
	return outer, inner, brake
}

func twoStepProgram() model.Program {
	return model.Program{Steps: []model.Step{
		{GradientPerHour: 150, Cooling: false, TargetTemperature: 100},
		{GradientPerHour: 100, Cooling: true, TargetTemperature: 20},
	}}
}

func TestStartLoadsFirstStep(t *testing.T) {
	outer, inner, brake := newTestLoops()
	s := New(outer, inner, brake)

	if err := s.Start(twoStepProgram()); err != nil {
		t.Fatal(err)
	}
	if !s.Active() {
		t.Fatal("expected sequencer active after Start")
	}
	if s.StepIndex() != 0 {
		t.Fatalf("StepIndex = %d, want 0", s.StepIndex())
	}
	if !outer.Enabled() {
		t.Fatal("expected outer loop enabled after Start")
	}
	if outer.IsCooling() {
		t.Fatal("first step is heating, outer should not be cooling")
	}
	if outer.TargetMdeg() != 100000 {
		t.Fatalf("TargetMdeg = %d, want 100000", outer.TargetMdeg())
	}
}

func TestAdvanceMovesToNextStep(t *testing.T) {
	outer, inner, brake := newTestLoops()
	s := New(outer, inner, brake)
	s.Start(twoStepProgram())

	// Not yet at target: well below 100 degC.
	advanced, finished := s.Advance(50000)
	if advanced || finished {
		t.Fatal("should not advance while far from target")
	}

	// At (or past) the first step's target.
	advanced, finished = s.Advance(100200)
	if !advanced {
		t.Fatal("expected advance once target reached")
	}
	if finished {
		t.Fatal("program should not be finished after its first step")
	}
	if s.StepIndex() != 1 {
		t.Fatalf("StepIndex = %d, want 1", s.StepIndex())
	}
	if !outer.IsCooling() {
		t.Fatal("second step is cooling, outer should reflect that")
	}
	if outer.TargetMdeg() != 20000 {
		t.Fatalf("TargetMdeg = %d, want 20000", outer.TargetMdeg())
	}
}

func TestAdvancePastLastStepStopsProgram(t *testing.T) {
	outer, inner, brake := newTestLoops()
	s := New(outer, inner, brake)
	s.Start(twoStepProgram())

	s.Advance(100200) // finish step 0 -> step 1 (cooling to 20)
	advanced, finished := s.Advance(19000)
	if !advanced || !finished {
		t.Fatalf("advanced=%v finished=%v, want true/true", advanced, finished)
	}
	if s.Active() {
		t.Fatal("expected sequencer inactive after final step")
	}
	if outer.Enabled() {
		t.Fatal("expected outer loop disabled after Stop")
	}
}

func TestAdvanceNoopWhenInactive(t *testing.T) {
	outer, inner, brake := newTestLoops()
	s := New(outer, inner, brake)

	advanced, finished := s.Advance(100000)
	if advanced || finished {
		t.Fatal("Advance on an idle sequencer must be a no-op")
	}
}

func TestStartRejectsInvalidProgram(t *testing.T) {
	outer, inner, brake := newTestLoops()
	s := New(outer, inner, brake)

	err := s.Start(model.Program{Steps: nil})
	if err == nil {
		t.Fatal("expected error for empty program")
	}
	if s.Active() {
		t.Fatal("rejected Start must not leave the sequencer active")
	}
}

func TestStopClearsState(t *testing.T) {
	outer, inner, brake := newTestLoops()
	s := New(outer, inner, brake)
	s.Start(twoStepProgram())

	s.Stop()
	if s.Active() {
		t.Fatal("expected inactive after Stop")
	}
	if _, ok := s.CurrentStep(); ok {
		t.Fatal("expected no current step after Stop")
	}
}
