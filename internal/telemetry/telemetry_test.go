package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCellLoadReturnsIdleBeforeAnyPublish(t *testing.T) {
	c := NewCell()
	s := c.Load()
	if s.Mode != ModeIdle {
		t.Fatalf("Mode = %v, want ModeIdle", s.Mode)
	}
}

func TestCellPublishThenLoadRoundTrips(t *testing.T) {
	c := NewCell()
	want := Snapshot{MeasuredMdeg: 123456, Mode: ModeHeat, StepIndex: 2, ProgramActive: true}
	c.Publish(want)

	got := c.Load()
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestFaultIsMatchesOnKindOnly(t *testing.T) {
	a := NewFault(FaultSensorTimeout, "tick 7")
	b := NewFault(FaultSensorTimeout, "different message, tick 12")
	if !a.Is(b) {
		t.Fatal("expected two Faults of the same Kind to match Is")
	}

	c := NewFault(FaultRangeCheck, "tick 7")
	if a.Is(c) {
		t.Fatal("expected Faults of different Kind not to match Is")
	}
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatal(err)
	}
	return m.GetGauge().GetValue()
}

func TestExporterUpdateReflectsSnapshot(t *testing.T) {
	cell := NewCell()
	reg := prometheus.NewRegistry()
	exp := NewExporter(cell, reg)

	cell.Publish(Snapshot{
		MeasuredMdeg:       950000,
		GradientPerHourQ16: 150 << 16,
		DutyQ16:            1 << 15, // 0.5
		SSROn:              true,
		Mode:               ModeHeat,
	})
	exp.Update()

	if got := gaugeValue(t, exp.temperature); got != 950000 {
		t.Errorf("temperature gauge = %v, want 950000", got)
	}
	if got := gaugeValue(t, exp.gradient); got != 150 {
		t.Errorf("gradient gauge = %v, want 150", got)
	}
	if got := gaugeValue(t, exp.duty); got != 0.5 {
		t.Errorf("duty gauge = %v, want 0.5", got)
	}
	if got := gaugeValue(t, exp.ssrOn); got != 1 {
		t.Errorf("ssrOn gauge = %v, want 1", got)
	}
	if got := gaugeValue(t, exp.mode); got != float64(ModeHeat) {
		t.Errorf("mode gauge = %v, want %v", got, float64(ModeHeat))
	}
}

func TestExporterFaultCounterTracksDeltaNotAbsolute(t *testing.T) {
	cell := NewCell()
	reg := prometheus.NewRegistry()
	exp := NewExporter(cell, reg)

	cell.Publish(Snapshot{SensorFaultCount: 1})
	exp.Update()
	cell.Publish(Snapshot{SensorFaultCount: 3})
	exp.Update()

	var m dto.Metric
	if err := exp.faults.Write(&m); err != nil {
		t.Fatal(err)
	}
	if got := m.GetCounter().GetValue(); got != 3 {
		t.Errorf("faults counter = %v, want 3", got)
	}
}
