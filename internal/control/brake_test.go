package control

import (
	"testing"

	"github.com/dennisrathgeb/kilnctl/internal/fixedpoint"
)

func newTestBrake() *CoolingBrake {
	b := NewCoolingBrake(fixedpoint.FromRatio(2, 1), fixedpoint.FromRatio(6, 10))
	gMin := fixedpoint.PerHourToPerSecond(-150)
	hyst := fixedpoint.PerHourToPerSecond(20)
	b.SetLimit(gMin, hyst)
	return b
}

func TestBrakeHysteresis(t *testing.T) {
	b := newTestBrake()
	gMin := fixedpoint.PerHourToPerSecond(-150)
	hyst := fixedpoint.PerHourToPerSecond(20)

	if b.Latched() {
		t.Fatal("expected unlatched initially")
	}

	b.Update(fixedpoint.Sub(gMin, fixedpoint.Mul(hyst, fixedpoint.FromInt(2))))
	if !b.Latched() {
		t.Error("expected latched after g_f < gMin-2*hyst")
	}

	b.Update(gMin)
	if !b.Latched() {
		t.Error("expected still latched at g_f == gMin")
	}

	b.Update(fixedpoint.Add(gMin, fixedpoint.Mul(hyst, fixedpoint.FromInt(2))))
	if b.Latched() {
		t.Error("expected unlatched after g_f > gMin+2*hyst")
	}
}

func TestBrakeOutputBounded(t *testing.T) {
	b := newTestBrake()
	gMin := fixedpoint.PerHourToPerSecond(-150)

	u := b.Update(fixedpoint.Sub(gMin, fixedpoint.FromInt(100)))
	if u < 0 || u > fixedpoint.FromRatio(6, 10) {
		t.Errorf("u=%v out of [0,uMax]", fixedpoint.ToFloatDebug(u))
	}
}

func TestBrakeForcedOffWhenNonNegative(t *testing.T) {
	b := newTestBrake()
	gMin := fixedpoint.PerHourToPerSecond(-150)
	hyst := fixedpoint.PerHourToPerSecond(20)
	b.Update(fixedpoint.Sub(gMin, fixedpoint.Mul(hyst, fixedpoint.FromInt(2))))
	if !b.Latched() {
		t.Fatal("setup: expected latched")
	}
	u := b.Update(fixedpoint.FromInt(0))
	if b.Latched() {
		t.Error("g_f>=0 must force unlatched")
	}
	if u != 0 {
		t.Errorf("u=%v, want 0 once forced off", u)
	}
}
