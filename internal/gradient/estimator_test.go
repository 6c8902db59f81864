package gradient

import (
	"testing"

	"github.com/dennisrathgeb/kilnctl/internal/fixedpoint"
)

func TestFirstCallReturnsZero(t *testing.T) {
	e := New(fixedpoint.FromRatio(8, 10), 1000)
	if g := e.Update(20000); g != 0 {
		t.Errorf("first Update = %d, want 0", g)
	}
}

func TestConvergesToConstantSlope(t *testing.T) {
	const alphaNum, alphaDen = 8, 10
	alpha := fixedpoint.FromRatio(alphaNum, alphaDen)
	e := New(alpha, 1000)

	// k = 1 degC/s = 1000 mdeg/s, Ts = 1000ms.
	const kMdegPerTick = 1000
	T := int32(20000)

	e.Update(T) // primes prevMdeg, returns 0

	const wantQ16 = int32(fixedpoint.One) // k=1.0 degC/s in Q16
	const epsQ16 = wantQ16 / 100          // 0.01k

	ticks := 0
	var g fixedpoint.Q16
	for ticks = 1; ticks <= 22; ticks++ {
		T += kMdegPerTick
		g = e.Update(T)
	}

	diff := int32(g) - wantQ16
	if diff < 0 {
		diff = -diff
	}
	if diff > epsQ16 {
		t.Errorf("after 22 ticks, g=%v (%.4f), want within %.4f of 1.0", g, fixedpoint.ToFloatDebug(g), fixedpoint.ToFloatDebug(fixedpoint.Q16(epsQ16)))
	}
}

func TestResetReturnsToInitialState(t *testing.T) {
	e := New(fixedpoint.FromRatio(8, 10), 1000)
	e.Update(20000)
	e.Update(21000)
	e.Reset()
	if g := e.Update(50000); g != 0 {
		t.Errorf("Update after Reset = %d, want 0", g)
	}
}
