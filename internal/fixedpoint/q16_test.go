package fixedpoint

import "testing"

func TestMulIdentity(t *testing.T) {
	for a := int32(-30000); a <= 30000; a += 977 {
		got := Mul(Q16(a), One)
		if got != Q16(a) {
			t.Errorf("Mul(%d, One) = %d, want %d", a, got, a)
		}
	}
}

func TestDivIdentity(t *testing.T) {
	for a := int32(-30000); a <= 30000; a += 977 {
		got := Div(Q16(a), One)
		if got != Q16(a) {
			t.Errorf("Div(%d, One) = %d, want %d", a, got, a)
		}
	}
}

func TestMulCommutative(t *testing.T) {
	as := []int32{-30000, -123, 0, 1, 456, 30000}
	bs := []int32{-30000, -123, 0, 1, 456, 30000}
	for _, a := range as {
		for _, b := range bs {
			if Mul(Q16(a), Q16(b)) != Mul(Q16(b), Q16(a)) {
				t.Errorf("Mul(%d,%d) != Mul(%d,%d)", a, b, b, a)
			}
		}
	}
}

func TestMulSaturatesHigh(t *testing.T) {
	if got := Mul(Max, 2*One); got != Max {
		t.Errorf("Mul(Max, 2*One) = %d, want %d", got, Max)
	}
}

func TestMulSaturatesLow(t *testing.T) {
	if got := Mul(Min, 2*One); got != Min {
		t.Errorf("Mul(Min, 2*One) = %d, want %d", got, Min)
	}
}

func TestDivByZero(t *testing.T) {
	if got := Div(FromInt(5), 0); got != Max {
		t.Errorf("Div(5,0) = %d, want Max", got)
	}
	if got := Div(FromInt(-5), 0); got != Min {
		t.Errorf("Div(-5,0) = %d, want Min", got)
	}
}

func TestAddSubSaturate(t *testing.T) {
	if got := Add(Max, One); got != Max {
		t.Errorf("Add(Max, One) = %d, want Max", got)
	}
	if got := Sub(Min, One); got != Min {
		t.Errorf("Sub(Min, One) = %d, want Min", got)
	}
}

func TestClamp(t *testing.T) {
	lo, hi := FromInt(-5), FromInt(5)
	cases := []struct {
		in, want Q16
	}{
		{FromInt(-10), lo},
		{FromInt(10), hi},
		{FromInt(3), FromInt(3)},
	}
	for _, c := range cases {
		if got := Clamp(c.in, lo, hi); got != c.want {
			t.Errorf("Clamp(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestPerHourToPerSecondRoundTrip(t *testing.T) {
	// 650 deg/h -> per spec.md ~ +-11836 q16 (tolerance for integer division).
	q := PerHourToPerSecond(650)
	const want = 11832 // 650*65536/3600, truncated
	if int32(q) < want-5 || int32(q) > want+5 {
		t.Errorf("PerHourToPerSecond(650) = %d, want ~%d", q, want)
	}
}

func TestFromRatioDivByZero(t *testing.T) {
	if got := FromRatio(1, 0); got != Max {
		t.Errorf("FromRatio(1,0) = %d, want Max", got)
	}
}
