package thermocouple

import "testing"

func TestDecodePositiveTemperature(t *testing.T) {
	// thermocouple = 100.00 degC -> 400 in 0.25-degC units, combined field = 400 (positive, fits 14 bits)
	// cold junction = 25.0 degC -> 400 in 0.0625-degC units, combined field = 400
	frame := uint32(400)<<18 | uint32(400)<<4
	r := Decode(frame)

	if r.Fault != FaultNone {
		t.Errorf("Fault = %v, want FaultNone", r.Fault)
	}
	if r.ThermoMdeg != 100000 {
		t.Errorf("ThermoMdeg = %d, want 100000", r.ThermoMdeg)
	}
	if r.ColdJunctionMdeg != 25000 {
		t.Errorf("ColdJunctionMdeg = %d, want 25000", r.ColdJunctionMdeg)
	}
}

func TestDecodeNegativeTemperature(t *testing.T) {
	// -10.00 degC -> -40 in 0.25-degC units
	combined := int32(-40) & 0x3FFF // 14-bit two's complement
	frame := uint32(combined) << 18
	r := Decode(frame)
	if r.ThermoMdeg != -10000 {
		t.Errorf("ThermoMdeg = %d, want -10000", r.ThermoMdeg)
	}
}

func TestDecodeFaultOpenCircuit(t *testing.T) {
	frame := uint32(faultAggregateBit | faultOCBit)
	r := Decode(frame)
	if r.Fault != FaultOpenCircuit {
		t.Errorf("Fault = %v, want FaultOpenCircuit", r.Fault)
	}
}

func TestDecodeFaultShortToGround(t *testing.T) {
	frame := uint32(faultAggregateBit | faultSCGBit)
	if got := Decode(frame).Fault; got != FaultShortToGround {
		t.Errorf("Fault = %v, want FaultShortToGround", got)
	}
}

func TestDecodeFaultShortToVcc(t *testing.T) {
	frame := uint32(faultAggregateBit | faultSCVBit)
	if got := Decode(frame).Fault; got != FaultShortToVcc {
		t.Errorf("Fault = %v, want FaultShortToVcc", got)
	}
}

func TestDecodeFaultUnknown(t *testing.T) {
	frame := uint32(faultAggregateBit) // aggregate set, no subcode
	if got := Decode(frame).Fault; got != FaultUnknown {
		t.Errorf("Fault = %v, want FaultUnknown", got)
	}
}

func TestDecodeNoFaultWhenAggregateClear(t *testing.T) {
	frame := uint32(faultOCBit) // subcode set but aggregate clear
	if got := Decode(frame).Fault; got != FaultNone {
		t.Errorf("Fault = %v, want FaultNone (aggregate bit gates fault reporting)", got)
	}
}
