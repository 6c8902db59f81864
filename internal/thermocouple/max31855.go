// Package thermocouple decodes the 32-bit MAX31855-style SPI frame described
// in spec.md §6 into a calibrated temperature and fault flags. It contains
// no SPI I/O itself — internal/hwthermo provides the hardware boundary — so
// the bit-exact decode can be tested without real hardware, matching the
// pack's convention of keeping register math separate from the bus (see
// other_examples' EdgeFlow MAX31855 executor, which keeps decode inline but
// only after factoring the SPI transfer out into its own helper).
package thermocouple

import "fmt"

// FaultKind enumerates the sensor fault taxonomy from spec.md §4.2.
type FaultKind int

const (
	FaultNone FaultKind = iota
	FaultOpenCircuit
	FaultShortToGround
	FaultShortToVcc
	FaultUnknown // aggregate fault bit set with no specific subcode
)

func (f FaultKind) String() string {
	switch f {
	case FaultNone:
		return "none"
	case FaultOpenCircuit:
		return "open_circuit"
	case FaultShortToGround:
		return "short_to_ground"
	case FaultShortToVcc:
		return "short_to_vcc"
	case FaultUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("FaultKind(%d)", int(f))
	}
}

// Reading is one decoded sample.
type Reading struct {
	ThermoMdeg       int32
	ColdJunctionMdeg int32
	Fault            FaultKind
}

// Bit layout (spec.md §6), MSB first within a 32-bit big-endian frame:
//
//	31     thermocouple sign
//	30..20 thermocouple value (11 bits, 0.25 degC units)
//	19..18 thermocouple fractional quarter
//	17     reserved
//	16     fault aggregate
//	15     cold-junction sign
//	14..8  cold-junction value (7 bits, 0.0625 degC units)
//	7..4   cold-junction fractional sixteenth
//	3      reserved
//	2      short-to-VCC fault
//	1      short-to-GND fault
//	0      open-circuit fault
const (
	bitsThermoCombined = 14 // sign + 11-bit value + 2-bit fractional quarter, taken together
	bitsCJCombined      = 12 // sign + 7-bit value + 4-bit fractional sixteenth, taken together

	faultAggregateBit = 1 << 16
	faultSCVBit       = 1 << 2
	faultSCGBit       = 1 << 1
	faultOCBit        = 1 << 0
)

// Decode converts one 32-bit big-endian MAX31855-style frame into a Reading.
//
// Per spec.md §9's resolved ambiguity, the thermocouple sign is computed from
// the full 14-bit combined field (sign + 11-bit magnitude + 2-bit quarter)
// via two's-complement sign extension, not the source's `~x+1` truncation of
// the 11-bit magnitude alone. The cold-junction field is treated the same
// way over its own 12-bit combined field.
func Decode(frame uint32) Reading {
	fault := decodeFault(frame)

	thermoCombined := int32(frame >> 18 & 0x3FFF) // bits 31..18, 14 bits
	thermoCombined = signExtend(thermoCombined, bitsThermoCombined)
	thermoMdeg := thermoCombined * 250 // 0.25 degC units -> 250 mdeg per LSB

	cjCombined := int32(frame >> 4 & 0x0FFF) // bits 15..4, 12 bits
	cjCombined = signExtend(cjCombined, bitsCJCombined)
	cjMdeg := cjCombined * 625 / 10 // 0.0625 degC units -> 62.5 mdeg per LSB

	return Reading{
		ThermoMdeg:       thermoMdeg,
		ColdJunctionMdeg: cjMdeg,
		Fault:            fault,
	}
}

func decodeFault(frame uint32) FaultKind {
	if frame&faultAggregateBit == 0 {
		return FaultNone
	}
	switch {
	case frame&faultOCBit != 0:
		return FaultOpenCircuit
	case frame&faultSCGBit != 0:
		return FaultShortToGround
	case frame&faultSCVBit != 0:
		return FaultShortToVcc
	default:
		return FaultUnknown
	}
}

// signExtend interprets the low `bits` bits of v as two's complement and
// sign-extends to the full int32 range.
func signExtend(v int32, bits uint) int32 {
	shift := 32 - bits
	return (v << shift) >> shift
}
