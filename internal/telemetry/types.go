// Package telemetry holds the read-only state kilnctl publishes once per
// window-start tick and once per sensor-miss tick (spec.md §4.9 step 6,
// SPEC_FULL.md §3/§4.11): a
// lock-free snapshot cell plus a Prometheus exporter fed exclusively from
// it.
package telemetry

import "fmt"

// ControlMode mirrors which branch of the tick (spec.md §4.9) produced the
// current duty.
type ControlMode int

const (
	ModeIdle ControlMode = iota
	ModeHeat
	ModeColdBrake
	ModeColdPassive
	ModeSafetyHold
)

func (m ControlMode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeHeat:
		return "heat"
	case ModeColdBrake:
		return "cold_brake"
	case ModeColdPassive:
		return "cold_passive"
	case ModeSafetyHold:
		return "safety_hold"
	default:
		return fmt.Sprintf("ControlMode(%d)", int(m))
	}
}

// Snapshot is the full telemetry record for one tick, written by the tick
// driver and read by the foreground/metrics path without ever touching the
// controller's own state.
type Snapshot struct {
	MeasuredMdeg     int32
	GradientPerHourQ16 int32 // Q16.16 °C/h, widened to avoid importing fixedpoint here
	DutyQ16          int32 // Q16.16 duty in [0,1]
	SSROn            bool
	Mode             ControlMode
	StepIndex        int
	ProgramActive    bool
	SensorFaultCount int // consecutive faults observed by the tick driver
}

// FaultKind enumerates the error taxonomy from spec.md §7.
type FaultKind int

const (
	FaultSensorOpenCircuit FaultKind = iota
	FaultSensorShortToGround
	FaultSensorShortToVcc
	FaultSensorUnknown
	FaultSensorTimeout
	FaultPersistenceInvalid
	FaultRangeCheck
	FaultProgramEmpty
	FaultPreconditionFailed
)

func (f FaultKind) String() string {
	switch f {
	case FaultSensorOpenCircuit:
		return "sensor_open_circuit"
	case FaultSensorShortToGround:
		return "sensor_short_to_ground"
	case FaultSensorShortToVcc:
		return "sensor_short_to_vcc"
	case FaultSensorUnknown:
		return "sensor_unknown"
	case FaultSensorTimeout:
		return "sensor_timeout"
	case FaultPersistenceInvalid:
		return "persistence_invalid"
	case FaultRangeCheck:
		return "range_check"
	case FaultProgramEmpty:
		return "program_empty"
	case FaultPreconditionFailed:
		return "precondition_failed"
	default:
		return fmt.Sprintf("FaultKind(%d)", int(f))
	}
}

// Fault is a typed sentinel error so callers can use errors.Is/errors.As
// against a specific FaultKind (spec.md §7).
type Fault struct {
	Kind FaultKind
	Msg  string
}

func (f *Fault) Error() string {
	if f.Msg == "" {
		return f.Kind.String()
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Msg)
}

// Is implements errors.Is comparison keyed on Kind, so callers can write
// errors.Is(err, &Fault{Kind: FaultProgramEmpty}) without matching Msg.
func (f *Fault) Is(target error) bool {
	other, ok := target.(*Fault)
	if !ok {
		return false
	}
	return f.Kind == other.Kind
}

// NewFault constructs a Fault of the given kind with a formatted message.
func NewFault(kind FaultKind, format string, args ...any) *Fault {
	return &Fault{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
