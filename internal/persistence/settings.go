package persistence

import (
	"encoding/binary"

	"github.com/dennisrathgeb/kilnctl/internal/model"
)

// settingsFieldCount is the number of int32-sized fields in model.Settings,
// in declaration order. Extending the record requires a new magic
// (spec.md §6), not a larger payload under the same one.
const settingsFieldCount = 12

// EncodeSettings frames a Settings record with the "SET1" magic.
func EncodeSettings(s model.Settings) []byte {
	payload := make([]byte, settingsFieldCount*4)
	fields := settingsFields(&s)
	for i, f := range fields {
		binary.BigEndian.PutUint32(payload[i*4:i*4+4], uint32(*f))
	}
	return frame(magicSettings, payload)
}

// DecodeSettings validates and parses a settings record. A failure at any
// stage -- magic, CRC, or field range check -- returns ErrInvalid, per
// spec.md §4.10 ("any failure => return Invalid").
func DecodeSettings(raw []byte) (model.Settings, error) {
	payload, err := unframe(magicSettings, raw)
	if err != nil {
		return model.Settings{}, err
	}
	if len(payload) != settingsFieldCount*4 {
		return model.Settings{}, ErrInvalid
	}

	var s model.Settings
	fields := settingsFields(&s)
	for i, f := range fields {
		*f = int32(binary.BigEndian.Uint32(payload[i*4 : i*4+4]))
	}

	if ok, _ := s.ValidateParameters(); !ok {
		return model.Settings{}, ErrInvalid
	}
	return s, nil
}

// settingsFields lists every field of s as an *int32 (Q16 values reinterpret
// their int32 representation), fixing the wire order once in one place so
// Encode and Decode can never drift apart from each other.
func settingsFields(s *model.Settings) []*int32 {
	return []*int32{
		(*int32)(&s.InnerKc),
		(*int32)(&s.InnerTi),
		(*int32)(&s.InnerTaw),
		(*int32)(&s.InnerAlpha),
		(*int32)(&s.OuterKpT),
		&s.OuterTBandMdeg,
		&s.BrakeGMinPerHour,
		&s.BrakeHysteresisPerHour,
		(*int32)(&s.BrakeKb),
		(*int32)(&s.BrakeUMax),
		&s.WindowSeconds,
		&s.MinSwitchSeconds,
	}
}
