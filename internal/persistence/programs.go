package persistence

import (
	"encoding/binary"

	"github.com/dennisrathgeb/kilnctl/internal/model"
)

// Program set payload layout: count (1 byte) followed by up to
// model.MaxPrograms programs, each itself count (1 byte) followed by up to
// model.MaxProgramSteps steps of {gradient uint16, cooling byte, target
// uint16} -- 5 bytes per step. Trailing slots are not written; the record
// grows and shrinks with the actual program count, matching spec.md §3's
// {count, programs[count]} shape rather than a fixed-size array of maximum
// width.
const bytesPerStep = 5

// EncodeProgramSet frames a ProgramSet record with the "PRG1" magic.
func EncodeProgramSet(ps model.ProgramSet) []byte {
	payload := []byte{byte(len(ps.Programs))}
	for _, p := range ps.Programs {
		payload = append(payload, byte(len(p.Steps)))
		for _, s := range p.Steps {
			var stepBuf [bytesPerStep]byte
			binary.BigEndian.PutUint16(stepBuf[0:2], s.GradientPerHour)
			if s.Cooling {
				stepBuf[2] = 1
			}
			binary.BigEndian.PutUint16(stepBuf[3:5], s.TargetTemperature)
			payload = append(payload, stepBuf[:]...)
		}
	}
	return frame(magicPrograms, payload)
}

// DecodeProgramSet validates and parses a program-set record.
func DecodeProgramSet(raw []byte) (model.ProgramSet, error) {
	payload, err := unframe(magicPrograms, raw)
	if err != nil {
		return model.ProgramSet{}, err
	}
	if len(payload) < 1 {
		return model.ProgramSet{}, ErrInvalid
	}

	count := int(payload[0])
	if count > model.MaxPrograms {
		return model.ProgramSet{}, ErrInvalid
	}

	off := 1
	programs := make([]model.Program, 0, count)
	for i := 0; i < count; i++ {
		if off >= len(payload) {
			return model.ProgramSet{}, ErrInvalid
		}
		stepCount := int(payload[off])
		off++
		if stepCount > model.MaxProgramSteps {
			return model.ProgramSet{}, ErrInvalid
		}
		if off+stepCount*bytesPerStep > len(payload) {
			return model.ProgramSet{}, ErrInvalid
		}

		steps := make([]model.Step, stepCount)
		for j := 0; j < stepCount; j++ {
			b := payload[off : off+bytesPerStep]
			steps[j] = model.Step{
				GradientPerHour:   binary.BigEndian.Uint16(b[0:2]),
				Cooling:           b[2] != 0,
				TargetTemperature: binary.BigEndian.Uint16(b[3:5]),
			}
			off += bytesPerStep
		}
		programs = append(programs, model.Program{Steps: steps})
	}
	if off != len(payload) {
		return model.ProgramSet{}, ErrInvalid
	}

	ps := model.ProgramSet{Programs: programs}
	if err := ps.Validate(); err != nil {
		return model.ProgramSet{}, ErrInvalid
	}
	return ps, nil
}
