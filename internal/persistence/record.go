// Package persistence implements the magic+CRC32 record format from
// spec.md §4.10/§6: settings and programs are stored as flat binary
// records, each framed as {magic uint32, payload, crc32 uint32}, with the
// CRC computed over the record with the CRC field zeroed.
//
// Grounded on other_examples' speeduino ECU link layer (msEnvelope framing:
// size header, payload, hash/crc32.ChecksumIEEE trailer, verified on
// receipt) for the encode/decode shape, adapted from a wire protocol to an
// at-rest file format. There is no real flash on this host, so each record
// is backed by a plain file; Store.SaveSettings/SavePrograms emulate the page-erase-then-write
// contract by truncating and rewriting the whole file, and a torn write
// (process killed mid-Save) leaves behind a file that fails the CRC check
// on the next Load, which is the same failure mode spec.md §4.10 calls out
// for power loss during a flash page write.
package persistence

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

// ErrInvalid reports a record that failed its magic or CRC check, or whose
// payload didn't range-check. The caller's response in every case is the
// spec.md §4.10 boot contract: fall back to compiled defaults.
var ErrInvalid = fmt.Errorf("persistence: invalid record")

// frame wraps payload with {magic, crc32}, matching the on-disk layout:
// 4 bytes big-endian magic, payload, 4 bytes big-endian CRC32 of the whole
// record computed while the trailing CRC field is still zero.
func frame(magic uint32, payload []byte) []byte {
	buf := make([]byte, 4+len(payload)+4)
	binary.BigEndian.PutUint32(buf[0:4], magic)
	copy(buf[4:4+len(payload)], payload)

	crc := crc32.ChecksumIEEE(buf)
	binary.BigEndian.PutUint32(buf[4+len(payload):], crc)
	return buf
}

// unframe validates magic and CRC and returns the payload slice.
func unframe(wantMagic uint32, raw []byte) ([]byte, error) {
	if len(raw) < 8 {
		return nil, fmt.Errorf("%w: record too short (%d bytes)", ErrInvalid, len(raw))
	}
	gotMagic := binary.BigEndian.Uint32(raw[0:4])
	if gotMagic != wantMagic {
		return nil, fmt.Errorf("%w: magic %#08x, want %#08x", ErrInvalid, gotMagic, wantMagic)
	}

	zeroed := make([]byte, len(raw))
	copy(zeroed, raw[:len(raw)-4])
	wantCRC := binary.BigEndian.Uint32(raw[len(raw)-4:])
	gotCRC := crc32.ChecksumIEEE(zeroed)
	if gotCRC != wantCRC {
		return nil, fmt.Errorf("%w: crc32 %#08x, want %#08x", ErrInvalid, gotCRC, wantCRC)
	}

	return raw[4 : len(raw)-4], nil
}

// magic constants, big-endian ASCII per spec.md §6 ("SET1"/"PRG1").
const (
	magicSettings = 0x53455431 // "SET1"
	magicPrograms = 0x50524731 // "PRG1"
)
