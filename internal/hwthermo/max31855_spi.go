// Package hwthermo bridges a periph.io SPI port and chip-select pin to the
// bit-exact MAX31855-style decode in internal/thermocouple.
//
// Grounded on other_examples' EdgeFlow MAX31855 executor, which brackets the
// transfer with an explicit chip-select assert/deassert around a fixed-size
// read, then hands the raw word to a pure decode function. periph.io's own
// spi.Conn already gates CS for the duration of Tx when the port was opened
// in exclusive mode, but spec.md §6 calls for an explicit software CS pin, so
// this adapter asserts it itself rather than relying on the port.
package hwthermo

import (
	"encoding/binary"
	"fmt"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/spi"

	"github.com/dennisrathgeb/kilnctl/internal/thermocouple"
)

// SPIReader reads one MAX31855-style frame per Read call.
type SPIReader struct {
	conn spi.Conn
	cs   gpio.PinOut
}

// NewSPIReader wraps an already-configured SPI connection and an
// active-low chip-select pin. cs may be nil when the port itself owns
// chip-select (e.g. a hardware CS line multiplexed by the SPI controller).
func NewSPIReader(conn spi.Conn, cs gpio.PinOut) *SPIReader {
	return &SPIReader{conn: conn, cs: cs}
}

// Read performs one 4-byte transfer and decodes it.
func (r *SPIReader) Read() (thermocouple.Reading, error) {
	if r.cs != nil {
		if err := r.cs.Out(gpio.Low); err != nil {
			return thermocouple.Reading{}, fmt.Errorf("hwthermo: assert cs: %w", err)
		}
		defer r.cs.Out(gpio.High)
	}

	tx := make([]byte, 4)
	rx := make([]byte, 4)
	if err := r.conn.Tx(tx, rx); err != nil {
		return thermocouple.Reading{}, fmt.Errorf("hwthermo: spi transfer: %w", err)
	}

	frame := binary.BigEndian.Uint32(rx)
	return thermocouple.Decode(frame), nil
}
