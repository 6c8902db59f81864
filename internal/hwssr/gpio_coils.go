// Package hwssr adapts three raw GPIO output pins into the ssr.Coils
// boundary, driving them identically as spec.md §6's GPIO contract requires.
//
// Grounded on epicfatigue-drivers/pcf8575: a mutex-protected shadow-state
// driver over a fixed set of pins, logging gated by a debug flag, adapted
// here from a 16-bit I2C expander latch to three periph.io GPIO pins.
package hwssr

import (
	"fmt"
	"log"
	"sync"

	"periph.io/x/periph/conn/gpio"
)

// GPIOCoils drives three active-high digital outputs from one boolean
// state. All three pins are written every call; nothing in this package can
// make them diverge.
type GPIOCoils struct {
	pins  [3]gpio.PinOut
	mu    sync.Mutex
	debug bool
	last  bool
}

// NewGPIOCoils wraps three already-configured output pins.
func NewGPIOCoils(a, b, c gpio.PinOut, debug bool) *GPIOCoils {
	return &GPIOCoils{pins: [3]gpio.PinOut{a, b, c}, debug: debug}
}

// Set drives all three coils to the same level.
func (g *GPIOCoils) Set(on bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	level := gpio.Low
	if on {
		level = gpio.High
	}

	for i, p := range g.pins {
		if err := p.Out(level); err != nil {
			return fmt.Errorf("hwssr: coil %d (%s): %w", i, p.Name(), err)
		}
	}
	g.last = on

	if g.debug {
		log.Printf("hwssr: coils -> %v", on)
	}
	return nil
}

// Last reports the last commanded state.
func (g *GPIOCoils) Last() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}
