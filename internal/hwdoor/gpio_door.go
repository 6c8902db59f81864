// Package hwdoor wraps a single level-sensitive GPIO input as the kiln
// door sensor described in spec.md §6.
package hwdoor

import (
	"fmt"

	"periph.io/x/periph/conn/gpio"
)

// GPIODoor reports open/closed from one digital input pin.
type GPIODoor struct {
	pin        gpio.PinIn
	activeHigh bool
}

// NewGPIODoor wraps a pin; Open configures it as an input (no pull change,
// no edge detection) before every read. When activeHigh is true, gpio.High
// means the door is open; otherwise gpio.Low does.
func NewGPIODoor(pin gpio.PinIn, activeHigh bool) *GPIODoor {
	return &GPIODoor{pin: pin, activeHigh: activeHigh}
}

// Open reports the current door state.
func (d *GPIODoor) Open() (bool, error) {
	if err := d.pin.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
		return false, fmt.Errorf("hwdoor: read pin: %w", err)
	}
	high := d.pin.Read() == gpio.High
	return high == d.activeHigh, nil
}
