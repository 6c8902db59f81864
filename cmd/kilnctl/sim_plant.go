package main

import (
	"sync"

	"github.com/dennisrathgeb/kilnctl/internal/model"
	"github.com/dennisrathgeb/kilnctl/internal/thermocouple"
)

// simPlant is a bench-test stand-in for both the thermocouple and the SSR
// coils: Set records the commanded duty implicitly by tracking on/off time,
// and Read integrates a crude first-order thermal model so -simulate-config
// can exercise the whole controller without real hardware. It has no
// control-loop logic of its own -- it is the "plant" the controller drives,
// not a second controller.
type simPlant struct {
	mu sync.Mutex

	mdeg   int32
	on     bool
	gainMdegPerTickOn  int32
	lossMdegPerTickIdle int32
}

func newSimPlant(settings model.Settings) *simPlant {
	return &simPlant{
		mdeg:               20000, // start at room temperature, 20 C
		gainMdegPerTickOn:  60,    // heating rate while the SSR is commanded on
		lossMdegPerTickIdle: 2,     // ambient loss while off, roughly proportional to delta-T in a real plant
	}
}

// Read implements kiln.Sensor.
func (p *simPlant) Read() (thermocouple.Reading, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.on {
		p.mdeg += p.gainMdegPerTickOn
	} else if p.mdeg > 20000 {
		p.mdeg -= p.lossMdegPerTickIdle
	}
	return thermocouple.Reading{ThermoMdeg: p.mdeg, ColdJunctionMdeg: 20000, Fault: thermocouple.FaultNone}, nil
}

// Set implements ssr.Coils.
func (p *simPlant) Set(on bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.on = on
	return nil
}
