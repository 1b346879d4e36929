// Package led is the alarm actuator on one GPIO output.
package led

import (
	"sync/atomic"

	"envmon-go/services/hal/halcore"
)

type LED struct {
	pin    halcore.GPIOPin
	invert bool
	rises  atomic.Uint32
	on     atomic.Bool
}

var _ halcore.Actuator = (*LED)(nil)

// New configures pin as an output with the LED off.
func New(pin halcore.GPIOPin, activeLow bool) (*LED, error) {
	if err := pin.ConfigureOutput(activeLow); err != nil {
		return nil, err
	}
	return &LED{pin: pin, invert: activeLow}, nil
}

func (l *LED) Set(high bool) {
	if high && !l.on.Swap(true) {
		l.rises.Add(1)
	} else if !high {
		l.on.Store(false)
	}
	l.pin.Set(high != l.invert)
}

// On reports the last commanded state.
func (l *LED) On() bool { return l.on.Load() }

// Pulses counts off-to-on transitions.
func (l *LED) Pulses() uint32 { return l.rises.Load() }
