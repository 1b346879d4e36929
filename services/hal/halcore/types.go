// services/hal/halcore/types.go
package halcore

import (
	"time"
)

// I2C is the subset we need (compatible with tinygo.org/x/drivers.I2C).
type I2C interface {
	Tx(addr uint16, w, r []byte) error
}

// ---- Environment sources ----

// EnvSource reads temperature and humidity. A read may fail or yield NaN;
// callers validate.
type EnvSource interface {
	ReadTemperatureC() (float32, error)
	ReadHumidityPct() (float32, error)
}

// LightSource reads a raw ambient-light value. Larger means brighter.
type LightSource interface {
	ReadRaw() (int, error)
}

// ClockSource is the battery-backed real-time clock.
type ClockSource interface {
	// Begin probes the device; an error means it is absent.
	Begin() error
	Now() (time.Time, error)
	// LostPower reports that the time is no longer trustworthy.
	LostPower() bool
	// SetFromBuildTimestamp loads the firmware build time and clears the
	// lost-power flag.
	SetFromBuildTimestamp() error
}

// Actuator is the alarm LED.
type Actuator interface {
	Set(high bool)
}

// Power puts the device into deep sleep. On MCUs it does not return: the
// device resets when d has elapsed. Simulated platforms sleep and return.
type Power interface {
	DeepSleep(d time.Duration)
}

// ---- GPIO abstractions ----

type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

type GPIOPin interface {
	ConfigureInput(pull Pull) error
	ConfigureOutput(initial bool) error
	Set(level bool)
	Get() bool
	Number() int
}

// Edge selection for IRQ.
type Edge uint8

const (
	EdgeNone Edge = iota
	EdgeRising
	EdgeFalling
	EdgeBoth
)

func (e Edge) String() string {
	switch e {
	case EdgeRising:
		return "rising"
	case EdgeFalling:
		return "falling"
	case EdgeBoth:
		return "both"
	default:
		return "none"
	}
}

// IRQPin extends GPIOPin with interrupts. The handler runs in interrupt
// context on MCUs: it must not block or allocate.
type IRQPin interface {
	GPIOPin
	SetIRQ(edge Edge, handler func()) error
	ClearIRQ() error
}
