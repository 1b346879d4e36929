// Package rtc is the clock source: a DS3231 on any drivers.I2C bus.
package rtc

import (
	"sync"
	"time"

	"envmon-go/errcode"
	"envmon-go/services/hal/halcore"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/ds3231"
)

const (
	Address   = ds3231.Address
	regStatus = 0x0F
	statusOSF = 0x80
)

// Clock implements halcore.ClockSource.
type Clock struct {
	mu    sync.Mutex
	bus   drivers.I2C
	dev   ds3231.Device
	build func() time.Time
}

var _ halcore.ClockSource = (*Clock)(nil)

// New wraps the RTC on bus. build returns the firmware build time used
// to recover from power loss.
func New(bus drivers.I2C, build func() time.Time) *Clock {
	return &Clock{bus: bus, dev: ds3231.New(bus), build: build}
}

// Begin probes the device by reading its status register.
func (c *Clock) Begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.status(); err != nil {
		return &errcode.E{C: errcode.ClockNotFound, Op: "rtc.Begin", Err: err}
	}
	c.dev.Configure()
	return nil
}

func (c *Clock) Now() (time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, err := c.dev.ReadTime()
	if err != nil {
		return time.Time{}, errcode.Wrap(errcode.ClockRead, "rtc.Now", err)
	}
	return t, nil
}

func (c *Clock) LostPower() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, err := c.status()
	return err == nil && st&statusOSF != 0
}

// SetFromBuildTimestamp writes the build time and clears the oscillator
// stop flag.
func (c *Clock) SetFromBuildTimestamp() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.dev.SetTime(c.build()); err != nil {
		return errcode.Wrap(errcode.ClockLostPower, "rtc.SetTime", err)
	}
	st, err := c.status()
	if err != nil {
		return errcode.Wrap(errcode.ClockLostPower, "rtc.SetTime", err)
	}
	if st&statusOSF == 0 {
		return nil
	}
	return errcode.Wrap(errcode.ClockLostPower, "rtc.SetTime",
		c.bus.Tx(Address, []byte{regStatus, st &^ statusOSF}, nil))
}

func (c *Clock) status() (byte, error) {
	var st [1]byte
	err := c.bus.Tx(Address, []byte{regStatus}, st[:])
	return st[0], err
}

// ParseBuildStamp parses an RFC 3339 build stamp, falling back to def.
func ParseBuildStamp(stamp string, def time.Time) time.Time {
	if t, err := time.Parse(time.RFC3339, stamp); err == nil {
		return t
	}
	return def
}
