// Package aht20 drives the AHT20 temperature/humidity sensor over any
// tinygo drivers.I2C bus.
//
//	d.Trigger()              // start a conversion
//	err := d.Collect(&s)     // ErrNotReady while busy
//
// Measure does trigger plus bounded polling. I2C.Tx must do the write and
// the read with a repeated start when both are given.
package aht20

import (
	"errors"
	"time"

	"envmon-go/x/mathx"

	"tinygo.org/x/drivers"
)

const Address = 0x38

const (
	cmdTrigger    = 0xAC
	cmdInitialize = 0xBE
	cmdSoftReset  = 0xBA
	cmdStatus     = 0x71

	statusBusy       = 0x80
	statusCalibrated = 0x08
)

var (
	ErrTimeout  = errors.New("aht20: timeout")
	ErrNotReady = errors.New("aht20: not ready")
)

// Config is optional; zero fields take defaults.
type Config struct {
	Address        uint16        // 0x38
	PollInterval   time.Duration // 15 ms
	CollectTimeout time.Duration // 250 ms
	ConversionTime time.Duration // 80 ms, waited once after Trigger
}

func (c Config) withDefaults() Config {
	if c.Address == 0 {
		c.Address = Address
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 15 * time.Millisecond
	}
	if c.CollectTimeout <= 0 {
		c.CollectTimeout = 250 * time.Millisecond
	}
	if c.ConversionTime <= 0 {
		c.ConversionTime = 80 * time.Millisecond
	}
	return c
}

type Device struct {
	bus drivers.I2C
	cfg Config
	buf [7]byte
}

// New does not touch the bus.
func New(bus drivers.I2C, cfg Config) *Device {
	return &Device{bus: bus, cfg: cfg.withDefaults()}
}

// Configure calibrates the sensor if its status says it is not.
func (d *Device) Configure() error {
	st, err := d.Status()
	if err != nil {
		return err
	}
	if st&statusCalibrated != 0 {
		return nil
	}
	if err := d.bus.Tx(d.cfg.Address, []byte{cmdInitialize, 0x08, 0x00}, nil); err != nil {
		return err
	}
	time.Sleep(10 * time.Millisecond)
	return nil
}

// Reset issues a soft reset. Allow ~20 ms before the next command.
func (d *Device) Reset() error {
	return d.bus.Tx(d.cfg.Address, []byte{cmdSoftReset}, nil)
}

func (d *Device) Status() (byte, error) {
	var st [1]byte
	if err := d.bus.Tx(d.cfg.Address, []byte{cmdStatus}, st[:]); err != nil {
		return 0, err
	}
	return st[0], nil
}

func (d *Device) Trigger() error {
	return d.bus.Tx(d.cfg.Address, []byte{cmdTrigger, 0x33, 0x00}, nil)
}

// Collect reads one finished conversion into out.
func (d *Device) Collect(out *Sample) error {
	data := d.buf[:]
	if err := d.bus.Tx(d.cfg.Address, nil, data); err != nil {
		return err
	}
	if data[0]&statusCalibrated == 0 || data[0]&statusBusy != 0 {
		return ErrNotReady
	}
	out.RawHumidity = uint32(data[1])<<12 | uint32(data[2])<<4 | uint32(data[3])>>4
	out.RawTemp = uint32(data[3]&0x0F)<<16 | uint32(data[4])<<8 | uint32(data[5])
	return nil
}

// Measure triggers a conversion and polls until it completes or
// CollectTimeout elapses.
func (d *Device) Measure() (Sample, error) {
	var s Sample
	if err := d.Trigger(); err != nil {
		return s, err
	}
	time.Sleep(d.cfg.ConversionTime)
	deadline := time.Now().Add(d.cfg.CollectTimeout)
	for {
		err := d.Collect(&s)
		if !errors.Is(err, ErrNotReady) {
			return s, err
		}
		if time.Now().After(deadline) {
			return s, ErrTimeout
		}
		time.Sleep(d.cfg.PollInterval)
	}
}

// Sample holds one raw 20-bit conversion pair.
type Sample struct {
	RawHumidity uint32
	RawTemp     uint32
}

func (s Sample) Celsius() float32 {
	return float32(s.RawTemp)*200/0x100000 - 50
}

func (s Sample) RelHumidity() float32 {
	return float32(s.RawHumidity) * 100 / 0x100000
}

// DeciCelsius and DeciRelHumidity are the fixed-point forms (tenths).
func (s Sample) DeciCelsius() int32 {
	return int32(int64(s.RawTemp)*2000/0x100000) - 500
}

func (s Sample) DeciRelHumidity() int32 {
	return int32(int64(s.RawHumidity) * 1000 / 0x100000)
}

// Encode is the inverse of Celsius/RelHumidity, for emulators.
func Encode(tempC, humPct float32) Sample {
	return Sample{
		RawTemp:     min(uint32((mathx.Clamp(tempC, -50, 150)+50)*0x100000/200), 0xFFFFF),
		RawHumidity: min(uint32(mathx.Clamp(humPct, 0, 100)*0x100000/100), 0xFFFFF),
	}
}
