package thsensor

import (
	"errors"

	"envmon-go/services/hal/halcore"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/bme280"
)

var ErrNoBME280 = errors.New("bme280: not found")

// BME280 reads temperature and humidity; pressure is not used. The
// driver reports milli-celsius and hundredths of %RH.
type BME280 struct {
	dev bme280.Device
}

var _ halcore.EnvSource = (*BME280)(nil)

func NewBME280(bus drivers.I2C) (*BME280, error) {
	b := &BME280{dev: bme280.New(bus)}
	if !b.dev.Connected() {
		return nil, ErrNoBME280
	}
	b.dev.Configure()
	return b, nil
}

func (b *BME280) ReadTemperatureC() (float32, error) {
	t, err := b.dev.ReadTemperature()
	if err != nil {
		return 0, err
	}
	return float32(t) / 1000, nil
}

func (b *BME280) ReadHumidityPct() (float32, error) {
	h, err := b.dev.ReadHumidity()
	if err != nil {
		return 0, err
	}
	return float32(h) / 100, nil
}
