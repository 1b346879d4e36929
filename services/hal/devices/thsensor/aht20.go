// Package thsensor provides the temperature/humidity sources.
package thsensor

import (
	"sync"
	"time"

	"envmon-go/drivers/aht20"
	"envmon-go/services/hal/halcore"

	"tinygo.org/x/drivers"
)

// AHT20 adapts the aht20 driver to halcore.EnvSource. One conversion
// serves both reads when they come within MaxAge of each other.
type AHT20 struct {
	mu     sync.Mutex
	dev    *aht20.Device
	last   aht20.Sample
	lastAt time.Time
	MaxAge time.Duration
}

var _ halcore.EnvSource = (*AHT20)(nil)

func NewAHT20(bus drivers.I2C, cfg aht20.Config) (*AHT20, error) {
	dev := aht20.New(bus, cfg)
	if err := dev.Configure(); err != nil {
		return nil, err
	}
	return &AHT20{dev: dev, MaxAge: time.Second}, nil
}

func (a *AHT20) sample() (aht20.Sample, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.lastAt.IsZero() && time.Since(a.lastAt) < a.MaxAge {
		return a.last, nil
	}
	s, err := a.dev.Measure()
	if err != nil {
		return s, err
	}
	a.last, a.lastAt = s, time.Now()
	return s, nil
}

// ReadTemperatureC always starts a fresh conversion.
func (a *AHT20) ReadTemperatureC() (float32, error) {
	a.mu.Lock()
	a.lastAt = time.Time{}
	a.mu.Unlock()
	s, err := a.sample()
	if err != nil {
		return 0, err
	}
	return s.Celsius(), nil
}

func (a *AHT20) ReadHumidityPct() (float32, error) {
	s, err := a.sample()
	if err != nil {
		return 0, err
	}
	return s.RelHumidity(), nil
}
