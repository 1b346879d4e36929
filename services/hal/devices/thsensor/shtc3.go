package thsensor

import (
	"sync"
	"time"

	"envmon-go/services/hal/halcore"
	"envmon-go/x/mathx"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/shtc3"
)

// SHTC3 adapts the tinygo shtc3 driver. The sensor is woken for each
// conversion and put back to sleep straight after.
type SHTC3 struct {
	mu     sync.Mutex
	dev    shtc3.Device
	tmc    int32 // milli-celsius
	rh     float32
	lastAt time.Time
	MaxAge time.Duration
}

var _ halcore.EnvSource = (*SHTC3)(nil)

func NewSHTC3(bus drivers.I2C) *SHTC3 {
	return &SHTC3{dev: shtc3.New(bus), MaxAge: time.Second}
}

func (s *SHTC3) measure(force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !force && !s.lastAt.IsZero() && time.Since(s.lastAt) < s.MaxAge {
		return nil
	}
	if err := s.dev.WakeUp(); err != nil {
		return err
	}
	defer func() { _ = s.dev.Sleep() }()
	tmc, rhx100, err := s.dev.ReadTemperatureHumidity()
	if err != nil {
		return err
	}
	s.tmc = tmc
	s.rh = mathx.Clamp(float32(rhx100)/100, 0, 100)
	s.lastAt = time.Now()
	return nil
}

// ReadTemperatureC always starts a fresh conversion.
func (s *SHTC3) ReadTemperatureC() (float32, error) {
	if err := s.measure(true); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return float32(s.tmc) / 1000, nil
}

func (s *SHTC3) ReadHumidityPct() (float32, error) {
	if err := s.measure(false); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rh, nil
}
