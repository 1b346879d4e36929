package halsim

import (
	"sync"
	"time"

	"envmon-go/drivers/aht20"
)

// AHT20 emulates the sensor's command protocol. Values come from Source.
type AHT20 struct {
	mu         sync.Mutex
	calibrated bool
	readyAt    time.Time
	latched    aht20.Sample
	Conversion time.Duration
	Source     func() (tempC, humPct float32)
}

func NewAHT20(src func() (float32, float32)) *AHT20 {
	return &AHT20{Source: src, Conversion: 5 * time.Millisecond}
}

// Fixed returns a source that always reports t and h.
func Fixed(t, h float32) func() (float32, float32) {
	return func() (float32, float32) { return t, h }
}

func (a *AHT20) Tx(w, r []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(w) > 0 {
		switch w[0] {
		case 0xBE:
			a.calibrated = true
		case 0xBA:
			a.calibrated = false
		case 0xAC:
			a.readyAt = time.Now().Add(a.Conversion)
			a.latched = aht20.Encode(a.Source())
		}
	}
	if len(r) == 0 {
		return nil
	}
	st := byte(0)
	if a.calibrated {
		st |= 0x08
	}
	if time.Now().Before(a.readyAt) {
		st |= 0x80
	}
	r[0] = st
	if len(r) >= 6 {
		h, t := a.latched.RawHumidity, a.latched.RawTemp
		r[1] = byte(h >> 12)
		r[2] = byte(h >> 4)
		r[3] = byte(h<<4) | byte(t>>16)&0x0F
		r[4] = byte(t >> 8)
		r[5] = byte(t)
	}
	return nil
}
