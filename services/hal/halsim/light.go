package halsim

import (
	"sync"
	"time"

	"envmon-go/x/mathx"
)

// LightCurve is a synthetic light sensor: a triangle wave between Min and
// Max over Period, or a fixed value once Hold is called.
type LightCurve struct {
	mu     sync.Mutex
	Min    int
	Max    int
	Period time.Duration
	start  time.Time
	hold   *int
	err    error
}

func NewLightCurve(lo, hi int, period time.Duration) *LightCurve {
	return &LightCurve{Min: lo, Max: hi, Period: period, start: time.Now()}
}

// Hold pins the reading to v.
func (l *LightCurve) Hold(v int) {
	l.mu.Lock()
	l.hold = &v
	l.mu.Unlock()
}

// Fail makes subsequent reads return err (nil clears it).
func (l *LightCurve) Fail(err error) {
	l.mu.Lock()
	l.err = err
	l.mu.Unlock()
}

func (l *LightCurve) ReadRaw() (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return 0, l.err
	}
	if l.hold != nil {
		return *l.hold, nil
	}
	if l.Period <= 0 || l.Max <= l.Min {
		return l.Min, nil
	}
	phase := float64(mathx.Wrap(time.Since(l.start), l.Period)) / float64(l.Period)
	if phase > 0.5 {
		phase = 1 - phase
	}
	return l.Min + int(2*phase*float64(l.Max-l.Min)), nil
}
