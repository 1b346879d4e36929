package halsim

import (
	"sync"
	"time"
)

// Power records deep-sleep requests and sleeps for d scaled by Scale
// (0 means return immediately).
type Power struct {
	mu     sync.Mutex
	Scale  float64
	sleeps []time.Duration
}

func (p *Power) DeepSleep(d time.Duration) {
	p.mu.Lock()
	p.sleeps = append(p.sleeps, d)
	scale := p.Scale
	p.mu.Unlock()
	if scale > 0 {
		time.Sleep(time.Duration(float64(d) * scale))
	}
}

func (p *Power) Sleeps() []time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]time.Duration(nil), p.sleeps...)
}
