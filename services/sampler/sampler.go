// Package sampler holds the periodic producers: temperature/humidity,
// light and wall clock. Each owns its hardware; nothing else touches it.
package sampler

import (
	"context"
	"sync/atomic"
	"time"

	"envmon-go/errcode"
	"envmon-go/services/console"
	"envmon-go/services/hal/halcore"
	"envmon-go/types"
	"envmon-go/x/logx"
	"envmon-go/x/task"

	"github.com/chewxy/math32"
)

// Publisher is the producer side of a topic or queue. It blocks while the
// consumer is full.
type Publisher[T any] interface {
	Publish(ctx context.Context, v T) error
}

// ErrorLine is printed when a temperature/humidity read is unusable.
const ErrorLine = "Error al leer el sensor de temperatura/humedad"

// Stats are diagnostic counters shared by all samplers.
type Stats struct {
	Published atomic.Uint32
	Failed    atomic.Uint32
}

// valid rejects NaN and infinities.
func valid(v float32) bool { return !math32.IsNaN(v) && !math32.IsInf(v, 0) }

// ---------------------------------------------------------------------------
// Temperature / humidity
// ---------------------------------------------------------------------------

type TH struct {
	Stats
	src    halcore.EnvSource
	out    Publisher[types.EnvReading]
	con    console.Sink
	period time.Duration
}

func NewTH(src halcore.EnvSource, out Publisher[types.EnvReading], con console.Sink, period time.Duration) *TH {
	return &TH{src: src, out: out, con: con, period: period}
}

// Tick reads both values and publishes them together, or reports the
// failure and publishes nothing.
func (s *TH) Tick(ctx context.Context) {
	t, terr := s.src.ReadTemperatureC()
	h, herr := s.src.ReadHumidityPct()
	if terr != nil || herr != nil || !valid(t) || !valid(h) {
		s.Failed.Add(1)
		s.con.WriteLine(ErrorLine)
		err := terr
		if err == nil {
			err = herr
		}
		logx.Warn("th read rejected", "task", "th", "code", string(errcode.SensorRead), "err", err)
		return
	}
	if s.out.Publish(ctx, types.THReading(t, h)) == nil {
		s.Published.Add(1)
	}
}

func (s *TH) Run(ctx context.Context) { task.Every(ctx, s.period, s.Tick) }

// ---------------------------------------------------------------------------
// Light
// ---------------------------------------------------------------------------

type Light struct {
	Stats
	src    halcore.LightSource
	out    Publisher[types.EnvReading]
	period time.Duration
}

func NewLight(src halcore.LightSource, out Publisher[types.EnvReading], period time.Duration) *Light {
	return &Light{src: src, out: out, period: period}
}

func (s *Light) Tick(ctx context.Context) {
	l, err := s.src.ReadRaw()
	if err != nil {
		s.Failed.Add(1)
		logx.Warn("light read failed", "task", "light", "code", string(errcode.SensorRead), "err", err)
		return
	}
	if s.out.Publish(ctx, types.LightReading(l)) == nil {
		s.Published.Add(1)
	}
}

func (s *Light) Run(ctx context.Context) { task.Every(ctx, s.period, s.Tick) }

// ---------------------------------------------------------------------------
// Clock
// ---------------------------------------------------------------------------

type Clock struct {
	Stats
	src    halcore.ClockSource
	out    Publisher[types.Clock]
	period time.Duration
}

func NewClock(src halcore.ClockSource, out Publisher[types.Clock], period time.Duration) *Clock {
	return &Clock{src: src, out: out, period: period}
}

func (s *Clock) Tick(ctx context.Context) {
	now, err := s.src.Now()
	if err != nil {
		s.Failed.Add(1)
		logx.Warn("clock read failed", "task", "clock", "code", string(errcode.Of(err)), "err", err)
		return
	}
	c := types.ClockFrom(now)
	if !c.Valid() {
		s.Failed.Add(1)
		logx.Warn("clock value out of range", "task", "clock", "code", string(errcode.ClockRead), "clock", c.String())
		return
	}
	if s.out.Publish(ctx, c) == nil {
		s.Published.Add(1)
	}
}

func (s *Clock) Run(ctx context.Context) { task.Every(ctx, s.period, s.Tick) }
