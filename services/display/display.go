// Package display echoes readings on the console and raises the alarm
// when a threshold is crossed.
package display

import (
	"context"
	"sync/atomic"
	"time"

	"envmon-go/services/console"
	"envmon-go/types"
	"envmon-go/x/linebuf"
)

// Receiver is the consumer side of a queue.
type Receiver[T any] interface {
	Receive(ctx context.Context, timeout time.Duration) (T, bool)
}

// Raiser is the alarm signal.
type Raiser interface{ Raise() }

type Display struct {
	sensor  Receiver[types.EnvReading]
	clock   Receiver[types.Clock]
	alarm   Raiser
	con     console.Sink
	th      types.Thresholds
	timeout time.Duration
	line    *linebuf.Line
	raised  atomic.Uint32
}

func New(sensor Receiver[types.EnvReading], clock Receiver[types.Clock], alarm Raiser,
	con console.Sink, th types.Thresholds, timeout time.Duration) *Display {
	return &Display{sensor: sensor, clock: clock, alarm: alarm, con: con, th: th,
		timeout: timeout, line: linebuf.New(64)}
}

// Step does one sensor wait and one clock wait.
func (d *Display) Step(ctx context.Context) {
	if r, ok := d.sensor.Receive(ctx, d.timeout); ok {
		d.Reading(r)
	}
	if c, ok := d.clock.Receive(ctx, d.timeout); ok {
		d.Clock(c)
	}
}

func (d *Display) Run(ctx context.Context) {
	for ctx.Err() == nil {
		d.Step(ctx)
	}
}

// Reading echoes the present fields and applies the threshold rule.
func (d *Display) Reading(r types.EnvReading) {
	t, tok := r.TemperatureC.Get()
	h, hok := r.HumidityPct.Get()
	if tok && hok {
		d.line.Reset()
		d.con.WriteLine(FormatTH(d.line, t, h))
	}
	if l, ok := r.LightRaw.Get(); ok {
		d.line.Reset()
		d.con.WriteLine(d.line.Str("Luz: ").Int(l).String())
	}
	if d.th.Exceeded(r) {
		d.raised.Add(1)
		d.alarm.Raise()
	}
}

// Clock echoes "Fecha: DD/MM/YYYY - Hora: HH:MM:SS".
func (d *Display) Clock(c types.Clock) {
	d.line.Reset()
	d.line.Str("Fecha: ")
	c.AppendDate(d.line).Str(" - Hora: ")
	d.con.WriteLine(c.AppendTime(d.line).String())
}

// Raised counts threshold crossings seen by this display.
func (d *Display) Raised() uint32 { return d.raised.Load() }

// FormatTH renders "Temp: T.TT C - Hum: H.HH%" into l.
func FormatTH(l *linebuf.Line, t, h float32) string {
	return l.Str("Temp: ").Fixed(t, 2).Str(" C - Hum: ").Fixed(h, 2).Byte('%').String()
}
