// Package counter counts coincident presses of two active-low inputs.
package counter

import (
	"context"
	"sync/atomic"
	"time"

	"envmon-go/services/console"
	"envmon-go/services/hal/halcore"
	"envmon-go/x/linebuf"
	"envmon-go/x/task"
)

// Counter owns the two inputs and the event count. The count is the only
// state shared with interrupt context.
type Counter struct {
	a, b    halcore.IRQPin
	count   atomic.Uint32
	ignored atomic.Uint32
}

// New starts counting from initial (the retained value).
func New(a, b halcore.IRQPin, initial uint32) *Counter {
	c := &Counter{a: a, b: b}
	c.count.Store(initial)
	return c
}

// Attach enables the pull-ups and the falling-edge handler on both inputs.
func (c *Counter) Attach() error {
	for _, p := range []halcore.IRQPin{c.a, c.b} {
		if err := p.ConfigureInput(halcore.PullUp); err != nil {
			return err
		}
	}
	for _, p := range []halcore.IRQPin{c.a, c.b} {
		if err := p.SetIRQ(halcore.EdgeFalling, c.isr); err != nil {
			c.Detach()
			return err
		}
	}
	return nil
}

// Detach removes the handlers.
func (c *Counter) Detach() {
	_ = c.a.ClearIRQ()
	_ = c.b.ClearIRQ()
}

// isr runs in interrupt context: two pin reads and one atomic add.
func (c *Counter) isr() {
	if !c.a.Get() && !c.b.Get() {
		c.count.Add(1)
		return
	}
	c.ignored.Add(1)
}

func (c *Counter) Value() uint32 { return c.count.Load() }

// Ignored counts handler runs with only one input low.
func (c *Counter) Ignored() uint32 { return c.ignored.Load() }

// Reporter prints "Contador: n" every period.
type Reporter struct {
	c      *Counter
	con    console.Sink
	period time.Duration
	line   *linebuf.Line
}

func NewReporter(c *Counter, con console.Sink, period time.Duration) *Reporter {
	return &Reporter{c: c, con: con, period: period, line: linebuf.New(32)}
}

func (r *Reporter) Tick(context.Context) {
	r.line.Reset()
	r.con.WriteLine(r.line.Str("Contador: ").Int(int(r.c.Value())).String())
}

func (r *Reporter) Run(ctx context.Context) { task.Every(ctx, r.period, r.Tick) }
