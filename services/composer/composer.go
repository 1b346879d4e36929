// Package composer pairs clock ticks with the latest environment values
// and emits telemetry frames. It alone holds the last-valid cache.
package composer

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"envmon-go/errcode"
	"envmon-go/services/console"
	"envmon-go/types"
	"envmon-go/x/logx"
	"envmon-go/x/task"
)

// TruncatedLine is printed when a frame does not fit and is dropped.
const TruncatedLine = "Error: trama truncada, descartada"

type Receiver[T any] interface {
	Receive(ctx context.Context, timeout time.Duration) (T, bool)
}

type Sender[T any] interface {
	Send(ctx context.Context, v T) error
}

type Config struct {
	Timeout time.Duration // per receive
	Delay   time.Duration // between cycles
	// Drain empties both queues each cycle: every queued reading updates
	// the cache and the newest clock tick triggers the frame. Only safe
	// when the composer owns its queues.
	Drain bool
}

// Cache is the composer's last-valid state.
type Cache struct {
	TemperatureC types.Opt[float32]
	HumidityPct  types.Opt[float32]
}

type Composer struct {
	sensor Receiver[types.EnvReading]
	clock  Receiver[types.Clock]
	out    Sender[types.Frame]
	con    console.Sink
	cfg    Config

	mu      sync.Mutex
	cache   Cache
	light   types.Opt[int]
	frames  atomic.Uint32
	dropped atomic.Uint32
}

func New(sensor Receiver[types.EnvReading], clock Receiver[types.Clock], out Sender[types.Frame],
	con console.Sink, cfg Config) *Composer {
	return &Composer{sensor: sensor, clock: clock, out: out, con: con, cfg: cfg}
}

// Cycle runs one receive-compose-enqueue pass without the trailing delay.
// It reports whether a frame was enqueued.
func (c *Composer) Cycle(ctx context.Context) bool {
	c.mu.Lock()
	c.light = types.None[int]()
	c.mu.Unlock()

	if r, ok := c.sensor.Receive(ctx, c.cfg.Timeout); ok {
		c.absorb(r)
		for c.cfg.Drain {
			r, ok := c.sensor.Receive(ctx, 0)
			if !ok {
				break
			}
			c.absorb(r)
		}
	}

	clk, ok := c.clock.Receive(ctx, c.cfg.Timeout)
	if !ok {
		return false
	}
	for c.cfg.Drain {
		newer, ok := c.clock.Receive(ctx, 0)
		if !ok {
			break
		}
		clk = newer
	}

	c.mu.Lock()
	f, fits := types.ComposeFrame(clk, c.cache.TemperatureC, c.cache.HumidityPct, c.light)
	c.mu.Unlock()
	if !fits {
		c.dropped.Add(1)
		c.con.WriteLine(TruncatedLine)
		logx.Warn("frame dropped", "task", "composer", "code", string(errcode.FrameOverflow))
		return false
	}
	if err := c.out.Send(ctx, f); err != nil {
		return false
	}
	c.frames.Add(1)
	return true
}

// absorb updates the cache from present fields only.
func (c *Composer) absorb(r types.EnvReading) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r.TemperatureC.Present() {
		c.cache.TemperatureC = r.TemperatureC
	}
	if r.HumidityPct.Present() {
		c.cache.HumidityPct = r.HumidityPct
	}
	if r.LightRaw.Present() {
		c.light = r.LightRaw
	}
}

func (c *Composer) Run(ctx context.Context) {
	for ctx.Err() == nil {
		c.Cycle(ctx)
		if !task.Sleep(ctx, c.cfg.Delay) {
			return
		}
	}
}

// Snapshot returns the current cache.
func (c *Composer) Snapshot() Cache {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache
}

func (c *Composer) Frames() uint32  { return c.frames.Load() }
func (c *Composer) Dropped() uint32 { return c.dropped.Load() }
