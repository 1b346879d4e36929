package composer

import (
	"context"
	"testing"
	"time"

	"envmon-go/bus"
	"envmon-go/services/console"
	"envmon-go/types"
)

type rig struct {
	c      *Composer
	sensor *bus.Queue[types.EnvReading]
	clock  *bus.Queue[types.Clock]
	frames *bus.Queue[types.Frame]
	con    *console.Memory
}

func newRig(drain bool) rig {
	r := rig{
		sensor: bus.NewQueue[types.EnvReading]("sensor", bus.SensorDepth),
		clock:  bus.NewQueue[types.Clock]("clock", bus.ClockDepth),
		frames: bus.NewQueue[types.Frame]("frame", bus.FrameDepth),
		con:    console.NewMemory(),
	}
	r.c = New(r.sensor, r.clock, r.frames, r.con, Config{Timeout: 5 * time.Millisecond, Delay: time.Millisecond, Drain: drain})
	return r
}

func (r rig) frame(t *testing.T) types.Frame {
	t.Helper()
	f, ok := r.frames.TryReceive()
	if !ok {
		t.Fatal("no frame enqueued")
	}
	return f
}

func TestCleanSampleToFrame(t *testing.T) {
	r := newRig(true)
	ctx := context.Background()
	r.sensor.TrySend(types.THReading(21.5, 55))
	r.sensor.TrySend(types.LightReading(120))
	r.clock.TrySend(types.Clock{Year: 2024, Month: 6, Day: 1, Hour: 10, Minute: 20, Second: 30})
	if !r.c.Cycle(ctx) {
		t.Fatal("cycle produced no frame")
	}
	if got := r.frame(t); got != "01/06/2024 10:20:30, Temp: 21.50 C, Hum: 55.00%, Luz: 120" {
		t.Fatalf("frame = %q", got)
	}
}

func TestStaleCacheUsesNewestLight(t *testing.T) {
	r := newRig(true)
	ctx := context.Background()
	r.sensor.TrySend(types.THReading(22, 60))
	for _, l := range []int{100, 110, 120} {
		r.sensor.TrySend(types.LightReading(l))
	}
	r.clock.TrySend(types.Clock{Year: 2024, Month: 6, Day: 2, Hour: 8})
	r.c.Cycle(ctx)
	if got := r.frame(t); got != "02/06/2024 08:00:00, Temp: 22.00 C, Hum: 60.00%, Luz: 120" {
		t.Fatalf("frame = %q", got)
	}
}

func TestSingleReceiveWithoutDrain(t *testing.T) {
	r := newRig(false)
	ctx := context.Background()
	r.sensor.TrySend(types.THReading(22, 60))
	r.sensor.TrySend(types.LightReading(100))
	r.clock.TrySend(types.Clock{Year: 2024, Month: 6, Day: 2})
	r.c.Cycle(ctx)
	if got := r.frame(t); got != "02/06/2024 00:00:00, Temp: 22.00 C, Hum: 60.00%, Luz: -1" {
		t.Fatalf("frame = %q", got)
	}
	if r.sensor.Len() != 1 {
		t.Fatal("light reading must be left for the next cycle")
	}
}

func TestEmptyCachePrintsSentinels(t *testing.T) {
	r := newRig(true)
	r.clock.TrySend(types.Clock{Year: 2024, Month: 1, Day: 1})
	r.c.Cycle(context.Background())
	if got := r.frame(t); got != "01/01/2024 00:00:00, Temp: -1.00 C, Hum: -1.00%, Luz: -1" {
		t.Fatalf("frame = %q", got)
	}
}

func TestLightIsNotCachedAcrossCycles(t *testing.T) {
	r := newRig(true)
	ctx := context.Background()
	r.sensor.TrySend(types.LightReading(700))
	r.clock.TrySend(types.Clock{Year: 2024, Month: 1, Day: 1})
	r.c.Cycle(ctx)
	r.frame(t)
	r.clock.TrySend(types.Clock{Year: 2024, Month: 1, Day: 1, Second: 1})
	r.c.Cycle(ctx)
	if got := r.frame(t); got != "01/01/2024 00:00:01, Temp: -1.00 C, Hum: -1.00%, Luz: -1" {
		t.Fatalf("frame = %q", got)
	}
}

func TestNewestClockTriggersFrame(t *testing.T) {
	r := newRig(true)
	for s := 0; s < 3; s++ {
		r.clock.TrySend(types.Clock{Year: 2024, Month: 1, Day: 1, Second: s})
	}
	r.c.Cycle(context.Background())
	if got := r.frame(t); got[:19] != "01/01/2024 00:00:02" {
		t.Fatalf("frame = %q", got)
	}
	if r.frames.Len() != 0 {
		t.Fatal("one cycle must emit one frame")
	}
}

func TestNoClockNoFrame(t *testing.T) {
	r := newRig(true)
	r.sensor.TrySend(types.THReading(20, 40))
	if r.c.Cycle(context.Background()) {
		t.Fatal("frame without a clock tick")
	}
	if got := r.c.Snapshot().TemperatureC.Or(0); got != 20 {
		t.Fatalf("cache = %v", got)
	}
}

func TestCacheKeepsLastValid(t *testing.T) {
	r := newRig(true)
	ctx := context.Background()
	r.sensor.TrySend(types.THReading(23, 50))
	r.c.Cycle(ctx)
	r.sensor.TrySend(types.LightReading(5))
	r.sensor.TrySend(types.EnvReading{})
	r.c.Cycle(ctx)
	snap := r.c.Snapshot()
	if snap.TemperatureC.Or(0) != 23 || snap.HumidityPct.Or(0) != 50 {
		t.Fatalf("cache = %+v", snap)
	}
}

func TestOversizedFrameIsDropped(t *testing.T) {
	r := newRig(true)
	r.sensor.TrySend(types.THReading(3.0e38, 3.0e38))
	r.clock.TrySend(types.Clock{Year: 2024, Month: 1, Day: 1})
	if r.c.Cycle(context.Background()) {
		t.Fatal("oversized frame must not be enqueued")
	}
	if r.frames.Len() != 0 || r.con.Count(TruncatedLine) != 1 || r.c.Dropped() != 1 {
		t.Fatalf("frames=%d lines=%q", r.frames.Len(), r.con.Lines())
	}
}

func TestRunEmitsPeriodically(t *testing.T) {
	r := newRig(true)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.c.Run(ctx)
	for i := 0; i < 2; i++ {
		r.clock.TrySend(types.Clock{Year: 2024, Month: 1, Day: 1, Second: i})
		if _, ok := r.frames.Receive(ctx, time.Second); !ok {
			t.Fatalf("frame %d missing", i)
		}
	}
}
