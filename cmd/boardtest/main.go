// Command boardtest brings a board up one device at a time and reports
// PASS/FAIL per step on the console. It never sleeps the chip.
//
//	tinygo flash -target pico -ldflags "-X main.board=pico" ./cmd/boardtest
package main

import (
	"context"
	"sync/atomic"
	"time"

	"envmon-go/errcode"
	"envmon-go/services/config"
	"envmon-go/services/console"
	"envmon-go/services/display"
	"envmon-go/services/hal/halcore"
	"envmon-go/services/hal/platform"
	"envmon-go/types"
	"envmon-go/x/linebuf"
	"envmon-go/x/logx"
)

var board = "host"

// ---------- Configuration ----------

const (
	settleDelay = 2 * time.Second
	stepDelay   = 300 * time.Millisecond
	blinkDwell  = 500 * time.Millisecond
	buttonWatch = 5 * time.Second
	lightReads  = 3

	// Cycles: 0 = loop forever
	cyclesToRun = 1
)

type step struct {
	name string
	run  func(ctx context.Context, hw *platform.Platform, con console.Sink) error
}

var steps = []step{
	{"rtc", checkRTC},
	{"th", checkTH},
	{"light", checkLight},
	{"led", checkLED},
	{"buttons", checkButtons},
}

func main() {
	time.Sleep(settleDelay)
	ctx := context.Background()

	b, err := config.Select(board)
	if err != nil {
		logx.Error("no such board", "board", board, "err", err)
		return
	}
	if board == "host" {
		platform.PressEvery = time.Second
	}
	p, err := platform.Open(ctx, b, time.Now().UTC())
	if err != nil {
		logx.Error("platform open failed", "err", err)
		return
	}
	defer p.Close()
	go p.Console.Pump(ctx, p.Port)

	line := linebuf.New(64)
	for cycle := 1; cyclesToRun == 0 || cycle <= cyclesToRun; cycle++ {
		fails := 0
		for _, s := range steps {
			err := s.run(ctx, p, p.Console)
			line.Reset()
			line.Str("[boardtest] ").Str(s.name).Str(": ")
			if err != nil {
				fails++
				line.Str("FAIL ").Str(string(errcode.Of(err))).Str(" ").Str(err.Error())
			} else {
				line.Str("PASS")
			}
			p.Console.WriteLine(line.String())
			time.Sleep(stepDelay)
		}
		line.Reset()
		p.Console.WriteLine(line.Str("[boardtest] cycle ").Int(cycle).Str(" failures ").Int(fails).String())
	}
	p.Console.Flush(time.Second)
}

func checkRTC(_ context.Context, p *platform.Platform, con console.Sink) error {
	c := p.Hardware.Clock
	if err := c.Begin(); err != nil {
		return err
	}
	if c.LostPower() {
		con.WriteLine("[boardtest] rtc lost power")
	}
	t, err := c.Now()
	if err != nil {
		return err
	}
	ck := types.ClockFrom(t)
	if !ck.Valid() {
		return &errcode.E{C: errcode.ClockRead, Op: "boardtest.rtc", Msg: ck.String()}
	}
	con.WriteLine("[boardtest] rtc " + ck.String())
	return nil
}

func checkTH(_ context.Context, p *platform.Platform, con console.Sink) error {
	t, err := p.Hardware.Env.ReadTemperatureC()
	if err != nil {
		return errcode.Wrap(errcode.SensorRead, "boardtest.th", err)
	}
	h, err := p.Hardware.Env.ReadHumidityPct()
	if err != nil {
		return errcode.Wrap(errcode.SensorRead, "boardtest.th", err)
	}
	con.WriteLine(display.FormatTH(linebuf.New(48), t, h))
	return nil
}

func checkLight(_ context.Context, p *platform.Platform, con console.Sink) error {
	l := linebuf.New(48)
	l.Str("[boardtest] light")
	for i := 0; i < lightReads; i++ {
		v, err := p.Hardware.Light.ReadRaw()
		if err != nil {
			return errcode.Wrap(errcode.SensorRead, "boardtest.light", err)
		}
		l.Byte(' ').Int(v)
		time.Sleep(stepDelay)
	}
	con.WriteLine(l.String())
	return nil
}

func checkLED(_ context.Context, p *platform.Platform, _ console.Sink) error {
	for i := 0; i < 2; i++ {
		p.Hardware.LED.Set(true)
		time.Sleep(blinkDwell)
		p.Hardware.LED.Set(false)
		time.Sleep(blinkDwell)
	}
	return nil
}

// checkButtons counts falling edges on each input for buttonWatch.
func checkButtons(ctx context.Context, p *platform.Platform, con console.Sink) error {
	var a, b atomic.Uint32
	pins := []struct {
		pin halcore.IRQPin
		n   *atomic.Uint32
	}{{p.Hardware.ButtonA, &a}, {p.Hardware.ButtonB, &b}}
	for _, x := range pins {
		if err := x.pin.ConfigureInput(halcore.PullUp); err != nil {
			return &errcode.E{C: errcode.UnknownPin, Op: "boardtest.buttons", Err: err}
		}
		n := x.n
		if err := x.pin.SetIRQ(halcore.EdgeFalling, func() { n.Add(1) }); err != nil {
			return &errcode.E{C: errcode.UnknownPin, Op: "boardtest.buttons", Err: err}
		}
	}
	defer func() {
		for _, x := range pins {
			_ = x.pin.ClearIRQ()
		}
	}()

	con.WriteLine("[boardtest] press both buttons")
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(buttonWatch):
	}
	l := linebuf.New(48)
	con.WriteLine(l.Str("[boardtest] edges a=").Int(int(a.Load())).Str(" b=").Int(int(b.Load())).String())
	if a.Load() == 0 || b.Load() == 0 {
		return &errcode.E{C: errcode.Timeout, Op: "boardtest.buttons", Msg: "no edges seen"}
	}
	return nil
}
