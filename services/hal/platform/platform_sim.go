//go:build !(rp2040 || rp2350)

package platform

import (
	"context"
	"math"
	"os"
	"time"

	"envmon-go/drivers/aht20"
	"envmon-go/errcode"
	"envmon-go/retained"
	"envmon-go/services/config"
	"envmon-go/services/firmware"
	"envmon-go/services/hal/devices/led"
	"envmon-go/services/hal/devices/rtc"
	"envmon-go/services/hal/devices/thsensor"
	"envmon-go/services/hal/halcore"
	"envmon-go/services/hal/halsim"
	"envmon-go/x/logx"
)

// Sim exposes the emulated parts of the host platform.
type Sim struct {
	Bus     *halsim.Bus
	RTC     *halsim.DS3231
	AHT20   *halsim.AHT20
	SHTC3   *halsim.SHTC3
	Light   *halsim.LightCurve
	LED     *halsim.FakePin
	ButtonA *halsim.FakePin
	ButtonB *halsim.FakePin
	Power   *halsim.Power
	Store   *retained.MemStore
}

func init() { register("host", openSim) }

func openSim(ctx context.Context, b *config.Board, build time.Time) (*Platform, error) {
	start := time.Now().UTC()
	if b.RTC.Start != "" {
		t, err := time.Parse(time.RFC3339, b.RTC.Start)
		if err != nil {
			return nil, &errcode.E{C: errcode.InvalidParams, Op: "platform.openSim", Msg: "rtc.start", Err: err}
		}
		start = t
	}

	epoch := time.Now()
	sim := &Sim{
		Bus:     halsim.NewBus(),
		RTC:     halsim.NewDS3231(start, b.RTC.LostPower),
		Light:   halsim.NewLightCurve(0, 1023, 45*time.Second),
		LED:     halsim.NewFakePin(b.LED.Pin),
		ButtonA: halsim.NewFakePin(b.Buttons.A),
		ButtonB: halsim.NewFakePin(b.Buttons.B),
		Power:   &halsim.Power{Scale: 1},
		Store:   retained.NewMemStore(),
	}
	sim.Bus.Attach(halsim.DS3231Address, sim.RTC)

	// Slow drift around the alarm thresholds.
	weather := func() (float32, float32) {
		ph := time.Since(epoch).Seconds() / 60 * 2 * math.Pi
		return float32(23.5 + 1.5*math.Sin(ph)), float32(68 + 5*math.Sin(ph))
	}
	var env halcore.EnvSource
	switch b.Sensor.Kind {
	case "aht20":
		addr := b.Sensor.Address
		if addr == 0 {
			addr = aht20.Address
		}
		sim.AHT20 = halsim.NewAHT20(weather)
		sim.Bus.Attach(addr, sim.AHT20)
		a, err := thsensor.NewAHT20(sim.Bus, aht20.Config{Address: addr})
		if err != nil {
			return nil, err
		}
		env = a
	case "shtc3":
		sim.SHTC3 = halsim.NewSHTC3(weather)
		sim.Bus.Attach(halsim.SHTC3Address, sim.SHTC3)
		env = thsensor.NewSHTC3(sim.Bus)
	default:
		return nil, &errcode.E{C: errcode.Unsupported, Op: "platform.openSim", Msg: "sensor " + b.Sensor.Kind}
	}
	ld, err := led.New(sim.LED, b.LED.ActiveLow)
	if err != nil {
		return nil, err
	}

	con := newConsole(b)
	p := &Platform{
		Board:   b,
		Console: con,
		Port:    os.Stdout,
		Sim:     sim,
		Hardware: firmware.Hardware{
			Clock:   rtc.New(sim.Bus, func() time.Time { return build }),
			Env:     env,
			Light:   sim.Light,
			LED:     ld,
			ButtonA: sim.ButtonA,
			ButtonB: sim.ButtonB,
			Power:   sim.Power,
			Store:   sim.Store,
			Console: con,
		},
	}

	if PressEvery > 0 {
		bctx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			sim.pressLoop(bctx, PressEvery)
		}()
		p.onClose(func() error { cancel(); <-done; return nil })
	}
	logx.Debug("host platform open", "rtc", start.Format(time.RFC3339), "lost_power", b.RTC.LostPower)
	return p, nil
}

func (s *Sim) pressLoop(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	lone := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		if lone {
			s.ButtonA.Press()
			s.ButtonA.Release()
		} else {
			s.ButtonA.Press()
			s.ButtonB.Press()
			s.ButtonB.Release()
			s.ButtonA.Release()
		}
		lone = !lone
	}
}
