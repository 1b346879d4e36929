// Package firmware wires the hardware, the fabric and the task table for
// one boot session, and runs sessions back to back across deep sleeps.
package firmware

import (
	"context"
	"sync"
	"time"

	"envmon-go/bus"
	"envmon-go/errcode"
	"envmon-go/retained"
	"envmon-go/services/alarm"
	"envmon-go/services/composer"
	"envmon-go/services/config"
	"envmon-go/services/console"
	"envmon-go/services/counter"
	"envmon-go/services/display"
	"envmon-go/services/framesink"
	"envmon-go/services/hal/halcore"
	"envmon-go/services/power"
	"envmon-go/services/sampler"
	"envmon-go/types"
	"envmon-go/x/logx"
	"envmon-go/x/task"
)

const (
	NoClockLine   = "No se encontró RTC"
	LostPowerLine = "RTC perdió la hora, estableciendo nueva hora..."
)

// Task priorities. Everything runs at 1 except the alarm responder.
const (
	PrioWorker = 1
	PrioAlarm  = 2
)

// Hardware is everything a boot session touches.
type Hardware struct {
	Clock   halcore.ClockSource
	Env     halcore.EnvSource
	Light   halcore.LightSource
	LED     halcore.Actuator
	ButtonA halcore.IRQPin
	ButtonB halcore.IRQPin
	Power   halcore.Power
	Store   retained.Store
	Console console.Sink
}

type Options struct {
	Timing     config.Timing
	Thresholds types.Thresholds
	Topology   bus.Topology
}

// OptionsFor derives Options from a board profile.
func OptionsFor(b *config.Board) Options {
	return Options{
		Timing:     b.Timing,
		Thresholds: b.Thresholds.Thresholds(),
		Topology:   bus.ParseTopology(b.Topology),
	}
}

// System is one booted session.
type System struct {
	hw      Hardware
	opt     Options
	state   retained.State
	fabric  *bus.Fabric
	counter *counter.Counter
	power   *power.Manager

	Display  *display.Display
	Composer *composer.Composer
	Alarm    *alarm.Responder
	Sink     *framesink.Sink
	TH       *sampler.TH
	LightS   *sampler.Light
	ClockS   *sampler.Clock

	sleepOnce sync.Once
	sleepReq  chan time.Duration
}

// Boot brings the device up: RTC probe, clock recovery, wake counting,
// inputs and the fabric. A missing RTC is fatal.
func Boot(hw Hardware, opt Options) (*System, error) {
	if err := hw.Clock.Begin(); err != nil {
		hw.Console.WriteLine(NoClockLine)
		logx.Error("rtc probe failed", "code", string(errcode.ClockNotFound), "err", err)
		return nil, &errcode.E{C: errcode.ClockNotFound, Op: "firmware.Boot", Err: err}
	}
	if hw.Clock.LostPower() {
		hw.Console.WriteLine(LostPowerLine)
		if err := hw.Clock.SetFromBuildTimestamp(); err != nil {
			logx.Warn("rtc set failed", "code", string(errcode.Of(err)), "err", err)
		}
	}

	state := power.Wake(hw.Store, hw.Console)

	s := &System{
		hw:       hw,
		opt:      opt,
		state:    state,
		fabric:   bus.NewFabric(opt.Topology),
		sleepReq: make(chan time.Duration, 1),
	}
	s.counter = counter.New(hw.ButtonA, hw.ButtonB, state.EventCount)
	if err := s.counter.Attach(); err != nil {
		return nil, &errcode.E{C: errcode.UnknownPin, Op: "firmware.Boot", Msg: "buttons", Err: err}
	}

	t, f := opt.Timing, s.fabric
	s.Alarm = alarm.New(f.Alarm, hw.LED, t.AlarmPulse)
	s.TH = sampler.NewTH(hw.Env, f.Sensor, hw.Console, t.THPeriod)
	s.LightS = sampler.NewLight(hw.Light, f.Sensor, t.LightPeriod)
	s.ClockS = sampler.NewClock(hw.Clock, f.Clock, t.ClockPeriod)
	s.Display = display.New(f.Display.Sensor, f.Display.Clock, f.Alarm, hw.Console, opt.Thresholds, t.DisplayTimeout)
	s.Composer = composer.New(f.Composer.Sensor, f.Composer.Clock, f.Frame, hw.Console, composer.Config{
		Timeout: t.ComposerTimeout,
		Delay:   t.ComposerDelay,
		Drain:   opt.Topology == bus.FanOut,
	})
	s.Sink = framesink.New(f.Frame, hw.Console, t.SinkDelay)
	s.power = power.New(hw.Console, hw.Store, s.counter.Value, state.WakeCount,
		power.Config{Uptime: t.Uptime, Sleep: t.Sleep}, s.requestSleep)

	logx.Info("booted", "boot", state.WakeCount, "events", state.EventCount, "topology", opt.Topology.String())
	return s, nil
}

// State is the retained state as of boot.
func (s *System) State() retained.State { return s.state }

// Events is the live event count.
func (s *System) Events() uint32 { return s.counter.Value() }

func (s *System) Fabric() *bus.Fabric { return s.fabric }

func (s *System) requestSleep(d time.Duration) {
	s.sleepOnce.Do(func() { s.sleepReq <- d })
}

// Tasks is the static task table.
func (s *System) Tasks() []task.Task {
	rep := counter.NewReporter(s.counter, s.hw.Console, s.opt.Timing.CounterPeriod)
	return []task.Task{
		{Name: "th", Priority: PrioWorker, Run: s.TH.Run},
		{Name: "light", Priority: PrioWorker, Run: s.LightS.Run},
		{Name: "clock", Priority: PrioWorker, Run: s.ClockS.Run},
		{Name: "display", Priority: PrioWorker, Run: s.Display.Run},
		{Name: "alarm", Priority: PrioAlarm, Run: s.Alarm.Run},
		{Name: "composer", Priority: PrioWorker, Run: s.Composer.Run},
		{Name: "framesink", Priority: PrioWorker, Run: s.Sink.Run},
		{Name: "counter", Priority: PrioWorker, Run: rep.Run},
		{Name: "power", Priority: PrioWorker, Run: s.power.Run},
	}
}

// Run starts the task table and blocks until the power manager asks for
// deep sleep or ctx ends. Every task is stopped before it returns. The
// returned duration is the requested sleep, zero when ctx ended first.
func (s *System) Run(ctx context.Context) time.Duration {
	session, cancel := context.WithCancel(ctx)
	g := task.Start(session, s.Tasks())

	var d time.Duration
	select {
	case d = <-s.sleepReq:
	case <-ctx.Done():
	}
	cancel()
	if !g.WaitTimeout(s.opt.Timing.StopGrace) {
		logx.Warn("tasks still running at power-down")
	}
	s.counter.Detach()
	s.hw.LED.Set(false)
	return d
}

// Loop boots and runs sessions until ctx ends, sleeping between them.
// On MCUs Power.DeepSleep resets the chip and Loop never comes back here.
// It returns the boot error when the device cannot start.
func Loop(ctx context.Context, hw Hardware, opt Options) error {
	for ctx.Err() == nil {
		sys, err := Boot(hw, opt)
		if err != nil {
			return err
		}
		d := sys.Run(ctx)
		if d <= 0 {
			break
		}
		hw.Power.DeepSleep(d)
	}
	return ctx.Err()
}
