package firmware

import (
	"context"
	"regexp"
	"testing"
	"time"

	"envmon-go/bus"
	"envmon-go/drivers/aht20"
	"envmon-go/errcode"
	"envmon-go/retained"
	"envmon-go/services/config"
	"envmon-go/services/console"
	"envmon-go/services/hal/devices/led"
	"envmon-go/services/hal/devices/rtc"
	"envmon-go/services/hal/devices/thsensor"
	"envmon-go/services/hal/halsim"
	"envmon-go/types"

	"github.com/stretchr/testify/require"
)

var buildTime = time.Date(2024, time.June, 1, 10, 20, 30, 0, time.UTC)

type simBoard struct {
	hw      Hardware
	rtc     *halsim.DS3231
	env     *halsim.AHT20
	light   *halsim.LightCurve
	led     *led.LED
	ledPin  *halsim.FakePin
	a, b    *halsim.FakePin
	store   *retained.MemStore
	power   *halsim.Power
	console *console.Memory
}

func newSimBoard(t *testing.T, lostPower bool, tempC, humPct float32) *simBoard {
	t.Helper()
	sb := &simBoard{
		rtc:     halsim.NewDS3231(buildTime, lostPower),
		env:     halsim.NewAHT20(halsim.Fixed(tempC, humPct)),
		light:   halsim.NewLightCurve(0, 0, 0),
		ledPin:  halsim.NewFakePin(14),
		a:       halsim.NewFakePin(18),
		b:       halsim.NewFakePin(19),
		store:   retained.NewMemStore(),
		power:   &halsim.Power{},
		console: console.NewMemory(),
	}
	sb.env.Conversion = time.Millisecond
	sb.light.Hold(120)

	i2c := halsim.NewBus()
	i2c.Attach(rtc.Address, sb.rtc)
	i2c.Attach(aht20.Address, sb.env)
	env, err := thsensor.NewAHT20(i2c, aht20.Config{PollInterval: time.Millisecond, ConversionTime: time.Millisecond})
	require.NoError(t, err)
	sb.led, err = led.New(sb.ledPin, false)
	require.NoError(t, err)

	sb.hw = Hardware{
		Clock:   rtc.New(i2c, func() time.Time { return buildTime }),
		Env:     env,
		Light:   sb.light,
		LED:     sb.led,
		ButtonA: sb.a,
		ButtonB: sb.b,
		Power:   sb.power,
		Store:   sb.store,
		Console: sb.console,
	}
	return sb
}

func fastOptions() Options {
	return Options{
		Timing: config.Timing{
			THPeriod:        20 * time.Millisecond,
			LightPeriod:     10 * time.Millisecond,
			ClockPeriod:     10 * time.Millisecond,
			CounterPeriod:   10 * time.Millisecond,
			DisplayTimeout:  2 * time.Millisecond,
			ComposerTimeout: 10 * time.Millisecond,
			ComposerDelay:   20 * time.Millisecond,
			SinkDelay:       20 * time.Millisecond,
			AlarmPulse:      10 * time.Millisecond,
			Uptime:          200 * time.Millisecond,
			Sleep:           30 * time.Second,
			StopGrace:       time.Second,
		},
		Thresholds: types.DefaultThresholds(),
		Topology:   bus.FanOut,
	}
}

func TestMissingClockHalts(t *testing.T) {
	sb := newSimBoard(t, false, 20, 40)
	sb.hw.Clock = rtc.New(halsim.NewBus(), time.Now)

	err := Loop(context.Background(), sb.hw, fastOptions())
	require.ErrorIs(t, err, errcode.ClockNotFound)
	require.Equal(t, []string{NoClockLine}, sb.console.Lines())
	_, ok := sb.store.Load()
	require.False(t, ok, "nothing may be retained before the clock is found")
}

func TestLostPowerSetsBuildTime(t *testing.T) {
	sb := newSimBoard(t, true, 20, 40)
	sys, err := Boot(sb.hw, fastOptions())
	require.NoError(t, err)
	require.NotNil(t, sys)

	lines := sb.console.Lines()
	require.Equal(t, LostPowerLine, lines[0])
	require.Equal(t, "Reinicio número: 1", lines[1])
	require.False(t, sb.rtc.LostPower())
	require.Equal(t, 1, sb.rtc.Sets())
}

func TestSleepPreservesCounters(t *testing.T) {
	sb := newSimBoard(t, false, 20, 40)
	sb.store.Store(retained.State{EventCount: 7, WakeCount: 3})

	sys, err := Boot(sb.hw, fastOptions())
	require.NoError(t, err)
	require.Equal(t, "Reinicio número: 4", sb.console.Lines()[0])

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sys.Run(ctx)
	first, ok := sb.console.WaitFor("Contador:", time.Second)
	require.True(t, ok)
	require.Equal(t, "Contador: 7", first)
}

func TestWakeCountAcrossSleeps(t *testing.T) {
	sb := newSimBoard(t, false, 20, 40)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- Loop(ctx, sb.hw, fastOptions()) }()

	_, ok := sb.console.WaitFor("Sistema en ejecución...", time.Second)
	require.True(t, ok)
	sb.a.Press()
	sb.b.Press()
	sb.a.Release()
	sb.b.Release()

	_, ok = sb.console.WaitFor("Reinicio número: 3", 3*time.Second)
	require.True(t, ok, "lines: %q", sb.console.Lines())
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	s, ok := sb.store.Load()
	require.True(t, ok)
	require.GreaterOrEqual(t, s.WakeCount, uint32(3))
	require.Equal(t, uint32(1), s.EventCount)
	require.GreaterOrEqual(t, len(sb.power.Sleeps()), 2)
	require.Equal(t, 30*time.Second, sb.power.Sleeps()[0])
	require.Equal(t, 2, sb.console.Count("Entrando en Deep Sleep..."))
	require.False(t, sb.ledPin.Get(), "LED must be off across sleep")
}

var frameRE = regexp.MustCompile(`^\d{2}/\d{2}/\d{4} \d{2}:\d{2}:\d{2}, Temp: 26\.00 C, Hum: 75\.00%, Luz: (120|-1)$`)

func TestEndToEndFramesAndAlarm(t *testing.T) {
	sb := newSimBoard(t, false, 26, 75)
	sys, err := Boot(sb.hw, fastOptions())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sys.Run(ctx)

	var frame string
	require.Eventually(t, func() bool {
		for _, l := range sb.console.Lines() {
			if frameRE.MatchString(l) {
				frame = l
				return true
			}
		}
		return false
	}, 2*time.Second, 5*time.Millisecond)
	require.Contains(t, frame, "01/06/2024 10:20:")

	_, ok := sb.console.WaitFor("Temp: 26.00 C - Hum: 75.00%", time.Second)
	require.True(t, ok)
	_, ok = sb.console.WaitFor("Fecha: 01/06/2024 - Hora: 10:20:", time.Second)
	require.True(t, ok)
	require.Eventually(t, func() bool { return sb.led.Pulses() > 0 }, time.Second, time.Millisecond)
	require.Zero(t, sb.console.Count("Error"))
}

func TestSharedTopologyStillProducesFrames(t *testing.T) {
	sb := newSimBoard(t, false, 20, 40)
	opt := fastOptions()
	opt.Topology = bus.Shared
	sys, err := Boot(sb.hw, opt)
	require.NoError(t, err)
	require.Same(t, sys.Fabric().Display.Sensor, sys.Fabric().Composer.Sensor)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sys.Run(ctx)
	_, ok := sb.console.WaitFor("01/06/2024 10:20:", 2*time.Second)
	require.True(t, ok, "lines: %q", sb.console.Lines())
}

func TestTaskTablePriorities(t *testing.T) {
	sb := newSimBoard(t, false, 20, 40)
	sys, err := Boot(sb.hw, fastOptions())
	require.NoError(t, err)
	var alarmPrio, others int
	for _, tk := range sys.Tasks() {
		if tk.Name == "alarm" {
			alarmPrio = tk.Priority
			continue
		}
		require.Equal(t, PrioWorker, tk.Priority, tk.Name)
		others++
	}
	require.Equal(t, PrioAlarm, alarmPrio)
	require.Equal(t, 8, others)
}
