//go:build rp2040 || rp2350

package platform

import (
	"context"
	"time"

	"machine"

	"envmon-go/drivers/aht20"
	"envmon-go/errcode"
	"envmon-go/retained"
	"envmon-go/services/config"
	"envmon-go/services/firmware"
	"envmon-go/services/hal/devices/led"
	"envmon-go/services/hal/devices/light"
	"envmon-go/services/hal/devices/rtc"
	"envmon-go/services/hal/devices/thsensor"
	"envmon-go/services/hal/halcore"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
)

// Sim is empty on hardware builds.
type Sim struct{}

func init() { register("rp2", openRP2) }

func openRP2(_ context.Context, b *config.Board, build time.Time) (*Platform, error) {
	var bus *machine.I2C
	switch b.I2C.Bus {
	case "i2c0", "":
		bus = machine.I2C0
	case "i2c1":
		bus = machine.I2C1
	default:
		return nil, &errcode.E{C: errcode.UnknownBus, Op: "platform.openRP2", Msg: b.I2C.Bus}
	}
	freq := b.I2C.FreqHz
	if freq == 0 {
		freq = 400 * machine.KHz
	}
	if err := bus.Configure(machine.I2CConfig{
		Frequency: freq,
		SDA:       machine.Pin(b.I2C.SDA),
		SCL:       machine.Pin(b.I2C.SCL),
	}); err != nil {
		return nil, &errcode.E{C: errcode.UnknownBus, Op: "platform.openRP2", Msg: b.I2C.Bus, Err: err}
	}

	var env halcore.EnvSource
	switch b.Sensor.Kind {
	case "dht11", "dht22":
		env = thsensor.NewDHT(machine.Pin(b.Sensor.Pin), b.Sensor.Kind)
	case "aht20":
		a, err := thsensor.NewAHT20(bus, aht20.Config{Address: b.Sensor.Address})
		if err != nil {
			return nil, err
		}
		env = a
	case "shtc3":
		env = thsensor.NewSHTC3(bus)
	case "bme280":
		s, err := thsensor.NewBME280(bus)
		if err != nil {
			return nil, &errcode.E{C: errcode.SensorRead, Op: "platform.openRP2", Err: err}
		}
		env = s
	default:
		return nil, &errcode.E{C: errcode.Unsupported, Op: "platform.openRP2", Msg: "sensor " + b.Sensor.Kind}
	}

	machine.InitADC()
	adc := machine.ADC{Pin: machine.Pin(b.Light.Pin)}
	adc.Configure(machine.ADCConfig{})
	lightSrc := light.New(light.ReaderFunc(func() (uint16, error) { return adc.Get(), nil }), b.Light.Shift)

	ledPin, err := pinByNumber(b.LED.Pin)
	if err != nil {
		return nil, err
	}
	ld, err := led.New(ledPin, b.LED.ActiveLow)
	if err != nil {
		return nil, err
	}
	btnA, err := pinByNumber(b.Buttons.A)
	if err != nil {
		return nil, err
	}
	btnB, err := pinByNumber(b.Buttons.B)
	if err != nil {
		return nil, err
	}

	var port *uartx.UART
	switch b.Console.Port {
	case "uart0", "":
		port = uartx.UART0
	case "uart1":
		port = uartx.UART1
	default:
		return nil, &errcode.E{C: errcode.UnknownBus, Op: "platform.openRP2", Msg: b.Console.Port}
	}
	_ = port.Configure(uartx.UARTConfig{
		BaudRate: uint32(b.Console.Baud),
		TX:       machine.Pin(b.Console.TX),
		RX:       machine.Pin(b.Console.RX),
	})

	con := newConsole(b)
	return &Platform{
		Board:   b,
		Console: con,
		Port:    port,
		Hardware: firmware.Hardware{
			Clock:   rtc.New(bus, func() time.Time { return build }),
			Env:     env,
			Light:   lightSrc,
			LED:     ld,
			ButtonA: btnA,
			ButtonB: btnB,
			Power:   watchdogPower{},
			Store:   retained.NewScratchStore(),
			Console: con,
		},
	}, nil
}

// watchdogPower idles for d and then lets the watchdog reset the chip.
// The retained state survives in the scratch registers; the next boot
// starts from main.
type watchdogPower struct{}

func (watchdogPower) DeepSleep(d time.Duration) {
	time.Sleep(d)
	machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 1})
	machine.Watchdog.Start()
	for {
		time.Sleep(time.Second)
	}
}

func pinByNumber(n int) (*rp2Pin, error) {
	// User GPIOs only (GP0..GP28).
	if n < 0 || n > 28 {
		return nil, &errcode.E{C: errcode.UnknownPin, Op: "platform.pinByNumber"}
	}
	return &rp2Pin{p: machine.Pin(n), n: n}, nil
}

type rp2Pin struct {
	p machine.Pin
	n int
}

var _ halcore.IRQPin = (*rp2Pin)(nil)

func (r *rp2Pin) ConfigureInput(pull halcore.Pull) error {
	mode := machine.PinInput
	switch pull {
	case halcore.PullUp:
		mode = machine.PinInputPullup
	case halcore.PullDown:
		mode = machine.PinInputPulldown
	}
	r.p.Configure(machine.PinConfig{Mode: mode})
	return nil
}

func (r *rp2Pin) ConfigureOutput(initial bool) error {
	r.p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	r.p.Set(initial)
	return nil
}

func (r *rp2Pin) Set(level bool) { r.p.Set(level) }
func (r *rp2Pin) Get() bool      { return r.p.Get() }
func (r *rp2Pin) Number() int    { return r.n }

func (r *rp2Pin) SetIRQ(edge halcore.Edge, handler func()) error {
	var change machine.PinChange
	switch edge {
	case halcore.EdgeRising:
		change = machine.PinRising
	case halcore.EdgeFalling:
		change = machine.PinFalling
	case halcore.EdgeBoth:
		change = machine.PinToggle
	default:
		return r.ClearIRQ()
	}
	return r.p.SetInterrupt(change, func(machine.Pin) { handler() })
}

func (r *rp2Pin) ClearIRQ() error {
	var zero machine.PinChange
	return r.p.SetInterrupt(zero, nil)
}
