//go:build linux && !(rp2040 || rp2350)

package platform

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

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
	"envmon-go/x/logx"

	"github.com/warthog618/go-gpiocdev"
	"go.bug.st/serial"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
	"periph.io/x/host/v3"
)

func init() { register("linux", openLinux) }

func openLinux(_ context.Context, b *config.Board, build time.Time) (*Platform, error) {
	switch b.Sensor.Kind {
	case "aht20", "shtc3", "bme280":
	default:
		return nil, &errcode.E{C: errcode.Unsupported, Op: "platform.openLinux", Msg: "sensor " + b.Sensor.Kind}
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph init: %w", err)
	}

	p := &Platform{Board: b}
	fail := func(err error) (*Platform, error) {
		_ = p.Close()
		return nil, err
	}

	bus, err := i2creg.Open(b.I2C.Bus)
	if err != nil {
		return fail(&errcode.E{C: errcode.UnknownBus, Op: "platform.openLinux", Msg: b.I2C.Bus, Err: err})
	}
	p.onClose(bus.Close)

	var env halcore.EnvSource
	switch b.Sensor.Kind {
	case "shtc3":
		env = thsensor.NewSHTC3(bus)
	case "bme280":
		s, err := thsensor.NewBME280(bus)
		if err != nil {
			return fail(err)
		}
		env = s
	default:
		a, err := thsensor.NewAHT20(bus, aht20.Config{Address: b.Sensor.Address})
		if err != nil {
			return fail(fmt.Errorf("aht20: %w", err))
		}
		env = a
	}

	opts := ads1x15.DefaultOpts
	if b.Light.Address != 0 {
		opts.I2cAddress = b.Light.Address
	}
	adc, err := ads1x15.NewADS1115(bus, &opts)
	if err != nil {
		return fail(fmt.Errorf("ads1115: %w", err))
	}
	ch, err := adc.PinForChannel(ads1x15.Channel(b.Light.Channel), 5*physic.Volt, 1*physic.Hertz, ads1x15.SaveEnergy)
	if err != nil {
		return fail(fmt.Errorf("ads1115 channel %d: %w", b.Light.Channel, err))
	}
	p.onClose(ch.Halt)
	lightSrc := light.New(light.ReaderFunc(func() (uint16, error) {
		s, err := ch.Read()
		if err != nil {
			return 0, err
		}
		if s.Raw < 0 {
			return 0, nil
		}
		return uint16(s.Raw), nil
	}), b.Light.Shift)

	chip, err := gpiocdev.NewChip(b.Buttons.Chip)
	if err != nil {
		return fail(&errcode.E{C: errcode.UnknownPin, Op: "platform.openLinux", Msg: b.Buttons.Chip, Err: err})
	}
	p.onClose(chip.Close)
	ledPin, btnA, btnB := newCdevPin(chip, b.LED.Pin), newCdevPin(chip, b.Buttons.A), newCdevPin(chip, b.Buttons.B)
	for _, pin := range []*cdevPin{ledPin, btnA, btnB} {
		p.onClose(pin.Close)
	}
	ld, err := led.New(ledPin, b.LED.ActiveLow)
	if err != nil {
		return fail(fmt.Errorf("led: %w", err))
	}

	var port io.Writer = os.Stdout
	if b.Console.Port != "" && b.Console.Port != "stdout" {
		sp, err := serial.Open(b.Console.Port, &serial.Mode{BaudRate: b.Console.Baud})
		if err != nil {
			return fail(fmt.Errorf("console %s: %w", b.Console.Port, err))
		}
		p.onClose(sp.Close)
		port = sp
	}

	con := newConsole(b)
	p.Console, p.Port = con, port
	p.Hardware = firmware.Hardware{
		Clock:   rtc.New(bus, func() time.Time { return build }),
		Env:     env,
		Light:   lightSrc,
		LED:     ld,
		ButtonA: btnA,
		ButtonB: btnB,
		Power:   sleepPower{},
		Store:   retained.NewMemStore(),
		Console: con,
	}
	logx.Info("linux platform open", "i2c", b.I2C.Bus, "gpio", b.Buttons.Chip, "console", b.Console.Port)
	return p, nil
}

// sleepPower idles the process; the retained store lives in memory.
type sleepPower struct{}

func (sleepPower) DeepSleep(d time.Duration) { time.Sleep(d) }

// cdevPin is one GPIO line on a character-device chip. Edge handlers can
// only be attached when a line is requested, so SetIRQ re-requests it.
type cdevPin struct {
	mu     sync.Mutex
	chip   *gpiocdev.Chip
	offset int
	line   *gpiocdev.Line
	pull   halcore.Pull
}

var _ halcore.IRQPin = (*cdevPin)(nil)

func newCdevPin(chip *gpiocdev.Chip, offset int) *cdevPin {
	return &cdevPin{chip: chip, offset: offset}
}

func biasOption(p halcore.Pull) gpiocdev.LineReqOption {
	switch p {
	case halcore.PullUp:
		return gpiocdev.WithPullUp
	case halcore.PullDown:
		return gpiocdev.WithPullDown
	default:
		return gpiocdev.WithBiasDisabled
	}
}

// request releases the held line and requests it again with opts. The
// old line is closed outside the lock so an in-flight event handler
// calling Get cannot deadlock against it.
func (c *cdevPin) request(opts ...gpiocdev.LineReqOption) error {
	c.mu.Lock()
	old := c.line
	c.line = nil
	c.mu.Unlock()
	if old != nil {
		_ = old.Close()
	}
	l, err := c.chip.RequestLine(c.offset, opts...)
	if err != nil {
		return fmt.Errorf("gpio %d: %w", c.offset, err)
	}
	c.mu.Lock()
	c.line = l
	c.mu.Unlock()
	return nil
}

func (c *cdevPin) current() *gpiocdev.Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.line
}

func (c *cdevPin) ConfigureInput(pull halcore.Pull) error {
	c.mu.Lock()
	c.pull = pull
	c.mu.Unlock()
	return c.request(gpiocdev.AsInput, biasOption(pull))
}

func (c *cdevPin) ConfigureOutput(initial bool) error {
	return c.request(gpiocdev.AsOutput(level(initial)))
}

func (c *cdevPin) Set(high bool) {
	if l := c.current(); l != nil {
		_ = l.SetValue(level(high))
	}
}

func (c *cdevPin) Get() bool {
	l := c.current()
	if l == nil {
		return false
	}
	v, err := l.Value()
	return err == nil && v == 1
}

func (c *cdevPin) Number() int { return c.offset }

func (c *cdevPin) SetIRQ(edge halcore.Edge, handler func()) error {
	var eo gpiocdev.LineReqOption
	switch edge {
	case halcore.EdgeRising:
		eo = gpiocdev.WithRisingEdge
	case halcore.EdgeFalling:
		eo = gpiocdev.WithFallingEdge
	case halcore.EdgeBoth:
		eo = gpiocdev.WithBothEdges
	default:
		return c.ClearIRQ()
	}
	c.mu.Lock()
	pull := c.pull
	c.mu.Unlock()
	return c.request(gpiocdev.AsInput, biasOption(pull), eo,
		gpiocdev.WithEventHandler(func(gpiocdev.LineEvent) { handler() }))
}

func (c *cdevPin) ClearIRQ() error {
	c.mu.Lock()
	pull := c.pull
	c.mu.Unlock()
	return c.request(gpiocdev.AsInput, biasOption(pull))
}

func (c *cdevPin) Close() error {
	c.mu.Lock()
	l := c.line
	c.line = nil
	c.mu.Unlock()
	if l == nil {
		return nil
	}
	return l.Close()
}

func level(high bool) int {
	if high {
		return 1
	}
	return 0
}
