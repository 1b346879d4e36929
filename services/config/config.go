// Package config holds the compiled-in board profiles. There is no runtime
// configuration: the board is chosen at build time and its YAML profile is
// decoded over Default().
package config

import (
	"embed"
	"errors"
	"sort"
	"strings"
	"time"

	"envmon-go/errcode"
	"envmon-go/types"

	"gopkg.in/yaml.v3"
)

//go:embed profiles/*.yaml
var profiles embed.FS

// Board describes one hardware target.
type Board struct {
	Name       string           `yaml:"name"`
	Platform   string           `yaml:"platform"` // host | linux | rp2
	Topology   string           `yaml:"topology"` // fanout | shared
	LogLevel   string           `yaml:"log_level"`
	Sensor     SensorConfig     `yaml:"sensor"`
	I2C        I2CConfig        `yaml:"i2c"`
	RTC        RTCConfig        `yaml:"rtc"`
	Light      LightConfig      `yaml:"light"`
	LED        LEDConfig        `yaml:"led"`
	Buttons    ButtonsConfig    `yaml:"buttons"`
	Console    ConsoleConfig    `yaml:"console"`
	Timing     Timing           `yaml:"timing"`
	Thresholds ThresholdsConfig `yaml:"thresholds"`
}

// SensorConfig selects the temperature/humidity sensor.
type SensorConfig struct {
	Kind    string `yaml:"kind"` // dht11 | dht22 | aht20
	Pin     int    `yaml:"pin"`  // DHT data pin
	Address uint16 `yaml:"address"`
}

type I2CConfig struct {
	Bus    string `yaml:"bus"` // "i2c0" on rp2, periph bus name on linux
	SDA    int    `yaml:"sda"`
	SCL    int    `yaml:"scl"`
	FreqHz uint32 `yaml:"freq_hz"`
}

type RTCConfig struct {
	// Start is the emulated RTC time on the host profile (RFC 3339).
	Start     string `yaml:"start"`
	LostPower bool   `yaml:"lost_power"`
}

// LightConfig: Pin is the ADC GPIO on rp2, Channel the ADS1x15 input on
// linux. Shift right-aligns raw conversions.
type LightConfig struct {
	Pin     int    `yaml:"pin"`
	Channel int    `yaml:"channel"`
	Address uint16 `yaml:"address"`
	Shift   uint   `yaml:"shift"`
}

type LEDConfig struct {
	Pin       int  `yaml:"pin"`
	ActiveLow bool `yaml:"active_low"`
}

// ButtonsConfig are the two coincidence inputs, active low with pull-ups.
type ButtonsConfig struct {
	Chip string `yaml:"chip"` // gpiochip on linux
	A    int    `yaml:"a"`
	B    int    `yaml:"b"`
}

type ConsoleConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
	TX   int    `yaml:"tx"`
	RX   int    `yaml:"rx"`
	EOL  string `yaml:"eol"` // "lf" | "crlf"
	Ring int    `yaml:"ring"`
}

// Newline returns the console line terminator.
func (c ConsoleConfig) Newline() string {
	if c.EOL == "crlf" {
		return "\r\n"
	}
	return "\n"
}

// Timing holds every period, timeout and delay of the firmware.
type Timing struct {
	THPeriod        time.Duration `yaml:"th_period"`
	LightPeriod     time.Duration `yaml:"light_period"`
	ClockPeriod     time.Duration `yaml:"clock_period"`
	CounterPeriod   time.Duration `yaml:"counter_period"`
	DisplayTimeout  time.Duration `yaml:"display_timeout"`
	ComposerTimeout time.Duration `yaml:"composer_timeout"`
	ComposerDelay   time.Duration `yaml:"composer_delay"`
	SinkDelay       time.Duration `yaml:"sink_delay"`
	AlarmPulse      time.Duration `yaml:"alarm_pulse"`
	Uptime          time.Duration `yaml:"uptime"`
	Sleep           time.Duration `yaml:"sleep"`
	StopGrace       time.Duration `yaml:"stop_grace"`
}

// DefaultTiming returns the production timings.
func DefaultTiming() Timing {
	return Timing{
		THPeriod:        2000 * time.Millisecond,
		LightPeriod:     1000 * time.Millisecond,
		ClockPeriod:     1000 * time.Millisecond,
		CounterPeriod:   1000 * time.Millisecond,
		DisplayTimeout:  100 * time.Millisecond,
		ComposerTimeout: 1000 * time.Millisecond,
		ComposerDelay:   5000 * time.Millisecond,
		SinkDelay:       5000 * time.Millisecond,
		AlarmPulse:      500 * time.Millisecond,
		Uptime:          10 * time.Second,
		Sleep:           30 * time.Second,
		StopGrace:       2 * time.Second,
	}
}

// Scaled divides every duration by div, for tests and demos.
func (t Timing) Scaled(div int64) Timing {
	if div <= 1 {
		return t
	}
	d := func(v time.Duration) time.Duration { return v / time.Duration(div) }
	return Timing{
		THPeriod: d(t.THPeriod), LightPeriod: d(t.LightPeriod), ClockPeriod: d(t.ClockPeriod),
		CounterPeriod: d(t.CounterPeriod), DisplayTimeout: d(t.DisplayTimeout),
		ComposerTimeout: d(t.ComposerTimeout), ComposerDelay: d(t.ComposerDelay),
		SinkDelay: d(t.SinkDelay), AlarmPulse: d(t.AlarmPulse), Uptime: d(t.Uptime),
		Sleep: d(t.Sleep), StopGrace: t.StopGrace,
	}
}

type ThresholdsConfig struct {
	TemperatureC float32 `yaml:"temperature_c"`
	HumidityPct  float32 `yaml:"humidity_pct"`
	Light        int     `yaml:"light"`
}

func (t ThresholdsConfig) Thresholds() types.Thresholds {
	return types.Thresholds{TemperatureC: t.TemperatureC, HumidityPct: t.HumidityPct, LightRaw: t.Light}
}

// Default returns a board with the production timings and thresholds and
// no pins assigned.
func Default() *Board {
	th := types.DefaultThresholds()
	return &Board{
		Topology: "fanout",
		LogLevel: "info",
		Console:  ConsoleConfig{Baud: 115200, EOL: "lf", Ring: 1024},
		Timing:   DefaultTiming(),
		Thresholds: ThresholdsConfig{
			TemperatureC: th.TemperatureC,
			HumidityPct:  th.HumidityPct,
			Light:        th.LightRaw,
		},
	}
}

// Names lists the compiled-in profiles.
func Names() []string {
	ents, _ := profiles.ReadDir("profiles")
	var out []string
	for _, e := range ents {
		out = append(out, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(out)
	return out
}

// Select decodes the named profile over Default.
func Select(name string) (*Board, error) {
	raw, err := profiles.ReadFile("profiles/" + name + ".yaml")
	if err != nil {
		return nil, &errcode.E{C: errcode.UnknownBoard, Op: "config.Select", Msg: name}
	}
	return Parse(raw)
}

// Parse decodes a profile document over Default.
func Parse(raw []byte) (*Board, error) {
	b := Default()
	if err := yaml.Unmarshal(raw, b); err != nil {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "config.Parse", Err: err}
	}
	if err := b.validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Board) validate() error {
	switch b.Platform {
	case "host", "linux", "rp2":
	default:
		return &errcode.E{C: errcode.InvalidParams, Op: "config.validate", Msg: "platform " + b.Platform}
	}
	if b.Topology != "fanout" && b.Topology != "shared" {
		return &errcode.E{C: errcode.InvalidParams, Op: "config.validate", Msg: "topology " + b.Topology}
	}
	if b.Console.Ring < 2 || b.Console.Ring&(b.Console.Ring-1) != 0 {
		return &errcode.E{C: errcode.InvalidParams, Op: "config.validate", Msg: "console ring must be a power of two"}
	}
	if b.Timing.AlarmPulse <= 0 || b.Timing.Sleep <= 0 {
		return errors.New("config: timing must be positive")
	}
	return nil
}
