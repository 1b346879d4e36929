package config

import (
	"errors"
	"slices"
	"testing"
	"time"

	"envmon-go/errcode"
)

func TestProfilesDecode(t *testing.T) {
	names := Names()
	for _, want := range []string{"host", "pico", "pico2", "rpi"} {
		if !slices.Contains(names, want) {
			t.Fatalf("profile %q missing from %v", want, names)
		}
	}
	for _, n := range names {
		b, err := Select(n)
		if err != nil {
			t.Fatalf("%s: %v", n, err)
		}
		if b.Name != n {
			t.Fatalf("%s: name = %q", n, b.Name)
		}
		if b.Timing != DefaultTiming() {
			t.Fatalf("%s: timings must default", n)
		}
	}
}

func TestPicoProfile(t *testing.T) {
	b, err := Select("pico")
	if err != nil {
		t.Fatal(err)
	}
	if b.Platform != "rp2" || b.Sensor.Kind != "dht11" || b.Buttons.A != 18 || b.Buttons.B != 19 {
		t.Fatalf("unexpected pico profile %+v", b)
	}
	if b.Console.Baud != 115200 || b.Console.Newline() != "\r\n" {
		t.Fatalf("console = %+v", b.Console)
	}
	th := b.Thresholds.Thresholds()
	if th.TemperatureC != 24 || th.HumidityPct != 70 || th.LightRaw != 500 {
		t.Fatalf("thresholds = %+v", th)
	}
}

func TestParseOverridesTiming(t *testing.T) {
	b, err := Parse([]byte("platform: host\ntiming:\n  alarm_pulse: 50ms\n"))
	if err != nil {
		t.Fatal(err)
	}
	if b.Timing.AlarmPulse != 50*time.Millisecond {
		t.Fatalf("alarm pulse = %v", b.Timing.AlarmPulse)
	}
	if b.Timing.Sleep != 30*time.Second {
		t.Fatalf("untouched field changed: %v", b.Timing.Sleep)
	}
}

func TestSelectUnknown(t *testing.T) {
	_, err := Select("esp32")
	if !errors.Is(err, errcode.UnknownBoard) {
		t.Fatalf("err = %v", err)
	}
}

func TestParseRejectsBadTopology(t *testing.T) {
	if _, err := Parse([]byte("platform: host\ntopology: mesh\n")); errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("err = %v", err)
	}
}

func TestScaled(t *testing.T) {
	s := DefaultTiming().Scaled(100)
	if s.THPeriod != 20*time.Millisecond || s.Uptime != 100*time.Millisecond {
		t.Fatalf("scaled = %+v", s)
	}
	if s.StopGrace != DefaultTiming().StopGrace {
		t.Fatal("stop grace is not scaled")
	}
}
