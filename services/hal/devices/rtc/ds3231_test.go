package rtc

import (
	"errors"
	"testing"
	"time"

	"envmon-go/errcode"
	"envmon-go/services/hal/halsim"
)

var build = time.Date(2024, time.June, 1, 10, 20, 30, 0, time.UTC)

func newClock(lost bool) (*Clock, *halsim.DS3231) {
	bus := halsim.NewBus()
	dev := halsim.NewDS3231(time.Date(2025, time.March, 14, 15, 9, 26, 0, time.UTC), lost)
	bus.Attach(Address, dev)
	return New(bus, func() time.Time { return build }), dev
}

func TestBeginMissingDevice(t *testing.T) {
	c := New(halsim.NewBus(), func() time.Time { return build })
	err := c.Begin()
	if !errors.Is(err, errcode.ClockNotFound) {
		t.Fatalf("Begin() = %v, want clock_not_found", err)
	}
}

func TestNowReadsRegisters(t *testing.T) {
	c, _ := newClock(false)
	if err := c.Begin(); err != nil {
		t.Fatal(err)
	}
	now, err := c.Now()
	if err != nil {
		t.Fatal(err)
	}
	if now.Year() != 2025 || now.Month() != time.March || now.Day() != 14 || now.Hour() != 15 || now.Minute() != 9 {
		t.Fatalf("Now() = %v", now)
	}
	if c.LostPower() {
		t.Fatal("unexpected lost power")
	}
}

func TestLostPowerRecovery(t *testing.T) {
	c, dev := newClock(true)
	if err := c.Begin(); err != nil {
		t.Fatal(err)
	}
	if !c.LostPower() {
		t.Fatal("expected lost power")
	}
	if err := c.SetFromBuildTimestamp(); err != nil {
		t.Fatal(err)
	}
	if c.LostPower() || dev.LostPower() {
		t.Fatal("oscillator stop flag not cleared")
	}
	now, err := c.Now()
	if err != nil {
		t.Fatal(err)
	}
	if d := now.Sub(build); d < 0 || d > 2*time.Second {
		t.Fatalf("Now() = %v, want about %v", now, build)
	}
}

func TestParseBuildStamp(t *testing.T) {
	if got := ParseBuildStamp("2024-06-01T10:20:30Z", time.Time{}); !got.Equal(build) {
		t.Fatalf("parsed %v", got)
	}
	def := time.Unix(0, 0)
	if got := ParseBuildStamp("not a time", def); !got.Equal(def) {
		t.Fatalf("fallback %v", got)
	}
}
