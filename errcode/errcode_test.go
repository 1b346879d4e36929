package errcode

import (
	"errors"
	"testing"
)

func TestOfUnwrapsChains(t *testing.T) {
	base := errors.New("i2c nack")
	err := Wrap(ClockRead, "rtc.Now", base)
	if Of(err) != ClockRead {
		t.Fatalf("Of = %q", Of(err))
	}
	if !errors.Is(err, ClockRead) {
		t.Fatal("errors.Is(code) must match")
	}
	if !errors.Is(err, base) {
		t.Fatal("cause must stay reachable")
	}
	if got := err.Error(); got != "rtc.Now: clock_read: i2c nack" {
		t.Fatalf("Error() = %q", got)
	}
}

func TestOfDefaults(t *testing.T) {
	if Of(nil) != OK {
		t.Fatal("nil must map to OK")
	}
	if Of(errors.New("x")) != Error {
		t.Fatal("plain error must map to Error")
	}
	if Of(ClockNotFound) != ClockNotFound {
		t.Fatal("bare code must map to itself")
	}
	if Wrap(SensorRead, "op", nil) != nil {
		t.Fatal("Wrap(nil) must be nil")
	}
}

func TestMapDriverErr(t *testing.T) {
	if MapDriverErr(errors.New("nack"), SensorRead) != SensorRead {
		t.Fatal("unknown error must map to fallback")
	}
	if MapDriverErr(Wrap(Timeout, "op", errors.New("x")), SensorRead) != Timeout {
		t.Fatal("existing code must win")
	}
}
