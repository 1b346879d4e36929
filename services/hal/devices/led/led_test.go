package led

import (
	"testing"

	"envmon-go/services/hal/halsim"
)

func TestLEDStartsOffAndCountsPulses(t *testing.T) {
	pin := halsim.NewFakePin(2)
	pin.Set(true)
	l, err := New(pin, false)
	if err != nil {
		t.Fatal(err)
	}
	if pin.Get() || !pin.IsOutput() {
		t.Fatal("LED must start as a low output")
	}
	l.Set(true)
	l.Set(true)
	l.Set(false)
	l.Set(true)
	if l.Pulses() != 2 {
		t.Fatalf("pulses = %d, want 2", l.Pulses())
	}
	if !pin.Get() || !l.On() {
		t.Fatal("LED should be on")
	}
}

func TestActiveLowInverts(t *testing.T) {
	pin := halsim.NewFakePin(25)
	l, _ := New(pin, true)
	if !pin.Get() {
		t.Fatal("active-low LED idles high")
	}
	l.Set(true)
	if pin.Get() {
		t.Fatal("active-low LED must drive low when on")
	}
}
