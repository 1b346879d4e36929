//go:build rp2040 || rp2350

package thsensor

import (
	"machine"

	"tinygo.org/x/drivers/dht"
)

// DHT is a DHT11/DHT22 on one GPIO. The driver rate-limits its own
// conversions, so back-to-back reads share one measurement.
type DHT struct {
	dev dht.Device
}

func NewDHT(pin machine.Pin, kind string) *DHT {
	t := dht.DHT11
	if kind == "dht22" {
		t = dht.DHT22
	}
	return &DHT{dev: dht.New(pin, t)}
}

func (d *DHT) ReadTemperatureC() (float32, error) {
	return d.dev.TemperatureFloat(dht.C)
}

func (d *DHT) ReadHumidityPct() (float32, error) {
	return d.dev.HumidityFloat()
}
