package types

// ------------------------
// Environment readings
// ------------------------

// EnvReading carries any subset of temperature, humidity and light.
// Fields that were not sampled are absent, never a magic number.
type EnvReading struct {
	TemperatureC Opt[float32]
	HumidityPct  Opt[float32]
	LightRaw     Opt[int]
}

// THReading is a reading from the temperature/humidity sampler.
func THReading(tempC, humPct float32) EnvReading {
	return EnvReading{TemperatureC: Some(tempC), HumidityPct: Some(humPct)}
}

// LightReading is a reading from the light sampler.
func LightReading(raw int) EnvReading {
	return EnvReading{LightRaw: Some(raw)}
}

// Sentinels printed in place of absent values.
const (
	AbsentReal float32 = -1
	AbsentInt  int     = -1
)

// ------------------------
// Thresholds
// ------------------------

// Thresholds drive the visual alarm. All comparisons are strict.
type Thresholds struct {
	TemperatureC float32
	HumidityPct  float32
	LightRaw     int
}

// DefaultThresholds: temp > 24 C and hum > 70 %, or light > 500.
func DefaultThresholds() Thresholds {
	return Thresholds{TemperatureC: 24, HumidityPct: 70, LightRaw: 500}
}

// Exceeded reports whether r crosses the alarm rule. Absent fields never
// satisfy their comparison.
func (th Thresholds) Exceeded(r EnvReading) bool {
	t, tok := r.TemperatureC.Get()
	h, hok := r.HumidityPct.Get()
	if tok && hok && t > th.TemperatureC && h > th.HumidityPct {
		return true
	}
	l, lok := r.LightRaw.Get()
	return lok && l > th.LightRaw
}
