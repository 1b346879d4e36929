// Package light is the ambient-light source: a raw ADC reading scaled to
// the board's resolution.
package light

import (
	"envmon-go/services/hal/halcore"
)

// Reader returns one raw conversion in its native width.
type Reader interface {
	Read() (uint16, error)
}

// ReaderFunc adapts a plain function to Reader.
type ReaderFunc func() (uint16, error)

func (f ReaderFunc) Read() (uint16, error) { return f() }

// Sensor implements halcore.LightSource. Shift right-aligns the reading
// to the board's resolution (TinyGo's ADC returns 16-bit left-aligned
// values; a 12-bit scale needs Shift 4).
type Sensor struct {
	r     Reader
	shift uint
}

var _ halcore.LightSource = (*Sensor)(nil)

func New(r Reader, shift uint) *Sensor { return &Sensor{r: r, shift: shift} }

func (s *Sensor) ReadRaw() (int, error) {
	v, err := s.r.Read()
	if err != nil {
		return 0, err
	}
	return int(v >> s.shift), nil
}
