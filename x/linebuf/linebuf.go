// Package linebuf builds single console lines in a fixed-capacity buffer
// without fmt. Every append is bounded by the capacity; anything that does
// not fit marks the line as truncated instead of silently cutting it.
//
// Supported pieces: literal strings, bytes, decimal integers with optional
// zero padding, and fixed-point decimals (%.Nf with N <= 6).
package linebuf

import (
	"strconv"

	"github.com/chewxy/math32"
)

// Line is a bounded line builder. The zero value is unusable; use New.
type Line struct {
	buf       []byte
	max       int
	truncated bool
}

// New returns a builder accepting at most max bytes.
func New(max int) *Line {
	if max <= 0 {
		max = 1
	}
	return &Line{buf: make([]byte, 0, max), max: max}
}

// Reset clears the builder for reuse.
func (l *Line) Reset() {
	l.buf = l.buf[:0]
	l.truncated = false
}

func (l *Line) Len() int          { return len(l.buf) }
func (l *Line) Truncated() bool   { return l.truncated }
func (l *Line) String() string    { return string(l.buf) }
func (l *Line) Bytes() []byte     { return l.buf }
func (l *Line) room(n int) bool   { return len(l.buf)+n <= l.max }
func (l *Line) Byte(c byte) *Line { return l.bytes([]byte{c}) }

func (l *Line) bytes(p []byte) *Line {
	if l.truncated {
		return l
	}
	if !l.room(len(p)) {
		l.buf = append(l.buf, p[:l.max-len(l.buf)]...)
		l.truncated = true
		return l
	}
	l.buf = append(l.buf, p...)
	return l
}

// Str appends s verbatim.
func (l *Line) Str(s string) *Line { return l.bytes([]byte(s)) }

// Int appends i in decimal.
func (l *Line) Int(i int) *Line { return l.Pad(i, 0) }

// Pad appends i in decimal, left-padded with zeros to width digits (%0Nd).
// The sign does not count towards the width.
func (l *Line) Pad(i int, width int) *Line {
	var tmp [24]byte
	n := len(tmp)
	neg := i < 0
	u := uint64(i)
	if neg {
		u = uint64(-int64(i))
	}
	for u > 0 || n == len(tmp) {
		n--
		tmp[n] = byte('0' + u%10)
		u /= 10
	}
	for len(tmp)-n < width && n > 1 {
		n--
		tmp[n] = '0'
	}
	if neg {
		n--
		tmp[n] = '-'
	}
	return l.bytes(tmp[n:])
}

var pow10 = [...]float32{1, 10, 100, 1000, 10000, 100000, 1000000}

// Fixed appends v with exactly prec decimals, rounding half away from zero
// like printf's %.Nf for the values seen on this device. NaN and Inf are
// written as "nan" and "inf".
func (l *Line) Fixed(v float32, prec int) *Line {
	switch {
	case math32.IsNaN(v):
		return l.Str("nan")
	case math32.IsInf(v, 1):
		return l.Str("inf")
	case math32.IsInf(v, -1):
		return l.Str("-inf")
	}
	if prec < 0 {
		prec = 0
	}
	if prec >= len(pow10) {
		prec = len(pow10) - 1
	}
	scale := pow10[prec]
	if math32.Abs(v) >= 1e15 {
		// Outside int64 once scaled.
		var tmp [64]byte
		return l.bytes(strconv.AppendFloat(tmp[:0], float64(v), 'f', prec, 32))
	}
	neg := v < 0
	if neg {
		v = -v
	}
	// float64 keeps the scaled value exact enough for sensor ranges.
	scaled := int64(float64(v)*float64(scale) + 0.5)
	if neg && scaled != 0 {
		l.Byte('-')
	}
	whole := scaled / int64(scale)
	frac := scaled % int64(scale)
	l.Int(int(whole))
	if prec > 0 {
		l.Byte('.')
		l.Pad(int(frac), prec)
	}
	return l
}
