package types

import (
	"time"

	"envmon-go/x/linebuf"
	"envmon-go/x/mathx"
)

// Clock is one wall-clock reading, normalised Gregorian.
type Clock struct {
	Year, Month, Day     int
	Hour, Minute, Second int
}

// ClockFrom converts a time.Time (location as given) into a Clock.
func ClockFrom(t time.Time) Clock {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()
	return Clock{Year: y, Month: int(m), Day: d, Hour: hh, Minute: mm, Second: ss}
}

// Time converts back to a UTC time.Time.
func (c Clock) Time() time.Time {
	return time.Date(c.Year, time.Month(c.Month), c.Day, c.Hour, c.Minute, c.Second, 0, time.UTC)
}

// Valid reports whether every field is in range and the date exists.
func (c Clock) Valid() bool {
	if !mathx.Between(c.Month, 1, 12) || !mathx.Between(c.Day, 1, 31) {
		return false
	}
	if !mathx.Between(c.Hour, 0, 23) || !mathx.Between(c.Minute, 0, 59) || !mathx.Between(c.Second, 0, 59) {
		return false
	}
	return ClockFrom(c.Time()) == c
}

// AppendDate writes DD/MM/YYYY.
func (c Clock) AppendDate(l *linebuf.Line) *linebuf.Line {
	return l.Pad(c.Day, 2).Byte('/').Pad(c.Month, 2).Byte('/').Pad(c.Year, 4)
}

// AppendTime writes HH:MM:SS.
func (c Clock) AppendTime(l *linebuf.Line) *linebuf.Line {
	return l.Pad(c.Hour, 2).Byte(':').Pad(c.Minute, 2).Byte(':').Pad(c.Second, 2)
}

// String renders DD/MM/YYYY HH:MM:SS.
func (c Clock) String() string {
	l := linebuf.New(32)
	c.AppendDate(l).Byte(' ')
	return c.AppendTime(l).String()
}
