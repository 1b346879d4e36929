package halsim

import (
	"sync"
	"time"
)

const (
	DS3231Address = 0x68

	dsRegSeconds = 0x00
	dsRegYear    = 0x06
	dsRegControl = 0x0E
	dsRegStatus  = 0x0F
	dsRegs       = 0x13

	dsStatusOSF  = 0x80
	dsMonthCentr = 0x80
)

// DS3231 emulates the RTC register file. Time keeps running from the
// last set value using the host clock.
type DS3231 struct {
	mu    sync.Mutex
	ptr   byte
	regs  [dsRegs]byte
	base  time.Time
	setAt time.Time
	now   func() time.Time
	sets  int
}

// NewDS3231 starts the clock at start. lostPower raises the oscillator
// stop flag, as after a dead backup battery.
func NewDS3231(start time.Time, lostPower bool) *DS3231 {
	d := &DS3231{now: time.Now}
	d.base, d.setAt = start.UTC(), d.now()
	if lostPower {
		d.regs[dsRegStatus] |= dsStatusOSF
	}
	return d
}

func (d *DS3231) Tx(w, r []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(w) > 0 {
		d.ptr = w[0] % dsRegs
		data := w[1:]
		touchedTime := false
		for _, b := range data {
			if d.ptr <= dsRegYear {
				touchedTime = true
			}
			d.regs[d.ptr] = b
			d.ptr = (d.ptr + 1) % dsRegs
		}
		if touchedTime {
			d.base, d.setAt = d.decode(), d.now()
			d.sets++
		}
	}
	if len(r) > 0 {
		d.encode(d.current())
		for i := range r {
			r[i] = d.regs[d.ptr]
			d.ptr = (d.ptr + 1) % dsRegs
		}
	}
	return nil
}

// Time is the emulated current time.
func (d *DS3231) Time() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current()
}

// LostPower reports the oscillator stop flag.
func (d *DS3231) LostPower() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.regs[dsRegStatus]&dsStatusOSF != 0
}

// Sets counts writes to the time registers.
func (d *DS3231) Sets() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sets
}

func (d *DS3231) current() time.Time {
	return d.base.Add(d.now().Sub(d.setAt)).Truncate(time.Second)
}

func (d *DS3231) encode(t time.Time) {
	d.regs[0] = toBCD(t.Second())
	d.regs[1] = toBCD(t.Minute())
	d.regs[2] = toBCD(t.Hour())
	d.regs[3] = byte(t.Weekday()) + 1
	d.regs[4] = toBCD(t.Day())
	y := t.Year() - 2000
	month := toBCD(int(t.Month()))
	if y >= 100 {
		y -= 100
		month |= dsMonthCentr
	}
	d.regs[5] = month
	d.regs[6] = toBCD(y)
}

func (d *DS3231) decode() time.Time {
	year := 2000 + fromBCD(d.regs[6])
	if d.regs[5]&dsMonthCentr != 0 {
		year += 100
	}
	return time.Date(year, time.Month(fromBCD(d.regs[5]&0x1F)), fromBCD(d.regs[4]&0x3F),
		fromBCD(d.regs[2]&0x3F), fromBCD(d.regs[1]&0x7F), fromBCD(d.regs[0]&0x7F), 0, time.UTC)
}

func toBCD(v int) byte   { return byte(v/10<<4 | v%10) }
func fromBCD(b byte) int { return int(b>>4)*10 + int(b&0x0F) }
