// Package halsim emulates the board's peripherals on a workstation: an I2C
// bus with register-level DS3231 and AHT20 targets, GPIO pins with edge
// interrupts, a synthetic light source and a recording power switch. The
// real drivers run unmodified against it.
package halsim

import (
	"errors"
	"sync"
)

// ErrNack is returned for transactions to an address nobody answers.
var ErrNack = errors.New("halsim: i2c nack")

// Target is one device on the emulated bus.
type Target interface {
	Tx(w, r []byte) error
}

// Bus implements tinygo drivers.I2C over attached targets.
type Bus struct {
	mu      sync.Mutex
	targets map[uint16]Target
	txs     int
}

func NewBus() *Bus { return &Bus{targets: map[uint16]Target{}} }

func (b *Bus) Attach(addr uint16, t Target) {
	b.mu.Lock()
	b.targets[addr] = t
	b.mu.Unlock()
}

func (b *Bus) Detach(addr uint16) {
	b.mu.Lock()
	delete(b.targets, addr)
	b.mu.Unlock()
}

func (b *Bus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.txs++
	t, ok := b.targets[addr]
	if !ok {
		return ErrNack
	}
	return t.Tx(w, r)
}

// Txs counts transactions, answered or not.
func (b *Bus) Txs() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.txs
}
