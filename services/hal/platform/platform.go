// Package platform opens the hardware of one board profile and hands it
// to the firmware as a firmware.Hardware.
package platform

import (
	"context"
	"errors"
	"io"
	"time"

	"envmon-go/errcode"
	"envmon-go/services/config"
	"envmon-go/services/console"
	"envmon-go/services/firmware"
)

const defaultRing = 1024

// PressEvery sets the cadence of the simulated buttons on the host
// platform; zero disables them. A coincident press alternates with a lone
// press of A, which the counter ignores. Other platforms ignore it.
var PressEvery = 3 * time.Second

// Platform is an opened board. Console buffers lines for Port; the caller
// runs Console.Pump(ctx, Port).
type Platform struct {
	Board    *config.Board
	Hardware firmware.Hardware
	Console  *console.Console
	Port     io.Writer

	// Sim is set on the host platform only.
	Sim *Sim

	closers []func() error
}

// Close releases every handle in reverse open order.
func (p *Platform) Close() error {
	var errs []error
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	p.closers = nil
	return errors.Join(errs...)
}

func (p *Platform) onClose(fn func() error) { p.closers = append(p.closers, fn) }

type opener func(ctx context.Context, b *config.Board, build time.Time) (*Platform, error)

var openers = map[string]opener{}

func register(name string, o opener) { openers[name] = o }

// Available lists the platform kinds compiled into this binary.
func Available() []string {
	out := make([]string, 0, len(openers))
	for k := range openers {
		out = append(out, k)
	}
	return out
}

// Open builds the hardware for b. build is the firmware build time the
// RTC falls back to after power loss.
func Open(ctx context.Context, b *config.Board, build time.Time) (*Platform, error) {
	o, ok := openers[b.Platform]
	if !ok {
		return nil, &errcode.E{C: errcode.Unsupported, Op: "platform.Open", Msg: b.Platform}
	}
	return o(ctx, b, build)
}

func newConsole(b *config.Board) *console.Console {
	ring := b.Console.Ring
	if ring <= 0 {
		ring = defaultRing
	}
	return console.New(ring, b.Console.Newline())
}
