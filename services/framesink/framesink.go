// Package framesink prints telemetry frames, rate-limited.
package framesink

import (
	"context"
	"sync/atomic"
	"time"

	"envmon-go/services/console"
	"envmon-go/types"
	"envmon-go/x/task"
)

type Receiver interface {
	Receive(ctx context.Context, timeout time.Duration) (types.Frame, bool)
}

type Sink struct {
	frames  Receiver
	con     console.Sink
	delay   time.Duration
	printed atomic.Uint32
}

func New(frames Receiver, con console.Sink, delay time.Duration) *Sink {
	return &Sink{frames: frames, con: con, delay: delay}
}

// Run prints each frame verbatim, then pauses for delay.
func (s *Sink) Run(ctx context.Context) {
	for {
		f, ok := s.frames.Receive(ctx, -1)
		if !ok {
			return
		}
		s.con.WriteLine(string(f))
		s.printed.Add(1)
		if !task.Sleep(ctx, s.delay) {
			return
		}
	}
}

func (s *Sink) Printed() uint32 { return s.printed.Load() }
