// Package console is the telemetry output: whole lines, never interleaved,
// carried through a byte ring to whatever port the board has.
package console

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"envmon-go/x/logx"
	"envmon-go/x/shmring"
)

// Sink accepts one line at a time. Implementations must keep each line
// contiguous in the output.
type Sink interface {
	WriteLine(s string)
}

// Console is a Sink feeding a ring that Pump drains to a port.
type Console struct {
	mu      sync.Mutex
	ring    *shmring.Ring
	eol     []byte
	wait    time.Duration
	lines   atomic.Uint32
	dropped atomic.Uint32
}

// New makes a console with a ring of ringSize bytes (power of two) and
// the given line terminator.
func New(ringSize int, eol string) *Console {
	return &Console{ring: shmring.New(ringSize), eol: []byte(eol), wait: time.Second}
}

// WriteLine appends s and the terminator as one unit. If the port stalls
// for longer than a second the line is dropped and counted.
func (c *Console) WriteLine(s string) {
	n := len(s) + len(c.eol)
	c.mu.Lock()
	defer c.mu.Unlock()
	if n > c.ring.Cap() {
		c.dropped.Add(1)
		return
	}
	if c.ring.Space() < n {
		t := time.NewTimer(c.wait)
		defer t.Stop()
		for c.ring.Space() < n {
			select {
			case <-c.ring.Writable():
			case <-t.C:
				c.dropped.Add(1)
				return
			}
		}
	}
	c.ring.TryWriteFrom([]byte(s))
	c.ring.TryWriteFrom(c.eol)
	c.lines.Add(1)
}

// Lines and Dropped are diagnostic counters.
func (c *Console) Lines() uint32   { return c.lines.Load() }
func (c *Console) Dropped() uint32 { return c.dropped.Load() }

// Pump copies ring contents to w until ctx ends, then flushes what is left.
func (c *Console) Pump(ctx context.Context, w io.Writer) {
	buf := make([]byte, 128)
	for {
		for {
			n := c.ring.TryReadInto(buf)
			if n == 0 {
				break
			}
			if _, err := w.Write(buf[:n]); err != nil {
				logx.Warn("console write failed", "err", err)
			}
		}
		select {
		case <-ctx.Done():
			for {
				n := c.ring.TryReadInto(buf)
				if n == 0 {
					return
				}
				_, _ = w.Write(buf[:n])
			}
		case <-c.ring.Readable():
		}
	}
}

// Flush waits up to d for the ring to drain.
func (c *Console) Flush(d time.Duration) bool {
	deadline := time.Now().Add(d)
	for c.ring.Available() > 0 {
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(time.Millisecond)
	}
	return true
}
