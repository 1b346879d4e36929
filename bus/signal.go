// signal.go
package bus

import (
	"context"
	"sync/atomic"
	"time"
)

// Signal is a binary semaphore. Raises while pending collapse into one;
// there is no count. Raise never blocks and is safe from interrupt context.
type Signal struct {
	ch     chan struct{}
	raises atomic.Uint32
}

func NewSignal() *Signal {
	return &Signal{ch: make(chan struct{}, 1)}
}

// Raise sets the signal pending if it is not already.
func (s *Signal) Raise() {
	s.raises.Add(1)
	select {
	case s.ch <- struct{}{}:
	default:
	}
}

// Wait blocks until the signal is pending, clears it and returns true.
// It returns false on timeout. A negative timeout waits forever.
func (s *Signal) Wait(ctx context.Context, timeout time.Duration) bool {
	select {
	case <-s.ch:
		return true
	default:
	}
	if timeout == 0 {
		return false
	}
	if timeout < 0 {
		select {
		case <-s.ch:
			return true
		case <-ctx.Done():
			return false
		}
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-s.ch:
		return true
	case <-t.C:
		return false
	case <-ctx.Done():
		return false
	}
}

// Pending reports whether a raise is waiting to be acquired.
func (s *Signal) Pending() bool { return len(s.ch) > 0 }

// Raises is the number of Raise calls so far, collapsed or not.
func (s *Signal) Raises() uint32 { return s.raises.Load() }
