// Package alarm pulses the actuator once per acquired alarm signal.
package alarm

import (
	"context"
	"sync/atomic"
	"time"

	"envmon-go/services/hal/halcore"
	"envmon-go/x/logx"
	"envmon-go/x/task"
)

// Waiter is the consumer side of the alarm signal.
type Waiter interface {
	Wait(ctx context.Context, timeout time.Duration) bool
}

type Responder struct {
	sig    Waiter
	act    halcore.Actuator
	pulse  time.Duration
	pulses atomic.Uint32
}

// New drives the actuator low before returning.
func New(sig Waiter, act halcore.Actuator, pulse time.Duration) *Responder {
	act.Set(false)
	return &Responder{sig: sig, act: act, pulse: pulse}
}

// Run waits for the signal forever. The actuator is always left low, also
// when the session ends mid-pulse.
func (r *Responder) Run(ctx context.Context) {
	for r.sig.Wait(ctx, -1) {
		r.act.Set(true)
		r.pulses.Add(1)
		logx.Debug("alarm pulse", "task", "alarm", "n", r.pulses.Load())
		ok := task.Sleep(ctx, r.pulse)
		r.act.Set(false)
		if !ok {
			return
		}
	}
}

func (r *Responder) Pulses() uint32 { return r.pulses.Load() }
