//go:build rp2040 || rp2350

package retained

import "device/rp"

// ScratchStore keeps state in the watchdog scratch registers, which keep
// their contents across a watchdog reboot. SCRATCH4..7 belong to the
// bootrom and are left alone.
type ScratchStore struct{}

func NewScratchStore() ScratchStore { return ScratchStore{} }

func (ScratchStore) Load() (State, bool) {
	return Validate(State{
		Magic:      rp.WATCHDOG.SCRATCH0.Get(),
		Version:    rp.WATCHDOG.SCRATCH1.Get(),
		EventCount: rp.WATCHDOG.SCRATCH2.Get(),
		WakeCount:  rp.WATCHDOG.SCRATCH3.Get(),
	})
}

func (ScratchStore) Store(s State) {
	rp.WATCHDOG.SCRATCH2.Set(s.EventCount)
	rp.WATCHDOG.SCRATCH3.Set(s.WakeCount)
	rp.WATCHDOG.SCRATCH1.Set(Version)
	rp.WATCHDOG.SCRATCH0.Set(Magic)
}
