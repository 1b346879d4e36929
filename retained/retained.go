// Package retained holds the small state that survives a deep-sleep reset:
// the event counter and the wake counter.
package retained

import "sync"

const (
	Magic   uint32 = 0x454E564D // "ENVM"
	Version uint32 = 1
)

// State is the reset-durable record.
type State struct {
	Magic      uint32
	Version    uint32
	EventCount uint32
	WakeCount  uint32
}

// Fresh is the state of a first boot.
func Fresh() State { return State{Magic: Magic, Version: Version} }

// Valid reports whether s carries the current magic and version.
func (s State) Valid() bool { return s.Magic == Magic && s.Version == Version }

// Store persists State across resets.
type Store interface {
	// Load returns the stored state. ok is false (and the state fresh) when
	// nothing valid was retained.
	Load() (State, bool)
	Store(State)
}

// Validate returns s if valid, otherwise Fresh and false.
func Validate(s State) (State, bool) {
	if !s.Valid() {
		return Fresh(), false
	}
	return s, true
}

// MemStore keeps state in process memory. It survives the in-process
// reset used by the host and Linux builds.
type MemStore struct {
	mu sync.Mutex
	s  State
}

func NewMemStore() *MemStore { return &MemStore{} }

func (m *MemStore) Load() (State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Validate(m.s)
}

func (m *MemStore) Store(s State) {
	s.Magic, s.Version = Magic, Version
	m.mu.Lock()
	m.s = s
	m.mu.Unlock()
}

// Raw exposes the stored words for tests and diagnostics.
func (m *MemStore) Raw() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s
}

// Corrupt overwrites the stored record verbatim.
func (m *MemStore) Corrupt(s State) {
	m.mu.Lock()
	m.s = s
	m.mu.Unlock()
}
