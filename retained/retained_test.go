package retained

import "testing"

func TestMemStoreFirstBootIsFresh(t *testing.T) {
	m := NewMemStore()
	s, ok := m.Load()
	if ok {
		t.Fatal("empty store must not report retained state")
	}
	if s != Fresh() {
		t.Fatalf("state = %+v, want fresh", s)
	}
}

func TestMemStoreRoundTrip(t *testing.T) {
	m := NewMemStore()
	m.Store(State{EventCount: 7, WakeCount: 3})
	s, ok := m.Load()
	if !ok || s.EventCount != 7 || s.WakeCount != 3 {
		t.Fatalf("load = %+v ok=%v", s, ok)
	}
	if !m.Raw().Valid() {
		t.Fatal("Store must stamp magic and version")
	}
}

func TestCorruptStateIsDiscarded(t *testing.T) {
	m := NewMemStore()
	for _, bad := range []State{
		{Magic: 0xDEADBEEF, Version: Version, EventCount: 9},
		{Magic: Magic, Version: Version + 1, EventCount: 9},
	} {
		m.Corrupt(bad)
		s, ok := m.Load()
		if ok || s.EventCount != 0 || s.WakeCount != 0 {
			t.Fatalf("corrupt %+v loaded as %+v ok=%v", bad, s, ok)
		}
	}
}
