package console

import (
	"strings"
	"sync"
	"time"
)

// Memory is a Sink that keeps every line. Simulations and tests read the
// output back from it.
type Memory struct {
	mu    sync.Mutex
	lines []string
	cond  chan struct{}
}

func NewMemory() *Memory { return &Memory{cond: make(chan struct{})} }

func (m *Memory) WriteLine(s string) {
	m.mu.Lock()
	m.lines = append(m.lines, s)
	close(m.cond)
	m.cond = make(chan struct{})
	m.mu.Unlock()
}

func (m *Memory) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lines...)
}

// Count returns how many lines start with prefix.
func (m *Memory) Count(prefix string) int {
	n := 0
	for _, l := range m.Lines() {
		if strings.HasPrefix(l, prefix) {
			n++
		}
	}
	return n
}

// WaitFor waits up to d for a line starting with prefix and returns it.
func (m *Memory) WaitFor(prefix string, d time.Duration) (string, bool) {
	return m.WaitForNth(prefix, 1, d)
}

// WaitForNth waits for the nth line starting with prefix.
func (m *Memory) WaitForNth(prefix string, nth int, d time.Duration) (string, bool) {
	t := time.NewTimer(d)
	defer t.Stop()
	for {
		m.mu.Lock()
		seen := 0
		for _, l := range m.lines {
			if strings.HasPrefix(l, prefix) {
				seen++
				if seen == nth {
					m.mu.Unlock()
					return l, true
				}
			}
		}
		wake := m.cond
		m.mu.Unlock()
		select {
		case <-wake:
		case <-t.C:
			return "", false
		}
	}
}

// Tee writes every line to both sinks.
type Tee struct{ A, B Sink }

func (t Tee) WriteLine(s string) {
	t.A.WriteLine(s)
	t.B.WriteLine(s)
}
