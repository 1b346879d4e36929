// Package power runs the uptime window and hands the device to deep
// sleep. Only the retained counters survive the sleep.
package power

import (
	"context"
	"time"

	"envmon-go/retained"
	"envmon-go/services/console"
	"envmon-go/x/linebuf"
	"envmon-go/x/logx"
	"envmon-go/x/task"
)

const (
	RunningLine  = "Sistema en ejecución..."
	SleepingLine = "Entrando en Deep Sleep..."
)

// Wake loads the retained state, counts this boot and stores it back.
// It prints "Reinicio número: w".
func Wake(store retained.Store, con console.Sink) retained.State {
	s, ok := store.Load()
	if !ok {
		logx.Info("no retained state, starting fresh", "task", "power")
	}
	s.WakeCount++
	store.Store(s)
	l := linebuf.New(40)
	con.WriteLine(l.Str("Reinicio número: ").Int(int(s.WakeCount)).String())
	return s
}

type Config struct {
	Uptime time.Duration
	Sleep  time.Duration
}

// Manager commits the counters and requests sleep after Uptime.
type Manager struct {
	con     console.Sink
	store   retained.Store
	events  func() uint32
	wake    uint32
	cfg     Config
	request func(d time.Duration)
}

// New builds a manager for the boot whose wake count is wake. events
// reads the live event count; request is called once with the sleep
// duration after the state is committed.
func New(con console.Sink, store retained.Store, events func() uint32, wake uint32,
	cfg Config, request func(d time.Duration)) *Manager {
	return &Manager{con: con, store: store, events: events, wake: wake, cfg: cfg, request: request}
}

func (m *Manager) Run(ctx context.Context) {
	m.con.WriteLine(RunningLine)
	if !task.Sleep(ctx, m.cfg.Uptime) {
		return
	}
	m.con.WriteLine(SleepingLine)
	m.Commit()
	logx.Info("deep sleep", "task", "power", "for", m.cfg.Sleep)
	m.request(m.cfg.Sleep)
}

// Commit writes the live counters to the retained store.
func (m *Manager) Commit() {
	m.store.Store(retained.State{EventCount: m.events(), WakeCount: m.wake})
}
