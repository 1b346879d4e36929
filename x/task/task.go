// Package task runs the firmware's static task table for one boot session.
package task

import (
	"context"
	"slices"
	"sync"
	"time"
)

// Task is one entry of the static task table.
type Task struct {
	Name     string
	Priority int // higher starts first
	Run      func(ctx context.Context)
}

// Group is the set of running tasks of a boot session.
type Group struct {
	wg      sync.WaitGroup
	mu      sync.Mutex
	started []string
}

// Start launches every task as its own goroutine, highest priority first.
// Tasks of equal priority keep their table order. Go cannot preempt by
// priority; starting order only guarantees that consumers are parked on
// their queues before producers get scheduled.
func Start(ctx context.Context, tasks []Task) *Group {
	order := slices.Clone(tasks)
	slices.SortStableFunc(order, func(a, b Task) int { return b.Priority - a.Priority })

	g := &Group{}
	for _, t := range order {
		g.wg.Add(1)
		g.mu.Lock()
		g.started = append(g.started, t.Name)
		g.mu.Unlock()
		go func(t Task) {
			defer g.wg.Done()
			t.Run(ctx)
		}(t)
	}
	return g
}

// Order returns the task names in the order they were started.
func (g *Group) Order() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.started)
}

// Wait blocks until every task has returned.
func (g *Group) Wait() { g.wg.Wait() }

// WaitTimeout is Wait bounded by d. It reports whether all tasks returned.
func (g *Group) WaitTimeout(d time.Duration) bool {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-done:
		return true
	case <-t.C:
		return false
	}
}

// Sleep suspends the caller for d. It returns false if ctx ended first.
func Sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// Every runs fn, then sleeps period, until ctx ends. The period is
// measured from the end of fn, like a delay loop.
func Every(ctx context.Context, period time.Duration, fn func(ctx context.Context)) {
	for ctx.Err() == nil {
		fn(ctx)
		if !Sleep(ctx, period) {
			return
		}
	}
}
