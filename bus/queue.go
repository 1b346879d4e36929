// queue.go
package bus

import (
	"context"
	"time"
)

// Queue is a bounded FIFO with a single designated set of producers and
// consumers. Send blocks while the queue is full; nothing is ever dropped.
type Queue[T any] struct {
	name string
	ch   chan T
}

// NewQueue creates a queue holding at most depth items.
func NewQueue[T any](name string, depth int) *Queue[T] {
	if depth <= 0 {
		depth = 1
	}
	return &Queue[T]{name: name, ch: make(chan T, depth)}
}

func (q *Queue[T]) Name() string { return q.name }
func (q *Queue[T]) Len() int     { return len(q.ch) }
func (q *Queue[T]) Cap() int     { return cap(q.ch) }

// Send enqueues v, waiting for space for as long as it takes. It returns
// only when v was queued or when ctx (the boot session) ends.
func (q *Queue[T]) Send(ctx context.Context, v T) error {
	select {
	case q.ch <- v:
		return nil
	default:
	}
	select {
	case q.ch <- v:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TrySend enqueues v only if there is space right now.
func (q *Queue[T]) TrySend(v T) bool {
	select {
	case q.ch <- v:
		return true
	default:
		return false
	}
}

// Receive returns the next item, or false once timeout has elapsed.
// A negative timeout waits forever; zero polls.
func (q *Queue[T]) Receive(ctx context.Context, timeout time.Duration) (T, bool) {
	var zero T
	select {
	case v := <-q.ch:
		return v, true
	default:
	}
	if timeout == 0 {
		return zero, false
	}
	if timeout < 0 {
		select {
		case v := <-q.ch:
			return v, true
		case <-ctx.Done():
			return zero, false
		}
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case v := <-q.ch:
		return v, true
	case <-t.C:
		return zero, false
	case <-ctx.Done():
		return zero, false
	}
}

// TryReceive returns the head item if one is queued.
func (q *Queue[T]) TryReceive() (T, bool) {
	select {
	case v := <-q.ch:
		return v, true
	default:
		var zero T
		return zero, false
	}
}
