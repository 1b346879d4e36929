// bus/bus_test.go
package bus

import (
	"context"
	"testing"
	"time"

	"envmon-go/types"
)

func TestQueueFIFO(t *testing.T) {
	q := NewQueue[int]("t", 4)
	ctx := context.Background()
	for i := 1; i <= 4; i++ {
		if err := q.Send(ctx, i); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}
	for want := 1; want <= 4; want++ {
		got, ok := q.Receive(ctx, 0)
		if !ok || got != want {
			t.Fatalf("receive = %d,%v want %d", got, ok, want)
		}
	}
	if _, ok := q.TryReceive(); ok {
		t.Fatal("queue should be empty")
	}
}

func TestQueueReceiveTimeout(t *testing.T) {
	q := NewQueue[int]("t", 1)
	start := time.Now()
	if _, ok := q.Receive(context.Background(), 30*time.Millisecond); ok {
		t.Fatal("expected timeout")
	}
	if el := time.Since(start); el < 25*time.Millisecond {
		t.Fatalf("returned too early after %v", el)
	}
}

func TestQueueSendBlocksWhenFull(t *testing.T) {
	q := NewQueue[int]("t", 1)
	ctx := context.Background()
	if !q.TrySend(1) {
		t.Fatal("first TrySend must succeed")
	}
	if q.TrySend(2) {
		t.Fatal("TrySend on full queue must fail")
	}

	done := make(chan error, 1)
	go func() { done <- q.Send(ctx, 2) }()

	select {
	case <-done:
		t.Fatal("Send returned while queue full")
	case <-time.After(30 * time.Millisecond):
	}

	if v, _ := q.Receive(ctx, 0); v != 1 {
		t.Fatalf("head = %d, want 1", v)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("send: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("blocked Send not released")
	}
	if v, _ := q.Receive(ctx, 0); v != 2 {
		t.Fatalf("second = %d, want 2", v)
	}
}

func TestQueueSendCancelled(t *testing.T) {
	q := NewQueue[int]("t", 1)
	q.TrySend(1)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	if err := q.Send(ctx, 2); err == nil {
		t.Fatal("expected ctx error")
	}
	if q.Len() != 1 {
		t.Fatalf("len = %d, want 1", q.Len())
	}
}

func TestSignalCollapses(t *testing.T) {
	s := NewSignal()
	ctx := context.Background()
	s.Raise()
	s.Raise()
	s.Raise()
	if !s.Pending() {
		t.Fatal("expected pending")
	}
	if !s.Wait(ctx, 0) {
		t.Fatal("first wait must acquire")
	}
	if s.Wait(ctx, 10*time.Millisecond) {
		t.Fatal("raises must collapse into one")
	}
	if s.Raises() != 3 {
		t.Fatalf("raises = %d, want 3", s.Raises())
	}
}

func TestSignalWakesWaiter(t *testing.T) {
	s := NewSignal()
	got := make(chan bool, 1)
	go func() { got <- s.Wait(context.Background(), -1) }()
	time.Sleep(5 * time.Millisecond)
	s.Raise()
	select {
	case ok := <-got:
		if !ok {
			t.Fatal("wait returned false")
		}
	case <-time.After(time.Second):
		t.Fatal("waiter not woken")
	}
}

func TestFanOutDeliversToBoth(t *testing.T) {
	f := NewFabric(FanOut)
	ctx := context.Background()
	if f.Sensor.Subscribers() != 2 || f.Clock.Subscribers() != 2 {
		t.Fatalf("subscribers = %d/%d", f.Sensor.Subscribers(), f.Clock.Subscribers())
	}
	if err := f.Sensor.Publish(ctx, types.LightReading(42)); err != nil {
		t.Fatal(err)
	}
	for _, c := range []Consumer{f.Display, f.Composer} {
		r, ok := c.Sensor.Receive(ctx, 0)
		if !ok {
			t.Fatalf("%s: nothing delivered", c.Sensor.Name())
		}
		if l, _ := r.LightRaw.Get(); l != 42 {
			t.Fatalf("%s: light = %d", c.Sensor.Name(), l)
		}
	}
}

func TestSharedConsumersCompete(t *testing.T) {
	f := NewFabric(Shared)
	ctx := context.Background()
	if f.Display.Sensor != f.Composer.Sensor {
		t.Fatal("shared topology must hand out one queue")
	}
	_ = f.Clock.Publish(ctx, types.Clock{Year: 2024, Month: 1, Day: 1})
	if _, ok := f.Display.Clock.Receive(ctx, 0); !ok {
		t.Fatal("display should get the item")
	}
	if _, ok := f.Composer.Clock.Receive(ctx, 0); ok {
		t.Fatal("item must be consumed exactly once")
	}
}

func TestSubscribeAfterPublishPanics(t *testing.T) {
	tp := NewTopic[int]("x")
	_ = tp.Publish(context.Background(), 1)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	tp.Subscribe("late", 1)
}

func TestParseTopology(t *testing.T) {
	if ParseTopology("shared") != Shared || ParseTopology("fanout") != FanOut || ParseTopology("") != FanOut {
		t.Fatal("unexpected ParseTopology mapping")
	}
	if Shared.String() != "shared" || FanOut.String() != "fanout" {
		t.Fatal("unexpected String")
	}
}
