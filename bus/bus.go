// bus.go
package bus

import (
	"context"
	"sync"

	"envmon-go/types"
)

// -----------------------------------------------------------------------------
// Topic
// -----------------------------------------------------------------------------

// Topic fans every published item out to each subscriber's own queue.
// Publish waits on any full subscriber, so a slow consumer slows producers
// down rather than losing data.
type Topic[T any] struct {
	mu     sync.Mutex
	name   string
	subs   []*Queue[T]
	sealed bool
}

func NewTopic[T any](name string) *Topic[T] {
	return &Topic[T]{name: name}
}

func (t *Topic[T]) Name() string { return t.name }

// Subscribe attaches a new consumer queue. All subscriptions must exist
// before the first Publish.
func (t *Topic[T]) Subscribe(consumer string, depth int) *Queue[T] {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sealed {
		panic("bus: subscribe after first publish on " + t.name)
	}
	q := NewQueue[T](t.name+"/"+consumer, depth)
	t.subs = append(t.subs, q)
	return q
}

// Attach adds an existing queue as a subscriber. Several consumers holding
// the same queue compete for its items.
func (t *Topic[T]) Attach(q *Queue[T]) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sealed {
		panic("bus: attach after first publish on " + t.name)
	}
	for _, s := range t.subs {
		if s == q {
			return
		}
	}
	t.subs = append(t.subs, q)
}

// Publish delivers v to every subscriber in subscription order.
func (t *Topic[T]) Publish(ctx context.Context, v T) error {
	t.mu.Lock()
	t.sealed = true
	subs := t.subs
	t.mu.Unlock()

	for _, q := range subs {
		if err := q.Send(ctx, v); err != nil {
			return err
		}
	}
	return nil
}

// Subscribers returns the number of attached queues.
func (t *Topic[T]) Subscribers() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}

// -----------------------------------------------------------------------------
// Fabric
// -----------------------------------------------------------------------------

// Queue depths.
const (
	SensorDepth = 10
	ClockDepth  = 5
	FrameDepth  = 5
)

// Topology selects how the display and the composer share the sensor and
// clock streams.
type Topology uint8

const (
	// FanOut gives each consumer its own copy of every item.
	FanOut Topology = iota
	// Shared lets both consumers compete on one queue per stream.
	Shared
)

func (t Topology) String() string {
	switch t {
	case Shared:
		return "shared"
	default:
		return "fanout"
	}
}

// ParseTopology maps a profile string to a Topology; unknown values fan out.
func ParseTopology(s string) Topology {
	if s == "shared" {
		return Shared
	}
	return FanOut
}

// Consumer is the pair of queues one consumer reads from.
type Consumer struct {
	Sensor *Queue[types.EnvReading]
	Clock  *Queue[types.Clock]
}

// Fabric is the firmware's full message plumbing for one boot session.
type Fabric struct {
	Sensor *Topic[types.EnvReading]
	Clock  *Topic[types.Clock]
	Frame  *Queue[types.Frame]
	Alarm  *Signal

	Display  Consumer
	Composer Consumer
	topology Topology
}

// NewFabric builds the topics, queues and the alarm signal and wires the
// display and composer consumers according to topo.
func NewFabric(topo Topology) *Fabric {
	f := &Fabric{
		Sensor:   NewTopic[types.EnvReading]("sensor"),
		Clock:    NewTopic[types.Clock]("clock"),
		Frame:    NewQueue[types.Frame]("frame", FrameDepth),
		Alarm:    NewSignal(),
		topology: topo,
	}
	switch topo {
	case Shared:
		s := NewQueue[types.EnvReading]("sensor", SensorDepth)
		c := NewQueue[types.Clock]("clock", ClockDepth)
		f.Sensor.Attach(s)
		f.Clock.Attach(c)
		f.Display = Consumer{Sensor: s, Clock: c}
		f.Composer = Consumer{Sensor: s, Clock: c}
	default:
		f.Display = Consumer{
			Sensor: f.Sensor.Subscribe("display", SensorDepth),
			Clock:  f.Clock.Subscribe("display", ClockDepth),
		}
		f.Composer = Consumer{
			Sensor: f.Sensor.Subscribe("composer", SensorDepth),
			Clock:  f.Clock.Subscribe("composer", ClockDepth),
		}
	}
	return f
}

func (f *Fabric) Topology() Topology { return f.topology }
