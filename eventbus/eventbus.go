// Package eventbus provides the publish/subscribe channel every pipeline run
// reports through. A Bus routes PredictionEvents by topic; subscribers filter
// by subscription id. The in-memory implementation serves single-process
// deployments and tests; the nats subpackage provides a distributed backend.
package eventbus

import (
	"sync"

	"github.com/hupe1980/predictmesh/core"
	"github.com/hupe1980/predictmesh/logging"
)

// Topic is the well-known topic all prediction events are published to.
const Topic = "predictions"

// Bus is the pub/sub abstraction the pipeline emits through. It is injected
// explicitly rather than accessed as module state so tests and multi-tenant
// setups can construct isolated buses.
type Bus interface {
	// Publish delivers the event to all matching subscribers of the topic.
	Publish(topic string, ev core.PredictionEvent) error

	// Subscribe returns a subscription receiving events on the topic whose
	// SubscriptionID equals subscriptionID. An empty subscriptionID matches
	// every event.
	Subscribe(topic, subscriptionID string) (*Subscription, error)
}

// Subscription is a handle on a stream of filtered events. Callers range over
// Events and call Unsubscribe when done.
type Subscription struct {
	ch     chan core.PredictionEvent
	cancel func()
	once   sync.Once
}

// NewSubscription wraps a delivery channel and cancel hook. Intended for Bus
// implementations; consumers receive subscriptions from Bus.Subscribe. The
// hook owns teardown: it must stop delivery and close ch only once no sender
// can reach it anymore.
func NewSubscription(ch chan core.PredictionEvent, cancel func()) *Subscription {
	return &Subscription{ch: ch, cancel: cancel}
}

// Events returns the receive channel. It is closed on Unsubscribe.
func (s *Subscription) Events() <-chan core.PredictionEvent { return s.ch }

// Unsubscribe stops delivery and closes the event channel. Safe to call
// multiple times.
func (s *Subscription) Unsubscribe() {
	s.once.Do(s.cancel)
}

func (s *Subscription) deliver(ev core.PredictionEvent) bool {
	select {
	case s.ch <- ev:
		return true
	default:
		return false
	}
}

// InMemoryOptions configure the in-memory bus.
type InMemoryOptions struct {
	// BufferSize is the per-subscription channel buffer. Slow subscribers
	// whose buffer is full miss events rather than blocking publishers.
	BufferSize int
	Logger     logging.Logger
}

// InMemoryBus is a process-local Bus implementation. It is safe for
// concurrent use.
type InMemoryBus struct {
	mu     sync.RWMutex
	subs   map[string][]*memorySub
	buffer int
	logger logging.Logger
}

type memorySub struct {
	subscriptionID string
	sub            *Subscription
}

// NewInMemoryBus constructs an empty in-memory bus.
func NewInMemoryBus(optFns ...func(o *InMemoryOptions)) *InMemoryBus {
	opts := InMemoryOptions{BufferSize: 100, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &InMemoryBus{subs: make(map[string][]*memorySub), buffer: opts.BufferSize, logger: opts.Logger}
}

// Publish implements Bus. Delivery to a full subscriber buffer is dropped and
// logged instead of blocking the pipeline.
func (b *InMemoryBus) Publish(topic string, ev core.PredictionEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ms := range b.subs[topic] {
		if ms.subscriptionID != "" && ms.subscriptionID != ev.SubscriptionID {
			continue
		}
		if !ms.sub.deliver(ev) {
			b.logger.Warn("event dropped: subscriber buffer full topic=%s subscription_id=%s type=%s", topic, ev.SubscriptionID, ev.Type)
		}
	}
	return nil
}

// Subscribe implements Bus.
func (b *InMemoryBus) Subscribe(topic, subscriptionID string) (*Subscription, error) {
	ch := make(chan core.PredictionEvent, b.buffer)

	// remove serializes against Publish under the mutex, so once it returns
	// no deliver is in flight and the channel can be closed.
	ms := &memorySub{subscriptionID: subscriptionID}
	ms.sub = NewSubscription(ch, func() {
		b.remove(topic, ms)
		close(ch)
	})

	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], ms)
	b.mu.Unlock()

	return ms.sub, nil
}

func (b *InMemoryBus) remove(topic string, target *memorySub) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[topic]
	for i, ms := range subs {
		if ms == target {
			b.subs[topic] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}
