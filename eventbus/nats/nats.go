// Package nats provides a NATS-backed eventbus.Bus so prediction events can
// fan out across processes. Topics map to subjects under a configurable
// prefix; subscription-id filtering happens client side because the event
// payload, not the subject, carries the id.
package nats

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/hupe1980/predictmesh/core"
	"github.com/hupe1980/predictmesh/eventbus"
	"github.com/hupe1980/predictmesh/logging"
	"github.com/nats-io/nats.go"
)

// Options configure the NATS bus.
type Options struct {
	// SubjectPrefix namespaces topics, e.g. "predictmesh" yields
	// "predictmesh.predictions".
	SubjectPrefix string
	// BufferSize is the per-subscription delivery channel buffer.
	BufferSize int
	Logger     logging.Logger
}

// Bus implements eventbus.Bus on top of a NATS connection. The connection's
// lifecycle belongs to the caller.
type Bus struct {
	conn   *nats.Conn
	prefix string
	buffer int
	logger logging.Logger
}

// New creates a Bus over an established NATS connection.
func New(conn *nats.Conn, optFns ...func(o *Options)) *Bus {
	opts := Options{SubjectPrefix: "predictmesh", BufferSize: 100, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Bus{conn: conn, prefix: opts.SubjectPrefix, buffer: opts.BufferSize, logger: opts.Logger}
}

func (b *Bus) subject(topic string) string {
	if b.prefix == "" {
		return topic
	}
	return b.prefix + "." + topic
}

// Publish implements eventbus.Bus.
func (b *Bus) Publish(topic string, ev core.PredictionEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if err := b.conn.Publish(b.subject(topic), data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// delivery serializes handler sends against teardown. nats.Subscription.
// Unsubscribe does not wait for an in-flight message callback, so a callback
// may still be running when the subscription is torn down; the mutex
// guarantees the channel is never closed under a pending send.
type delivery struct {
	ch     chan core.PredictionEvent
	mu     sync.Mutex
	closed bool
}

func newDelivery(buffer int) *delivery {
	return &delivery{ch: make(chan core.PredictionEvent, buffer)}
}

// send attempts a non-blocking delivery. It reports false when the buffer is
// full or the subscription is already torn down.
func (d *delivery) send(ev core.PredictionEvent) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	select {
	case d.ch <- ev:
		return true
	default:
		return false
	}
}

// stop closes the channel. Once it returns no send can touch the channel;
// buffered events remain receivable until drained. Safe to call multiple
// times.
func (d *delivery) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	close(d.ch)
}

// Subscribe implements eventbus.Bus. Events that do not decode or whose
// SubscriptionID does not match are skipped; a full delivery buffer drops the
// event rather than blocking the NATS callback.
func (b *Bus) Subscribe(topic, subscriptionID string) (*eventbus.Subscription, error) {
	d := newDelivery(b.buffer)

	natsSub, err := b.conn.Subscribe(b.subject(topic), func(msg *nats.Msg) {
		var ev core.PredictionEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			b.logger.Warn("discarding undecodable event subject=%s error=%v", msg.Subject, err)
			return
		}
		if subscriptionID != "" && ev.SubscriptionID != subscriptionID {
			return
		}
		if !d.send(ev) {
			b.logger.Warn("event dropped: subscriber gone or buffer full subject=%s subscription_id=%s", msg.Subject, ev.SubscriptionID)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", b.subject(topic), err)
	}

	return eventbus.NewSubscription(d.ch, func() {
		if err := natsSub.Unsubscribe(); err != nil {
			b.logger.Warn("failed to unsubscribe subject=%s error=%v", b.subject(topic), err)
		}
		d.stop()
	}), nil
}
