package eventbus

import (
	"fmt"

	"github.com/hupe1980/predictmesh/core"
)

// Publisher binds a Bus to one pipeline run (correlation id + subscription
// id) and stamps each event with its fixed context string. The engine hands
// the publisher's Emit to the step executor so streaming and execution
// results flow into the same event sequence.
type Publisher struct {
	bus            Bus
	correlationID  string
	subscriptionID string
	environment    string
}

// NewPublisher creates a publisher for one correlation/subscription pair.
// environment gates DEBUG emission ("production" rejects it).
func NewPublisher(bus Bus, correlationID, subscriptionID, environment string) *Publisher {
	return &Publisher{
		bus:            bus,
		correlationID:  correlationID,
		subscriptionID: subscriptionID,
		environment:    environment,
	}
}

// CorrelationID returns the correlation id all emitted events share.
func (p *Publisher) CorrelationID() string { return p.correlationID }

// Emit publishes one event of the given type to the well-known topic. DEBUG
// events are rejected in a production environment and never delivered.
func (p *Publisher) Emit(t core.EventType, result string) error {
	if t == core.EventDebug && p.environment == "production" {
		return fmt.Errorf("debug events are not allowed in a production environment")
	}
	return p.bus.Publish(Topic, core.NewPredictionEvent(p.correlationID, p.subscriptionID, t, result))
}
