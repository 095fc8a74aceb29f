package core

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies the lifecycle stage a PredictionEvent reports.
type EventType string

const (
	// EventReceived acknowledges the user prompt; always first per correlation id.
	EventReceived EventType = "RECEIVED"
	// EventData carries incremental results (streaming buffers, individual
	// execution results). Zero or more per correlation id.
	EventData EventType = "DATA"
	// EventSuccess is the successful terminal event carrying the aggregate.
	EventSuccess EventType = "SUCCESS"
	// EventError is the failing terminal event carrying the error message.
	EventError EventType = "ERROR"
	// EventDebug carries diagnostic payloads; rejected in production.
	EventDebug EventType = "DEBUG"
)

// eventContexts is the fixed human-readable context string per event type.
var eventContexts = map[EventType]string{
	EventReceived: "User prompt received",
	EventData:     "Prediction data received",
	EventSuccess:  "Prediction generation successful",
	EventError:    "Prediction generation failed",
	EventDebug:    "Debug information. Not present in production",
}

// Context returns the fixed human-readable description for the event type.
func (t EventType) Context() string { return eventContexts[t] }

// IsTerminal reports whether the type ends the event sequence for a
// correlation id.
func (t EventType) IsTerminal() bool { return t == EventSuccess || t == EventError }

// PredictionEvent is one entry of the event stream describing a pipeline run.
// All events of one run share a CorrelationID; subscribers filter by
// SubscriptionID. Events are ephemeral and never persisted by the pipeline.
type PredictionEvent struct {
	CorrelationID  string    `json:"correlation_id"`
	SubscriptionID string    `json:"subscription_id"`
	Type           EventType `json:"type"`
	Result         string    `json:"result,omitempty"`
	Context        string    `json:"context"`
	Timestamp      time.Time `json:"timestamp"`
}

// NewPredictionEvent builds an event stamping the fixed context string and a
// UTC timestamp.
func NewPredictionEvent(correlationID, subscriptionID string, t EventType, result string) PredictionEvent {
	return PredictionEvent{
		CorrelationID:  correlationID,
		SubscriptionID: subscriptionID,
		Type:           t,
		Result:         result,
		Context:        t.Context(),
		Timestamp:      time.Now().UTC(),
	}
}

// NewID generates a new unique identifier for correlation and message ids.
func NewID() string { return uuid.NewString() }
