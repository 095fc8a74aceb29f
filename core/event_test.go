package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventType_Context(t *testing.T) {
	assert.Equal(t, "User prompt received", EventReceived.Context())
	assert.Equal(t, "Prediction data received", EventData.Context())
	assert.Equal(t, "Prediction generation successful", EventSuccess.Context())
	assert.Equal(t, "Prediction generation failed", EventError.Context())
	assert.Equal(t, "Debug information. Not present in production", EventDebug.Context())
}

func TestEventType_IsTerminal(t *testing.T) {
	assert.True(t, EventSuccess.IsTerminal())
	assert.True(t, EventError.IsTerminal())
	assert.False(t, EventReceived.IsTerminal())
	assert.False(t, EventData.IsTerminal())
	assert.False(t, EventDebug.IsTerminal())
}

func TestNewPredictionEvent(t *testing.T) {
	ev := NewPredictionEvent("corr-1", "sub-1", EventReceived, "hello")

	assert.Equal(t, "corr-1", ev.CorrelationID)
	assert.Equal(t, "sub-1", ev.SubscriptionID)
	assert.Equal(t, EventReceived, ev.Type)
	assert.Equal(t, "hello", ev.Result)
	assert.Equal(t, "User prompt received", ev.Context)
	assert.False(t, ev.Timestamp.IsZero())
}
