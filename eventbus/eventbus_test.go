package eventbus

import (
	"testing"
	"time"

	"github.com/hupe1980/predictmesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Interface compliance (compile-time assertion)
var _ Bus = (*InMemoryBus)(nil)

func receiveOne(t *testing.T, sub *Subscription) core.PredictionEvent {
	t.Helper()
	select {
	case ev := <-sub.Events():
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return core.PredictionEvent{}
	}
}

func TestInMemoryBus_FilterBySubscriptionID(t *testing.T) {
	bus := NewInMemoryBus()

	subA, err := bus.Subscribe(Topic, "sub-a")
	require.NoError(t, err)
	defer subA.Unsubscribe()
	subB, err := bus.Subscribe(Topic, "sub-b")
	require.NoError(t, err)
	defer subB.Unsubscribe()

	require.NoError(t, bus.Publish(Topic, core.NewPredictionEvent("c1", "sub-a", core.EventReceived, "hi")))

	ev := receiveOne(t, subA)
	assert.Equal(t, "sub-a", ev.SubscriptionID)

	select {
	case ev := <-subB.Events():
		t.Fatalf("subscriber for sub-b received foreign event: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestInMemoryBus_EmptyFilterMatchesAll(t *testing.T) {
	bus := NewInMemoryBus()
	sub, err := bus.Subscribe(Topic, "")
	require.NoError(t, err)
	defer sub.Unsubscribe()

	require.NoError(t, bus.Publish(Topic, core.NewPredictionEvent("c1", "sub-a", core.EventReceived, "")))
	require.NoError(t, bus.Publish(Topic, core.NewPredictionEvent("c2", "sub-b", core.EventReceived, "")))

	assert.Equal(t, "sub-a", receiveOne(t, sub).SubscriptionID)
	assert.Equal(t, "sub-b", receiveOne(t, sub).SubscriptionID)
}

func TestInMemoryBus_UnsubscribeStopsDelivery(t *testing.T) {
	bus := NewInMemoryBus()
	sub, err := bus.Subscribe(Topic, "sub-a")
	require.NoError(t, err)

	sub.Unsubscribe()
	sub.Unsubscribe() // idempotent

	require.NoError(t, bus.Publish(Topic, core.NewPredictionEvent("c1", "sub-a", core.EventReceived, "")))

	_, open := <-sub.Events()
	assert.False(t, open)
}

func TestPublisher_StampsCorrelationAndContext(t *testing.T) {
	bus := NewInMemoryBus()
	sub, err := bus.Subscribe(Topic, "sub-a")
	require.NoError(t, err)
	defer sub.Unsubscribe()

	pub := NewPublisher(bus, "corr-1", "sub-a", "development")
	require.NoError(t, pub.Emit(core.EventReceived, "hello"))

	ev := receiveOne(t, sub)
	assert.Equal(t, "corr-1", ev.CorrelationID)
	assert.Equal(t, core.EventReceived, ev.Type)
	assert.Equal(t, "User prompt received", ev.Context)
	assert.Equal(t, "hello", ev.Result)
}

func TestPublisher_DebugRejectedInProduction(t *testing.T) {
	bus := NewInMemoryBus()
	sub, err := bus.Subscribe(Topic, "sub-a")
	require.NoError(t, err)
	defer sub.Unsubscribe()

	pub := NewPublisher(bus, "corr-1", "sub-a", "production")
	err = pub.Emit(core.EventDebug, "internals")
	require.Error(t, err)

	select {
	case ev := <-sub.Events():
		t.Fatalf("debug event delivered in production: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublisher_DebugAllowedOutsideProduction(t *testing.T) {
	bus := NewInMemoryBus()
	sub, err := bus.Subscribe(Topic, "sub-a")
	require.NoError(t, err)
	defer sub.Unsubscribe()

	pub := NewPublisher(bus, "corr-1", "sub-a", "development")
	require.NoError(t, pub.Emit(core.EventDebug, "internals"))
	assert.Equal(t, core.EventDebug, receiveOne(t, sub).Type)
}
