package nats

import (
	"sync"
	"testing"

	"github.com/hupe1980/predictmesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelivery_SendAndDrain(t *testing.T) {
	d := newDelivery(2)
	ev := core.NewPredictionEvent("c1", "sub-a", core.EventData, "x")

	assert.True(t, d.send(ev))
	assert.True(t, d.send(ev))
	assert.False(t, d.send(ev)) // buffer full

	d.stop()

	// Buffered events survive teardown until drained.
	got, open := <-d.ch
	require.True(t, open)
	assert.Equal(t, "x", got.Result)
	_, open = <-d.ch
	require.True(t, open)
	_, open = <-d.ch
	assert.False(t, open)
}

func TestDelivery_SendAfterStopIsRejected(t *testing.T) {
	d := newDelivery(1)
	d.stop()
	d.stop() // idempotent

	assert.False(t, d.send(core.NewPredictionEvent("c1", "sub-a", core.EventData, "x")))
	_, open := <-d.ch
	assert.False(t, open)
}

func TestDelivery_StopDuringConcurrentSends(t *testing.T) {
	d := newDelivery(1)
	ev := core.NewPredictionEvent("c1", "sub-a", core.EventData, "x")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				d.send(ev)
			}
		}()
	}

	// Tearing down while senders race must never panic; late sends report
	// false instead of hitting a closed channel.
	d.stop()
	wg.Wait()

	assert.False(t, d.send(ev))
}
