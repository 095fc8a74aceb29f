package thread

import (
	"context"
	"sync"
	"testing"

	"github.com/hupe1980/predictmesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Interface compliance (compile-time assertion)
var _ core.ThreadStore = (*InMemoryStore)(nil)

func TestInMemoryStore_FindOrCreateUpsert(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	th1, err := store.FindOrCreate(ctx, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, "sub-1", th1.SubscriptionID)
	assert.Equal(t, 0, th1.Len())

	require.NoError(t, store.Append(ctx, "sub-1", core.Message{IsUser: true, ResponseText: "hi"}))

	th2, err := store.FindOrCreate(ctx, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, 1, th2.Len())
}

func TestInMemoryStore_ReturnedThreadIsClone(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	th, err := store.FindOrCreate(ctx, "sub-1")
	require.NoError(t, err)
	th.Append(core.Message{ResponseText: "local only"})

	fresh, err := store.FindOrCreate(ctx, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, 0, fresh.Len())
}

func TestInMemoryStore_ConcurrentAppends(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Append(ctx, "sub-1", core.Message{ResponseText: "m"})
		}()
	}
	wg.Wait()

	th, err := store.FindOrCreate(ctx, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, 20, th.Len())
}
