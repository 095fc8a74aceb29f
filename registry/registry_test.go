package registry

import (
	"context"
	"testing"

	"github.com/hupe1980/predictmesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Interface compliance (compile-time assertions)
var (
	_ core.AgentStore      = (*InMemoryRegistry)(nil)
	_ core.CapabilityStore = (*InMemoryRegistry)(nil)
)

func TestInMemoryRegistry_AgentLookup(t *testing.T) {
	reg := NewInMemoryRegistry()
	require.NoError(t, reg.RegisterAgent(&core.Agent{ID: "a1", Name: "Helper"}))

	a, err := reg.Agent(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "Helper", a.Name)

	missing, err := reg.Agent(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestInMemoryRegistry_AliasUniqueness(t *testing.T) {
	reg := NewInMemoryRegistry()
	require.NoError(t, reg.RegisterCapability(&core.Capability{ID: "c1", Alias: "echo"}))

	err := reg.RegisterCapability(&core.Capability{ID: "c2", Alias: "echo"})
	assert.Error(t, err)

	c, err := reg.Capability(context.Background(), "echo")
	require.NoError(t, err)
	assert.Equal(t, "c1", c.ID)
}

func TestInMemoryRegistry_EmptyIdentifiers(t *testing.T) {
	reg := NewInMemoryRegistry()
	assert.Error(t, reg.RegisterAgent(&core.Agent{}))
	assert.Error(t, reg.RegisterCapability(&core.Capability{}))
}
