package model

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/predictmesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(m Model, names ...string) *Gateway {
	reg := NewRegistry()
	for _, n := range names {
		reg.Register(n, m)
	}
	return NewGateway(reg)
}

func TestGateway_Complete(t *testing.T) {
	mock := NewMockModel("m1", "mock")
	mock.AddResponse("ping", "pong")
	g := newTestGateway(mock, "m1")

	text, usage, err := g.Complete(context.Background(), "m1", []core.Content{core.NewUserContent("ping")})
	require.NoError(t, err)
	assert.Equal(t, "pong", text)
	assert.Equal(t, usage.PromptTokens+usage.CompletionTokens, usage.TotalTokens)
}

func TestGateway_Stream_CumulativeBuffer(t *testing.T) {
	mock := NewMockModel("m1", "mock")
	mock.AddResponse("abc", "xyz")
	g := newTestGateway(mock, "m1")

	var snapshots []string
	text, _, err := g.Stream(context.Background(), "m1", []core.Content{core.NewUserContent("abc")}, func(cumulative string) {
		snapshots = append(snapshots, cumulative)
	})
	require.NoError(t, err)
	assert.Equal(t, "xyz", text)
	assert.Equal(t, []string{"x", "xy", "xyz"}, snapshots)
}

func TestGateway_ModelError(t *testing.T) {
	mock := NewMockModel("m1", "mock")
	mock.AddError("boom", errors.New("provider unavailable"))
	g := newTestGateway(mock, "m1")

	_, _, err := g.Complete(context.Background(), "m1", []core.Content{core.NewUserContent("boom")})
	assert.EqualError(t, err, "provider unavailable")
}

func TestGateway_UnknownModel(t *testing.T) {
	g := newTestGateway(NewMockModel("m1", "mock"), "m1")

	_, _, err := g.Complete(context.Background(), "other", []core.Content{core.NewUserContent("hi")})
	var lookupErr *core.LookupError
	assert.ErrorAs(t, err, &lookupErr)
}

func TestRegistry_Fallback(t *testing.T) {
	reg := NewRegistry()
	mock := NewMockModel("default", "mock")
	reg.SetFallback(mock)

	m, err := reg.Resolve("anything")
	require.NoError(t, err)
	assert.Equal(t, "default", m.Info().Name)
}

func TestHeuristicEstimator(t *testing.T) {
	assert.Equal(t, 3, HeuristicEstimator{}.Estimate("12 characters"))
	assert.Equal(t, 0, HeuristicEstimator{}.Estimate("abc"))
}
