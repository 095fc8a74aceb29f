package model

import (
	"context"
	"testing"
	"time"

	"github.com/hupe1980/predictmesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, respCh <-chan Response, errCh <-chan error) (string, error) {
	t.Helper()
	var final string
	for resp := range respCh {
		if !resp.Partial {
			final = core.TextOf(resp.Content)
		}
	}
	return final, <-errCh
}

func TestMockModel_CannedResponse(t *testing.T) {
	m := NewMockModel("mock", "mock")
	m.AddResponse("hello", "world")

	respCh, errCh := m.Generate(context.Background(), Request{Contents: []core.Content{core.NewUserContent("hello")}})
	text, err := drain(t, respCh, errCh)
	require.NoError(t, err)
	assert.Equal(t, "world", text)
	assert.Equal(t, 1, m.CallCount())
}

func TestMockModel_StreamingEmitsPartials(t *testing.T) {
	m := NewMockModel("mock", "mock")
	m.AddResponse("in", "out")

	respCh, errCh := m.Generate(context.Background(), Request{
		Contents: []core.Content{core.NewUserContent("in")},
		Stream:   true,
	})

	var partials int
	var final string
	for resp := range respCh {
		if resp.Partial {
			partials++
		} else {
			final = core.TextOf(resp.Content)
		}
	}
	require.NoError(t, <-errCh)
	assert.Equal(t, 3, partials)
	assert.Equal(t, "out", final)
}

func TestMockModel_DelayedResponse(t *testing.T) {
	m := NewMockModel("mock", "mock")
	m.AddDelayedResponse("slow", "done", 20*time.Millisecond)

	start := time.Now()
	respCh, errCh := m.Generate(context.Background(), Request{Contents: []core.Content{core.NewUserContent("slow")}})
	text, err := drain(t, respCh, errCh)
	require.NoError(t, err)
	assert.Equal(t, "done", text)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestMockModel_EmptyRequest(t *testing.T) {
	m := NewMockModel("mock", "mock")
	respCh, errCh := m.Generate(context.Background(), Request{})
	_, err := drain(t, respCh, errCh)
	assert.Error(t, err)
}
