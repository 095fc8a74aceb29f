package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutputMode(t *testing.T) {
	mode, err := ParseOutputMode("STREAMING_INDIVIDUAL")
	require.NoError(t, err)
	assert.Equal(t, OutputModeStreamingIndividual, mode)

	mode, err = ParseOutputMode("")
	require.NoError(t, err)
	assert.Equal(t, OutputModeDefault, mode)

	_, err = ParseOutputMode("SOMETHING_ELSE")
	assert.Error(t, err)
}

func TestOutputMode_Classification(t *testing.T) {
	assert.True(t, OutputModeSyncExecAggregate.IsExecution())
	assert.True(t, OutputModeSyncExecIndividual.IsExecution())
	assert.False(t, OutputModeDefault.IsExecution())
	assert.False(t, OutputModeStreamingIndividual.IsExecution())
	assert.True(t, OutputModeStreamingIndividual.IsStreaming())
	assert.False(t, OutputModeDefault.IsStreaming())
}

func TestCapability_Prompt(t *testing.T) {
	c := &Capability{Prompts: []string{"You are a translator.", "Translate: {{userMessage}}"}}
	assert.Equal(t, "You are a translator.\nTranslate: {{userMessage}}", c.Prompt())
}
