package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/predictmesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 10, cfg.Engine.MaxConcurrentInvocations)
	assert.Equal(t, 100, cfg.Engine.EventBufferSize)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 60, cfg.Sandbox.TimeoutSeconds)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
environment: production
engine:
  max_concurrent_invocations: 25
sandbox:
  endpoint: http://sandbox.internal/execute
  executor_id: exec-1
nats:
  url: nats://localhost:4222
capabilities:
  - id: c1
    alias: summarize
    llm_model: gpt-4o
    prompts:
      - "Summarize: {{userMessage}}"
  - id: c2
    alias: calc
    output_mode: SYNCHRONOUS_EXECUTION_AGGREGATE
    prompts:
      - "Write code for: {{prompt}}"
agents:
  - id: a1
    name: Helper
    capabilities: [summarize, calc]
    memory_enabled: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 25, cfg.Engine.MaxConcurrentInvocations)
	assert.Equal(t, 100, cfg.Engine.EventBufferSize, "unset keys keep defaults")
	assert.Equal(t, "exec-1", cfg.Sandbox.ExecutorID)
	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
	require.Len(t, cfg.Capabilities, 2)
	require.Len(t, cfg.Agents, 1)
	assert.True(t, cfg.Agents[0].MemoryEnabled)
}

func TestLoad_UnknownCapabilityReference(t *testing.T) {
	path := writeConfig(t, `
agents:
  - id: a1
    capabilities: [ghost]
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown capability alias: ghost")
}

func TestLoad_DuplicateAlias(t *testing.T) {
	path := writeConfig(t, `
capabilities:
  - id: c1
    alias: echo
  - id: c2
    alias: echo
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate capability alias")
}

func TestCapabilityConfig_ToCapability(t *testing.T) {
	c := CapabilityConfig{
		ID:           "c1",
		Alias:        "extract",
		OutputMode:   "STREAMING_INDIVIDUAL",
		Prompts:      []string{"a", "b"},
		OutputFilter: `<out>(.*)</out>`,
	}

	capability, err := c.ToCapability()
	require.NoError(t, err)
	assert.Equal(t, core.OutputModeStreamingIndividual, capability.Mode)
	assert.Equal(t, "a\nb", capability.Prompt())
	assert.Equal(t, "42", capability.OutputFilter.Apply("<out>42</out>"))
}

func TestCapabilityConfig_InvalidMode(t *testing.T) {
	_, err := CapabilityConfig{Alias: "x", OutputMode: "SIDEWAYS"}.ToCapability()
	assert.Error(t, err)
}

func TestAgentConfig_ToAgent(t *testing.T) {
	a := AgentConfig{
		ID:   "a1",
		Name: "Helper",
		Reasoning: &ReasoningConfig{
			PromptTemplate:      "plan {{userMessage}}",
			LLMModel:            "gpt-4o",
			VariablePassThrough: true,
		},
		OutputFilter: `(\d+)`,
	}

	agent, err := a.ToAgent()
	require.NoError(t, err)
	require.NotNil(t, agent.Reasoning)
	assert.True(t, agent.Reasoning.VariablePassThrough)
	assert.Equal(t, "7", agent.OutputFilter.Apply("value 7"))
}

func TestAgentConfig_InvalidFilter(t *testing.T) {
	_, err := AgentConfig{ID: "a1", OutputFilter: `(`}.ToAgent()
	assert.Error(t, err)
}
