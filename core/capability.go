package core

import (
	"fmt"
	"strings"
)

// OutputMode controls how a capability's model output is handled: returned
// as-is, streamed incrementally, or extracted and executed as code.
type OutputMode string

const (
	// OutputModeDefault returns the (filtered) model text unchanged.
	OutputModeDefault OutputMode = "DEFAULT"

	// OutputModeStreamingIndividual streams the response; every chunk emits a
	// DATA event carrying the cumulative buffer so far.
	OutputModeStreamingIndividual OutputMode = "STREAMING_INDIVIDUAL"

	// OutputModeSyncExecAggregate executes generated code in the sandbox and
	// contributes the execution result to the aggregate only.
	OutputModeSyncExecAggregate OutputMode = "SYNCHRONOUS_EXECUTION_AGGREGATE"

	// OutputModeSyncExecIndividual executes generated code and additionally
	// emits a DATA event with the raw execution result.
	OutputModeSyncExecIndividual OutputMode = "SYNCHRONOUS_EXECUTION_INDIVIDUAL"
)

// ParseOutputMode converts a stored string into an OutputMode. The empty
// string maps to OutputModeDefault.
func ParseOutputMode(s string) (OutputMode, error) {
	switch OutputMode(s) {
	case OutputModeDefault, OutputModeStreamingIndividual,
		OutputModeSyncExecAggregate, OutputModeSyncExecIndividual:
		return OutputMode(s), nil
	case "":
		return OutputModeDefault, nil
	default:
		return "", fmt.Errorf("unknown output mode: %q", s)
	}
}

// IsExecution reports whether the mode routes model output through the
// code execution sandbox.
func (m OutputMode) IsExecution() bool {
	return m == OutputModeSyncExecAggregate || m == OutputModeSyncExecIndividual
}

// IsStreaming reports whether the mode requires a streaming model call.
func (m OutputMode) IsStreaming() bool { return m == OutputModeStreamingIndividual }

// Capability is one invocable unit: an ordered prompt template list, a model
// choice and an output-handling mode. Aliases are globally unique within a
// CapabilityStore. Capabilities are read-only to the pipeline.
type Capability struct {
	ID       string     `json:"id"`
	Alias    string     `json:"alias"`
	LLMModel string     `json:"llm_model"`
	Mode     OutputMode `json:"output_mode"`

	// Prompts are joined with a newline before variable substitution.
	Prompts []string `json:"prompts"`

	// OutputFilter is applied to the step result. Nil means identity.
	OutputFilter *OutputFilter `json:"output_filter,omitempty"`
}

// Prompt returns the full prompt text: all prompt segments joined with a
// newline, before variable substitution.
func (c *Capability) Prompt() string { return strings.Join(c.Prompts, "\n") }
