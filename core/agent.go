package core

// Reasoning configures the optional planning phase of an agent. When present,
// the pipeline asks the reasoning model to decompose the user request into an
// ordered list of capability invocations before executing anything.
type Reasoning struct {
	// PromptTemplate is rendered with the invocation variables and sent as a
	// single-shot request to LLMModel.
	PromptTemplate string `json:"prompt_template"`

	// LLMModel names the model used for the planning call.
	LLMModel string `json:"llm_model"`

	// VariablePassThrough merges the original invocation variables into each
	// planned step as defaults; step-level fields win on key conflicts.
	VariablePassThrough bool `json:"variable_pass_through"`
}

// Agent is a named bundle of a reasoning strategy and a set of capabilities.
// Agents are read-only to the pipeline; they are authored externally and
// resolved through an AgentStore.
type Agent struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// Capabilities holds ordered capability aliases. Without a Reasoning
	// phase the pipeline builds one implicit step per entry.
	Capabilities []string `json:"capabilities"`

	// Reasoning is nil when the agent has no planning phase.
	Reasoning *Reasoning `json:"reasoning,omitempty"`

	// MemoryEnabled injects the rendered thread history into the invocation
	// variables under the "history" key.
	MemoryEnabled bool `json:"memory_enabled"`

	// OutputFilter is applied to the aggregate result before it is appended
	// to the thread. Nil means identity.
	OutputFilter *OutputFilter `json:"output_filter,omitempty"`
}
