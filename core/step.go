package core

// Step is one planned invocation of a capability with bound variables. Steps
// are ephemeral: they exist only for the duration of a pipeline run and are
// never persisted.
type Step struct {
	// Variables are substituted into the capability's prompt template.
	Variables map[string]string

	// Capability is the resolved target; a nil capability fails execution.
	Capability *Capability

	// ModelOverride, when non-empty, replaces the capability's model for
	// this step only.
	ModelOverride string
}
