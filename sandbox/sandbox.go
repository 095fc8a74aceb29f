// Package sandbox provides the code execution gateway: model-generated code
// is shipped to an external sandbox and its output returned. Sandbox/runtime
// failures come back as tagged core.ExecutionError values so the pipeline can
// drive its single fix-retry; transport and configuration problems stay
// untagged and propagate un-retried.
package sandbox

import "context"

// Executor defines the interface for executing code snippets.
type Executor interface {
	// Execute runs the given code snippet and returns its output. A failure
	// inside the sandbox is reported as a *core.ExecutionError; any other
	// error is a transport or configuration problem.
	Execute(ctx context.Context, code string) (string, error)
}
