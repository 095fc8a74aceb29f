package core

import "fmt"

// LookupError reports a missing agent or capability. It is terminal: the
// pipeline converts it into a single ERROR event without retrying.
type LookupError struct {
	Message string
}

// NewLookupError builds a LookupError with a formatted message.
func NewLookupError(format string, args ...any) *LookupError {
	return &LookupError{Message: fmt.Sprintf(format, args...)}
}

func (e *LookupError) Error() string { return e.Message }

// PlanParseError reports malformed reasoning output (no fenced block, broken
// JSON or an unexpected document shape). Terminal, no retry.
type PlanParseError struct {
	Raw   string // the text that failed to parse
	Cause error
}

func (e *PlanParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to parse reasoning output: %v", e.Cause)
	}
	return "failed to parse reasoning output"
}

func (e *PlanParseError) Unwrap() error { return e.Cause }

// ExecutionError is the tagged sandbox/runtime failure. It is the only error
// class that triggers the single code-fix retry; anything else propagates
// un-retried.
type ExecutionError struct {
	Code   string // the code that was executed
	Output string // sandbox stderr / failure output
	Cause  error
}

func (e *ExecutionError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("code execution failed: %s", e.Output)
	}
	return fmt.Sprintf("code execution failed: %v", e.Cause)
}

func (e *ExecutionError) Unwrap() error { return e.Cause }

// ConfigurationError reports missing mandatory configuration (for example the
// sandbox executor identity). Immediate, no retry.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return e.Message }
