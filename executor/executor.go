// Package executor runs planned steps: rendering capability prompts, calling
// models through the gateway, routing execution-mode output through the code
// sandbox and emitting streaming DATA events. Steps of one run execute
// concurrently; the aggregate preserves plan order regardless of completion
// order.
package executor

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/hupe1980/predictmesh/core"
	"github.com/hupe1980/predictmesh/internal/util"
	"github.com/hupe1980/predictmesh/logging"
	"github.com/hupe1980/predictmesh/model"
	"github.com/hupe1980/predictmesh/prompt"
	"github.com/hupe1980/predictmesh/sandbox"
)

// EmitFunc publishes one event for the run the steps belong to. The engine
// passes the bound publisher's Emit here.
type EmitFunc func(t core.EventType, result string) error

// DefaultFixCapabilityAlias is the alias the executor tries to resolve for
// the code-fix retry before falling back to the built-in fix prompt.
const DefaultFixCapabilityAlias = "code-fix"

// defaultFixTemplate is used when no fix capability is registered. It feeds
// the failing code and the sandbox output back to the step's own model.
const defaultFixTemplate = `The following code was generated for this task:
{{prompt}}

Code:
{{code}}

Executing it failed with:
{{error}}

Return the corrected code in a single fenced code block.`

// Options configure an Executor.
type Options struct {
	// FixCapabilityAlias names the capability used to repair failing code.
	FixCapabilityAlias string
	Logger             logging.Logger
}

// Executor executes steps against the model gateway and the code sandbox.
type Executor struct {
	gateway      *model.Gateway
	sandbox      sandbox.Executor
	capabilities core.CapabilityStore
	fixAlias     string
	logger       logging.Logger
}

// NewExecutor creates an Executor.
func NewExecutor(gateway *model.Gateway, sb sandbox.Executor, capabilities core.CapabilityStore, optFns ...func(o *Options)) *Executor {
	opts := Options{
		FixCapabilityAlias: DefaultFixCapabilityAlias,
		Logger:             logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Executor{
		gateway:      gateway,
		sandbox:      sb,
		capabilities: capabilities,
		fixAlias:     opts.FixCapabilityAlias,
		logger:       opts.Logger,
	}
}

// ExecuteStep runs one step to completion and returns its (filtered) result.
// Streaming capabilities emit a DATA event with the cumulative buffer per
// chunk; execution capabilities route the generated code through the sandbox
// with at most one fix retry.
func (e *Executor) ExecuteStep(ctx context.Context, step core.Step, attachments []core.Part, emit EmitFunc) (string, error) {
	capability := step.Capability
	if capability == nil {
		return "", core.NewLookupError("No capability found.")
	}

	rendered, err := prompt.New(capability.Prompt()).Render(step.Variables)
	if err != nil {
		return "", err
	}

	modelName := step.ModelOverride
	if modelName == "" {
		modelName = capability.LLMModel
	}
	contents := []core.Content{core.NewUserContent(rendered, attachments...)}

	var text string
	if capability.Mode.IsStreaming() {
		var emitErr error
		text, _, err = e.gateway.Stream(ctx, modelName, contents, func(cumulative string) {
			if emitErr == nil {
				emitErr = emit(core.EventData, cumulative)
			}
		})
		if err == nil {
			err = emitErr
		}
	} else {
		text, _, err = e.gateway.Complete(ctx, modelName, contents)
	}
	if err != nil {
		return "", err
	}

	result := text
	if capability.Mode.IsExecution() {
		result, err = e.executeCode(ctx, step, rendered, text)
		if err != nil {
			return "", err
		}
		if capability.Mode == core.OutputModeSyncExecIndividual {
			if err := emit(core.EventData, result); err != nil {
				return "", err
			}
		}
	}

	return capability.OutputFilter.Apply(result), nil
}

// executeCode extracts the generated code, runs it in the sandbox and, on an
// execution failure, performs exactly one fix attempt. Failures of the fixed
// code propagate without further retries.
func (e *Executor) executeCode(ctx context.Context, step core.Step, renderedPrompt, text string) (string, error) {
	code := util.ExtractCodeOrAll(text)

	output, err := e.sandbox.Execute(ctx, code)
	if err == nil {
		return output, nil
	}

	var execErr *core.ExecutionError
	if !errors.As(err, &execErr) {
		return "", err
	}

	e.logger.Warn("code execution failed, attempting fix capability=%s error=%v", step.Capability.Alias, err)

	fixed, fixErr := e.fixCode(ctx, step, renderedPrompt, execErr)
	if fixErr != nil {
		return "", fixErr
	}
	return e.sandbox.Execute(ctx, fixed)
}

// fixCode asks a model to repair the failing code. It prefers a registered
// fix capability; without one it uses the built-in fix prompt with the step's
// own model.
func (e *Executor) fixCode(ctx context.Context, step core.Step, renderedPrompt string, execErr *core.ExecutionError) (string, error) {
	template := defaultFixTemplate
	modelName := step.ModelOverride
	if modelName == "" {
		modelName = step.Capability.LLMModel
	}

	if fixCap, err := e.capabilities.Capability(ctx, e.fixAlias); err == nil && fixCap != nil {
		template = fixCap.Prompt()
		if fixCap.LLMModel != "" {
			modelName = fixCap.LLMModel
		}
	}

	vars := map[string]string{
		"prompt": renderedPrompt,
		"code":   execErr.Code,
		"error":  execErr.Output,
	}
	rendered, err := prompt.New(template).Render(vars)
	if err != nil {
		return "", err
	}

	text, _, err := e.gateway.Complete(ctx, modelName, []core.Content{core.NewUserContent(rendered)})
	if err != nil {
		return "", err
	}
	return util.ExtractCodeOrAll(text), nil
}

// ExecuteSteps runs all steps concurrently and aggregates their results into
// a JSON array ordered by plan position. The first step failure cancels the
// remaining steps and fails the run. Empty step results are dropped from the
// aggregate; the surviving results keep their relative order.
func (e *Executor) ExecuteSteps(ctx context.Context, steps []core.Step, attachments []core.Part, emit EmitFunc) (string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]string, len(steps))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for i, step := range steps {
		wg.Add(1)
		go func(i int, step core.Step) {
			defer wg.Done()
			result, err := e.ExecuteStep(ctx, step, attachments, emit)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
					cancel()
				}
				mu.Unlock()
				return
			}
			results[i] = result
		}(i, step)
	}
	wg.Wait()

	if firstErr != nil {
		return "", firstErr
	}

	surviving := make([]string, 0, len(results))
	for _, r := range results {
		if r != "" {
			surviving = append(surviving, r)
		}
	}

	aggregate, err := json.Marshal(surviving)
	if err != nil {
		return "", err
	}
	return string(aggregate), nil
}
