// Package plan implements the optional reasoning phase: asking a model to
// decompose a user request into an ordered list of capability invocations,
// and resolving that list (or the agent's static capability list) into
// executable steps.
package plan

import (
	"context"
	"encoding/json"
	"maps"

	"github.com/hupe1980/predictmesh/core"
	"github.com/hupe1980/predictmesh/internal/util"
	"github.com/hupe1980/predictmesh/logging"
	"github.com/hupe1980/predictmesh/model"
	"github.com/hupe1980/predictmesh/prompt"
	"github.com/kaptinlin/jsonrepair"
)

// document is the JSON shape the reasoning model is expected to produce
// inside its first fenced code block.
type document struct {
	ProcessingSteps []plannedStep `json:"processingSteps"`
}

// plannedStep is one entry of the reasoning output. Prompt and Context become
// step variables; CapabilityAlias selects the capability to invoke.
type plannedStep struct {
	Prompt          string `json:"prompt"`
	Context         string `json:"context"`
	CapabilityAlias string `json:"capabilityAlias"`
}

// Options configure a Builder.
type Options struct {
	Logger logging.Logger
}

// Builder produces the ordered step list for one pipeline run. It issues at
// most one model call (the reasoning call) and never retries: malformed
// reasoning output is terminal.
type Builder struct {
	gateway      *model.Gateway
	capabilities core.CapabilityStore
	logger       logging.Logger
}

// NewBuilder creates a Builder over the model gateway and capability store.
func NewBuilder(gateway *model.Gateway, capabilities core.CapabilityStore, optFns ...func(o *Options)) *Builder {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Builder{gateway: gateway, capabilities: capabilities, logger: opts.Logger}
}

// Steps returns the ordered steps for the agent. With a reasoning phase the
// plan comes from the model; without one, each configured capability becomes
// one implicit step receiving the full, unmodified variables.
func (b *Builder) Steps(ctx context.Context, agent *core.Agent, variables map[string]string) ([]core.Step, error) {
	if agent.Reasoning == nil {
		return b.implicitSteps(ctx, agent, variables)
	}

	planned, err := b.reason(ctx, agent, variables)
	if err != nil {
		return nil, err
	}

	steps := make([]core.Step, 0, len(planned))
	for _, ps := range planned {
		vars := map[string]string{}
		if agent.Reasoning.VariablePassThrough {
			maps.Copy(vars, variables)
		}
		// Step-level fields win on key conflicts.
		if ps.Prompt != "" {
			vars["prompt"] = ps.Prompt
		}
		if ps.Context != "" {
			vars["context"] = ps.Context
		}

		capability, err := b.resolve(ctx, ps.CapabilityAlias)
		if err != nil {
			return nil, err
		}

		steps = append(steps, core.Step{Variables: vars, Capability: capability})
	}

	b.logger.Debug("plan built agent_id=%s steps=%d", agent.ID, len(steps))
	return steps, nil
}

// reason renders the reasoning template, issues one single-shot model call
// and parses the first fenced code block of the response as a plan document.
// Array order is preserved as plan order.
func (b *Builder) reason(ctx context.Context, agent *core.Agent, variables map[string]string) ([]plannedStep, error) {
	rendered, err := prompt.New(agent.Reasoning.PromptTemplate).Render(variables)
	if err != nil {
		return nil, err
	}

	text, _, err := b.gateway.Complete(ctx, agent.Reasoning.LLMModel, []core.Content{core.NewUserContent(rendered)})
	if err != nil {
		return nil, err
	}

	raw, ok := util.ExtractFencedCode(text)
	if !ok {
		return nil, &core.PlanParseError{Raw: text}
	}

	// Model-produced JSON is routinely slightly broken (trailing commas,
	// unquoted keys); repair before decoding.
	repaired, err := jsonrepair.JSONRepair(raw)
	if err != nil {
		return nil, &core.PlanParseError{Raw: raw, Cause: err}
	}

	var doc document
	if err := json.Unmarshal([]byte(repaired), &doc); err != nil {
		return nil, &core.PlanParseError{Raw: raw, Cause: err}
	}
	if doc.ProcessingSteps == nil {
		return nil, &core.PlanParseError{Raw: raw}
	}

	return doc.ProcessingSteps, nil
}

// implicitSteps builds one step per configured capability, each receiving the
// full original variables (identity pass-through).
func (b *Builder) implicitSteps(ctx context.Context, agent *core.Agent, variables map[string]string) ([]core.Step, error) {
	steps := make([]core.Step, 0, len(agent.Capabilities))
	for _, alias := range agent.Capabilities {
		capability, err := b.resolve(ctx, alias)
		if err != nil {
			return nil, err
		}
		steps = append(steps, core.Step{Variables: maps.Clone(variables), Capability: capability})
	}
	return steps, nil
}

func (b *Builder) resolve(ctx context.Context, alias string) (*core.Capability, error) {
	capability, err := b.capabilities.Capability(ctx, alias)
	if err != nil {
		return nil, err
	}
	if capability == nil {
		return nil, core.NewLookupError("No capability found for alias: %s", alias)
	}
	return capability, nil
}
