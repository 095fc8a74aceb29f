package plan

import (
	"context"
	"testing"

	"github.com/hupe1980/predictmesh/core"
	"github.com/hupe1980/predictmesh/model"
	"github.com/hupe1980/predictmesh/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFixture(t *testing.T) (*model.MockModel, *registry.InMemoryRegistry, *Builder) {
	t.Helper()
	mock := model.NewMockModel("planner", "mock")
	reg := model.NewRegistry()
	reg.SetFallback(mock)
	caps := registry.NewInMemoryRegistry()
	return mock, caps, NewBuilder(model.NewGateway(reg), caps)
}

func TestSteps_NoReasoningIsIdentity(t *testing.T) {
	mock, caps, builder := newFixture(t)
	require.NoError(t, caps.RegisterCapability(&core.Capability{ID: "c1", Alias: "summarize"}))
	require.NoError(t, caps.RegisterCapability(&core.Capability{ID: "c2", Alias: "translate"}))

	agent := &core.Agent{ID: "a1", Capabilities: []string{"summarize", "translate"}}
	vars := map[string]string{"userMessage": "hello", "tone": "formal"}

	steps, err := builder.Steps(context.Background(), agent, vars)
	require.NoError(t, err)
	require.Len(t, steps, 2)

	assert.Equal(t, "summarize", steps[0].Capability.Alias)
	assert.Equal(t, "translate", steps[1].Capability.Alias)
	for _, s := range steps {
		assert.Equal(t, vars, s.Variables)
	}
	assert.Equal(t, 0, mock.CallCount(), "no planning call without reasoning")
}

func TestSteps_ReasoningProducesOrderedPlan(t *testing.T) {
	mock, caps, builder := newFixture(t)
	require.NoError(t, caps.RegisterCapability(&core.Capability{ID: "c1", Alias: "A"}))
	require.NoError(t, caps.RegisterCapability(&core.Capability{ID: "c2", Alias: "B"}))

	mock.AddResponse("Plan for: hello", "Sure:\n```json\n"+
		`{"processingSteps":[{"prompt":"p1","capabilityAlias":"A"},{"prompt":"p2","capabilityAlias":"B"}]}`+
		"\n```")

	agent := &core.Agent{
		ID:        "a1",
		Reasoning: &core.Reasoning{PromptTemplate: "Plan for: {{userMessage}}", LLMModel: "planner"},
	}

	steps, err := builder.Steps(context.Background(), agent, map[string]string{"userMessage": "hello"})
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, "A", steps[0].Capability.Alias)
	assert.Equal(t, "B", steps[1].Capability.Alias)
	assert.Equal(t, "p1", steps[0].Variables["prompt"])
	assert.Equal(t, "p2", steps[1].Variables["prompt"])
	assert.Equal(t, 1, mock.CallCount())
}

func TestSteps_VariablePassThroughMerge(t *testing.T) {
	mock, caps, builder := newFixture(t)
	require.NoError(t, caps.RegisterCapability(&core.Capability{ID: "c1", Alias: "A"}))

	mock.AddResponse("plan", "```json\n"+
		`{"processingSteps":[{"prompt":"narrowed","context":"step ctx","capabilityAlias":"A"}]}`+
		"\n```")

	agent := &core.Agent{
		ID:        "a1",
		Reasoning: &core.Reasoning{PromptTemplate: "plan", LLMModel: "planner", VariablePassThrough: true},
	}
	vars := map[string]string{"userMessage": "hello", "prompt": "original"}

	steps, err := builder.Steps(context.Background(), agent, vars)
	require.NoError(t, err)
	require.Len(t, steps, 1)

	// Originals merged as defaults, step-level fields win on conflicts.
	assert.Equal(t, "hello", steps[0].Variables["userMessage"])
	assert.Equal(t, "narrowed", steps[0].Variables["prompt"])
	assert.Equal(t, "step ctx", steps[0].Variables["context"])
}

func TestSteps_NoPassThroughKeepsStepFieldsOnly(t *testing.T) {
	mock, caps, builder := newFixture(t)
	require.NoError(t, caps.RegisterCapability(&core.Capability{ID: "c1", Alias: "A"}))

	mock.AddResponse("plan", "```json\n"+
		`{"processingSteps":[{"prompt":"p1","capabilityAlias":"A"}]}`+
		"\n```")

	agent := &core.Agent{
		ID:        "a1",
		Reasoning: &core.Reasoning{PromptTemplate: "plan", LLMModel: "planner"},
	}

	steps, err := builder.Steps(context.Background(), agent, map[string]string{"userMessage": "hello"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"prompt": "p1"}, steps[0].Variables)
}

func TestSteps_UnknownAlias(t *testing.T) {
	mock, _, builder := newFixture(t)

	mock.AddResponse("plan", "```json\n"+
		`{"processingSteps":[{"prompt":"p1","capabilityAlias":"missing"}]}`+
		"\n```")

	agent := &core.Agent{
		ID:        "a1",
		Reasoning: &core.Reasoning{PromptTemplate: "plan", LLMModel: "planner"},
	}

	_, err := builder.Steps(context.Background(), agent, nil)
	var lookupErr *core.LookupError
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, "No capability found for alias: missing", lookupErr.Error())
}

func TestSteps_MalformedPlan(t *testing.T) {
	for name, response := range map[string]string{
		"no fenced block": "I could not produce a plan.",
		"not json":        "```\nthis is prose, not a plan\n```",
		"wrong shape":     "```json\n{\"somethingElse\":[]}\n```",
	} {
		t.Run(name, func(t *testing.T) {
			mock, _, builder := newFixture(t)
			mock.AddResponse("plan", response)

			agent := &core.Agent{
				ID:        "a1",
				Reasoning: &core.Reasoning{PromptTemplate: "plan", LLMModel: "planner"},
			}

			_, err := builder.Steps(context.Background(), agent, nil)
			var parseErr *core.PlanParseError
			assert.ErrorAs(t, err, &parseErr)
		})
	}
}

func TestSteps_RepairsSloppyJSON(t *testing.T) {
	mock, caps, builder := newFixture(t)
	require.NoError(t, caps.RegisterCapability(&core.Capability{ID: "c1", Alias: "A"}))

	// Trailing comma: invalid JSON that jsonrepair can recover.
	mock.AddResponse("plan", "```json\n"+
		`{"processingSteps":[{"prompt":"p1","capabilityAlias":"A"},]}`+
		"\n```")

	agent := &core.Agent{
		ID:        "a1",
		Reasoning: &core.Reasoning{PromptTemplate: "plan", LLMModel: "planner"},
	}

	steps, err := builder.Steps(context.Background(), agent, nil)
	require.NoError(t, err)
	assert.Len(t, steps, 1)
}
