// Package predictmesh provides a high-level façade over the prediction
// pipeline: agent and capability registries, the model gateway, the code
// sandbox, thread persistence and the event bus. Most applications interact
// with this package by:
//  1. Creating a PredictMesh via New() (optionally overriding default
//     in-memory services)
//  2. Subscribing to the event stream of a subscription id
//  3. Firing predictions with GeneratePrediction and consuming the resulting
//     RECEIVED/DATA/SUCCESS/ERROR events
//
// The façade delegates orchestration to engine.Engine while keeping setup and
// usage ergonomics concise. All defaults are safe for local development and
// testing; production deployments typically supply durable store
// implementations, a distributed bus and a structured logger.
package predictmesh

import (
	"context"

	"github.com/hupe1980/predictmesh/core"
	"github.com/hupe1980/predictmesh/engine"
	"github.com/hupe1980/predictmesh/eventbus"
	"github.com/hupe1980/predictmesh/logging"
	"github.com/hupe1980/predictmesh/model"
	"github.com/hupe1980/predictmesh/sandbox"
)

// Options configures the PredictMesh instance. Nil services fall back to the
// engine's in-memory defaults.
type Options struct {
	// EngineConfig tunes environment, concurrency and event buffering.
	EngineConfig engine.Config

	// Agents resolves agents by id.
	Agents core.AgentStore

	// Capabilities resolves capabilities by alias.
	Capabilities core.CapabilityStore

	// Threads persists per-subscription conversation threads.
	Threads core.ThreadStore

	// Bus carries prediction events to subscribers.
	Bus eventbus.Bus

	// Gateway issues model calls.
	Gateway *model.Gateway

	// Sandbox executes model-generated code.
	Sandbox sandbox.Executor

	// FixCapabilityAlias selects the capability used for the code-fix retry.
	FixCapabilityAlias string

	// Logger defaults to NoOp if nil.
	Logger logging.Logger
}

// Subscription aliases the event bus subscription so façade users need no
// extra import to consume event streams.
type Subscription = eventbus.Subscription

// PredictMesh is the high-level façade aggregating the underlying engine and
// services.
type PredictMesh struct {
	opts   Options
	engine *engine.Engine
}

// New creates a new PredictMesh instance with optional overrides. Any unset
// service is initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) *PredictMesh {
	opts := Options{EngineConfig: engine.DefaultConfig}

	for _, fn := range optFns {
		fn(&opts)
	}

	eng := engine.New(func(o *engine.Options) {
		o.Config = opts.EngineConfig
		if opts.Agents != nil {
			o.Agents = opts.Agents
		}
		if opts.Capabilities != nil {
			o.Capabilities = opts.Capabilities
		}
		if opts.Threads != nil {
			o.Threads = opts.Threads
		}
		if opts.Bus != nil {
			o.Bus = opts.Bus
		}
		if opts.Gateway != nil {
			o.Gateway = opts.Gateway
		}
		if opts.Sandbox != nil {
			o.Sandbox = opts.Sandbox
		}
		if opts.FixCapabilityAlias != "" {
			o.FixCapabilityAlias = opts.FixCapabilityAlias
		}
		if opts.Logger != nil {
			o.Logger = opts.Logger
		}
	})

	return &PredictMesh{opts: opts, engine: eng}
}

// GeneratePrediction starts an asynchronous pipeline run and returns its
// invocation handle. Results are observed on the event bus, never through the
// handle.
func (m *PredictMesh) GeneratePrediction(ctx context.Context, req engine.Request) *engine.Invocation {
	return m.engine.GeneratePrediction(ctx, req)
}

// Subscribe returns the filtered event stream for a subscription id. An empty
// id subscribes to every event.
func (m *PredictMesh) Subscribe(subscriptionID string) (*eventbus.Subscription, error) {
	return m.engine.Subscribe(subscriptionID)
}

// StopInvocation cancels a running prediction by its correlation id.
func (m *PredictMesh) StopInvocation(correlationID string) error {
	return m.engine.StopInvocation(correlationID)
}
