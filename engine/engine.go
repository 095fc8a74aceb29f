package engine

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/hupe1980/predictmesh/core"
	"github.com/hupe1980/predictmesh/eventbus"
	"github.com/hupe1980/predictmesh/executor"
	"github.com/hupe1980/predictmesh/logging"
	"github.com/hupe1980/predictmesh/model"
	"github.com/hupe1980/predictmesh/plan"
	"github.com/hupe1980/predictmesh/registry"
	"github.com/hupe1980/predictmesh/sandbox"
	"github.com/hupe1980/predictmesh/thread"
)

// Config defines tuning parameters for the engine's operational behavior.
type Config struct {
	// Environment names the deployment environment. "production" rejects
	// DEBUG event emission.
	Environment string

	// MaxConcurrentInvocations limits the number of pipeline runs executing
	// simultaneously. Set to 0 for unlimited.
	MaxConcurrentInvocations int

	// EventBufferSize sets the per-subscriber channel buffer of the default
	// in-memory bus. Ignored when a Bus is injected.
	EventBufferSize int
}

// DefaultConfig provides production-ready default configuration values.
var DefaultConfig = Config{
	Environment:              "development",
	MaxConcurrentInvocations: 10,
	EventBufferSize:          100,
}

// Options configures an Engine instance using the functional options pattern.
// Every dependency has an in-memory default so a bare New() yields a working
// engine for development and tests.
type Options struct {
	// Config contains operational parameters. Defaults to DefaultConfig.
	Config Config

	// Agents resolves agents by id. Defaults to a fresh in-memory registry.
	Agents core.AgentStore

	// Capabilities resolves capabilities by alias. Defaults to the same
	// in-memory registry as Agents.
	Capabilities core.CapabilityStore

	// Threads persists per-subscription conversation threads. Defaults to an
	// in-memory store.
	Threads core.ThreadStore

	// Bus carries prediction events to subscribers. Defaults to an in-memory
	// bus sized by Config.EventBufferSize.
	Bus eventbus.Bus

	// Gateway issues model calls. Defaults to a gateway over an empty model
	// registry; resolve failures then surface as ERROR events.
	Gateway *model.Gateway

	// Sandbox executes generated code. Defaults to an HTTP executor without
	// an identity, which reports a configuration error on first use.
	Sandbox sandbox.Executor

	// FixCapabilityAlias selects the capability used for the code-fix retry.
	FixCapabilityAlias string

	// Logger defaults to NoOp.
	Logger logging.Logger
}

// Engine orchestrates prediction pipeline runs. It is safe for concurrent
// use; each run executes in its own goroutine with isolated state.
type Engine struct {
	config   Config
	agents   core.AgentStore
	threads  core.ThreadStore
	bus      eventbus.Bus
	planner  *plan.Builder
	executor *executor.Executor
	logger   logging.Logger

	// Active run tracking for explicit cancellation.
	activeInvocations map[string]context.CancelFunc
	invocationsMu     sync.RWMutex

	// Bounded concurrency; nil means unlimited.
	limiter chan struct{}
}

// New creates an Engine with sensible defaults and optional overrides.
func New(optFns ...func(o *Options)) *Engine {
	reg := registry.NewInMemoryRegistry()
	opts := Options{
		Config:             DefaultConfig,
		Agents:             reg,
		Capabilities:       reg,
		Threads:            thread.NewInMemoryStore(),
		Gateway:            model.NewGateway(model.NewRegistry()),
		Sandbox:            sandbox.NewHTTPExecutor("", ""),
		FixCapabilityAlias: executor.DefaultFixCapabilityAlias,
		Logger:             logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Bus == nil {
		opts.Bus = eventbus.NewInMemoryBus(func(o *eventbus.InMemoryOptions) {
			o.BufferSize = opts.Config.EventBufferSize
			o.Logger = opts.Logger
		})
	}

	var limiter chan struct{}
	if opts.Config.MaxConcurrentInvocations > 0 {
		limiter = make(chan struct{}, opts.Config.MaxConcurrentInvocations)
	}

	return &Engine{
		config:  opts.Config,
		agents:  opts.Agents,
		threads: opts.Threads,
		bus:     opts.Bus,
		planner: plan.NewBuilder(opts.Gateway, opts.Capabilities, func(o *plan.Options) {
			o.Logger = opts.Logger
		}),
		executor: executor.NewExecutor(opts.Gateway, opts.Sandbox, opts.Capabilities, func(o *executor.Options) {
			o.FixCapabilityAlias = opts.FixCapabilityAlias
			o.Logger = opts.Logger
		}),
		logger:            opts.Logger,
		activeInvocations: make(map[string]context.CancelFunc),
		limiter:           limiter,
	}
}

// Auth carries the authenticated caller identity of a request.
type Auth struct {
	// Subject identifies the caller; it becomes the sender id of the user's
	// thread message.
	Subject string
}

// Request describes one prediction run.
type Request struct {
	// SubscriptionID keys the thread and the event filter.
	SubscriptionID string

	// AgentID selects the agent to run.
	AgentID string

	// Variables feed prompt templates. The "userMessage" variable carries the
	// user prompt and is echoed in the RECEIVED event.
	Variables map[string]string

	// Attachments are forwarded to every model call of the run.
	Attachments []core.Part

	// Auth is optional; without it the sender id defaults to "user".
	Auth *Auth
}

func (r Request) senderID() string {
	if r.Auth != nil && r.Auth.Subject != "" {
		return r.Auth.Subject
	}
	return "user"
}

// GeneratePrediction starts a pipeline run and returns immediately. The run
// reports exclusively through the event bus: RECEIVED first, DATA as results
// stream in, then exactly one SUCCESS or ERROR. Errors inside the run never
// surface to the caller directly.
func (e *Engine) GeneratePrediction(ctx context.Context, req Request) *Invocation {
	correlationID := core.NewID()
	pub := eventbus.NewPublisher(e.bus, correlationID, req.SubscriptionID, e.config.Environment)

	runCtx, cancel := context.WithCancel(ctx)
	inv := newInvocation(correlationID, cancel)

	e.invocationsMu.Lock()
	e.activeInvocations[correlationID] = cancel
	e.invocationsMu.Unlock()

	go func() {
		var runErr error
		defer func() {
			e.invocationsMu.Lock()
			delete(e.activeInvocations, correlationID)
			e.invocationsMu.Unlock()
			cancel()
			inv.finish(runErr)
		}()

		if err := pub.Emit(core.EventReceived, req.Variables["userMessage"]); err != nil {
			e.logger.Warn("failed to emit received event correlation_id=%s error=%v", correlationID, err)
		}

		// RECEIVED is emitted before the limiter wait so a run cancelled while
		// queued still produces its terminal ERROR event.
		if e.limiter != nil {
			select {
			case e.limiter <- struct{}{}:
				defer func() { <-e.limiter }()
			case <-runCtx.Done():
				runErr = runCtx.Err()
				if emitErr := pub.Emit(core.EventError, runErr.Error()); emitErr != nil {
					e.logger.Warn("failed to emit error event correlation_id=%s error=%v", correlationID, emitErr)
				}
				return
			}
		}

		if runErr = e.run(runCtx, req, pub); runErr != nil {
			e.logger.Error("prediction run failed correlation_id=%s subscription_id=%s error=%v", correlationID, req.SubscriptionID, runErr)
			if emitErr := pub.Emit(core.EventError, runErr.Error()); emitErr != nil {
				e.logger.Warn("failed to emit error event correlation_id=%s error=%v", correlationID, emitErr)
			}
		}
	}()

	return inv
}

// run executes the pipeline body. Any returned error becomes the single ERROR
// event of the run.
func (e *Engine) run(ctx context.Context, req Request, pub *eventbus.Publisher) error {
	agent, err := e.agents.Agent(ctx, req.AgentID)
	if err != nil {
		return err
	}
	if agent == nil {
		return core.NewLookupError("No agent found for id: %s", req.AgentID)
	}

	th, err := e.threads.FindOrCreate(ctx, req.SubscriptionID)
	if err != nil {
		return err
	}

	userMsg := core.Message{
		ID:           core.NewID(),
		SenderID:     req.senderID(),
		IsUser:       true,
		ResponseType: core.ResponseTypeText,
		ResponseText: req.Variables["userMessage"],
		Timestamp:    time.Now().UTC(),
	}
	if err := e.threads.Append(ctx, req.SubscriptionID, userMsg); err != nil {
		return err
	}
	th.Append(userMsg)

	vars := req.Variables
	if agent.MemoryEnabled {
		vars = maps.Clone(vars)
		if vars == nil {
			vars = map[string]string{}
		}
		vars["history"] = th.RenderHistory()
	}

	steps, err := e.planner.Steps(ctx, agent, vars)
	if err != nil {
		return err
	}

	result, err := e.executor.ExecuteSteps(ctx, steps, req.Attachments, pub.Emit)
	if err != nil {
		return err
	}

	if err := pub.Emit(core.EventSuccess, result); err != nil {
		return err
	}

	// The run already succeeded from the subscriber's point of view; a failed
	// thread append must not turn it into an error.
	agentMsg := core.Message{
		ID:           core.NewID(),
		SenderID:     agent.ID,
		IsUser:       false,
		ResponseType: core.ResponseTypeText,
		ResponseText: agent.OutputFilter.Apply(result),
		Timestamp:    time.Now().UTC(),
	}
	if err := e.threads.Append(ctx, req.SubscriptionID, agentMsg); err != nil {
		e.logger.Warn("failed to append agent response to thread subscription_id=%s error=%v", req.SubscriptionID, err)
	}

	return nil
}

// Subscribe returns a subscription receiving all prediction events for the
// subscription id. An empty id subscribes to every event.
func (e *Engine) Subscribe(subscriptionID string) (*eventbus.Subscription, error) {
	return e.bus.Subscribe(eventbus.Topic, subscriptionID)
}

// StopInvocation cancels a running prediction by its correlation id.
func (e *Engine) StopInvocation(correlationID string) error {
	e.invocationsMu.Lock()
	cancel, exists := e.activeInvocations[correlationID]
	e.invocationsMu.Unlock()

	if !exists {
		return fmt.Errorf("invocation %s not found", correlationID)
	}

	cancel()
	return nil
}
