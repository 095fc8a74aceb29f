// Package main provides the predictmesh binary entry point. It wires the
// configured backends (model providers, event bus, thread store, sandbox)
// into an engine and exposes a predict command that fires a prediction and
// prints its event stream.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/hupe1980/predictmesh"
	"github.com/hupe1980/predictmesh/config"
	"github.com/hupe1980/predictmesh/core"
	"github.com/hupe1980/predictmesh/engine"
	"github.com/hupe1980/predictmesh/eventbus"
	natsbus "github.com/hupe1980/predictmesh/eventbus/nats"
	"github.com/hupe1980/predictmesh/logging"
	"github.com/hupe1980/predictmesh/model"
	anthropicmodel "github.com/hupe1980/predictmesh/model/anthropic"
	openaimodel "github.com/hupe1980/predictmesh/model/openai"
	"github.com/hupe1980/predictmesh/registry"
	"github.com/hupe1980/predictmesh/sandbox"
	redisthread "github.com/hupe1980/predictmesh/thread/redis"
	"github.com/nats-io/nats.go"
	openaisdk "github.com/openai/openai-go"
	openaioption "github.com/openai/openai-go/option"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "predictmesh",
		Short: "Agent prediction pipeline",
		Long: `Predictmesh runs agent prediction pipelines: an agent plans capability
invocations via a reasoning model, executes them concurrently (optionally
through a code sandbox) and reports progress as an event stream.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")

	cmd.AddCommand(predictCmd(&configPath))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("predictmesh version %s\n", version)
		},
	})

	return cmd
}

func predictCmd(configPath *string) *cobra.Command {
	var (
		subscriptionID string
		agentID        string
		message        string
		vars           []string
		timeout        time.Duration
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Fire a prediction and print its event stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			mesh, cleanup, err := buildMesh(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			variables := map[string]string{"userMessage": message}
			for _, kv := range vars {
				key, value, ok := strings.Cut(kv, "=")
				if !ok {
					return fmt.Errorf("invalid variable %q, expected key=value", kv)
				}
				variables[key] = value
			}

			sub, err := mesh.Subscribe(subscriptionID)
			if err != nil {
				return err
			}
			defer sub.Unsubscribe()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			mesh.GeneratePrediction(ctx, engine.Request{
				SubscriptionID: subscriptionID,
				AgentID:        agentID,
				Variables:      variables,
			})

			return printEvents(ctx, sub)
		},
	}

	cmd.Flags().StringVarP(&subscriptionID, "subscription-id", "s", "cli", "Subscription id (thread key)")
	cmd.Flags().StringVarP(&agentID, "agent-id", "a", "", "Agent id to run")
	cmd.Flags().StringVarP(&message, "message", "m", "", "User message")
	cmd.Flags().StringArrayVar(&vars, "var", nil, "Additional prompt variable (key=value, repeatable)")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "Run timeout")
	_ = cmd.MarkFlagRequired("agent-id")
	_ = cmd.MarkFlagRequired("message")

	return cmd
}

func printEvents(ctx context.Context, sub *eventbus.Subscription) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-sub.Events():
			fmt.Printf("[%s] %s", ev.Type, ev.Context)
			if ev.Result != "" {
				fmt.Printf(": %s", ev.Result)
			}
			fmt.Println()
			if ev.Type == core.EventError {
				return fmt.Errorf("prediction failed")
			}
			if ev.Type.IsTerminal() {
				return nil
			}
		}
	}
}

// buildMesh assembles a PredictMesh from the configuration. The returned
// cleanup closes external connections.
func buildMesh(cfg *config.Config) (*predictmesh.PredictMesh, func(), error) {
	logger := logging.NewSlogLogger(parseLogLevel(cfg.Logging.Level), "", false)

	reg := registry.NewInMemoryRegistry()
	for _, cc := range cfg.Capabilities {
		capability, err := cc.ToCapability()
		if err != nil {
			return nil, nil, err
		}
		if err := reg.RegisterCapability(capability); err != nil {
			return nil, nil, err
		}
	}
	for _, ac := range cfg.Agents {
		agent, err := ac.ToAgent()
		if err != nil {
			return nil, nil, err
		}
		if err := reg.RegisterAgent(agent); err != nil {
			return nil, nil, err
		}
	}

	modelReg := model.NewRegistry()
	models := make(map[string]model.Model)
	if len(cfg.Models.OpenAI.Models) > 0 {
		var clientOpts []openaioption.RequestOption
		if cfg.Models.OpenAI.APIKey != "" {
			clientOpts = append(clientOpts, openaioption.WithAPIKey(cfg.Models.OpenAI.APIKey))
		}
		client := openaisdk.NewClient(clientOpts...)
		for _, name := range cfg.Models.OpenAI.Models {
			m := openaimodel.NewModelFromClient(&client, func(o *openaimodel.Options) { o.Model = name })
			modelReg.Register(name, m)
			models[name] = m
		}
	}
	for _, name := range cfg.Models.Anthropic.Models {
		m := anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
			o.Model = anthropicsdk.Model(name)
			o.APIKey = cfg.Models.Anthropic.APIKey
		})
		modelReg.Register(name, m)
		models[name] = m
	}
	if fallback, ok := models[cfg.Models.Fallback]; ok {
		modelReg.SetFallback(fallback)
	}

	var cleanups []func()
	cleanup := func() {
		for _, fn := range cleanups {
			fn()
		}
	}

	var bus eventbus.Bus
	if cfg.NATS.URL != "" {
		conn, err := nats.Connect(cfg.NATS.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		cleanups = append(cleanups, conn.Close)
		bus = natsbus.New(conn, func(o *natsbus.Options) {
			o.BufferSize = cfg.Engine.EventBufferSize
			o.Logger = logger
		})
	}

	var threads core.ThreadStore
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cleanups = append(cleanups, func() { _ = client.Close() })
		threads = redisthread.NewStore(client, func(o *redisthread.Options) {
			o.Logger = logger
		})
	}

	mesh := predictmesh.New(func(o *predictmesh.Options) {
		o.EngineConfig = engine.Config{
			Environment:              cfg.Environment,
			MaxConcurrentInvocations: cfg.Engine.MaxConcurrentInvocations,
			EventBufferSize:          cfg.Engine.EventBufferSize,
		}
		o.Agents = reg
		o.Capabilities = reg
		o.Threads = threads
		o.Bus = bus
		o.Gateway = model.NewGateway(modelReg, func(g *model.GatewayOptions) {
			g.Logger = logger
		})
		o.Sandbox = sandbox.NewHTTPExecutor(cfg.Sandbox.Endpoint, cfg.Sandbox.ExecutorID, func(so *sandbox.HTTPExecutorOptions) {
			so.Timeout = cfg.Sandbox.Timeout()
			so.Logger = logger
		})
		o.FixCapabilityAlias = cfg.FixCapabilityAlias
		o.Logger = logger
	})

	return mesh, cleanup, nil
}

func parseLogLevel(level string) logging.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logging.LogLevelDebug
	case "warn":
		return logging.LogLevelWarn
	case "error":
		return logging.LogLevelError
	default:
		return logging.LogLevelInfo
	}
}
