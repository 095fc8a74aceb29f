// Package config loads the pipeline configuration: engine tuning, backend
// selection (bus, thread store, sandbox), model credentials and the agent and
// capability definitions the registries are seeded from. Configuration is
// read from a YAML file with PREDICTMESH_* environment overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/predictmesh/core"
	"github.com/spf13/viper"
)

// Config is the complete predictmesh configuration.
type Config struct {
	// Environment names the deployment environment. "production" disables
	// DEBUG event emission.
	Environment string `mapstructure:"environment"`

	Engine  EngineConfig  `mapstructure:"engine"`
	Logging LoggingConfig `mapstructure:"logging"`
	Sandbox SandboxConfig `mapstructure:"sandbox"`
	NATS    NATSConfig    `mapstructure:"nats"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Models  ModelsConfig  `mapstructure:"models"`

	// FixCapabilityAlias selects the capability used for the code-fix retry.
	FixCapabilityAlias string `mapstructure:"fix_capability_alias"`

	// Agents and Capabilities seed the in-memory registry at startup.
	Agents       []AgentConfig      `mapstructure:"agents"`
	Capabilities []CapabilityConfig `mapstructure:"capabilities"`
}

// EngineConfig tunes the orchestrator.
type EngineConfig struct {
	MaxConcurrentInvocations int `mapstructure:"max_concurrent_invocations"`
	EventBufferSize          int `mapstructure:"event_buffer_size"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
}

// SandboxConfig points at the remote code execution service.
type SandboxConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	// ExecutorID is the mandatory executor identity; execution-mode
	// capabilities fail without it.
	ExecutorID     string `mapstructure:"executor_id"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// Timeout returns the sandbox round-trip timeout.
func (c SandboxConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// NATSConfig selects the distributed event bus. An empty URL keeps the
// in-memory bus.
type NATSConfig struct {
	URL string `mapstructure:"url"`
}

// RedisConfig selects the durable thread store. An empty Addr keeps the
// in-memory store.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ModelsConfig carries provider credentials and the fallback model name.
type ModelsConfig struct {
	// Fallback names the model used when a capability or reasoning config
	// references no model.
	Fallback  string         `mapstructure:"fallback"`
	OpenAI    ProviderConfig `mapstructure:"openai"`
	Anthropic ProviderConfig `mapstructure:"anthropic"`
}

// ProviderConfig configures one model provider.
type ProviderConfig struct {
	// APIKey may also come from the provider's native environment variable.
	APIKey string `mapstructure:"api_key"`
	// Models lists the model names to register for this provider.
	Models []string `mapstructure:"models"`
}

// ReasoningConfig mirrors core.Reasoning for file-based agent definitions.
type ReasoningConfig struct {
	PromptTemplate      string `mapstructure:"prompt_template"`
	LLMModel            string `mapstructure:"llm_model"`
	VariablePassThrough bool   `mapstructure:"variable_pass_through"`
}

// AgentConfig is the file representation of an agent.
type AgentConfig struct {
	ID            string           `mapstructure:"id"`
	Name          string           `mapstructure:"name"`
	Capabilities  []string         `mapstructure:"capabilities"`
	Reasoning     *ReasoningConfig `mapstructure:"reasoning"`
	MemoryEnabled bool             `mapstructure:"memory_enabled"`
	OutputFilter  string           `mapstructure:"output_filter"`
}

// ToAgent converts the file representation into a core.Agent.
func (a AgentConfig) ToAgent() (*core.Agent, error) {
	agent := &core.Agent{
		ID:            a.ID,
		Name:          a.Name,
		Capabilities:  a.Capabilities,
		MemoryEnabled: a.MemoryEnabled,
	}
	if a.Reasoning != nil {
		agent.Reasoning = &core.Reasoning{
			PromptTemplate:      a.Reasoning.PromptTemplate,
			LLMModel:            a.Reasoning.LLMModel,
			VariablePassThrough: a.Reasoning.VariablePassThrough,
		}
	}
	if a.OutputFilter != "" {
		filter, err := core.NewOutputFilter(a.OutputFilter)
		if err != nil {
			return nil, fmt.Errorf("agent %s: invalid output filter: %w", a.ID, err)
		}
		agent.OutputFilter = filter
	}
	return agent, nil
}

// CapabilityConfig is the file representation of a capability.
type CapabilityConfig struct {
	ID           string   `mapstructure:"id"`
	Alias        string   `mapstructure:"alias"`
	LLMModel     string   `mapstructure:"llm_model"`
	OutputMode   string   `mapstructure:"output_mode"`
	Prompts      []string `mapstructure:"prompts"`
	OutputFilter string   `mapstructure:"output_filter"`
}

// ToCapability converts the file representation into a core.Capability.
func (c CapabilityConfig) ToCapability() (*core.Capability, error) {
	mode, err := core.ParseOutputMode(c.OutputMode)
	if err != nil {
		return nil, fmt.Errorf("capability %s: %w", c.Alias, err)
	}
	capability := &core.Capability{
		ID:       c.ID,
		Alias:    c.Alias,
		LLMModel: c.LLMModel,
		Mode:     mode,
		Prompts:  c.Prompts,
	}
	if c.OutputFilter != "" {
		filter, err := core.NewOutputFilter(c.OutputFilter)
		if err != nil {
			return nil, fmt.Errorf("capability %s: invalid output filter: %w", c.Alias, err)
		}
		capability.OutputFilter = filter
	}
	return capability, nil
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Environment: "development",
		Engine: EngineConfig{
			MaxConcurrentInvocations: 10,
			EventBufferSize:          100,
		},
		Logging: LoggingConfig{Level: "info"},
		Sandbox: SandboxConfig{TimeoutSeconds: 60},
	}
}

func setDefaults(v *viper.Viper) {
	defaults := Default()
	v.SetDefault("environment", defaults.Environment)
	v.SetDefault("engine.max_concurrent_invocations", defaults.Engine.MaxConcurrentInvocations)
	v.SetDefault("engine.event_buffer_size", defaults.Engine.EventBufferSize)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("sandbox.timeout_seconds", defaults.Sandbox.TimeoutSeconds)
}

// Load reads the configuration from path. An empty path yields the defaults
// plus environment overrides. Environment variables use the PREDICTMESH_
// prefix with underscores for nesting, e.g. PREDICTMESH_SANDBOX_EXECUTOR_ID.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("PREDICTMESH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints the type system cannot express.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %q", c.Logging.Level)
	}

	seen := make(map[string]bool, len(c.Capabilities))
	for _, cap := range c.Capabilities {
		if cap.Alias == "" {
			return fmt.Errorf("capability %s: alias must not be empty", cap.ID)
		}
		if seen[cap.Alias] {
			return fmt.Errorf("duplicate capability alias: %s", cap.Alias)
		}
		seen[cap.Alias] = true
	}

	for _, agent := range c.Agents {
		if agent.ID == "" {
			return fmt.Errorf("agent %q: id must not be empty", agent.Name)
		}
		for _, alias := range agent.Capabilities {
			if !seen[alias] {
				return fmt.Errorf("agent %s references unknown capability alias: %s", agent.ID, alias)
			}
		}
	}

	return nil
}
