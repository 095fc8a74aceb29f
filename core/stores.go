package core

import "context"

// AgentStore resolves agents by id. Implementations return (nil, nil) when no
// agent exists; callers decide how a miss is reported.
type AgentStore interface {
	Agent(ctx context.Context, id string) (*Agent, error)
}

// CapabilityStore resolves capabilities by their globally unique alias.
// Implementations return (nil, nil) when no capability exists.
type CapabilityStore interface {
	Capability(ctx context.Context, alias string) (*Capability, error)
}

// ThreadStore persists threads keyed by subscription id. FindOrCreate is an
// atomic upsert: concurrent calls for the same subscription observe a single
// thread. Append is atomic per message; the store never mutates or deletes
// existing messages.
type ThreadStore interface {
	FindOrCreate(ctx context.Context, subscriptionID string) (*Thread, error)
	Append(ctx context.Context, subscriptionID string, msg Message) error
}
