// Package core provides the foundational domain types and interfaces used by
// PredictMesh. It defines the core abstractions for:
//
//   - Agents (configured bundles of a reasoning strategy and capabilities)
//   - Capabilities (invocable prompt/model/output-mode units)
//   - Threads (durable, append-only conversation logs per subscription)
//   - Steps (planned capability invocations with bound variables)
//   - PredictionEvents (the event stream describing one pipeline run)
//   - Pluggable stores for agents, capabilities and threads
//
// The package intentionally keeps implementation concerns (persistence,
// orchestration, model providers) out of scope, exposing small interfaces to
// the packages that implement them.
package core
