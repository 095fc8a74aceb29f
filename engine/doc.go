// Package engine implements the prediction pipeline orchestrator. One
// GeneratePrediction call drives a complete run: the RECEIVED acknowledgement,
// optional reasoning, concurrent step execution, the terminal SUCCESS or ERROR
// event and the append-only thread bookkeeping.
//
// The engine is fire-and-forget: GeneratePrediction returns an Invocation
// handle immediately and the run proceeds in its own goroutine, reporting
// exclusively through the event bus. Per correlation id the event sequence is
// RECEIVED, zero or more DATA events, then exactly one SUCCESS or ERROR.
//
// All collaborators (stores, bus, model gateway, sandbox) are injected via
// functional options; in-memory defaults make a zero-configuration engine
// usable for development and tests.
package engine
