// Package model defines the provider-agnostic abstractions and concrete
// helpers for interacting with language models inside PredictMesh.
//
// Core goals:
//   - Unify streaming + non-streaming generation behind a single interface
//   - Keep request/response shapes minimal and transport independent
//   - Route capability model names to providers through a Registry
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (e.g. OpenAI, Anthropic) implement the Model interface from this
// package so the pipeline remains decoupled from vendor SDKs. The Gateway
// drains a provider's response channels into the two call shapes the pipeline
// needs: a single-shot completion and a streaming completion with a
// cumulative-buffer chunk callback.
package model
