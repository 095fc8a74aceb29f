package model

import (
	"context"
	"strings"
	"time"

	"github.com/hupe1980/predictmesh/core"
	"github.com/hupe1980/predictmesh/logging"
)

// StreamFunc receives the cumulative response buffer after every chunk, not
// the delta. Callbacks run synchronously: a callback must return before the
// next chunk is consumed.
type StreamFunc func(cumulative string)

// GatewayOptions configure a Gateway.
type GatewayOptions struct {
	Estimator TokenEstimator
	Logger    logging.Logger
}

// Gateway adapts the channel-based Model interface into the two call shapes
// the pipeline needs: a single-shot completion and a streaming completion
// with a cumulative-buffer callback. It resolves model names through the
// registry and backfills token usage via the estimator when a provider does
// not report it.
type Gateway struct {
	registry  *Registry
	estimator TokenEstimator
	logger    logging.Logger
}

// NewGateway creates a Gateway over the given registry.
func NewGateway(registry *Registry, optFns ...func(o *GatewayOptions)) *Gateway {
	opts := GatewayOptions{
		Estimator: HeuristicEstimator{},
		Logger:    logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Gateway{registry: registry, estimator: opts.Estimator, logger: opts.Logger}
}

// Complete issues a single-shot request and returns the full response text
// plus token usage.
func (g *Gateway) Complete(ctx context.Context, modelName string, contents []core.Content) (string, TokenUsage, error) {
	return g.generate(ctx, modelName, contents, nil)
}

// Stream issues a streaming request. fn is invoked with the cumulative buffer
// after every received chunk; the final full text is returned when the stream
// completes.
func (g *Gateway) Stream(ctx context.Context, modelName string, contents []core.Content, fn StreamFunc) (string, TokenUsage, error) {
	return g.generate(ctx, modelName, contents, fn)
}

func (g *Gateway) generate(ctx context.Context, modelName string, contents []core.Content, fn StreamFunc) (string, TokenUsage, error) {
	m, err := g.registry.Resolve(modelName)
	if err != nil {
		return "", TokenUsage{}, err
	}

	start := time.Now()
	respCh, errCh := m.Generate(ctx, Request{Contents: contents, Stream: fn != nil})

	var buf strings.Builder
	var final string
	var usage *TokenUsage

	for resp := range respCh {
		if resp.Partial {
			buf.WriteString(core.TextOf(resp.Content))
			if fn != nil {
				fn(buf.String())
			}
			continue
		}
		final = core.TextOf(resp.Content)
		if resp.Usage != nil {
			usage = resp.Usage
		}
	}

	if err := <-errCh; err != nil {
		g.logger.Error("model call failed model=%s error=%v", modelName, err)
		return "", TokenUsage{}, err
	}

	// Some providers only deliver partial chunks without a final aggregate.
	if final == "" {
		final = buf.String()
	}

	if usage == nil {
		var promptText string
		for _, c := range contents {
			promptText += core.TextOf(c)
		}
		u := TokenUsage{
			PromptTokens:     g.estimator.Estimate(promptText),
			CompletionTokens: g.estimator.Estimate(final),
		}
		u.TotalTokens = u.PromptTokens + u.CompletionTokens
		usage = &u
	}

	g.logger.Debug("model call completed model=%s tokens=%d duration=%s", modelName, usage.TotalTokens, time.Since(start))

	return final, *usage, nil
}
