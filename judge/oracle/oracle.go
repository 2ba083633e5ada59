/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package oracle provides the judge model endpoints behind a single
// interface, with provider-specific backends, liveness validation, and a
// pool of validated judges for consensus judging.
package oracle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"chainguard.dev/vppjudge/judge/metrics"
	"chainguard.dev/vppjudge/judge/oracle/retry"
)

// Oracle is a single judge model endpoint. Invoke sends one system prompt
// and one user prompt and returns the raw response text; decoding is the
// caller's problem.
type Oracle interface {
	// Endpoint returns the serving endpoint name this oracle calls.
	Endpoint() string
	// Invoke performs a single-turn completion. An empty system prompt is
	// allowed.
	Invoke(ctx context.Context, system, user string) (string, error)
}

// Func adapts a function to the Oracle interface. Tests use it to stand in
// for real endpoints.
type Func struct {
	Name string
	Fn   func(ctx context.Context, system, user string) (string, error)
}

func (f Func) Endpoint() string { return f.Name }

func (f Func) Invoke(ctx context.Context, system, user string) (string, error) {
	return f.Fn(ctx, system, user)
}

// New builds an oracle for the named serving endpoint, dispatching on the
// endpoint name: claude-* endpoints use the Anthropic API, gemini-*
// endpoints use the Google AI API, and everything else is treated as an
// OpenAI-compatible serving endpoint (the Databricks wire protocol).
func New(ctx context.Context, cfg Config, endpoint string) (Oracle, error) {
	endpoint = ResolveEndpoint(endpoint)
	name := strings.TrimPrefix(endpoint, "databricks-")
	switch {
	case strings.HasPrefix(name, "claude-") && cfg.AnthropicAPIKey != "":
		return newClaudeOracle(cfg, endpoint)
	case strings.HasPrefix(name, "gemini-") && cfg.GoogleAPIKey != "":
		return newGeminiOracle(ctx, cfg, endpoint)
	}
	return newServingOracle(cfg, endpoint)
}

// sharedConfig carries the knobs common to every backend.
type sharedConfig struct {
	maxTokens   int64
	temperature float64
	callTimeout time.Duration
	retryConfig retry.Config
	metrics     *metrics.Judge
}

// withCallTimeout bounds one judging call, when a timeout is configured.
func (s sharedConfig) withCallTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.callTimeout > 0 {
		return context.WithTimeout(ctx, s.callTimeout)
	}
	return ctx, func() {}
}

func newSharedConfig(cfg Config) (sharedConfig, error) {
	rc := retry.Config{
		MaxRetries:  cfg.MaxRetries,
		BaseBackoff: cfg.BaseBackoff,
		MaxBackoff:  cfg.MaxBackoff,
		MaxJitter:   cfg.MaxJitter,
	}
	if err := rc.Validate(); err != nil {
		return sharedConfig{}, fmt.Errorf("invalid retry configuration: %w", err)
	}
	return sharedConfig{
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		callTimeout: cfg.CallTimeout,
		retryConfig: rc,
		metrics:     metrics.NewJudge("chainguard.ai.vppjudge"),
	}, nil
}
