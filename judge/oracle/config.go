/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package oracle

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds the endpoint roster and credentials for the judge pool. All
// fields are populated from the environment; see the env tags for variable
// names.
type Config struct {
	// Endpoints is the candidate judge roster, in priority order. Each entry
	// is probed for liveness before use.
	Endpoints []string `env:"JUDGE_ENDPOINTS,default=databricks-claude-3-7-sonnet,databricks-claude-sonnet-4,databricks-meta-llama-3-3-70b-instruct"`
	// FallbackEndpoint is used, unprobed, when no candidate passes the
	// liveness check.
	FallbackEndpoint string `env:"JUDGE_FALLBACK_ENDPOINT,default=databricks-claude-3-7-sonnet"`
	// RubricEndpoint serves the single-note rubric stages. Empty means use
	// the first live judge from the pool.
	RubricEndpoint string `env:"RUBRIC_ENDPOINT"`

	// ServingBaseURL is the OpenAI-compatible serving root, e.g.
	// "https://<workspace>.cloud.databricks.com/serving-endpoints".
	ServingBaseURL string `env:"SERVING_BASE_URL"`
	// ServingToken authenticates against ServingBaseURL.
	ServingToken string `env:"SERVING_TOKEN"`
	// AnthropicAPIKey, when set, routes claude-* endpoints directly to the
	// Anthropic API instead of the serving gateway.
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	// GoogleAPIKey, when set, routes gemini-* endpoints directly to the
	// Google AI API instead of the serving gateway.
	GoogleAPIKey string `env:"GOOGLE_API_KEY"`

	MaxTokens   int64   `env:"JUDGE_MAX_TOKENS,default=2500"`
	Temperature float64 `env:"JUDGE_TEMPERATURE,default=0"`

	// ProbeTimeout bounds each liveness probe; CallTimeout bounds each
	// judging call.
	ProbeTimeout time.Duration `env:"JUDGE_PROBE_TIMEOUT,default=15s"`
	CallTimeout  time.Duration `env:"JUDGE_CALL_TIMEOUT,default=3m"`

	MaxRetries  int           `env:"JUDGE_MAX_RETRIES,default=3"`
	BaseBackoff time.Duration `env:"JUDGE_BASE_BACKOFF,default=2s"`
	MaxBackoff  time.Duration `env:"JUDGE_MAX_BACKOFF,default=30s"`
	MaxJitter   time.Duration `env:"JUDGE_MAX_JITTER,default=500ms"`
}

// FromEnv populates a Config from the process environment.
func FromEnv(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, fmt.Errorf("processing oracle config: %w", err)
	}
	return cfg, nil
}

// Validate checks the parts of the configuration that cannot be defaulted.
func (c Config) Validate() error {
	if len(c.Endpoints) == 0 && c.FallbackEndpoint == "" {
		return fmt.Errorf("no judge endpoints configured")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", c.MaxTokens)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be in [0, 2], got %v", c.Temperature)
	}
	return nil
}
