/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package oracle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"chainguard.dev/vppjudge/judge/oracle/retry"
	"google.golang.org/genai"
)

// geminiOracle calls the Google AI API directly for gemini-* endpoints.
type geminiOracle struct {
	client   *genai.Client
	endpoint string
	model    string
	shared   sharedConfig
}

func newGeminiOracle(ctx context.Context, cfg Config, endpoint string) (Oracle, error) {
	shared, err := newSharedConfig(cfg)
	if err != nil {
		return nil, err
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GoogleAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &geminiOracle{
		client:   client,
		endpoint: endpoint,
		model:    strings.TrimPrefix(endpoint, "databricks-"),
		shared:   shared,
	}, nil
}

func (o *geminiOracle) Endpoint() string { return o.endpoint }

func (o *geminiOracle) Invoke(ctx context.Context, system, user string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     ptr(float32(o.shared.temperature)),
		MaxOutputTokens: int32(o.shared.maxTokens),
	}
	if system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}

	ctx, cancel := o.shared.withCallTimeout(ctx)
	defer cancel()

	start := time.Now()
	response, err := retry.Do(ctx, o.shared.retryConfig, "gemini_completion", isRetryableGeminiError,
		func() (*genai.GenerateContentResponse, error) {
			return o.client.Models.GenerateContent(ctx, o.model, genai.Text(user), config)
		})
	if err != nil {
		o.shared.metrics.RecordCall(ctx, o.endpoint, "error", time.Since(start))
		return "", fmt.Errorf("calling gemini endpoint %q: %w", o.endpoint, err)
	}
	o.shared.metrics.RecordCall(ctx, o.endpoint, "ok", time.Since(start))

	text := response.Text()
	if text == "" {
		return "", fmt.Errorf("gemini endpoint %q returned no text content", o.endpoint)
	}
	return text, nil
}

// isRetryableGeminiError reports rate limit, quota exhaustion, and transient
// server errors.
func isRetryableGeminiError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "Resource exhausted") ||
		strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "RESOURCE_EXHAUSTED") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "Overloaded") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "quota exceeded") ||
		strings.Contains(errStr, "server error")
}

func ptr[T any](v T) *T {
	return &v
}
