/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chainguard.dev/vppjudge/judge/oracle/retry"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// claudeOracle calls the Anthropic API directly for claude-* endpoints.
type claudeOracle struct {
	client   anthropic.Client
	endpoint string
	model    string
	shared   sharedConfig
}

func newClaudeOracle(cfg Config, endpoint string) (Oracle, error) {
	shared, err := newSharedConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &claudeOracle{
		client:   anthropic.NewClient(option.WithAPIKey(cfg.AnthropicAPIKey)),
		endpoint: endpoint,
		model:    strings.TrimPrefix(endpoint, "databricks-"),
		shared:   shared,
	}, nil
}

func (o *claudeOracle) Endpoint() string { return o.endpoint }

func (o *claudeOracle) Invoke(ctx context.Context, system, user string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(o.model),
		MaxTokens: o.shared.maxTokens,
		Messages: []anthropic.MessageParam{{
			Role: anthropic.MessageParamRoleUser,
			Content: []anthropic.ContentBlockParamUnion{
				anthropic.NewTextBlock(user),
			},
		}},
	}
	params.Temperature = anthropic.Float(o.shared.temperature)
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	ctx, cancel := o.shared.withCallTimeout(ctx)
	defer cancel()

	start := time.Now()
	message, err := retry.Do(ctx, o.shared.retryConfig, "claude_completion", isRetryableClaudeError,
		func() (*anthropic.Message, error) {
			return o.client.Messages.New(ctx, params)
		})
	if err != nil {
		o.shared.metrics.RecordCall(ctx, o.endpoint, "error", time.Since(start))
		return "", fmt.Errorf("calling claude endpoint %q: %w", o.endpoint, err)
	}
	o.shared.metrics.RecordCall(ctx, o.endpoint, "ok", time.Since(start))

	var text strings.Builder
	for _, content := range message.Content {
		if content.Type == "text" {
			text.WriteString(content.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("claude endpoint %q returned no text content", o.endpoint)
	}
	return text.String(), nil
}

// isRetryableClaudeError reports rate limit, overloaded, and transient
// server errors.
func isRetryableClaudeError(err error) bool {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 429, 503, 504, 529:
			return true
		}
	}
	return false
}
