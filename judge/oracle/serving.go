/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package oracle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chainguard.dev/vppjudge/judge/oracle/retry"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// servingOracle calls an OpenAI-compatible serving endpoint. Databricks
// foundation-model endpoints speak this protocol, with the endpoint name as
// the model.
type servingOracle struct {
	client   openai.Client
	endpoint string
	shared   sharedConfig
}

func newServingOracle(cfg Config, endpoint string) (Oracle, error) {
	if cfg.ServingBaseURL == "" {
		return nil, fmt.Errorf("endpoint %q requires SERVING_BASE_URL", endpoint)
	}
	shared, err := newSharedConfig(cfg)
	if err != nil {
		return nil, err
	}
	opts := []option.RequestOption{option.WithBaseURL(cfg.ServingBaseURL)}
	if cfg.ServingToken != "" {
		opts = append(opts, option.WithAPIKey(cfg.ServingToken))
	}
	return &servingOracle{
		client:   openai.NewClient(opts...),
		endpoint: endpoint,
		shared:   shared,
	}, nil
}

func (o *servingOracle) Endpoint() string { return o.endpoint }

func (o *servingOracle) Invoke(ctx context.Context, system, user string) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	messages = append(messages, openai.UserMessage(user))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(o.endpoint),
		Messages:    messages,
		MaxTokens:   openai.Int(o.shared.maxTokens),
		Temperature: openai.Float(o.shared.temperature),
	}

	ctx, cancel := o.shared.withCallTimeout(ctx)
	defer cancel()

	start := time.Now()
	completion, err := retry.Do(ctx, o.shared.retryConfig, "serving_completion", isRetryableServingError,
		func() (*openai.ChatCompletion, error) {
			return o.client.Chat.Completions.New(ctx, params)
		})
	if err != nil {
		o.shared.metrics.RecordCall(ctx, o.endpoint, "error", time.Since(start))
		return "", fmt.Errorf("calling serving endpoint %q: %w", o.endpoint, err)
	}
	o.shared.metrics.RecordCall(ctx, o.endpoint, "ok", time.Since(start))

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("serving endpoint %q returned no choices", o.endpoint)
	}
	return completion.Choices[0].Message.Content, nil
}

// isRetryableServingError reports rate limit and transient server errors.
func isRetryableServingError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 429, 500, 502, 503, 504:
			return true
		}
	}
	return false
}
