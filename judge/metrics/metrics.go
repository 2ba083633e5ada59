/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package metrics provides OpenTelemetry metrics for judge endpoint calls.
package metrics

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Judge tracks endpoint calls, parse failures, and call latency across the
// judging pipeline, with the endpoint name as a dimension on each series.
type Judge struct {
	meter         metric.Meter
	calls         metric.Int64Counter
	parseFailures metric.Int64Counter
	latency       metric.Float64Histogram
}

// NewJudge creates a metrics instance on the named meter. If any instrument
// fails to initialize, it logs a warning and substitutes a no-op instrument
// rather than failing entirely.
func NewJudge(meterName string) *Judge {
	meter := otel.Meter(meterName, metric.WithInstrumentationVersion("1.0.0"))

	calls, err := meter.Int64Counter("judge.endpoint.calls",
		metric.WithDescription("The number of judge endpoint calls made"),
		metric.WithUnit("{calls}"))
	if err != nil {
		slog.Warn("Failed to create call counter, metrics will be disabled", "error", err, "meter", meterName)
		calls = noop.Int64Counter{}
	}

	parseFailures, err := meter.Int64Counter("judge.response.parse_failures",
		metric.WithDescription("The number of judge responses that could not be decoded"),
		metric.WithUnit("{responses}"))
	if err != nil {
		slog.Warn("Failed to create parse failure counter, metrics will be disabled", "error", err, "meter", meterName)
		parseFailures = noop.Int64Counter{}
	}

	latency, err := meter.Float64Histogram("judge.endpoint.latency",
		metric.WithDescription("Judge endpoint call latency"),
		metric.WithUnit("s"))
	if err != nil {
		slog.Warn("Failed to create latency histogram, metrics will be disabled", "error", err, "meter", meterName)
		latency = noop.Float64Histogram{}
	}

	return &Judge{
		meter:         meter,
		calls:         calls,
		parseFailures: parseFailures,
		latency:       latency,
	}
}

// RecordCall records one endpoint call and its latency. The outcome should
// be "ok" or "error".
func (m *Judge) RecordCall(ctx context.Context, endpoint, outcome string, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("outcome", outcome),
	)
	m.calls.Add(ctx, 1, attrs)
	m.latency.Record(ctx, elapsed.Seconds(), attrs)
}

// RecordParseFailure records a judge response that failed lenient decoding.
// The stage names the pipeline step whose response was unusable.
func (m *Judge) RecordParseFailure(ctx context.Context, endpoint, stage string) {
	m.parseFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("stage", stage),
	))
}
