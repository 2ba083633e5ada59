/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package consensus aggregates verdicts from a pool of judge endpoints.
//
// Every judge in the pool is asked independently; individual failures
// (endpoint errors, undecodable responses) are folded into the aggregate as
// abstentions rather than propagated. A row only fails above this layer.
package consensus

import (
	"strconv"

	"chainguard.dev/vppjudge/judge/metrics"
	"chainguard.dev/vppjudge/judge/oracle"
)

// Engine runs multi-judge evaluations against a validated pool.
type Engine struct {
	pool    *oracle.Pool
	metrics *metrics.Judge
}

// New creates an engine over a validated judge pool.
func New(pool *oracle.Pool) *Engine {
	return &Engine{
		pool:    pool,
		metrics: metrics.NewJudge("chainguard.ai.vppjudge"),
	}
}

// clampLen bounds s to n runes, marking truncation with an ellipsis.
func clampLen(s string, n int) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// safeFloat coerces the loosely-typed numbers judges emit. Strings holding
// a number count; everything else is an abstention.
func safeFloat(v any) *float64 {
	switch x := v.(type) {
	case float64:
		return &x
	case int:
		f := float64(x)
		return &f
	case string:
		if f, err := strconv.ParseFloat(x, 64); err == nil {
			return &f
		}
	}
	return nil
}

// mean averages the non-abstaining values, or reports none.
func mean(vals []float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	m := sum / float64(len(vals))
	return &m
}
