/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package oracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/chainguard-dev/clog"
)

// Pool is the set of judge endpoints that passed liveness validation. The
// consensus layer calls every oracle in the pool and aggregates the votes.
type Pool struct {
	oracles []Oracle
}

// Builder constructs an oracle for one endpoint name.
type Builder func(ctx context.Context, cfg Config, endpoint string) (Oracle, error)

// PoolOption customizes pool validation.
type PoolOption func(*poolSettings)

type poolSettings struct {
	build Builder
}

// WithBuilder overrides how endpoint names become oracles. Tests use it to
// substitute fakes for real backends.
func WithBuilder(build Builder) PoolOption {
	return func(s *poolSettings) {
		s.build = build
	}
}

// Validate probes each configured endpoint and returns a pool of the ones
// that answered. Probe failures are logged and skipped. When no endpoint
// answers, the fallback endpoint is adopted unprobed so judging can still be
// attempted.
func Validate(ctx context.Context, cfg Config, opts ...PoolOption) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	settings := poolSettings{build: New}
	for _, opt := range opts {
		opt(&settings)
	}

	log := clog.FromContext(ctx)
	var live []Oracle
	for _, endpoint := range cfg.Endpoints {
		endpoint = strings.TrimSpace(endpoint)
		if endpoint == "" {
			continue
		}
		o, err := settings.build(ctx, cfg, endpoint)
		if err != nil {
			log.With("endpoint", endpoint).With("error", err).
				Warn("Skipping endpoint, backend construction failed")
			continue
		}
		if err := probe(ctx, settings.build, cfg, endpoint); err != nil {
			log.With("endpoint", endpoint).With("error", err).
				Warn("Skipping endpoint, liveness probe failed")
			continue
		}
		live = append(live, o)
	}

	if len(live) == 0 {
		if cfg.FallbackEndpoint == "" {
			return nil, fmt.Errorf("no judge endpoint passed validation and no fallback is configured")
		}
		log.With("endpoint", cfg.FallbackEndpoint).
			Warn("No judge endpoint passed validation, adopting fallback unprobed")
		o, err := settings.build(ctx, cfg, cfg.FallbackEndpoint)
		if err != nil {
			return nil, fmt.Errorf("building fallback endpoint %q: %w", cfg.FallbackEndpoint, err)
		}
		live = append(live, o)
	}

	log.With("n_judges", len(live)).Info("Validated judge pool")
	return &Pool{oracles: live}, nil
}

// NewPool wraps already-constructed oracles without probing them.
func NewPool(oracles ...Oracle) *Pool {
	return &Pool{oracles: oracles}
}

// Oracles returns the validated judges in roster order.
func (p *Pool) Oracles() []Oracle { return p.oracles }

// Size returns the number of validated judges.
func (p *Pool) Size() int { return len(p.oracles) }

// probeMaxTokens bounds the liveness probe; any non-empty answer fits.
const probeMaxTokens = 8

// probe sends a trivial prompt through a minimal-token oracle and requires a
// non-empty answer.
func probe(ctx context.Context, build Builder, cfg Config, endpoint string) error {
	if cfg.ProbeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ProbeTimeout)
		defer cancel()
	}
	cfg.MaxTokens = probeMaxTokens
	o, err := build(ctx, cfg, endpoint)
	if err != nil {
		return err
	}
	out, err := o.Invoke(ctx, "", "ping")
	if err != nil {
		return err
	}
	if strings.TrimSpace(out) == "" {
		return fmt.Errorf("endpoint %q returned an empty probe response", o.Endpoint())
	}
	return nil
}
