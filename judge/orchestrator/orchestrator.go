/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package orchestrator turns input rows into flat judged records. It owns
// the row boundary: whatever goes wrong inside a row is folded into that
// row's record, and a batch always yields exactly one record per input.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"chainguard.dev/vppjudge/judge/consensus"
	"chainguard.dev/vppjudge/judge/envelope"
	"chainguard.dev/vppjudge/judge/rubric"
	"chainguard.dev/vppjudge/judge/structcheck"
	"github.com/chainguard-dev/clog"
	"golang.org/x/sync/errgroup"
)

const (
	// RowFailed marks a record whose row could not be judged.
	RowFailed = "ROW_FAILED"

	maxErrorMsgLen = 1000
	maxDetailsLen  = 6000
	maxSummaryLen  = 15000
)

// Orchestrator evaluates rows using a consensus engine for the multi-judge
// modes and a rubric evaluator for single-note judging.
type Orchestrator struct {
	engine      *consensus.Engine
	evaluator   *rubric.Evaluator
	concurrency int
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithConcurrency bounds how many rows are judged at once. The default is
// sequential; endpoints shared across rows rate-limit quickly.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// New creates an orchestrator over the given engines.
func New(engine *consensus.Engine, evaluator *rubric.Evaluator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		engine:      engine,
		evaluator:   evaluator,
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// EvaluateRow judges one row. It never returns an error: any failure is
// captured as a minimal record with ErrorCode set to RowFailed.
func (o *Orchestrator) EvaluateRow(ctx context.Context, row Row) (rec Record) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			clog.FromContext(ctx).With("panic", r).Error("Row evaluation panicked")
			rec = failedRecord(fmt.Sprintf("panic: %v", r))
		}
	}()

	run := func() (Record, error) {
		if strings.TrimSpace(row.InputsJSON) == "" {
			return Record{}, fmt.Errorf("inputs_json must be a non-empty JSON string")
		}
		env, err := envelope.Parse(row.InputsJSON)
		if err != nil {
			return Record{}, err
		}
		modes, err := envelope.DecideModes(row.RouteHint, env)
		if err != nil {
			return Record{}, err
		}

		route := joinModes(modes)
		rec := Record{Route: &route}
		for _, mode := range modes {
			switch mode {
			case envelope.ModeObjective:
				fields, err := o.runObjective(ctx, env)
				if err != nil {
					return Record{}, err
				}
				rec.ObjectiveFields = fields
			case envelope.ModeSubjective:
				// A hinted subjective run picks the richer comparison when a
				// pair is present, else falls back to single-note judging.
				if env.PairwiseEligible() {
					fields, err := o.runPairwise(ctx, env)
					if err != nil {
						return Record{}, err
					}
					rec.PairwiseFields = fields
				} else {
					fields, err := o.runSingle(ctx, env)
					if err != nil {
						return Record{}, err
					}
					rec.SingleFields = fields
				}
			case envelope.ModeSubjectiveSingle:
				fields, err := o.runSingle(ctx, env)
				if err != nil {
					return Record{}, err
				}
				rec.SingleFields = fields
			}
		}
		return rec, nil
	}

	out, err := run()
	if err != nil {
		return failedRecord(err.Error())
	}
	out.ElapsedTotalSec = time.Since(start).Seconds()
	return out
}

// EvaluateBatch judges every row, preserving input order. Row failures are
// recorded in their own records and never abort the batch.
func (o *Orchestrator) EvaluateBatch(ctx context.Context, rows []Row) []Record {
	records := make([]Record, len(rows))

	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for i, row := range rows {
		g.Go(func() error {
			records[i] = o.EvaluateRow(ctx, row)
			return nil
		})
	}
	// Workers never return errors; failures live inside the records.
	_ = g.Wait()
	return records
}

func (o *Orchestrator) runObjective(ctx context.Context, env *envelope.Envelope) (*ObjectiveFields, error) {
	cand := env.Generated.Text
	agg := o.engine.JudgeCloseness(ctx, cand, env.GroundTruth.Text)
	checks := structcheck.Check(cand)

	return &ObjectiveFields{
		ObjCloseness:    agg.Closeness,
		ObjRationale:    agg.Rationale,
		ObjNJudges:      agg.NJudges,
		ObjDetailsJSON:  marshalDetails(agg.Details),
		ObjHasBrief:     checks.HasBrief,
		ObjHasHistory:   checks.HasHistory,
		ObjCorrectOrder: checks.CorrectOrder,
		ObjHasMMDDYYYY:  checks.HasMMDDYYYY,
	}, nil
}

func (o *Orchestrator) runPairwise(ctx context.Context, env *envelope.Envelope) (*PairwiseFields, error) {
	pref := o.engine.JudgePairwise(ctx,
		env.Compare.A.Text, env.Compare.B.Text, env.GroundTruth.Text, "A", "B")

	return &PairwiseFields{
		SubjPreferred:   pref.Preferred,
		SubjScoreA:      pref.ScoreA,
		SubjScoreB:      pref.ScoreB,
		SubjVPPCompA:    pref.ComplianceA,
		SubjVPPCompB:    pref.ComplianceB,
		SubjNJudges:     pref.NJudges,
		SubjDetailsJSON: marshalDetails(pref.Details),
	}, nil
}

func (o *Orchestrator) runSingle(ctx context.Context, env *envelope.Envelope) (*SingleFields, error) {
	cand := env.Generated.Text
	bundle := o.evaluator.Evaluate(ctx, env.ContextText(), cand)

	fields := &SingleFields{
		SubjPassFail:      "Error",
		SubjOverallRating: "N/A",
	}
	if r := bundle.Relevance; r != nil {
		fields.SubjRelevance = string(r.Relevance)
	}
	if c := bundle.Coherence; c != nil {
		fields.SubjCoherence = string(c.Coherence)
	}
	if c := bundle.Completeness; c != nil {
		fields.SubjCompleteness = string(c.Completeness)
	}
	if c := bundle.Correctness; c != nil {
		fields.SubjCorrectness = string(c.Correctness)
	}
	if f := bundle.FinalRelevance; f != nil {
		fields.SubjFinalRelevance = string(f.FinalRelevance)
	}
	if f := bundle.FinalCompleteness; f != nil {
		fields.SubjFinalCompleteness = string(f.FinalCompleteness)
	}
	if f := bundle.FinalCorrectness; f != nil {
		fields.SubjFinalCorrectness = string(f.FinalCorrectness)
	}
	if v := bundle.VPPCompliance; v != nil {
		fields.SubjVPPLevel = string(v.VPPCompliance)
		score := v.WeightedScore
		fields.SubjVPPWeighted = &score
	}
	if u := bundle.UnifiedPassFail; u != nil {
		fields.SubjPassFail = u.PassFail
		fields.SubjOverallRating = u.OverallRating
	}

	if summary, err := json.Marshal(bundle); err == nil {
		fields.SubjSummaryJSON = truncate(string(summary), maxSummaryLen)
	}
	return fields, nil
}

func failedRecord(msg string) Record {
	code := RowFailed
	msg = truncate(msg, maxErrorMsgLen)
	return Record{
		ErrorCode: &code,
		ErrorMsg:  &msg,
	}
}

func joinModes(modes []envelope.Mode) string {
	parts := make([]string, len(modes))
	for i, m := range modes {
		parts[i] = string(m)
	}
	return strings.Join(parts, ",")
}

func marshalDetails(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return truncate(string(b), maxDetailsLen)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
