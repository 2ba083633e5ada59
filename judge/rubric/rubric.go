/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package rubric runs the staged single-note evaluation: precision/recall,
// four content-quality ratings, rule-catalog compliance, criticality-
// adjusted final scores, and an integrating pass/fail verdict.
package rubric

import (
	"context"
	"fmt"
	"strings"

	"chainguard.dev/vppjudge/judge/metrics"
	"chainguard.dev/vppjudge/judge/oracle"
	"chainguard.dev/vppjudge/judge/prompt"
	"chainguard.dev/vppjudge/judge/result"
	"chainguard.dev/vppjudge/judge/rules"
	"github.com/chainguard-dev/clog"
)

// Evaluator runs the staged rubric against a single judge endpoint.
type Evaluator struct {
	oracle  oracle.Oracle
	catalog *rules.Catalog
	metrics *metrics.Judge
}

// Option customizes an Evaluator.
type Option func(*Evaluator)

// WithCatalog overrides the embedded rule catalog.
func WithCatalog(c *rules.Catalog) Option {
	return func(e *Evaluator) {
		e.catalog = c
	}
}

// New creates an evaluator over the given judge endpoint.
func New(o oracle.Oracle, opts ...Option) *Evaluator {
	e := &Evaluator{
		oracle:  o,
		catalog: rules.Default(),
		metrics: metrics.NewJudge("chainguard.ai.vppjudge"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs all stages against the candidate note, with the original
// physician note as reference. Stage failures are recorded in the bundle and
// never abort the pipeline; downstream stages see zero values for failed
// inputs.
func (e *Evaluator) Evaluate(ctx context.Context, mdNote, candidate string) *Bundle {
	b := &Bundle{}

	b.PrecisionRecall = runStage[PrecisionRecall](ctx, e, b, "PrecisionRecall",
		withSchema[PrecisionRecall](precisionRecallPrompt.Bind("md", mdNote).Bind("cand", candidate)))

	b.Relevance = runStage[Relevance](ctx, e, b, "Relevance",
		withSchema[Relevance](relevancePrompt.Bind("md", mdNote).Bind("cand", candidate)))

	b.Coherence = runStage[Coherence](ctx, e, b, "Coherence",
		withSchema[Coherence](coherencePrompt.Bind("md", mdNote).Bind("cand", candidate)))

	b.Completeness = runStage[Completeness](ctx, e, b, "Completeness",
		withSchema[Completeness](completenessPrompt.Bind("md", mdNote).Bind("cand", candidate)))
	if c := b.Completeness; c != nil {
		c.Completeness = clampCompleteness(c.Completeness, c.MissingAnalysis.Counts)
	}

	b.Correctness = runStage[Correctness](ctx, e, b, "Correctness",
		withSchema[Correctness](correctnessPrompt.Bind("md", mdNote).Bind("cand", candidate)))
	if c := b.Correctness; c != nil {
		c.Correctness = clampCorrectness(c.Correctness, c.InaccurateFieldsDetailed)
	}

	b.VPPCompliance = runStage[VPPCompliance](ctx, e, b, "VPPCompliance",
		withSchema[VPPCompliance](compliancePrompt.Bind("cand", candidate).
			Bind("critical_rules", e.catalog.FormatBucket(rules.Critical)).
			Bind("important_rules", e.catalog.FormatBucket(rules.Important)).
			Bind("moderate_rules", e.catalog.FormatBucket(rules.Moderate)).
			Bind("minor_rules", e.catalog.FormatBucket(rules.Minor))))
	clampCompliance(b.VPPCompliance, e.catalog)

	pr := b.PrecisionRecall
	if pr == nil {
		pr = &PrecisionRecall{}
	}

	b.FinalRelevance = runStage[FinalRelevance](ctx, e, b, "FinalRelevance",
		withSchema[FinalRelevance](bindJSON(bindJSON(finalRelevancePrompt, "relevance", orZero(b.Relevance)), "spurious", pr.SpuriousFields)))
	if f := b.FinalRelevance; f != nil {
		f.FinalRelevance = clampFinalRelevance(f.FinalRelevance, f.SpuriousCriticality.Counts)
	}

	b.FinalCompleteness = runStage[FinalCompleteness](ctx, e, b, "FinalCompleteness",
		withSchema[FinalCompleteness](bindJSON(bindJSON(finalCompletenessPrompt, "completeness", orZero(b.Completeness)), "missing", pr.MissingFields)))
	if f := b.FinalCompleteness; f != nil {
		f.FinalCompleteness = clampFinalCompleteness(f.FinalCompleteness, f.MissingCriticality.Counts)
	}

	b.FinalCorrectness = runStage[FinalCorrectness](ctx, e, b, "FinalCorrectness",
		withSchema[FinalCorrectness](bindJSON(bindJSON(finalCorrectnessPrompt.Bind("precision", pr.Precision), "correctness", orZero(b.Correctness)), "spurious", pr.SpuriousFields)))
	if f := b.FinalCorrectness; f != nil {
		f.FinalCorrectness = clampFinalCorrectness(f.FinalCorrectness, f.ErrorCriticality.Counts, pr.Precision)
	}

	b.UnifiedPassFail = e.unified(ctx, b, pr)
	b.Summary = summarize(b)
	return b
}

func (e *Evaluator) unified(ctx context.Context, b *Bundle, pr *PrecisionRecall) *UnifiedPassFail {
	content := map[string]any{
		"Relevance":    orZero(b.Relevance),
		"Coherence":    orZero(b.Coherence),
		"Completeness": orZero(b.Completeness),
		"Correctness":  orZero(b.Correctness),
	}

	p := bindJSON(unifiedPrompt, "content_metrics", content)
	p = bindJSON(p, "vpp", orZero(b.VPPCompliance))
	p = bindJSON(p, "precision_recall", pr)
	p = p.Bind("final_relevance", likertOrNA(b.FinalRelevance != nil, func() Likert { return b.FinalRelevance.FinalRelevance })).
		Bind("final_completeness", likertOrNA(b.FinalCompleteness != nil, func() Likert { return b.FinalCompleteness.FinalCompleteness })).
		Bind("final_correctness", likertOrNA(b.FinalCorrectness != nil, func() Likert { return b.FinalCorrectness.FinalCorrectness }))

	verdict := runStage[UnifiedPassFail](ctx, e, b, "UnifiedPassFail", withSchema[UnifiedPassFail](p))
	if verdict == nil {
		return nil
	}

	// The pass criteria are mechanical; enforce them regardless of what the
	// judge concluded.
	if failed, reason := hardFail(b); failed && !strings.EqualFold(verdict.PassFail, "Fail") {
		verdict.PassFail = "Fail"
		verdict.CriticalIssues = append(verdict.CriticalIssues, reason)
	}
	return verdict
}

// runStage executes one prompt against the evaluator's endpoint and decodes
// the response. Failures are recorded on the bundle and yield nil.
func runStage[T any](ctx context.Context, e *Evaluator, b *Bundle, stage string, p *prompt.Prompt) *T {
	log := clog.FromContext(ctx).With("stage", stage)

	user, err := p.Build()
	if err != nil {
		b.recordStageError(stage, err)
		log.With("error", err).Error("Building stage prompt failed")
		return nil
	}

	raw, err := e.oracle.Invoke(ctx, "", user)
	if err != nil {
		b.recordStageError(stage, err)
		log.With("error", err).Warn("Stage judge call failed")
		return nil
	}

	v, err := result.Decode[T](raw)
	if err != nil {
		b.recordStageError(stage, err)
		e.metrics.RecordParseFailure(ctx, e.oracle.Endpoint(), stage)
		log.With("error", err).Warn("Stage response could not be decoded")
		return nil
	}
	return &v
}

func (b *Bundle) recordStageError(stage string, err error) {
	if b.StageErrors == nil {
		b.StageErrors = make(map[string]string)
	}
	b.StageErrors[stage] = err.Error()
}

// bindJSON binds a value as indented JSON, falling back to %v rendering on
// marshal failure so a stage never loses its prompt.
func bindJSON(p *prompt.Prompt, name string, v any) *prompt.Prompt {
	bound, err := p.BindJSON(name, v)
	if err != nil {
		return p.Bind(name, fmt.Sprintf("%v", v))
	}
	return bound
}

// orZero dereferences a stage result, substituting the zero value when the
// stage failed.
func orZero[T any](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}

func likertOrNA(ok bool, get func() Likert) string {
	if !ok {
		return "N/A"
	}
	return string(get())
}

func summarize(b *Bundle) *Summary {
	s := &Summary{PassFail: "N/A", WeightedScore: "N/A%", VPPCompliance: "N/A"}
	if u := b.UnifiedPassFail; u != nil {
		s.OverallRating = u.OverallRating
		s.PassFail = u.PassFail
	} else {
		s.OverallRating = "N/A"
	}
	if v := b.VPPCompliance; v != nil {
		s.WeightedScore = fmt.Sprintf("%g%%", v.WeightedScore)
		s.VPPCompliance = v.VPPCompliance
	}
	if r := b.Relevance; r != nil {
		s.ContentQuality.Relevance = r.Relevance
	}
	if c := b.Coherence; c != nil {
		s.ContentQuality.Coherence = c.Coherence
	}
	if c := b.Completeness; c != nil {
		s.ContentQuality.Completeness = c.Completeness
	}
	if c := b.Correctness; c != nil {
		s.ContentQuality.Correctness = c.Correctness
	}
	if f := b.FinalRelevance; f != nil {
		s.FinalScores.FinalRelevance = f.FinalRelevance
	}
	if f := b.FinalCompleteness; f != nil {
		s.FinalScores.FinalCompleteness = f.FinalCompleteness
	}
	if f := b.FinalCorrectness; f != nil {
		s.FinalScores.FinalCorrectness = f.FinalCorrectness
	}
	return s
}
