/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package orchestrator_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"chainguard.dev/vppjudge/judge/consensus"
	"chainguard.dev/vppjudge/judge/oracle"
	"chainguard.dev/vppjudge/judge/orchestrator"
	"chainguard.dev/vppjudge/judge/rubric"
)

// modalJudge answers closeness and pairwise prompts with canned JSON, keyed
// off the system prompt each mode uses.
func modalJudge(name, closeness, pairwise string) oracle.Oracle {
	return oracle.Func{
		Name: name,
		Fn: func(_ context.Context, system, _ string) (string, error) {
			if strings.Contains(system, "Score closeness") {
				return closeness, nil
			}
			if strings.Contains(system, "strict clinical documentation judge") {
				return pairwise, nil
			}
			return "", errors.New("unexpected prompt")
		},
	}
}

func deadOracle(name string) oracle.Oracle {
	return oracle.Func{
		Name: name,
		Fn: func(context.Context, string, string) (string, error) {
			return "", errors.New("endpoint gone")
		},
	}
}

func newTestOrchestrator(judges ...oracle.Oracle) *orchestrator.Orchestrator {
	pool := oracle.NewPool(judges...)
	return orchestrator.New(consensus.New(pool), rubric.New(judges[0]))
}

func TestEvaluateRowObjective(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(modalJudge("judge-1",
		`{"closeness": 0.95, "rationale": "verbatim match"}`, ""))

	row := orchestrator.Row{InputsJSON: `{
		"generated": {"text": "Brief One-Liner: 62yo with NSCLC.\nOncologic History: diagnosed 03/15/2021."},
		"ground_truth": {"text": "Brief One-Liner: 62yo with NSCLC.\nOncologic History: diagnosed 03/15/2021."}
	}`}
	rec := o.EvaluateRow(context.Background(), row)

	if rec.ErrorCode != nil {
		t.Fatalf("ErrorCode = %q, want nil (msg %v)", *rec.ErrorCode, rec.ErrorMsg)
	}
	if rec.Route == nil || *rec.Route != "objective" {
		t.Fatalf("Route = %v, want objective", rec.Route)
	}
	obj := rec.ObjectiveFields
	if obj == nil {
		t.Fatal("ObjectiveFields is nil")
	}
	if obj.ObjCloseness == nil || *obj.ObjCloseness < 0.9 {
		t.Errorf("ObjCloseness = %v, want >= 0.9 for a verbatim match", obj.ObjCloseness)
	}
	if obj.ObjHasBrief != 1 || obj.ObjHasHistory != 1 || obj.ObjCorrectOrder != 1 || obj.ObjHasMMDDYYYY != 1 {
		t.Errorf("structural flags = (%d, %d, %d, %d), want all 1",
			obj.ObjHasBrief, obj.ObjHasHistory, obj.ObjCorrectOrder, obj.ObjHasMMDDYYYY)
	}
	if obj.ObjNJudges != 1 {
		t.Errorf("ObjNJudges = %d, want 1", obj.ObjNJudges)
	}
	if obj.ObjDetailsJSON == "" || len(obj.ObjDetailsJSON) > 6000 {
		t.Errorf("ObjDetailsJSON length = %d, want non-empty and bounded", len(obj.ObjDetailsJSON))
	}
}

func TestEvaluateRowBothModes(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(modalJudge("judge-1",
		`{"closeness": 0.7, "rationale": "solid"}`,
		`{"preferred": "A", "scores": {"A": 80, "B": 60}, "vpp_compliance_estimate": {"A": 0.9, "B": 0.7}, "explanation": "A keeps the timeline"}`))

	rec := o.EvaluateRow(context.Background(), orchestrator.Row{
		InputsJSON: `{
			"generated": {"text": "candidate a"},
			"ground_truth": {"text": "reference note"},
			"compare": {"a": {"text": "candidate a"}, "b": {"text": "candidate b"}}
		}`,
	})

	if rec.ErrorCode != nil {
		t.Fatalf("ErrorCode = %q, want nil", *rec.ErrorCode)
	}
	if rec.Route == nil || *rec.Route != "objective,subjective" {
		t.Fatalf("Route = %v, want objective,subjective", rec.Route)
	}
	if rec.ObjectiveFields == nil || rec.PairwiseFields == nil {
		t.Fatalf("field groups = (%v, %v), want both present",
			rec.ObjectiveFields != nil, rec.PairwiseFields != nil)
	}
	if rec.ObjectiveFields.ObjCloseness == nil || *rec.ObjectiveFields.ObjCloseness != 0.7 {
		t.Errorf("ObjCloseness = %v, want 0.7", rec.ObjectiveFields.ObjCloseness)
	}
	if rec.PairwiseFields.SubjPreferred != "A" {
		t.Errorf("SubjPreferred = %q, want A", rec.PairwiseFields.SubjPreferred)
	}
	if rec.ElapsedTotalSec < 0 {
		t.Errorf("ElapsedTotalSec = %v, want non-negative", rec.ElapsedTotalSec)
	}
}

func TestEvaluateRowPairwise(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(modalJudge("judge-1", "",
		`{"preferred": "B", "scores": {"A": 40, "B": 85}, "vpp_compliance_estimate": {"A": 0.4, "B": 0.9}, "explanation": "B follows the format"}`))

	rec := o.EvaluateRow(context.Background(), orchestrator.Row{
		RouteHint: "subjective",
		InputsJSON: `{
			"compare": {"a": {"text": "candidate a"}, "b": {"text": "candidate b"}}
		}`,
	})

	if rec.ErrorCode != nil {
		t.Fatalf("ErrorCode = %q, want nil", *rec.ErrorCode)
	}
	if rec.Route == nil || *rec.Route != "subjective" {
		t.Fatalf("Route = %v, want subjective", rec.Route)
	}
	p := rec.PairwiseFields
	if p == nil {
		t.Fatal("PairwiseFields is nil")
	}
	if p.SubjPreferred != "B" {
		t.Errorf("SubjPreferred = %q, want B", p.SubjPreferred)
	}
	if p.SubjScoreB == nil || *p.SubjScoreB != 85 {
		t.Errorf("SubjScoreB = %v, want 85", p.SubjScoreB)
	}
	if rec.SingleFields != nil {
		t.Error("SingleFields set on a pairwise row")
	}
}

func TestEvaluateRowSingleDegrades(t *testing.T) {
	t.Parallel()

	// Every rubric stage fails; the row still succeeds, with degraded
	// fields rather than an error.
	o := newTestOrchestrator(deadOracle("judge-1"))

	rec := o.EvaluateRow(context.Background(), orchestrator.Row{
		InputsJSON: `{
			"context": {"textract_text": "original md note"},
			"generated": {"text": "candidate note"}
		}`,
	})

	if rec.ErrorCode != nil {
		t.Fatalf("ErrorCode = %q, want nil for degraded row", *rec.ErrorCode)
	}
	if rec.Route == nil || *rec.Route != "subjective_single" {
		t.Fatalf("Route = %v, want subjective_single", rec.Route)
	}
	s := rec.SingleFields
	if s == nil {
		t.Fatal("SingleFields is nil")
	}
	if s.SubjPassFail != "Error" {
		t.Errorf("SubjPassFail = %q, want Error", s.SubjPassFail)
	}
	if s.SubjOverallRating != "N/A" {
		t.Errorf("SubjOverallRating = %v, want N/A", s.SubjOverallRating)
	}
	if s.SubjSummaryJSON == "" {
		t.Error("SubjSummaryJSON is empty, want the bundle with stage errors")
	}
}

func TestEvaluateRowValidationFailure(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(modalJudge("judge-1", "", ""))

	rec := o.EvaluateRow(context.Background(), orchestrator.Row{
		RouteHint:  "objective",
		InputsJSON: `{"generated": {"text": "candidate"}}`,
	})

	if rec.ErrorCode == nil || *rec.ErrorCode != orchestrator.RowFailed {
		t.Fatalf("ErrorCode = %v, want ROW_FAILED", rec.ErrorCode)
	}
	if rec.ErrorMsg == nil || !strings.Contains(*rec.ErrorMsg, "ground_truth.text") {
		t.Errorf("ErrorMsg = %v, want mention of the missing field", rec.ErrorMsg)
	}
	if rec.Route != nil {
		t.Errorf("Route = %q, want nil on a failed row", *rec.Route)
	}
}

// Sentinel filtering belongs to the batch assembly upstream; a note that
// merely opens with a parenthesis is still judged.
func TestEvaluateRowParentheticalNote(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(modalJudge("judge-1", `{"closeness": 0.95, "rationale": "close match"}`, ""))

	rec := o.EvaluateRow(context.Background(), orchestrator.Row{
		InputsJSON: `{
			"generated": {"text": "(Follow-up) Brief One-Liner: stable disease."},
			"ground_truth": {"text": "reference note"}
		}`,
	})

	if rec.ErrorCode != nil {
		t.Fatalf("ErrorCode = %q, want nil for a note opening with a parenthesis", *rec.ErrorCode)
	}
	if rec.ObjectiveFields == nil || rec.ObjCloseness == nil || *rec.ObjCloseness < 0.9 {
		t.Errorf("ObjectiveFields = %+v, want the note scored", rec.ObjectiveFields)
	}
}

func TestEvaluateBatchRowIsolation(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(modalJudge("judge-1",
		`{"closeness": 0.8, "rationale": "fine"}`, ""))

	good := `{"generated": {"text": "candidate"}, "ground_truth": {"text": "reference"}}`
	rows := []orchestrator.Row{
		{InputsJSON: good},
		{InputsJSON: good},
		{InputsJSON: `{not json at all`},
		{InputsJSON: good},
		{InputsJSON: good},
	}

	records := o.EvaluateBatch(context.Background(), rows)

	if len(records) != 5 {
		t.Fatalf("len(records) = %d, want 5", len(records))
	}
	for i, rec := range records {
		if i == 2 {
			if rec.ErrorCode == nil || *rec.ErrorCode != orchestrator.RowFailed {
				t.Errorf("records[2].ErrorCode = %v, want ROW_FAILED", rec.ErrorCode)
			}
			continue
		}
		if rec.ErrorCode != nil {
			t.Errorf("records[%d].ErrorCode = %q, want nil", i, *rec.ErrorCode)
		}
	}
}

func TestEvaluateBatchConcurrentOrderStable(t *testing.T) {
	t.Parallel()

	o := orchestrator.New(
		consensus.New(oracle.NewPool(modalJudge("judge-1", `{"closeness": 0.5, "rationale": "r"}`, ""))),
		rubric.New(deadOracle("judge-1")),
		orchestrator.WithConcurrency(4),
	)

	rows := make([]orchestrator.Row, 8)
	for i := range rows {
		rows[i] = orchestrator.Row{InputsJSON: `{"generated": {"text": "candidate"}, "ground_truth": {"text": "reference"}}`}
	}
	records := o.EvaluateBatch(context.Background(), rows)

	if len(records) != len(rows) {
		t.Fatalf("len(records) = %d, want %d", len(records), len(rows))
	}
	for i, rec := range records {
		if rec.Route == nil || *rec.Route != "objective" {
			t.Errorf("records[%d].Route = %v, want objective", i, rec.Route)
		}
	}
}

func TestEvaluateRowEmptyInput(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(modalJudge("judge-1", "", ""))
	rec := o.EvaluateRow(context.Background(), orchestrator.Row{InputsJSON: "   "})

	if rec.ErrorCode == nil || *rec.ErrorCode != orchestrator.RowFailed {
		t.Fatalf("ErrorCode = %v, want ROW_FAILED", rec.ErrorCode)
	}
}
