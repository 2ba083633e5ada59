/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package consensus_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"chainguard.dev/vppjudge/judge/consensus"
	"chainguard.dev/vppjudge/judge/oracle"
)

// canned returns an oracle that always answers with the given text.
func canned(name, response string) oracle.Oracle {
	return oracle.Func{
		Name: name,
		Fn: func(context.Context, string, string) (string, error) {
			return response, nil
		},
	}
}

func failing(name string) oracle.Oracle {
	return oracle.Func{
		Name: name,
		Fn: func(context.Context, string, string) (string, error) {
			return "", errors.New("endpoint unavailable")
		},
	}
}

func TestJudgeCloseness(t *testing.T) {
	t.Parallel()

	engine := consensus.New(oracle.NewPool(
		canned("judge-1", `{"closeness": 0.2, "rationale": "misses the timeline"}`),
		canned("judge-2", `{"closeness": 0.6, "rationale": "dates mostly align"}`),
		canned("judge-3", `no json here at all`),
	))

	got := engine.JudgeCloseness(context.Background(), "candidate", "ground truth")

	if got.Closeness == nil {
		t.Fatal("Closeness is nil, want mean of usable scores")
	}
	if math.Abs(*got.Closeness-0.4) > 1e-9 {
		t.Errorf("Closeness = %v, want 0.4", *got.Closeness)
	}
	if got.NJudges != 3 {
		t.Errorf("NJudges = %d, want 3 (attempts, not successes)", got.NJudges)
	}
	if len(got.Details) != 3 {
		t.Fatalf("len(Details) = %d, want 3", len(got.Details))
	}
	if got.Details[2].Closeness != nil {
		t.Errorf("malformed judge vote Closeness = %v, want nil", *got.Details[2].Closeness)
	}
	if want := "misses the timeline | dates mostly align"; !strings.HasPrefix(got.Rationale, want) {
		t.Errorf("Rationale = %q, want prefix %q", got.Rationale, want)
	}
}

func TestJudgeClosenessAllFail(t *testing.T) {
	t.Parallel()

	engine := consensus.New(oracle.NewPool(
		failing("judge-1"),
		canned("judge-2", `still not json`),
	))

	got := engine.JudgeCloseness(context.Background(), "candidate", "ground truth")

	if got.Closeness != nil {
		t.Errorf("Closeness = %v, want nil when no judge produced a score", *got.Closeness)
	}
	if got.NJudges != 2 {
		t.Errorf("NJudges = %d, want 2", got.NJudges)
	}
	for i, vote := range got.Details {
		if vote.Closeness != nil {
			t.Errorf("Details[%d].Closeness = %v, want nil", i, *vote.Closeness)
		}
	}
	if !strings.Contains(got.Details[0].Rationale, "judge error") {
		t.Errorf("Details[0].Rationale = %q, want a judge error marker", got.Details[0].Rationale)
	}
}

func TestJudgeClosenessQuotedNumber(t *testing.T) {
	t.Parallel()

	engine := consensus.New(oracle.NewPool(
		canned("judge-1", `{"closeness": "0.75", "rationale": "close match"}`),
	))

	got := engine.JudgeCloseness(context.Background(), "candidate", "ground truth")
	if got.Closeness == nil || math.Abs(*got.Closeness-0.75) > 1e-9 {
		t.Errorf("Closeness = %v, want 0.75 from quoted number", got.Closeness)
	}
}

func TestJudgePairwiseMajority(t *testing.T) {
	t.Parallel()

	preferA := `{"preferred": "A", "scores": {"A": 80, "B": 60}, "vpp_compliance_estimate": {"A": 0.9, "B": 0.7}, "explanation": "A keeps the timeline"}`
	preferB := `{"preferred": "B", "scores": {"A": 50, "B": 70}, "vpp_compliance_estimate": {"A": 0.6, "B": 0.8}, "explanation": "B is better formatted"}`

	engine := consensus.New(oracle.NewPool(
		canned("judge-1", preferA),
		canned("judge-2", preferA),
		canned("judge-3", preferB),
	))

	got := engine.JudgePairwise(context.Background(), "cand a", "cand b", "gt", "A", "B")

	if got.Preferred != "A" {
		t.Errorf("Preferred = %q, want A", got.Preferred)
	}
	if got.NJudges != 3 {
		t.Errorf("NJudges = %d, want 3", got.NJudges)
	}
	if got.ScoreA == nil || math.Abs(*got.ScoreA-70) > 1e-9 {
		t.Errorf("ScoreA = %v, want 70", got.ScoreA)
	}
	if got.ScoreB == nil || math.Abs(*got.ScoreB-190.0/3.0) > 1e-9 {
		t.Errorf("ScoreB = %v, want %v", got.ScoreB, 190.0/3.0)
	}
	if got.ComplianceA == nil || math.Abs(*got.ComplianceA-0.8) > 1e-9 {
		t.Errorf("ComplianceA = %v, want 0.8", got.ComplianceA)
	}
}

func TestJudgePairwiseParseFailureIsTie(t *testing.T) {
	t.Parallel()

	preferA := `{"preferred": "A", "scores": {"A": 80, "B": 60}, "vpp_compliance_estimate": {"A": 0.9, "B": 0.7}, "explanation": "ok"}`

	// One vote for A, one garbage, one endpoint failure. No strict majority
	// of A over B is still a win for A (1 > 0); make it symmetric instead.
	engine := consensus.New(oracle.NewPool(
		canned("judge-1", preferA),
		canned("judge-2", `{"preferred": "B", "scores": {}, "vpp_compliance_estimate": {}, "explanation": "b"}`),
		canned("judge-3", `total garbage`),
		failing("judge-4"),
	))

	got := engine.JudgePairwise(context.Background(), "cand a", "cand b", "gt", "A", "B")

	if got.Preferred != consensus.Tie {
		t.Errorf("Preferred = %q, want tie when votes split 1-1 with 2 abstentions", got.Preferred)
	}
	if got.NJudges != 4 {
		t.Errorf("NJudges = %d, want 4", got.NJudges)
	}
	if len(got.Details) != 4 {
		t.Fatalf("len(Details) = %d, want 4", len(got.Details))
	}
	if !strings.Contains(got.Details[3].Result.Explanation, "judge error") {
		t.Errorf("failed vote explanation = %q, want a judge error marker", got.Details[3].Result.Explanation)
	}
}

func TestJudgePairwiseNoScores(t *testing.T) {
	t.Parallel()

	engine := consensus.New(oracle.NewPool(
		canned("judge-1", `{"preferred": "tie", "scores": {}, "vpp_compliance_estimate": {}, "explanation": "even"}`),
	))

	got := engine.JudgePairwise(context.Background(), "cand a", "cand b", "gt", "A", "B")

	if got.Preferred != consensus.Tie {
		t.Errorf("Preferred = %q, want tie", got.Preferred)
	}
	// Missing numbers are abstentions, never zeros.
	if got.ScoreA != nil || got.ScoreB != nil || got.ComplianceA != nil || got.ComplianceB != nil {
		t.Errorf("means = (%v, %v, %v, %v), want all nil",
			got.ScoreA, got.ScoreB, got.ComplianceA, got.ComplianceB)
	}
}

// The aggregate must not depend on which side a candidate is presented as.
func TestJudgePairwiseNoFavoritism(t *testing.T) {
	t.Parallel()

	// A judge that always prefers the lexically smaller candidate text,
	// regardless of label.
	judge := oracle.Func{
		Name: "judge-1",
		Fn: func(_ context.Context, _, user string) (string, error) {
			aFirst := strings.Index(user, "alpha note") < strings.Index(user, "beta note")
			if aFirst {
				return `{"preferred": "A", "scores": {"A": 90, "B": 40}, "vpp_compliance_estimate": {"A": 0.9, "B": 0.4}, "explanation": "x"}`, nil
			}
			return `{"preferred": "B", "scores": {"A": 40, "B": 90}, "vpp_compliance_estimate": {"A": 0.4, "B": 0.9}, "explanation": "x"}`, nil
		},
	}
	engine := consensus.New(oracle.NewPool(judge))

	forward := engine.JudgePairwise(context.Background(), "alpha note", "beta note", "gt", "A", "B")
	reversed := engine.JudgePairwise(context.Background(), "beta note", "alpha note", "gt", "A", "B")

	if forward.Preferred != "A" || reversed.Preferred != "B" {
		t.Errorf("preferred = (%q, %q), want the same underlying candidate to win both orders",
			forward.Preferred, reversed.Preferred)
	}
	if *forward.ScoreA != *reversed.ScoreB || *forward.ScoreB != *reversed.ScoreA {
		t.Errorf("scores did not mirror under swap: forward (%v, %v), reversed (%v, %v)",
			*forward.ScoreA, *forward.ScoreB, *reversed.ScoreA, *reversed.ScoreB)
	}
}
