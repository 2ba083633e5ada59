/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package consensus

import (
	"context"
	"fmt"
	"time"

	"chainguard.dev/vppjudge/judge/oracle"
	"chainguard.dev/vppjudge/judge/prompt"
	"chainguard.dev/vppjudge/judge/result"
	"github.com/chainguard-dev/clog"
)

// Tie is the pairwise verdict when no candidate wins a strict majority.
const Tie = "tie"

var pairwiseSystem = prompt.MustNew(
	"You are a strict clinical documentation judge. Compare two VPP candidates against the ground-truth VPP text. " +
		"Decide which candidate is closer to ground-truth AND better formatted as a VPP note. " +
		"Return JSON ONLY with keys: preferred (must be '{{labelA}}' or '{{labelB}}' or 'tie'), " +
		"scores (object with '{{labelA}}' and '{{labelB}}' integer 0-100), " +
		"vpp_compliance_estimate (object with '{{labelA}}' and '{{labelB}}' floats 0-1), explanation.")

var pairwiseUser = prompt.MustNew(
	"GROUND TRUTH VPP:\n{{gt}}\n\n{{labelA}}:\n{{candA}}\n\n{{labelB}}:\n{{candB}}\n\nRespond with strict JSON only.")

// PairReply is the JSON shape each judge is asked to return for a pairwise
// comparison. The score maps are loosely typed because judges sometimes
// quote or omit the numbers.
type PairReply struct {
	Preferred             string         `json:"preferred"`
	Scores                map[string]any `json:"scores"`
	VPPComplianceEstimate map[string]any `json:"vpp_compliance_estimate"`
	Explanation           string         `json:"explanation"`
}

// PairVote is one judge's pairwise verdict. A vote whose reply could not be
// obtained or decoded carries an empty Preferred and counts as a tie.
type PairVote struct {
	JudgeEndpoint string    `json:"judge_endpoint"`
	Result        PairReply `json:"result"`
	ElapsedSec    float64   `json:"elapsed_sec"`
}

// Preference is the aggregated multi-judge pairwise verdict. Preferred is
// the strict-majority winner's label, or Tie. Per-candidate means are nil
// when no judge produced a usable number; NJudges counts attempts.
type Preference struct {
	Preferred   string
	ScoreA      *float64
	ScoreB      *float64
	ComplianceA *float64
	ComplianceB *float64
	ElapsedSec  float64
	NJudges     int
	Details     []PairVote
}

// JudgePairwise ranks two candidates against each other, optionally
// conditioned on ground truth, by majority vote across the pool.
func (e *Engine) JudgePairwise(ctx context.Context, candA, candB, groundTruth, labelA, labelB string) Preference {
	system, err := pairwiseSystem.Bind("labelA", labelA).Bind("labelB", labelB).Build()
	if err != nil {
		system = ""
	}
	user, err := pairwiseUser.
		Bind("gt", groundTruth).
		Bind("candA", candA).
		Bind("candB", candB).
		Bind("labelA", labelA).
		Bind("labelB", labelB).
		Build()
	if err != nil {
		user = fmt.Sprintf("GROUND TRUTH VPP:\n%s\n\n%s:\n%s\n\n%s:\n%s\n\nRespond with strict JSON only.",
			groundTruth, labelA, candA, labelB, candB)
	}

	agg := Preference{NJudges: e.pool.Size()}
	votes := map[string]int{labelA: 0, labelB: 0, Tie: 0}
	var scoresA, scoresB, compA, compB []float64

	for _, o := range e.pool.Oracles() {
		vote := e.pairwiseOne(ctx, o, system, user)
		agg.ElapsedSec += vote.ElapsedSec
		agg.Details = append(agg.Details, vote)

		switch vote.Result.Preferred {
		case labelA:
			votes[labelA]++
		case labelB:
			votes[labelB]++
		default:
			// Unparseable or off-menu answers count as ties.
			votes[Tie]++
		}

		if v := safeFloat(vote.Result.Scores[labelA]); v != nil {
			scoresA = append(scoresA, *v)
		}
		if v := safeFloat(vote.Result.Scores[labelB]); v != nil {
			scoresB = append(scoresB, *v)
		}
		if v := safeFloat(vote.Result.VPPComplianceEstimate[labelA]); v != nil {
			compA = append(compA, *v)
		}
		if v := safeFloat(vote.Result.VPPComplianceEstimate[labelB]); v != nil {
			compB = append(compB, *v)
		}
	}

	switch {
	case votes[labelA] > votes[labelB]:
		agg.Preferred = labelA
	case votes[labelB] > votes[labelA]:
		agg.Preferred = labelB
	default:
		agg.Preferred = Tie
	}

	agg.ScoreA = mean(scoresA)
	agg.ScoreB = mean(scoresB)
	agg.ComplianceA = mean(compA)
	agg.ComplianceB = mean(compB)
	return agg
}

func (e *Engine) pairwiseOne(ctx context.Context, o oracle.Oracle, system, user string) PairVote {
	start := time.Now()
	vote := PairVote{JudgeEndpoint: o.Endpoint()}

	raw, err := o.Invoke(ctx, system, user)
	if err != nil {
		vote.ElapsedSec = time.Since(start).Seconds()
		vote.Result.Explanation = clampLen("judge error: "+err.Error(), maxErrorLen)
		clog.FromContext(ctx).With("endpoint", o.Endpoint()).With("error", err).
			Warn("Pairwise judge call failed")
		return vote
	}

	reply, err := result.Decode[PairReply](raw)
	if err != nil {
		vote.ElapsedSec = time.Since(start).Seconds()
		vote.Result.Explanation = clampLen("judge error: "+err.Error(), maxErrorLen)
		e.metrics.RecordParseFailure(ctx, o.Endpoint(), "pairwise")
		return vote
	}

	vote.ElapsedSec = time.Since(start).Seconds()
	vote.Result = reply
	return vote
}
