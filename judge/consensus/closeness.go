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

const (
	maxRationaleLen     = 2000
	maxVoteRationaleLen = 1000
	maxErrorLen         = 200
)

const closenessSystem = "Score closeness (0.0-1.0) of the candidate VPP note to the ground-truth VPP text. " +
	"Consider structure, key diagnoses, treatments, dates, and timeline accuracy. " +
	"Return JSON ONLY with keys 'closeness' (float) and 'rationale' (string)."

var closenessUser = prompt.MustNew(
	"GROUND TRUTH VPP:\n{{gt}}\n\nCANDIDATE (VPP):\n{{cand}}\n\nRespond with strict JSON only.")

// closenessReply is the JSON shape each judge is asked to return. Closeness
// is loosely typed because judges sometimes quote the number.
type closenessReply struct {
	Closeness any    `json:"closeness"`
	Rationale string `json:"rationale"`
}

// CloseVote is one judge's closeness verdict.
type CloseVote struct {
	JudgeEndpoint string   `json:"judge_endpoint"`
	Closeness     *float64 `json:"closeness"`
	ElapsedSec    float64  `json:"elapsed_sec"`
	Rationale     string   `json:"rationale"`
}

// Closeness is the aggregated multi-judge closeness verdict. The score is
// the mean over judges that produced a usable number, or nil when none did.
// NJudges counts attempts, not successes.
type Closeness struct {
	Closeness  *float64
	Rationale  string
	ElapsedSec float64
	NJudges    int
	Details    []CloseVote
}

// JudgeCloseness scores how close a candidate note is to the ground truth,
// asking every judge in the pool and averaging the usable scores.
func (e *Engine) JudgeCloseness(ctx context.Context, candidate, groundTruth string) Closeness {
	user, err := closenessUser.Bind("gt", groundTruth).Bind("cand", candidate).Build()
	if err != nil {
		// Unreachable unless the template and its bindings drift apart.
		user = fmt.Sprintf("GROUND TRUTH VPP:\n%s\n\nCANDIDATE (VPP):\n%s\n\nRespond with strict JSON only.", groundTruth, candidate)
	}

	agg := Closeness{NJudges: e.pool.Size()}
	var vals []float64
	for _, o := range e.pool.Oracles() {
		vote := e.closenessOne(ctx, o, user)
		agg.ElapsedSec += vote.ElapsedSec
		agg.Details = append(agg.Details, vote)
		if vote.Closeness != nil {
			vals = append(vals, *vote.Closeness)
		}
	}
	agg.Closeness = mean(vals)

	// The headline rationale is the first two per-judge rationales.
	joined := ""
	kept := 0
	for _, vote := range agg.Details {
		if vote.Rationale == "" || kept >= 2 {
			continue
		}
		if joined != "" {
			joined += " | "
		}
		joined += vote.Rationale
		kept++
	}
	agg.Rationale = clampLen(joined, maxRationaleLen)
	return agg
}

func (e *Engine) closenessOne(ctx context.Context, o oracle.Oracle, user string) CloseVote {
	start := time.Now()
	vote := CloseVote{JudgeEndpoint: o.Endpoint()}

	raw, err := o.Invoke(ctx, closenessSystem, user)
	if err != nil {
		vote.ElapsedSec = time.Since(start).Seconds()
		vote.Rationale = clampLen("judge error: "+err.Error(), maxVoteRationaleLen)
		clog.FromContext(ctx).With("endpoint", o.Endpoint()).With("error", err).
			Warn("Closeness judge call failed")
		return vote
	}

	reply, err := result.Decode[closenessReply](raw)
	if err != nil {
		vote.ElapsedSec = time.Since(start).Seconds()
		vote.Rationale = clampLen("judge error: "+err.Error(), maxVoteRationaleLen)
		e.metrics.RecordParseFailure(ctx, o.Endpoint(), "closeness")
		return vote
	}

	vote.ElapsedSec = time.Since(start).Seconds()
	vote.Closeness = safeFloat(reply.Closeness)
	vote.Rationale = clampLen(reply.Rationale, maxVoteRationaleLen)
	return vote
}
