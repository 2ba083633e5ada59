/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package orchestrator

// Row is one unit of batch input: a JSON-encoded envelope plus an optional
// routing override.
type Row struct {
	InputsJSON string `json:"inputs_json"`
	RouteHint  string `json:"route_hint,omitempty"`
}

// Record is the flat per-row output. Mode-specific field groups are present
// only when the corresponding mode ran; error_code and error_msg are null on
// success.
type Record struct {
	Route           *string `json:"route"`
	ElapsedTotalSec float64 `json:"elapsed_total_sec"`
	ErrorCode       *string `json:"error_code"`
	ErrorMsg        *string `json:"error_msg"`

	*ObjectiveFields
	*PairwiseFields
	*SingleFields
}

// ObjectiveFields carries the candidate-versus-ground-truth results.
type ObjectiveFields struct {
	ObjCloseness    *float64 `json:"obj_closeness"`
	ObjRationale    string   `json:"obj_rationale"`
	ObjNJudges      int      `json:"obj_n_judges"`
	ObjDetailsJSON  string   `json:"obj_details_json"`
	ObjHasBrief     int      `json:"obj_has_brief"`
	ObjHasHistory   int      `json:"obj_has_history"`
	ObjCorrectOrder int      `json:"obj_correct_order"`
	ObjHasMMDDYYYY  int      `json:"obj_has_mmddyyyy"`
}

// PairwiseFields carries the A-versus-B comparison results.
type PairwiseFields struct {
	SubjPreferred   string   `json:"subj_preferred"`
	SubjScoreA      *float64 `json:"subj_score_a"`
	SubjScoreB      *float64 `json:"subj_score_b"`
	SubjVPPCompA    *float64 `json:"subj_vppcomp_a"`
	SubjVPPCompB    *float64 `json:"subj_vppcomp_b"`
	SubjNJudges     int      `json:"subj_n_judges"`
	SubjDetailsJSON string   `json:"subj_details_json"`
}

// SingleFields carries the single-note rubric results.
type SingleFields struct {
	SubjRelevance         string   `json:"subj_relevance"`
	SubjCoherence         string   `json:"subj_coherence"`
	SubjCompleteness      string   `json:"subj_completeness"`
	SubjCorrectness       string   `json:"subj_correctness"`
	SubjFinalRelevance    string   `json:"subj_final_relevance"`
	SubjFinalCompleteness string   `json:"subj_final_completeness"`
	SubjFinalCorrectness  string   `json:"subj_final_correctness"`
	SubjVPPLevel          string   `json:"subj_vpp_level"`
	SubjVPPWeighted       *float64 `json:"subj_vpp_weighted"`
	SubjPassFail          string   `json:"subj_passfail"`
	SubjOverallRating     any      `json:"subj_overall_rating"`
	SubjSummaryJSON       string   `json:"subj_summary_json"`
}
