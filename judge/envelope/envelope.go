/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package envelope defines the judge's input contract and the deterministic
// router that decides which judging modes apply to a payload.
//
// An envelope carries up to three evaluable shapes: a candidate with ground
// truth (objective), a pair of candidates to rank (subjective pairwise), and
// a lone candidate with the original source note in context (subjective
// single). Presence is validated here, at the boundary, so downstream code
// never re-checks optional fields.
package envelope

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Note is one identified note text.
type Note struct {
	ID   string `json:"id,omitempty"`
	Text string `json:"text,omitempty"`
}

func (n Note) hasText() bool { return strings.TrimSpace(n.Text) != "" }

// Pair is two candidates to rank against each other.
type Pair struct {
	A Note `json:"a,omitempty"`
	B Note `json:"b,omitempty"`
}

// Envelope is the unit of work consumed by the judge.
type Envelope struct {
	// Context is free-form; the original source note, when available, is
	// carried under the "textract_text" key.
	Context     map[string]any `json:"context,omitempty"`
	Generated   Note           `json:"generated,omitempty"`
	GroundTruth Note           `json:"ground_truth,omitempty"`
	Compare     Pair           `json:"compare,omitempty"`
}

// ContextText returns the original source note text from the context, or ""
// when none is present.
func (e *Envelope) ContextText() string {
	for _, key := range []string{"textract_text", "updates_text"} {
		if v, ok := e.Context[key]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	return ""
}

// HasGroundTruth reports whether an objective comparison is possible.
func (e *Envelope) HasGroundTruth() bool { return e.GroundTruth.hasText() }

// PairwiseEligible reports whether both compare candidates carry text.
func (e *Envelope) PairwiseEligible() bool {
	return e.Compare.A.hasText() && e.Compare.B.hasText()
}

// SingleEligible reports whether a generated candidate plus a non-empty
// context is available for rubric judging.
func (e *Envelope) SingleEligible() bool {
	return e.Generated.hasText() && len(e.Context) > 0
}

// Parse decodes an envelope from its JSON wire form.
func Parse(inputsJSON string) (*Envelope, error) {
	if strings.TrimSpace(inputsJSON) == "" {
		return nil, fmt.Errorf("inputs_json must be a non-empty JSON string")
	}
	var e Envelope
	if err := json.Unmarshal([]byte(inputsJSON), &e); err != nil {
		return nil, fmt.Errorf("parsing envelope: %w", err)
	}
	return &e, nil
}

// String renders the envelope in its JSON wire form.
func (e *Envelope) String() (string, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("encoding envelope: %w", err)
	}
	return string(b), nil
}

// IsFailedGeneration reports whether a candidate text is the output of a
// failed generation step. Upstream generators emit sentinel-prefixed strings
// like "(gen_error) ..." instead of notes; those must not reach a judge.
func IsFailedGeneration(text string) bool {
	return strings.HasPrefix(text, "(") || strings.HasPrefix(text, "Error:")
}
