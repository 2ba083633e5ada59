/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package structcheck performs fast, deterministic text checks on VPP notes:
// presence and ordering of the required section headings and the MM/DD/YYYY
// date format. No model calls; a pure function over the note text.
package structcheck

import "regexp"

var (
	// Several synonymous headings are accepted for each required section.
	briefPat = regexp.MustCompile(`(?i)\b(Brief\s+One[- ]Liner|One[- ]Liner|Brief\s+Summary|Summary\s*[-—]?\s*One[- ]Liner|Brief\s+Synopsis)\b`)
	histPat  = regexp.MustCompile(`(?i)\b(Oncologic\s+History|Oncology\s+History|Cancer\s+History|Oncologic\s+Timeline|Treatment\s+History)\b`)
	datePat  = regexp.MustCompile(`\b\d{2}/\d{2}/\d{4}\b`)
)

// Checks holds the four structural signals, encoded 0/1 to match the flat
// output schema.
type Checks struct {
	HasBrief     int `json:"has_brief"`
	HasHistory   int `json:"has_history"`
	CorrectOrder int `json:"correct_order"`
	HasMMDDYYYY  int `json:"has_mmddyyyy"`
}

// Check runs the structural checks over a note. Ordering is judged only when
// the brief marker is present: a note with no brief section is not an
// ordering violation, it is a missing-section finding reported separately
// via HasBrief.
func Check(text string) Checks {
	var c Checks
	briefLoc := briefPat.FindStringIndex(text)
	histLoc := histPat.FindStringIndex(text)

	if briefLoc != nil {
		c.HasBrief = 1
	}
	if histLoc != nil {
		c.HasHistory = 1
	}
	if datePat.MatchString(text) {
		c.HasMMDDYYYY = 1
	}

	switch {
	case briefLoc == nil:
		c.CorrectOrder = 1
	case histLoc == nil, briefLoc[0] < histLoc[0]:
		c.CorrectOrder = 1
	}
	return c
}
