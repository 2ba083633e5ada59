/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package rubric

import "strings"

// Likert is the five-point ordinal rating used by the content stages, from
// "Almost not at all" up to "Highly".
type Likert string

const (
	AlmostNotAtAll Likert = "Almost not at all"
	Hardly         Likert = "Hardly"
	Neutral        Likert = "Neutral"
	Very           Likert = "Very"
	Highly         Likert = "Highly"
)

var likertRanks = map[string]int{
	"almost not at all": 0,
	"hardly":            1,
	"neutral":           2,
	"very":              3,
	"highly":            4,
}

// Rank returns the ordinal position of the rating, or -1 for anything off
// the scale. Matching is case-insensitive; judges are inconsistent about
// capitalization.
func (l Likert) Rank() int {
	if r, ok := likertRanks[strings.ToLower(strings.TrimSpace(string(l)))]; ok {
		return r
	}
	return -1
}

// Valid reports whether the rating is on the scale.
func (l Likert) Valid() bool { return l.Rank() >= 0 }

// AtMost lowers the rating to the cap when it exceeds it. Ratings off the
// scale are replaced by the cap outright.
func (l Likert) AtMost(cap Likert) Likert {
	if !l.Valid() || l.Rank() > cap.Rank() {
		return cap
	}
	return l
}

// Below reports whether the rating ranks under the threshold. An off-scale
// rating counts as below everything.
func (l Likert) Below(threshold Likert) bool {
	return l.Rank() < threshold.Rank()
}

// ComplianceLevel is the five-point ordinal used by the compliance stage.
type ComplianceLevel string

const (
	NotCompliant        ComplianceLevel = "Not Compliant"
	HardlyCompliant     ComplianceLevel = "Hardly Compliant"
	ModeratelyCompliant ComplianceLevel = "Moderately Compliant"
	VeryCompliant       ComplianceLevel = "Very Compliant"
	HighlyCompliant     ComplianceLevel = "Highly Compliant"
)

var complianceRanks = map[string]int{
	"not compliant":        0,
	"hardly compliant":     1,
	"moderately compliant": 2,
	"very compliant":       3,
	"highly compliant":     4,
}

// Rank returns the ordinal position of the level, or -1 when off the scale.
func (c ComplianceLevel) Rank() int {
	if r, ok := complianceRanks[strings.ToLower(strings.TrimSpace(string(c)))]; ok {
		return r
	}
	return -1
}

// AtMost lowers the level to the cap when it exceeds it, replacing
// off-scale levels with the cap.
func (c ComplianceLevel) AtMost(cap ComplianceLevel) ComplianceLevel {
	if c.Rank() < 0 || c.Rank() > cap.Rank() {
		return cap
	}
	return c
}

// precisionIsHigh reports whether a precision/recall Likert ("Very High",
// "High", "Medium", "Slightly low", "Very low") sits in its top two levels.
func precisionIsHigh(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "very high", "high":
		return true
	}
	return false
}
