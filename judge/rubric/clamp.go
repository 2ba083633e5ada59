/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package rubric

import (
	"regexp"
	"strings"

	"chainguard.dev/vppjudge/judge/rules"
)

// The capped stages instruct the judge to apply the cap rules itself, but
// judges drift. The clamps below re-apply the caps deterministically after
// decoding, using the judge's own criticality counts. A clamp only ever
// lowers a rating.

func clampFinalRelevance(r Likert, c CriticalityCounts) Likert {
	switch {
	case c.Critical > 0:
		return r.AtMost(Hardly)
	case c.Important > 2:
		return r.AtMost(Neutral)
	case c.OnlyMinor() && c.Minor >= 4:
		return r.AtMost(Neutral)
	case c.OnlyMinor():
		return r.AtMost(Very)
	}
	return r
}

// clampCompleteness caps a rating by missing-item criticality. The same rule
// governs the subjective Completeness stage and its adjusted final score.
func clampCompleteness(r Likert, c CriticalityCounts) Likert {
	switch {
	case c.Critical > 0:
		return r.AtMost(Hardly)
	case c.Important > 2:
		return r.AtMost(Neutral)
	case c.OnlyMinor() && c.Minor >= 4:
		return r.AtMost(Very)
	}
	return r
}

func clampFinalCompleteness(r Likert, c CriticalityCounts) Likert {
	return clampCompleteness(r, c)
}

// clampCorrectness applies the same caps to the value-accuracy rating,
// counting the judge's classified inaccurate fields.
func clampCorrectness(r Likert, items []ClassifiedItem) Likert {
	return clampCompleteness(r, countCriticality(items))
}

func countCriticality(items []ClassifiedItem) CriticalityCounts {
	var c CriticalityCounts
	for _, item := range items {
		switch strings.ToLower(item.Criticality) {
		case "critical":
			c.Critical++
		case "important":
			c.Important++
		case "minor":
			c.Minor++
		}
	}
	return c
}

func clampFinalCorrectness(r Likert, c CriticalityCounts, precision string) Likert {
	switch {
	case c.Critical > 0:
		return r.AtMost(Hardly)
	case c.Important > 2:
		return r.AtMost(Neutral)
	case !precisionIsHigh(precision):
		return r.AtMost(Neutral)
	}
	return r
}

var ruleIDPat = regexp.MustCompile(`\bR\d{3}\b`)

// clampCompliance enforces the compliance level and weighted score against
// the judge's own violation lists. The weighted score is recomputed from the
// catalog when every listed violation names its rule; otherwise the judge's
// arithmetic stands.
func clampCompliance(v *VPPCompliance, catalog *rules.Catalog) {
	if v == nil {
		return
	}

	if len(v.ViolationsByWeight.Critical) > 0 {
		v.VPPCompliance = v.VPPCompliance.AtMost(ModeratelyCompliant)
	}

	entries := 0
	var ids []string
	for _, bucket := range [][]string{
		v.ViolationsByWeight.Critical,
		v.ViolationsByWeight.Important,
		v.ViolationsByWeight.Moderate,
		v.ViolationsByWeight.Minor,
	} {
		for _, entry := range bucket {
			entries++
			ids = append(ids, ruleIDPat.FindAllString(entry, -1)...)
		}
	}
	if len(ids) >= entries {
		v.WeightedScore = catalog.WeightedScore(ids)
	}
}

// hardFail reports whether any mandatory pass criterion is violated, along
// with the first reason found.
func hardFail(b *Bundle) (bool, string) {
	if v := b.VPPCompliance; v != nil {
		if len(v.ViolationsByWeight.Critical) > 0 {
			return true, "critical VPP violations present"
		}
		if v.WeightedScore < 70 {
			return true, "weighted VPP score below 70"
		}
	}
	if f := b.FinalRelevance; f != nil && f.FinalRelevance.Below(Neutral) {
		return true, "final relevance below Neutral"
	}
	if f := b.FinalCompleteness; f != nil && f.FinalCompleteness.Below(Neutral) {
		return true, "final completeness below Neutral"
	}
	if f := b.FinalCorrectness; f != nil && f.FinalCorrectness.Below(Neutral) {
		return true, "final correctness below Neutral"
	}
	if f := b.FinalCompleteness; f != nil && f.MissingCriticality.Counts.Critical > 0 {
		return true, "critical information missing"
	}
	return false, ""
}
