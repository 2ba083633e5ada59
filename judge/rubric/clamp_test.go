/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package rubric

import (
	"math/rand"
	"testing"

	"chainguard.dev/vppjudge/judge/rules"
)

var allRatings = []Likert{AlmostNotAtAll, Hardly, Neutral, Very, Highly}

// Sweep every rating against every representative count profile and check
// the cap laws hold.
func TestClampFinalRelevanceLaws(t *testing.T) {
	t.Parallel()

	profiles := []struct {
		name   string
		counts CriticalityCounts
		cap    Likert
	}{
		{"one critical", CriticalityCounts{Critical: 1}, Hardly},
		{"critical beats important", CriticalityCounts{Critical: 2, Important: 5, Minor: 9}, Hardly},
		{"three important", CriticalityCounts{Important: 3}, Neutral},
		{"two important passes through", CriticalityCounts{Important: 2}, Highly},
		{"three minor", CriticalityCounts{Minor: 3}, Very},
		{"four minor", CriticalityCounts{Minor: 4}, Neutral},
		{"clean", CriticalityCounts{}, Highly},
	}
	for _, p := range profiles {
		for _, r := range allRatings {
			got := clampFinalRelevance(r, p.counts)
			if got.Rank() > p.cap.Rank() {
				t.Errorf("%s: clampFinalRelevance(%q) = %q, exceeds cap %q", p.name, r, got, p.cap)
			}
			if got.Rank() > r.Rank() {
				t.Errorf("%s: clampFinalRelevance(%q) = %q raised the rating", p.name, r, got)
			}
		}
	}
}

func TestClampFinalCompletenessLaws(t *testing.T) {
	t.Parallel()

	profiles := []struct {
		name   string
		counts CriticalityCounts
		cap    Likert
	}{
		{"one critical", CriticalityCounts{Critical: 1}, Hardly},
		{"three important", CriticalityCounts{Important: 3}, Neutral},
		{"three minor unrestricted", CriticalityCounts{Minor: 3}, Highly},
		{"five minor", CriticalityCounts{Minor: 5}, Very},
		{"clean", CriticalityCounts{}, Highly},
	}
	for _, p := range profiles {
		for _, r := range allRatings {
			got := clampFinalCompleteness(r, p.counts)
			if got.Rank() > p.cap.Rank() {
				t.Errorf("%s: clampFinalCompleteness(%q) = %q, exceeds cap %q", p.name, r, got, p.cap)
			}
			if got.Rank() > r.Rank() {
				t.Errorf("%s: clampFinalCompleteness(%q) = %q raised the rating", p.name, r, got)
			}
		}
	}
}

func TestClampFinalCorrectnessLaws(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		counts    CriticalityCounts
		precision string
		cap       Likert
	}{
		{"one critical", CriticalityCounts{Critical: 1}, "Very High", Hardly},
		{"three important", CriticalityCounts{Important: 3}, "Very High", Neutral},
		{"low precision caps neutral", CriticalityCounts{}, "Medium", Neutral},
		{"clean and precise", CriticalityCounts{}, "High", Highly},
		{"minor errors with high precision", CriticalityCounts{Minor: 2}, "Very High", Highly},
	}
	for _, test := range tests {
		for _, r := range allRatings {
			got := clampFinalCorrectness(r, test.counts, test.precision)
			if got.Rank() > test.cap.Rank() {
				t.Errorf("%s: clampFinalCorrectness(%q) = %q, exceeds cap %q", test.name, r, got, test.cap)
			}
			if got.Rank() > r.Rank() {
				t.Errorf("%s: clampFinalCorrectness(%q) = %q raised the rating", test.name, r, got)
			}
		}
	}
}

func TestClampCompliance(t *testing.T) {
	t.Parallel()

	catalog := rules.Default()

	t.Run("critical violation lowers level", func(t *testing.T) {
		t.Parallel()
		v := &VPPCompliance{
			VPPCompliance: HighlyCompliant,
			WeightedScore: 95,
			ViolationsByWeight: Violations{
				Critical: []string{"R001: Note must begin with the Brief One-Liner section"},
			},
		}
		clampCompliance(v, catalog)
		if v.VPPCompliance != ModeratelyCompliant {
			t.Errorf("VPPCompliance = %q, want Moderately Compliant", v.VPPCompliance)
		}
		// Every entry names a rule, so the score is recomputed.
		if want := catalog.WeightedScore([]string{"R001"}); v.WeightedScore != want {
			t.Errorf("WeightedScore = %v, want %v", v.WeightedScore, want)
		}
	})

	t.Run("no violations recomputes to 100", func(t *testing.T) {
		t.Parallel()
		v := &VPPCompliance{VPPCompliance: HighlyCompliant, WeightedScore: 87}
		clampCompliance(v, catalog)
		if v.WeightedScore != 100 {
			t.Errorf("WeightedScore = %v, want 100", v.WeightedScore)
		}
		if v.VPPCompliance != HighlyCompliant {
			t.Errorf("VPPCompliance = %q, want Highly Compliant", v.VPPCompliance)
		}
	})

	t.Run("unidentifiable violations keep the judge's arithmetic", func(t *testing.T) {
		t.Parallel()
		v := &VPPCompliance{
			VPPCompliance: VeryCompliant,
			WeightedScore: 83,
			ViolationsByWeight: Violations{
				Minor: []string{"uses bullet dashes inconsistently"},
			},
		}
		clampCompliance(v, catalog)
		if v.WeightedScore != 83 {
			t.Errorf("WeightedScore = %v, want 83 preserved", v.WeightedScore)
		}
	})

	t.Run("nil is a no-op", func(t *testing.T) {
		t.Parallel()
		clampCompliance(nil, catalog)
	})
}

// The critical cap must hold no matter how many other items pile up, for
// both the subjective stage and the adjusted final score.
func TestClampCompletenessCriticalLawFuzzed(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		counts := CriticalityCounts{
			Critical:  1 + rng.Intn(10),
			Important: rng.Intn(10),
			Minor:     rng.Intn(10),
		}
		r := allRatings[rng.Intn(len(allRatings))]
		if got := clampCompleteness(r, counts); got.Rank() > Hardly.Rank() {
			t.Fatalf("clampCompleteness(%q, %+v) = %q, want at most Hardly", r, counts, got)
		}
		if got := clampFinalCompleteness(r, counts); got.Rank() > Hardly.Rank() {
			t.Fatalf("clampFinalCompleteness(%q, %+v) = %q, want at most Hardly", r, counts, got)
		}
	}
}

func TestClampCorrectnessCountsItems(t *testing.T) {
	t.Parallel()

	items := func(grades ...string) []ClassifiedItem {
		out := make([]ClassifiedItem, len(grades))
		for i, g := range grades {
			out[i] = ClassifiedItem{Text: "field", Criticality: g}
		}
		return out
	}

	tests := []struct {
		name  string
		items []ClassifiedItem
		r     Likert
		want  Likert
	}{
		{"critical caps hardly", items("critical", "minor"), Highly, Hardly},
		{"grades match case-insensitively", items("Critical"), Very, Hardly},
		{"three important cap neutral", items("important", "important", "important"), Highly, Neutral},
		{"two important pass through", items("important", "important"), Highly, Highly},
		{"four minor cap very", items("minor", "minor", "minor", "minor"), Highly, Very},
		{"no items pass through", nil, Highly, Highly},
	}
	for _, test := range tests {
		if got := clampCorrectness(test.r, test.items); got != test.want {
			t.Errorf("%s: clampCorrectness(%q) = %q, want %q", test.name, test.r, got, test.want)
		}
	}
}
