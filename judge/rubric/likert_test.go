/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package rubric

import "testing"

func TestLikertRank(t *testing.T) {
	t.Parallel()

	ordered := []Likert{AlmostNotAtAll, Hardly, Neutral, Very, Highly}
	for i, l := range ordered {
		if got := l.Rank(); got != i {
			t.Errorf("%q.Rank() = %d, want %d", l, got, i)
		}
	}
	// Judges are sloppy about case.
	if got := Likert("hardly").Rank(); got != 1 {
		t.Errorf(`Likert("hardly").Rank() = %d, want 1`, got)
	}
	if got := Likert(" HIGHLY ").Rank(); got != 4 {
		t.Errorf(`Likert(" HIGHLY ").Rank() = %d, want 4`, got)
	}
	if got := Likert("excellent").Rank(); got != -1 {
		t.Errorf(`off-scale rating Rank() = %d, want -1`, got)
	}
}

func TestLikertAtMost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rating Likert
		cap    Likert
		want   Likert
	}{
		{Highly, Hardly, Hardly},
		{Neutral, Hardly, Hardly},
		{Hardly, Neutral, Hardly},
		{AlmostNotAtAll, Very, AlmostNotAtAll},
		{Likert("garbage"), Neutral, Neutral},
		{Likert("very"), Neutral, Neutral},
	}
	for _, test := range tests {
		if got := test.rating.AtMost(test.cap); got != test.want {
			t.Errorf("%q.AtMost(%q) = %q, want %q", test.rating, test.cap, got, test.want)
		}
	}
}

func TestComplianceAtMost(t *testing.T) {
	t.Parallel()

	if got := HighlyCompliant.AtMost(ModeratelyCompliant); got != ModeratelyCompliant {
		t.Errorf("HighlyCompliant.AtMost(Moderately) = %q", got)
	}
	if got := NotCompliant.AtMost(ModeratelyCompliant); got != NotCompliant {
		t.Errorf("NotCompliant.AtMost(Moderately) = %q", got)
	}
	if got := ComplianceLevel("???").AtMost(ModeratelyCompliant); got != ModeratelyCompliant {
		t.Errorf("off-scale AtMost(Moderately) = %q", got)
	}
}

func TestPrecisionIsHigh(t *testing.T) {
	t.Parallel()

	for s, want := range map[string]bool{
		"Very High":    true,
		"high":         true,
		"Medium":       false,
		"Slightly low": false,
		"Very low":     false,
		"":             false,
	} {
		if got := precisionIsHigh(s); got != want {
			t.Errorf("precisionIsHigh(%q) = %v, want %v", s, got, want)
		}
	}
}
