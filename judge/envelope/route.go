/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package envelope

import (
	"fmt"
	"strings"
)

// Mode names one judging mode selected for an envelope.
type Mode string

const (
	// ModeObjective compares the generated note against ground truth.
	ModeObjective Mode = "objective"
	// ModeSubjective ranks the two compare candidates against each other.
	ModeSubjective Mode = "subjective"
	// ModeSubjectiveSingle grades a lone candidate against the rubric.
	ModeSubjectiveSingle Mode = "subjective_single"
)

// ValidationError reports an envelope that cannot satisfy its route hint.
type ValidationError struct {
	Hint    string
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("route hint %q requires %s", e.Hint, strings.Join(e.Missing, " and "))
}

// DecideModes selects the judging modes for an envelope.
//
// A recognized route hint is binding: the envelope must carry the inputs
// that hint needs, and a *ValidationError naming the missing fields is
// returned when it does not. An empty or unrecognized hint falls through to
// auto-detection, which picks the richest evaluation the payload supports:
// ground truth plus any subjective input selects both objective and
// subjective; ground truth alone selects objective; a compare pair selects
// subjective; a generated note with context selects subjective-single.
func DecideModes(routeHint string, e *Envelope) ([]Mode, error) {
	hint := strings.ToLower(strings.TrimSpace(routeHint))

	gt := e.HasGroundTruth()
	pair := e.PairwiseEligible()
	single := e.SingleEligible()

	switch hint {
	case "both":
		var missing []string
		if !gt {
			missing = append(missing, "ground_truth.text")
		}
		if !pair && !single {
			missing = append(missing, "a compare pair or generated.text with context")
		}
		if len(missing) > 0 {
			return nil, &ValidationError{Hint: hint, Missing: missing}
		}
		return []Mode{ModeObjective, ModeSubjective}, nil
	case string(ModeObjective):
		if !gt {
			return nil, &ValidationError{Hint: hint, Missing: []string{"ground_truth.text"}}
		}
		return []Mode{ModeObjective}, nil
	case string(ModeSubjective), string(ModeSubjectiveSingle):
		if !pair && !single {
			return nil, &ValidationError{Hint: hint, Missing: []string{"a compare pair or generated.text with context"}}
		}
		return []Mode{ModeSubjective}, nil
	}

	switch {
	case gt && (pair || single):
		return []Mode{ModeObjective, ModeSubjective}, nil
	case gt:
		return []Mode{ModeObjective}, nil
	case pair:
		return []Mode{ModeSubjective}, nil
	case single:
		return []Mode{ModeSubjectiveSingle}, nil
	}
	return nil, &ValidationError{Hint: hint, Missing: []string{"ground_truth.text, a compare pair, or generated.text with context"}}
}
