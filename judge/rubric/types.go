/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package rubric

// ClassifiedItem is one missing, spurious, or mismatched field together
// with its clinical criticality grade.
type ClassifiedItem struct {
	Text        string `json:"text"`
	Type        string `json:"type,omitempty"`
	Category    string `json:"category"`
	Criticality string `json:"criticality"`
	Reason      string `json:"reason"`
}

// CriticalityCounts tallies classified items per grade. Critical items
// weigh 3, important 2, minor 1.
type CriticalityCounts struct {
	Critical  int `json:"critical"`
	Important int `json:"important"`
	Minor     int `json:"minor"`
}

// OnlyMinor reports whether every counted item is minor.
func (c CriticalityCounts) OnlyMinor() bool {
	return c.Critical == 0 && c.Important == 0 && c.Minor > 0
}

// Total returns the number of counted items.
func (c CriticalityCounts) Total() int {
	return c.Critical + c.Important + c.Minor
}

// CriticalityReport is the detailed grading block the final stages return.
type CriticalityReport struct {
	Counts          CriticalityCounts `json:"Counts"`
	Items           []ClassifiedItem  `json:"Items"`
	WeightedPenalty int               `json:"WeightedPenalty,omitempty"`
	RuleApplied     string            `json:"RuleApplied,omitempty"`
}

// PrecisionRecall compares the candidate's fields against the original
// note's, classifying every gap and addition.
type PrecisionRecall struct {
	Precision              string           `json:"Precision" jsonschema:"required"`
	Recall                 string           `json:"Recall" jsonschema:"required"`
	MissingFields          []string         `json:"MissingFields"`
	SpuriousFields         []string         `json:"SpuriousFields"`
	MissingFieldsDetailed  []ClassifiedItem `json:"MissingFieldsDetailed"`
	SpuriousFieldsDetailed []ClassifiedItem `json:"SpuriousFieldsDetailed"`
	WeightedMissing        int              `json:"WeightedMissing"`
	WeightedSpurious       int              `json:"WeightedSpurious"`
}

// Relevance rates how on-topic the candidate's content is.
type Relevance struct {
	Relevance                 Likert           `json:"Relevance" jsonschema:"required"`
	Explanation               string           `json:"Explanation"`
	IrrelevantContent         []string         `json:"IrrelevantContent"`
	IrrelevantContentDetailed []ClassifiedItem `json:"IrrelevantContentDetailed"`
	WeightedIrrelevance       int              `json:"WeightedIrrelevance"`
}

// Coherence rates the candidate's structure and flow.
type Coherence struct {
	Coherence   Likert `json:"Coherence" jsonschema:"required"`
	Explanation string `json:"Explanation"`
}

// Completeness rates how much of the original's key information survived,
// with a criticality breakdown of every missing item.
type Completeness struct {
	Completeness    Likert `json:"Completeness" jsonschema:"required"`
	Explanation     string `json:"Explanation"`
	MissingAnalysis struct {
		Counts          CriticalityCounts `json:"Counts"`
		Items           []ClassifiedItem  `json:"Items"`
		WeightedMissing int               `json:"WeightedMissing,omitempty"`
	} `json:"MissingAnalysis"`
}

// Correctness rates value accuracy against the original.
type Correctness struct {
	Correctness              Likert           `json:"Correctness" jsonschema:"required"`
	Explanation              string           `json:"Explanation"`
	InaccurateFields         []string         `json:"InaccurateFields"`
	InaccurateFieldsDetailed []ClassifiedItem `json:"InaccurateFieldsDetailed"`
	WeightedIncorrect        int              `json:"WeightedIncorrect"`
}

// FinalRelevance adjusts the subjective relevance rating by the criticality
// of the spurious fields.
type FinalRelevance struct {
	FinalRelevance      Likert            `json:"FinalRelevance" jsonschema:"required"`
	Explanation         string            `json:"Explanation"`
	SpuriousCriticality CriticalityReport `json:"SpuriousCriticality"`
}

// FinalCompleteness adjusts the subjective completeness rating by the
// criticality of the missing fields.
type FinalCompleteness struct {
	FinalCompleteness  Likert `json:"FinalCompleteness" jsonschema:"required"`
	Explanation        string `json:"Explanation"`
	MissingCriticality struct {
		Counts          CriticalityCounts `json:"Counts"`
		Items           []ClassifiedItem  `json:"Items"`
		WeightedMissing int               `json:"WeightedMissing,omitempty"`
	} `json:"MissingCriticality"`
}

// FinalCorrectness adjusts the subjective correctness rating by error
// criticality and the precision score.
type FinalCorrectness struct {
	FinalCorrectness Likert            `json:"FinalCorrectness" jsonschema:"required"`
	Explanation      string            `json:"Explanation"`
	ErrorCriticality CriticalityReport `json:"ErrorCriticality"`
}

// Violations groups violated rules by criticality bucket. Entries are the
// judge's own renderings, usually "R0NN: rule text".
type Violations struct {
	Critical  []string `json:"Critical"`
	Important []string `json:"Important"`
	Moderate  []string `json:"Moderate"`
	Minor     []string `json:"Minor"`
}

// VPPCompliance is the rule-catalog compliance verdict.
type VPPCompliance struct {
	VPPCompliance      ComplianceLevel `json:"VPPCompliance" jsonschema:"required"`
	WeightedScore      float64         `json:"WeightedScore"`
	Explanation        string          `json:"Explanation"`
	ViolationsByWeight Violations      `json:"ViolationsByWeight"`
	ClinicalAssessment string          `json:"ClinicalAssessment"`
}

// UnifiedPassFail is the integrating verdict over every prior stage.
type UnifiedPassFail struct {
	OverallRating          int      `json:"OverallRating" jsonschema:"required"`
	PassFail               string   `json:"PassFail" jsonschema:"required"`
	UnifiedExplanation     string   `json:"UnifiedExplanation"`
	ContentQualitySummary  string   `json:"ContentQualitySummary"`
	VPPComplianceSummary   string   `json:"VPPComplianceSummary"`
	FactualAccuracySummary string   `json:"FactualAccuracySummary"`
	KeyStrengths           []string `json:"KeyStrengths"`
	CriticalIssues         []string `json:"CriticalIssues"`
	MinorIssues            []string `json:"MinorIssues"`
	ClinicalUsability      string   `json:"ClinicalUsability"`
	RecommendationPriority []string `json:"RecommendationPriority"`
}

// Summary condenses a bundle into the headline fields.
type Summary struct {
	OverallRating  any             `json:"OverallRating"`
	PassFail       string          `json:"PassFail"`
	WeightedScore  string          `json:"WeightedVPPScore"`
	VPPCompliance  ComplianceLevel `json:"VPPCompliance"`
	ContentQuality struct {
		Relevance    Likert `json:"Relevance"`
		Coherence    Likert `json:"Coherence"`
		Completeness Likert `json:"Completeness"`
		Correctness  Likert `json:"Correctness"`
	} `json:"ContentQuality"`
	FinalScores struct {
		FinalRelevance    Likert `json:"FinalRelevance"`
		FinalCompleteness Likert `json:"FinalCompleteness"`
		FinalCorrectness  Likert `json:"FinalCorrectness"`
	} `json:"FinalScores"`
}

// Bundle is the full output of the staged rubric evaluation. Stages that
// failed are nil, with the failure recorded in StageErrors under the stage
// name.
type Bundle struct {
	PrecisionRecall   *PrecisionRecall   `json:"PrecisionRecall,omitempty"`
	Relevance         *Relevance         `json:"Relevance,omitempty"`
	Coherence         *Coherence         `json:"Coherence,omitempty"`
	Completeness      *Completeness      `json:"Completeness,omitempty"`
	Correctness       *Correctness       `json:"Correctness,omitempty"`
	VPPCompliance     *VPPCompliance     `json:"VPPCompliance,omitempty"`
	FinalRelevance    *FinalRelevance    `json:"FinalRelevance,omitempty"`
	FinalCompleteness *FinalCompleteness `json:"FinalCompleteness,omitempty"`
	FinalCorrectness  *FinalCorrectness  `json:"FinalCorrectness,omitempty"`
	UnifiedPassFail   *UnifiedPassFail   `json:"UnifiedPassFail,omitempty"`
	Summary           *Summary           `json:"Summary,omitempty"`
	StageErrors       map[string]string  `json:"stage_errors,omitempty"`
}
