/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package rubric

import (
	"chainguard.dev/vppjudge/judge/prompt"
	"chainguard.dev/vppjudge/judge/schema"
)

// The stage prompts share a criticality rubric for grading individual
// missing, spurious, or mismatched items.
const criticalityRubric = `**Criticality rubric (apply to EACH item):**
- **Critical** (weight 3): Stage/TNM or metastatic status; primary diagnosis/site/laterality; histology/grade; management-changing biomarkers (e.g. ER/PR/HER2, EGFR/ALK/ROS1/PD-L1, MSI/MMR, BRCA1/2); delivered systemic therapy starts/stops/regimen changes; radiation dose/fractions; surgery with margins/nodes; Date of Diagnosis (DOD) as a core variable.
- **Important** (weight 2): Imaging/labs that inform but do not alter stage; cycle counts; dose holds/reductions; clinically meaningful adverse effects tied to management; explicit follow-up/surveillance plans with modality and timing.
- **Minor** (weight 1): Vitals; ROS; social/family history; administrative/scheduling/billing; generic counseling; narrative prose that adds no clinical facts.`

const jsonOnly = "CRITICAL: Return ONLY valid JSON. No markdown, no code blocks, no explanatory text. " +
	"The JSON must conform to this schema:\n{{schema}}"

var precisionRecallPrompt = prompt.MustNew(`You are an expert in clinical documentation evaluation.

The original medical note written by a physician is as follows:
{{md}}

This is the reference note, and we will treat it as the ground truth.

Now, here is the final note that was generated by a model and then passed through a correction system to remove spurious information:
{{cand}}

Your task is to compare this final note to the original physician-authored note and evaluate whether it faithfully retains the correct information and excludes hallucinated or spurious additions.

**Definitions:**
- Fields are **missing** if they appear in the original note but are **absent** from the final note.
- Fields are **spurious** if they appear in the final note but **do not exist** in the original note.
- Consider mismatch cases (changed values) as **spurious** for the purposes of precision.

A "field" is any medically relevant unit of information: meds, dosages, test results, diagnoses, procedures, dates, staging, biomarkers, radiology conclusions, and so on. Be strict; semantically equivalent language is acceptable only if the facts match.

**Likert scale for Precision:**
- **Very High**: No spurious fields
- **High**: No spurious fields
- **Medium**: At most one spurious field
- **Slightly low**: One to two spurious fields
- **Very low**: More than two spurious fields

**Likert scale for Recall:**
- **Very High**: No missing fields
- **High**: No missing fields
- **Medium**: At most one missing field
- **Slightly low**: One to two missing fields
- **Very low**: More than two missing fields

` + criticalityRubric + `

Report BOTH the plain field lists and the detailed per-item classification, with WeightedMissing and WeightedSpurious as the sums of item weights.

` + jsonOnly)

var relevancePrompt = prompt.MustNew(`You are an expert in clinical summarization evaluation.

The following is a note originally written by a medical doctor:
{{md}}

Below is a note that was generated by a model and later corrected:
{{cand}}

Your task is to evaluate the **Relevance** of the corrected note and grade the clinical criticality of any irrelevant content. Relevance means: does the candidate stay focused on content from the original note, including only medically relevant information derived from it, without unrelated, unnecessary, or speculative additions? You are NOT judging completeness or value accuracy here.

**Likert scale for Relevance:**
- **Almost not at all**: Filled with irrelevant or fabricated content, barely related to the original.
- **Hardly**: Touches a few original ideas, but most of the note is tangential or off-topic.
- **Neutral**: Contains some real content but drifts with loosely related or speculative material.
- **Very**: Mostly relevant content with minor irrelevancies.
- **Highly**: Only information found in or directly derivable from the original.

` + criticalityRubric + `

List every irrelevant item, classify each, and report WeightedIrrelevance as the sum of item weights.

` + jsonOnly)

var coherencePrompt = prompt.MustNew(`You are an expert in clinical summarization evaluation.

The following is a note originally written by a medical doctor:
{{md}}

Below is a note that was derived from a model-generated summary, then passed through a correction system:
{{cand}}

Your task is to evaluate the **Coherence** of the corrected note: the logical flow and structural clarity of the document. Are the sentences well-ordered? Do transitions make sense? Is it easy to follow? You are not judging factual accuracy or missing/spurious content, purely readability and structure.

**Likert scale for Coherence:**
- **Almost not at all**: Sentences are disjointed or unrelated; the flow is broken.
- **Hardly**: Some structure exists, but transitions are awkward or the ordering is confusing.
- **Neutral**: Acceptable structure, not smooth; some sections feel disconnected.
- **Very**: Mostly logical flow with only minor rough spots.
- **Highly**: Smoothly structured, easy to follow, logically ordered.

` + jsonOnly)

var completenessPrompt = prompt.MustNew(`You are an expert in clinical summarization evaluation.

Below is a clinical note originally written by a physician:
{{md}}

And here is a note that was generated and then corrected to match the original:
{{cand}}

Evaluate the **Completeness** of the corrected note (did it preserve all important information from the original?) and grade the clinical criticality of every missing item. Identify concrete missing items: present in the original, absent or materially less specific in the candidate. You are NOT evaluating value accuracy or added material; this is solely about whether important information was lost or omitted.

**Likert scale for Completeness:**
- **Almost not at all**: Missing nearly all relevant information.
- **Hardly**: Several key details missing; the clinical picture is incomplete.
- **Neutral**: Most core content present, but a few important fields are missing.
- **Very**: Only minor, non-critical information is omitted.
- **Highly**: Everything important is captured without loss.

` + criticalityRubric + `

**Scoring rules for Completeness:**
- Any **Critical** missing item caps Completeness at **"Hardly"**.
- If no Critical but **more than 2 Important** missing, cap at **"Neutral"**.
- Only Minor missing: up to 3 items may be "Very" or "Highly"; 4 or more cap at **"Very"**.
- If nothing material is missing, "Highly".

**Guardrails:**
- Spurious or irrelevant additions do not affect completeness.
- Prefer delivered care over planned; planned items are not missing when delivered equivalents are present.
- Treat semantically equivalent phrasing as present.

Report the MissingAnalysis block with per-item classifications and WeightedMissing as the sum of item weights.

` + jsonOnly)

var correctnessPrompt = prompt.MustNew(`You are an expert in clinical documentation evaluation.

The following is a note written by a medical doctor:
{{md}}

Below is a candidate note derived from a corrupted version of the original and corrected by a model:
{{cand}}

Evaluate the **Correctness** of the candidate: whether each clinical value matches the corresponding value in the original, and grade the clinical criticality of any incorrect or mismatched values. Do not consider missing or extra information, only incorrect or changed values.

**Likert scale for Correctness:**
- **Almost not at all**: Most values are incorrect or contradict the original.
- **Hardly**: Many values are wrong, though some match.
- **Neutral**: Most values are correct, but a few are inaccurate.
- **Very**: Nearly all values are accurate, with only minor discrepancies.
- **Highly**: All values match exactly.

` + criticalityRubric + `

**Scoring rules for Correctness:**
- Any **Critical** incorrect value caps Correctness at **"Hardly"**.
- If no Critical but **more than 2 Important** errors, cap at **"Neutral"**.
- Only Minor errors: up to 3 may be "Very" or "Highly"; 4 or more cap at **"Very"**.
- If every value matches, "Highly".

List every inaccurate field, classify each, and report WeightedIncorrect as the sum of item weights.

` + jsonOnly)

var compliancePrompt = prompt.MustNew(`You are an expert VPP (Virtual Physician Partner) compliance evaluator. Rules have different criticality levels (weights 1-5).

**CANDIDATE NOTE TO EVALUATE:**
{{cand}}

**VPP RULES BY CRITICALITY:**

**CRITICAL (Weight 5) - MUST PASS:**
{{critical_rules}}

**IMPORTANT (Weight 4) - SHOULD FOLLOW:**
{{important_rules}}

**MODERATE (Weight 3) - RECOMMENDED:**
{{moderate_rules}}

**MINOR (Weight 1-2) - NICE TO HAVE:**
{{minor_rules}}

**EVALUATION APPROACH:**
- Critical violations (weight 5) significantly impact score
- Important violations (weight 4) moderately impact score
- Moderate violations (weight 3) noted but don't fail
- Minor violations (weight 1-2) mentioned but minimal impact

**Compliance Levels:**
- **Highly Compliant**: No critical violations, minimal other issues
- **Very Compliant**: No critical violations, some moderate issues ok
- **Moderately Compliant**: 1-2 critical violations OR many important ones
- **Hardly Compliant**: Multiple critical violations
- **Not Compliant**: Major structural failures

WeightedScore is 100 - (sum of violated rule weights / sum of all weights * 100). In ViolationsByWeight, list each violated rule as "ID: rule text". Focus on what matters clinically; minor formatting issues should not overshadow good structure.

` + jsonOnly)

var finalRelevancePrompt = prompt.MustNew(`You are an expert in clinical note evaluation. Assign a **Final Relevance** rating reflecting how well the candidate note stays within the scope of facts present in the original note, grading the clinical criticality of each spurious field.

You are provided with a subjective relevance evaluation:
{{relevance}}

And a precision/recall analysis listing spurious fields (present in the candidate but absent from the original):
Spurious Fields: {{spurious}}

` + criticalityRubric + `

**Scoring rules for Final Relevance:**
- If ANY **Critical** spurious item exists, cap Final Relevance at **"Hardly"**.
- If no Critical but **more than 2 Important** items, cap at **"Neutral"**.
- If only Minor items: 1-3 items allow at most **"Very"**; 4 or more cap at **"Neutral"**.
- If there are no spurious items, Final Relevance may equal the subjective rating.

` + jsonOnly)

var finalCompletenessPrompt = prompt.MustNew(`You are an expert in clinical note evaluation. Assign the **Final Completeness** rating (did the candidate preserve all important information from the original note?) and grade the clinical criticality of each missing item.

You are provided with a subjective completeness evaluation:
{{completeness}}

And a precision/recall analysis listing fields from the original that are missing in the candidate:
Missing Fields: {{missing}}

` + criticalityRubric + `

**Scoring rules for Final Completeness:**
- Any **Critical** missing item caps Final Completeness at **"Hardly"**.
- If no Critical but **more than 2 Important** missing, cap at **"Neutral"**.
- Only Minor missing: up to 3 items may be "Very" or "Highly"; 4 or more cap at **"Very"**.
- If nothing material is missing, "Highly".

**Guardrails:**
- Spurious additions do not affect completeness.
- Prefer delivered care over planned; planned items are not missing when delivered equivalents are present.
- Treat semantically equivalent phrasing as present.

` + jsonOnly)

var finalCorrectnessPrompt = prompt.MustNew(`You are an expert in clinical documentation evaluation. Assign the **Final Correctness** rating (are values and facts correct versus the original note?) and grade the clinical criticality of each spurious or mismatched item.

You are provided with a subjective correctness evaluation that may include an "InaccurateFields" list:
{{correctness}}

And a precision/recall analysis:
Precision (Likert): {{precision}}
Spurious Fields: {{spurious}}

Treat each item in "InaccurateFields" as a mismatch and each item in "SpuriousFields" as spurious; assign each a category and criticality.

` + criticalityRubric + `

**Caps for Final Correctness (apply the strongest that matches):**
1. Any **Critical** item (spurious or mismatch) caps Final Correctness at **"Hardly"**.
2. Else more than 2 **Important** items cap at **"Neutral"**.
3. Else if the Precision Likert is not "Very High" or "High", cap at **"Neutral"**.
4. Otherwise the rating may reflect the subjective evaluation.

` + jsonOnly)

var unifiedPrompt = prompt.MustNew(`You are evaluating whether this clinical note passes quality standards, including VPP compliance.

**COMPREHENSIVE METRICS PROVIDED:**

1. Content Quality Metrics:
{{content_metrics}}

2. Final Adjusted Scores:
- Final Relevance: {{final_relevance}}
- Final Completeness: {{final_completeness}}
- Final Correctness: {{final_correctness}}

3. VPP Compliance Assessment:
{{vpp}}

4. Precision/Recall Analysis:
{{precision_recall}}

**INTEGRATED PASS CRITERIA (ALL must be met):**
- NO critical VPP violations (weight 5); mandatory for VPP use
- Weighted VPP score >= 70%
- All final content metrics >= "Neutral"
- No critical missing information that affects patient care
- Note is clinically safe and usable

**ACCEPTABLE ISSUES:**
- Minor formatting violations (weight 1-2)
- Some moderate violations if core structure intact
- Minor missing non-critical details
- Stylistic preferences

**FAIL CRITERIA (ANY triggers fail):**
- Critical VPP violations present
- Weighted VPP score < 70%
- Any final content metric < "Neutral"
- Critical information missing (diagnoses, treatments, etc.)
- Note is clinically unsafe

**Overall Quality Scale:**
- 5: Excellent (minimal issues, VPP score 90%+)
- 4: Good (minor issues only, VPP score 80-89%)
- 3: Acceptable (notable but non-critical issues, VPP score 70-79%)
- 2: Poor (significant problems, VPP score 60-69%)
- 1: Failing (critical issues, VPP score <60%)

` + jsonOnly)

// withSchema binds the reflected response schema for T into a stage prompt.
func withSchema[T any](p *prompt.Prompt) *prompt.Prompt {
	return p.Bind("schema", schema.MustTextFor[T]())
}
