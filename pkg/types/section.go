// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SectionRequest describes one section the engine must produce. It is
// immutable input to a single engine invocation; the engine never writes
// back into it.
type SectionRequest struct {
	// Context is the assembled background text: settings, continuity
	// summaries, and the tail of previously produced content.
	Context string `json:"context" yaml:"context"`

	// TargetLength is the desired section length in length units
	// (see textutil.CountWords).
	TargetLength int `json:"target_length" yaml:"target_length"`

	// StyleDirectives holds optional free-text style requirements
	// carried into every branch prompt.
	StyleDirectives string `json:"style_directives,omitempty" yaml:"style_directives,omitempty"`
}

// Branch is one independently generated candidate continuation. A branch
// belongs to the round that created it and is discarded after selection.
type Branch struct {
	// ID is the branch's slot index within its round (0-based). Ties on
	// score resolve to the lowest ID, so selection is reproducible.
	ID int `json:"id"`

	// Content is the generated candidate text.
	Content string `json:"content"`

	// SourceDirective is the revision directive that produced this
	// branch; empty on the first round.
	SourceDirective string `json:"source_directive,omitempty"`
}

// EvaluationResult is the judge's verdict on one branch. Produced once
// per branch and never mutated afterwards.
type EvaluationResult struct {
	// Score is the judge's total score in [0,100].
	Score float64 `json:"score"`

	// DimensionScores maps named sub-scores (e.g. "visual", "emotion",
	// "hook") to their values. Missing dimensions read as 0.
	DimensionScores map[string]float64 `json:"dimension_scores,omitempty"`

	// Critique is the judge's free-text assessment.
	Critique string `json:"critique"`

	// RevisionDirective is the judge's concrete rewrite instruction,
	// fed into the next generation round when the branch is rejected.
	RevisionDirective string `json:"revision_directive,omitempty"`

	// Passed reports whether Score cleared the configured threshold.
	// The controller computes it; the judge does not know the threshold.
	Passed bool `json:"passed"`
}

// ScoredBranch pairs a branch with its evaluation. The pairing is atomic:
// a score is never re-associated with a different branch.
type ScoredBranch struct {
	Branch Branch           `json:"branch"`
	Eval   EvaluationResult `json:"eval"`
}

// Outcome tags how a section production run terminated.
type Outcome string

const (
	// OutcomeAccepted means a branch cleared the quality gate.
	OutcomeAccepted Outcome = "accepted"

	// OutcomeRejectedExhausted means the retry budget ran out and the
	// best-scoring failing branch was returned as a fallback.
	OutcomeRejectedExhausted Outcome = "rejected_exhausted"

	// OutcomeError means no usable branch was produced at all (every
	// generation call failed in every round, or the run was cancelled
	// before any text existed).
	OutcomeError Outcome = "error"
)

// SectionResult is the engine's answer to one SectionRequest: the final
// text plus its length and the evaluation record of every round attempted.
type SectionResult struct {
	// Text is the produced section, post-continuation.
	Text string `json:"text"`

	// Length is the achieved length of Text in length units.
	Length int `json:"length"`

	// Accepted reports whether the selected branch cleared the gate.
	Accepted bool `json:"accepted"`

	// Outcome tags the terminal state of the accept/retry loop.
	Outcome Outcome `json:"outcome"`

	// RoundsUsed counts generation rounds performed (at least 1 unless
	// the run failed before the first round completed).
	RoundsUsed int `json:"rounds_used"`

	// Trail holds the selected branch's evaluation from each round, in
	// round order.
	Trail []EvaluationResult `json:"trail,omitempty"`

	// TargetMet reports whether continuation reached TargetLength
	// before hitting its expansion cap.
	TargetMet bool `json:"target_met"`

	// Expansions counts continuation iterations performed.
	Expansions int `json:"expansions"`
}
