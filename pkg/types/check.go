// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// IssueType categorizes a consistency problem found in generated text.
type IssueType string

const (
	IssueCharacterName  IssueType = "character-name"
	IssueCharacterTrait IssueType = "character-trait"
	IssueTimeline       IssueType = "timeline"
	IssueSetting        IssueType = "setting"
	IssuePlotHole       IssueType = "plot-hole"
	IssueLogic          IssueType = "logic"
	IssueContinuity     IssueType = "continuity"
)

// IssueSeverity grades how badly an issue damages the text.
type IssueSeverity string

const (
	SeverityLow      IssueSeverity = "low"
	SeverityMedium   IssueSeverity = "medium"
	SeverityHigh     IssueSeverity = "high"
	SeverityCritical IssueSeverity = "critical"
)

// ConsistencyIssue is one problem the checker found.
type ConsistencyIssue struct {
	// Type categorizes the issue.
	Type IssueType `json:"type" yaml:"type"`

	// Severity grades the issue.
	Severity IssueSeverity `json:"severity" yaml:"severity"`

	// Description explains what is inconsistent.
	Description string `json:"description" yaml:"description"`

	// Location points at where the issue appears.
	Location string `json:"location,omitempty" yaml:"location,omitempty"`

	// Suggestion proposes a fix.
	Suggestion string `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
}

// CheckResult is the outcome of one consistency pass over a chapter.
type CheckResult struct {
	// ChapterID identifies the checked chapter (0 for ad hoc text).
	ChapterID int `json:"chapter_id" yaml:"chapter_id"`

	// Passed reports whether no high or critical issues were found.
	Passed bool `json:"passed" yaml:"passed"`

	// Issues lists everything the checker flagged.
	Issues []ConsistencyIssue `json:"issues,omitempty" yaml:"issues,omitempty"`

	// Summary is a one-line description of the result.
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`

	// CheckedItems counts the check categories that ran.
	CheckedItems int `json:"checked_items" yaml:"checked_items"`
}
