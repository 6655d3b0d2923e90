// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SubTask is one writable unit of a chapter, sized so a single engine
// invocation can produce it.
type SubTask struct {
	// ID numbers the subtask within the whole plan, starting at 1.
	ID int `json:"id" yaml:"id"`

	// ChapterID links back to the owning chapter.
	ChapterID int `json:"chapter_id" yaml:"chapter_id"`

	// Title is the subtask's working title.
	Title string `json:"title" yaml:"title"`

	// Description states what the subtask must cover.
	Description string `json:"description" yaml:"description"`

	// TargetWords is the length budget for this subtask.
	TargetWords int `json:"target_words" yaml:"target_words"`

	// ContextHint describes how this subtask connects to the previous
	// one (e.g. "picks up right after the confrontation").
	ContextHint string `json:"context_hint,omitempty" yaml:"context_hint,omitempty"`
}

// Chapter groups subtasks under one document-level heading.
type Chapter struct {
	// ID numbers the chapter, starting at 1.
	ID int `json:"id" yaml:"id"`

	// Title is the chapter heading.
	Title string `json:"title" yaml:"title"`

	// Brief summarizes what the chapter covers.
	Brief string `json:"brief" yaml:"brief"`

	// TargetWords is the chapter's total length budget.
	TargetWords int `json:"target_words" yaml:"target_words"`

	// SubTasks lists the chapter's writable units in order.
	SubTasks []SubTask `json:"subtasks,omitempty" yaml:"subtasks,omitempty"`
}

// ContentPlan is the full decomposition of a generation target into
// chapters and subtasks, plus the settings the writer threads through
// every section's context.
type ContentPlan struct {
	// Title is the document title.
	Title string `json:"title" yaml:"title"`

	// TotalTargetWords is the length budget for the whole document.
	TotalTargetWords int `json:"total_target_words" yaml:"total_target_words"`

	// ContentType is the writing mode: novel, report, article,
	// document, or custom.
	ContentType string `json:"content_type" yaml:"content_type"`

	// Chapters lists the document's chapters in order.
	Chapters []Chapter `json:"chapters" yaml:"chapters"`

	// Settings holds background material (characters, world, style,
	// audience) formatted into each section's context.
	Settings map[string]any `json:"settings,omitempty" yaml:"settings,omitempty"`
}
