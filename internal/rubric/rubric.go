// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rubric loads and validates the judge's scoring rubric. The
// rubric is external configuration: named criteria with weights and
// score-band descriptions, plus free-text judge instructions.
package rubric

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// Criterion is one weighted scoring dimension.
type Criterion struct {
	// Name identifies the dimension (e.g. "visual", "emotion", "hook").
	Name string `yaml:"name" json:"name"`

	// Weight is the dimension's share of the total score.
	Weight float64 `yaml:"weight" json:"weight"`

	// Description explains what the dimension measures.
	Description string `yaml:"description" json:"description"`

	// Levels maps score ranges (e.g. "0-40") to band descriptions.
	Levels map[string]string `yaml:"levels,omitempty" json:"levels,omitempty"`
}

// Rubric is the full judge configuration.
type Rubric struct {
	// TargetPassScore is the quality-gate threshold (default 90).
	TargetPassScore float64 `yaml:"target_pass_score" json:"target_pass_score"`

	// Criteria lists the weighted scoring dimensions.
	Criteria []Criterion `yaml:"criteria" json:"criteria"`

	// JudgeInstructions is free text prepended to the judge prompt,
	// including the required output format.
	JudgeInstructions string `yaml:"judge_instructions" json:"judge_instructions"`
}

// Load reads a rubric from path. An empty path returns the built-in
// default rubric; a non-empty path that cannot be read is a fatal
// configuration error — never a silent fallback.
func Load(path string) (*Rubric, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rubric %s: %w", path, err)
	}

	var r Rubric
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing rubric %s: %w", path, err)
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rubric %s: %w", path, err)
	}
	if r.TargetPassScore <= 0 {
		r.TargetPassScore = 90
	}
	return &r, nil
}

// Validate checks the rubric's shape: at least one criterion, every
// criterion named, and no non-positive weights.
func (r *Rubric) Validate() error {
	if len(r.Criteria) == 0 {
		return fmt.Errorf("no criteria defined")
	}
	for i, c := range r.Criteria {
		if c.Name == "" {
			return fmt.Errorf("criterion %d: missing name", i)
		}
		if c.Weight <= 0 {
			return fmt.Errorf("criterion %q: weight must be positive", c.Name)
		}
	}
	if r.TargetPassScore < 0 || r.TargetPassScore > 100 {
		return fmt.Errorf("target_pass_score %v outside [0,100]", r.TargetPassScore)
	}
	return nil
}

// Default returns the built-in rubric used when no rubric file is
// configured. It scores visual concreteness, emotional payoff, and hook
// density — the dimensions short-form fiction lives or dies by.
func Default() *Rubric {
	return &Rubric{
		TargetPassScore: 90,
		Criteria: []Criterion{
			{
				Name:        "visual",
				Weight:      0.4,
				Description: "Every beat is shot-ready: concrete actions, objects, and expressions rather than abstract narration.",
				Levels: map[string]string{
					"0-40":   "mostly telling; little that a camera could capture",
					"41-70":  "some concrete beats, but key moments stay abstract",
					"71-100": "scene plays like a storyboard; actions carry the emotion",
				},
			},
			{
				Name:        "emotion",
				Weight:      0.35,
				Description: "Reader payoff: tension builds and releases inside the passage.",
				Levels: map[string]string{
					"0-40":   "flat; no stakes or release",
					"41-70":  "stakes exist but the release is muted",
					"71-100": "clear build-up with a satisfying turn",
				},
			},
			{
				Name:        "hook",
				Weight:      0.25,
				Description: "Forward pull: open loops and reversals that force the next paragraph.",
				Levels: map[string]string{
					"0-40":   "nothing unresolved; easy to stop reading",
					"41-70":  "one mild open question",
					"71-100": "multiple live hooks, ending on an open beat",
				},
			},
		},
		JudgeInstructions: `You are a ruthless story editor. Score the draft against the rubric below.
Respond with a single JSON object, no surrounding prose:
{"score": <0-100>, "dimension_scores": {"<criterion>": <0-100>, ...}, "critique": "<what fails and why>", "revision_plan": "<concrete instructions for the rewrite>"}`,
	}
}
