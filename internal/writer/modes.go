// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package writer assembles generation context and prompts for each
// writing mode (novel, report, article, document) and produces chapter
// summaries for the continuity store.
package writer

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// Mode holds one writing mode's prompt configuration.
type Mode struct {
	// Name is the mode's display name.
	Name string `yaml:"name"`

	// SystemPrompt sets the writing persona for generation calls.
	SystemPrompt string `yaml:"system_prompt"`

	// SummaryPrompt asks for a chapter summary in this mode's register.
	SummaryPrompt string `yaml:"summary_prompt"`

	// ContextTemplate optionally overrides the default context layout.
	// Placeholders: {settings}, {summaries}, {recent}, {task}.
	ContextTemplate string `yaml:"context_template,omitempty"`
}

// ModeSet is the loaded mode configuration.
type ModeSet struct {
	Modes       map[string]Mode `yaml:"modes"`
	DefaultMode string          `yaml:"default_mode"`
}

// LoadModes reads the mode config YAML. A missing file falls back to
// the built-in modes; a present-but-invalid file is an error.
func LoadModes(path string) (*ModeSet, error) {
	if path == "" {
		return defaultModes(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultModes(), nil
		}
		return nil, fmt.Errorf("reading modes %s: %w", path, err)
	}

	var ms ModeSet
	if err := yaml.Unmarshal(data, &ms); err != nil {
		return nil, fmt.Errorf("parsing modes %s: %w", path, err)
	}
	if len(ms.Modes) == 0 {
		return nil, fmt.Errorf("modes %s: no modes defined", path)
	}
	if ms.DefaultMode == "" {
		ms.DefaultMode = "novel"
	}
	return &ms, nil
}

// Get returns the named mode, falling back to the default mode when the
// name is unknown.
func (ms *ModeSet) Get(name string) Mode {
	if m, ok := ms.Modes[name]; ok {
		return m
	}
	return ms.Modes[ms.DefaultMode]
}

// Names lists the configured mode names.
func (ms *ModeSet) Names() []string {
	names := make([]string, 0, len(ms.Modes))
	for name := range ms.Modes {
		names = append(names, name)
	}
	return names
}

func defaultModes() *ModeSet {
	return &ModeSet{
		DefaultMode: "novel",
		Modes: map[string]Mode{
			"novel": {
				Name:          "Fiction / story",
				SystemPrompt:  "You are a professional novelist. Write vivid, high-quality narrative prose grounded in the provided context.",
				SummaryPrompt: "Summarize the following passage concisely, covering the main events and character actions.",
			},
			"drama": {
				Name:          "Short-form drama",
				SystemPrompt:  "You are a short-form drama screenwriter. Write punchy, intensely visual scenes: fast reversals, concrete actions, emotions shown through what characters do.",
				SummaryPrompt: "Summarize the following scene concisely: who did what, and which hooks remain open.",
			},
			"report": {
				Name:          "Research report",
				SystemPrompt:  "You are a professional research analyst. Write clearly structured, logically argued report content with accurate framing of data.",
				SummaryPrompt: "Summarize the following content concisely, covering the core findings and key conclusions.",
			},
			"article": {
				Name:          "Article / blog",
				SystemPrompt:  "You are an experienced content writer. Write engaging, valuable article content.",
				SummaryPrompt: "Summarize the following content concisely, covering the central argument and main points.",
			},
			"document": {
				Name:          "Technical documentation",
				SystemPrompt:  "You are a technical writer. Write clear, accurate documentation.",
				SummaryPrompt: "Summarize the following content concisely, covering the features and key steps described.",
			},
		},
	}
}
