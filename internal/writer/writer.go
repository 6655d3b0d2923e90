// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package writer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/zhouzhang499-gif/LongTextAgent/internal/llm"
	"github.com/zhouzhang499-gif/LongTextAgent/internal/textutil"
	"github.com/zhouzhang499-gif/LongTextAgent/pkg/types"
)

// recentTailRunes bounds the excerpt of recent content carried into the
// next section's context for seam continuity.
const recentTailRunes = 500

// maxRecentSummaries bounds how many trailing summaries a context keeps.
const maxRecentSummaries = 5

// Writer turns a subtask plus continuity material into the context blob
// the engine consumes, and produces summaries for the memory store.
type Writer struct {
	client llm.Client
	modes  *ModeSet
	mode   Mode
}

// New builds a Writer in the named mode.
func New(client llm.Client, modes *ModeSet, mode string) *Writer {
	return &Writer{client: client, modes: modes, mode: modes.Get(mode)}
}

// SetMode switches the writing mode.
func (w *Writer) SetMode(name string) {
	w.mode = w.modes.Get(name)
}

// SystemPrompt returns the mode's system prompt, extended with any
// custom style requirements.
func (w *Writer) SystemPrompt(style string) string {
	if style == "" {
		return w.mode.SystemPrompt
	}
	return w.mode.SystemPrompt + "\n\nAdditional style requirements: " + style
}

// BuildContext assembles the section context: settings, trailing
// summaries, the tail of the most recent content, and the task block.
// When the mode defines a context template its placeholders are filled
// instead.
func (w *Writer) BuildContext(settings map[string]any, summaries []string, task types.SubTask, recent string) string {
	settingsText := formatSettings(settings)
	summariesText := formatSummaries(summaries)
	recentText := textutil.TailWindow(recent, recentTailRunes)
	taskText := formatTask(task)

	if w.mode.ContextTemplate != "" {
		repl := strings.NewReplacer(
			"{settings}", orNone(settingsText),
			"{summaries}", orNone(summariesText),
			"{recent}", orNone(recentText),
			"{task}", taskText,
		)
		return repl.Replace(w.mode.ContextTemplate)
	}

	var parts []string
	if settingsText != "" {
		parts = append(parts, "== Background ==\n"+settingsText)
	}
	if summariesText != "" {
		parts = append(parts, "== Previously ==\n"+summariesText)
	}
	if recentText != "" {
		parts = append(parts, "== The text so far ends with ==\n..."+recentText)
	}
	parts = append(parts, taskText)
	return strings.Join(parts, "\n\n")
}

// Summarize produces a bounded summary of content in the current mode's
// register, for the continuity store.
func (w *Writer) Summarize(ctx context.Context, content string, maxWords int) (string, error) {
	if maxWords <= 0 {
		maxWords = 300
	}
	prompt := fmt.Sprintf("%s Keep it under %d words.\n\n== Content ==\n%s\n\n== Summary ==\n",
		w.mode.SummaryPrompt, maxWords, content)

	summary, err := w.client.Generate(ctx, prompt, "", 1024)
	if err != nil {
		return "", fmt.Errorf("summarizing: %w", err)
	}
	return strings.TrimSpace(summary), nil
}

// formatTask renders the current subtask block.
func formatTask(task types.SubTask) string {
	hint := task.ContextHint
	if hint == "" {
		hint = "transition naturally from the previous section"
	}
	return fmt.Sprintf("== Current task ==\n- Task: %s\n- Requirements: %s\n- Target length: %d words\n- Continuity: %s",
		task.Title, task.Description, task.TargetWords, hint)
}

// formatSummaries renders the trailing summaries as a bullet list.
func formatSummaries(summaries []string) string {
	if len(summaries) > maxRecentSummaries {
		summaries = summaries[len(summaries)-maxRecentSummaries:]
	}
	var b strings.Builder
	for i, s := range summaries {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- " + s)
	}
	return b.String()
}

// settingsOrder lists the known settings keys in render order; unknown
// keys follow alphabetically.
var settingsOrder = []string{"characters", "world", "style", "audience", "tech_stack"}

var settingsHeadings = map[string]string{
	"characters": "Main characters",
	"world":      "World / background",
	"style":      "Style",
	"audience":   "Target audience",
	"tech_stack": "Tech stack",
}

// formatSettings renders the settings map into labeled sections.
// Characters accept either a list or a name→description map.
func formatSettings(settings map[string]any) string {
	if len(settings) == 0 {
		return ""
	}

	var parts []string
	rendered := make(map[string]bool)

	for _, key := range settingsOrder {
		if v, ok := settings[key]; ok {
			parts = append(parts, fmt.Sprintf("[%s]\n%s", settingsHeadings[key], formatSettingValue(v)))
			rendered[key] = true
		}
	}

	var rest []string
	for key := range settings {
		if !rendered[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		parts = append(parts, fmt.Sprintf("[%s]\n%s", key, formatSettingValue(settings[key])))
	}

	return strings.Join(parts, "\n")
}

// formatSettingValue renders lists and maps as indented bullets and
// everything else via fmt.
func formatSettingValue(v any) string {
	switch val := v.(type) {
	case []any:
		var b strings.Builder
		for i, item := range val {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "  - %v", item)
		}
		return b.String()
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b strings.Builder
		for i, k := range keys {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "  - %s: %v", k, val[k])
		}
		return b.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
