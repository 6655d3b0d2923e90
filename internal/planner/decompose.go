// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package planner

import (
	"context"
	"fmt"

	"go.yaml.in/yaml/v3"

	"github.com/zhouzhang499-gif/LongTextAgent/pkg/types"
)

// defaultSubtaskNames seed the generic fallback arc when the model
// declines to decompose a chapter.
var defaultSubtaskNames = []string{"Opening", "Development", "Turn", "Climax", "Close"}

// yamlSubtask is the decomposition reply shape.
type yamlSubtask struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	ContextHint string `yaml:"context_hint"`
}

// DecomposeChapter splits a chapter into section-sized subtasks. The
// subtask count follows the chapter's word budget; a chapter that fits
// in one section stays a single inline subtask. Subtask IDs are left
// zero for the caller to assign globally.
func (p *Planner) DecomposeChapter(ctx context.Context, ch types.Chapter) ([]types.SubTask, error) {
	count := p.subtaskCount(ch.TargetWords)

	if count == 1 {
		return []types.SubTask{{
			ChapterID:   ch.ID,
			Title:       ch.Title,
			Description: ch.Brief,
			TargetWords: ch.TargetWords,
		}}, nil
	}

	perTask := ch.TargetWords / count
	subtasks, err := p.decomposeWithModel(ctx, ch, count)
	if err != nil || len(subtasks) == 0 {
		subtasks = defaultSubtasks(ch, count)
	}
	for i := range subtasks {
		subtasks[i].ChapterID = ch.ID
		subtasks[i].TargetWords = perTask
	}
	return subtasks, nil
}

// subtaskCount sizes the split so each subtask lands inside the
// tolerance band around WordsPerSection. A remainder big enough to be
// its own section (MinTolerance) gets one, and so does any remainder
// that would push the per-task size past MaxTolerance.
func (p *Planner) subtaskCount(targetWords int) int {
	wps := p.cfg.WordsPerSection
	count := targetWords / wps
	rem := targetWords % wps

	switch {
	case count < 1:
		return 1
	case rem == 0:
		return count
	case float64(rem) >= p.cfg.MinTolerance*float64(wps):
		return count + 1
	case float64(targetWords)/float64(count) > p.cfg.MaxTolerance*float64(wps):
		return count + 1
	}
	return count
}

// decomposeWithModel asks the model for the subtask breakdown.
func (p *Planner) decomposeWithModel(ctx context.Context, ch types.Chapter, count int) ([]types.SubTask, error) {
	prompt := fmt.Sprintf(`Split this chapter into %d consecutive writing tasks.

== Chapter ==
Title: %s
Synopsis: %s
Total length: %d words

Each task covers one contiguous stretch of the chapter, in order, with
no gaps or overlaps. Output strictly a YAML code block:
`+"```yaml"+`
subtasks:
  - title: task title
    description: what this stretch must cover
    context_hint: how it connects to the previous stretch
`+"```", count, ch.Title, ch.Brief, ch.TargetWords)

	reply, err := p.client.Generate(ctx, prompt, "", 2048)
	if err != nil {
		return nil, err
	}

	var doc struct {
		Subtasks []yamlSubtask `yaml:"subtasks"`
	}
	if err := yaml.Unmarshal([]byte(extractYAML(reply)), &doc); err != nil {
		return nil, fmt.Errorf("parsing decomposition: %w", err)
	}

	tasks := make([]types.SubTask, 0, len(doc.Subtasks))
	for _, st := range doc.Subtasks {
		if st.Title == "" {
			continue
		}
		tasks = append(tasks, types.SubTask{
			Title:       st.Title,
			Description: st.Description,
			ContextHint: st.ContextHint,
		})
	}
	return tasks, nil
}

// defaultSubtasks builds a generic narrative arc for the chapter.
func defaultSubtasks(ch types.Chapter, count int) []types.SubTask {
	tasks := make([]types.SubTask, count)
	for i := range tasks {
		name := defaultSubtaskNames[len(defaultSubtaskNames)-1]
		if i < len(defaultSubtaskNames) {
			name = defaultSubtaskNames[i]
		}
		tasks[i] = types.SubTask{
			Title:       fmt.Sprintf("%s: %s (%d/%d)", ch.Title, name, i+1, count),
			Description: ch.Brief,
		}
	}
	return tasks
}
