// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package planner

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzhang499-gif/LongTextAgent/pkg/types"
)

// plannerClient dispatches canned replies on prompt content.
type plannerClient struct {
	chapterReply string
	subtaskReply string
	titleReply   string
	err          error
}

func (c *plannerClient) Generate(_ context.Context, prompt, _ string, _ int) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	switch {
	case strings.Contains(prompt, "Propose a title"):
		return c.titleReply, nil
	case strings.Contains(prompt, "consecutive writing tasks"):
		return c.subtaskReply, nil
	default:
		return c.chapterReply, nil
	}
}

func genCfg() types.GenerationConfig {
	return types.GenerationConfig{WordsPerSection: 1000}
}

func TestParseOutlineYAMLStringChapters(t *testing.T) {
	outline := `title: The Hidden Heir
type: drama
settings:
  world: modern city
chapters:
  - "The engagement is broken in public."
  - "The heir reveals his first card."
`
	p := New(&plannerClient{}, genCfg())
	plan, err := p.ParseOutline(context.Background(), outline, 6000)
	require.NoError(t, err)

	assert.Equal(t, "The Hidden Heir", plan.Title)
	assert.Equal(t, "drama", plan.ContentType)
	assert.Equal(t, "modern city", plan.Settings["world"])
	require.Len(t, plan.Chapters, 2)
	assert.Equal(t, 1, plan.Chapters[0].ID)
	assert.Equal(t, "Chapter 1", plan.Chapters[0].Title)
	assert.Equal(t, "The engagement is broken in public.", plan.Chapters[0].Brief)
	// Budget split evenly across chapters.
	assert.Equal(t, 3000, plan.Chapters[0].TargetWords)
	assert.Equal(t, 3000, plan.Chapters[1].TargetWords)
}

func TestParseOutlineYAMLDetailedChapters(t *testing.T) {
	outline := `title: Report
chapters:
  - title: Market landscape
    brief: Size and segmentation.
    words: 1800
  - title: Competitors
    description: Who the main players are.
`
	p := New(&plannerClient{}, genCfg())
	plan, err := p.ParseOutline(context.Background(), outline, 4000)
	require.NoError(t, err)

	require.Len(t, plan.Chapters, 2)
	assert.Equal(t, "Market landscape", plan.Chapters[0].Title)
	assert.Equal(t, 1800, plan.Chapters[0].TargetWords)
	// description is accepted as a brief alias.
	assert.Equal(t, "Who the main players are.", plan.Chapters[1].Brief)
	assert.Equal(t, 2000, plan.Chapters[1].TargetWords)
}

func TestParseOutlineNaturalSingleChunk(t *testing.T) {
	client := &plannerClient{
		titleReply: `"Night Market"`,
		chapterReply: "Here you go:\n```yaml\n" +
			"chapters:\n" +
			"  - title: The stall opens\n" +
			"    brief: A vendor sets up at dusk.\n" +
			"    words: 1200\n" +
			"  - title: The regular\n" +
			"    brief: An old customer brings trouble.\n" +
			"```",
	}
	p := New(client, genCfg())

	plan, err := p.ParseOutline(context.Background(), "A story about a night market vendor and a mysterious regular.", 3000)
	require.NoError(t, err)

	assert.Equal(t, "Night Market", plan.Title)
	require.Len(t, plan.Chapters, 2)
	assert.Equal(t, "The stall opens", plan.Chapters[0].Title)
	assert.Equal(t, 1200, plan.Chapters[0].TargetWords)
	// Missing words falls back to the per-chunk budget.
	assert.Equal(t, 3000, plan.Chapters[1].TargetWords)
	assert.Equal(t, []int{1, 2}, []int{plan.Chapters[0].ID, plan.Chapters[1].ID})
}

func TestParseOutlineNaturalSalvagesBadChunk(t *testing.T) {
	client := &plannerClient{chapterReply: "no yaml here at all", titleReply: "T"}
	p := New(client, genCfg())

	plan, err := p.ParseOutline(context.Background(), "an unstructured outline", 2000)
	require.NoError(t, err)

	require.Len(t, plan.Chapters, 1)
	assert.Contains(t, plan.Chapters[0].Title, "Recovered chapter")
	assert.Contains(t, plan.Chapters[0].Brief, "an unstructured outline")
	assert.Equal(t, 2000, plan.Chapters[0].TargetWords)
}

func TestParseOutlineTitleFallback(t *testing.T) {
	client := &plannerClient{
		chapterReply: "```yaml\nchapters:\n  - title: Only\n    brief: b\n```",
		titleReply:   "   ",
	}
	p := New(client, genCfg())

	plan, err := p.ParseOutline(context.Background(), "something", 1000)
	require.NoError(t, err)
	assert.Equal(t, "Untitled", plan.Title)
}

func TestDecomposeChapterSingleSection(t *testing.T) {
	p := New(&plannerClient{}, genCfg())
	ch := types.Chapter{ID: 3, Title: "Short chapter", Brief: "brief", TargetWords: 800}

	tasks, err := p.DecomposeChapter(context.Background(), ch)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, 3, tasks[0].ChapterID)
	assert.Equal(t, "Short chapter", tasks[0].Title)
	assert.Equal(t, 800, tasks[0].TargetWords)
}

func TestDecomposeChapterWithModel(t *testing.T) {
	client := &plannerClient{
		subtaskReply: "```yaml\n" +
			"subtasks:\n" +
			"  - title: Setup\n" +
			"    description: Introduce the standoff.\n" +
			"    context_hint: cold open\n" +
			"  - title: Collapse\n" +
			"    description: The deal falls apart.\n" +
			"    context_hint: follows directly from the standoff\n" +
			"```",
	}
	p := New(client, genCfg())
	ch := types.Chapter{ID: 1, Title: "The deal", Brief: "b", TargetWords: 2000}

	tasks, err := p.DecomposeChapter(context.Background(), ch)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Setup", tasks[0].Title)
	assert.Equal(t, "cold open", tasks[0].ContextHint)
	// 2000 words over 2 subtasks.
	assert.Equal(t, 1000, tasks[0].TargetWords)
	assert.Equal(t, 1, tasks[1].ChapterID)
}

func TestSubtaskCountRespectsToleranceBand(t *testing.T) {
	p := New(&plannerClient{}, genCfg())

	tests := []struct {
		name        string
		targetWords int
		want        int
	}{
		{"below one section", 800, 1},
		{"small overshoot folds in", 1150, 1},
		{"large remainder splits", 1900, 2},
		{"exact multiple", 2000, 2},
		{"oversize per task splits", 2500, 3},
		{"remainder its own section", 2800, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.subtaskCount(tt.targetWords))
		})
	}
}

func TestDecomposeChapterFallsBackToDefaultArc(t *testing.T) {
	client := &plannerClient{subtaskReply: "sorry, I cannot"}
	p := New(client, genCfg())
	ch := types.Chapter{ID: 2, Title: "Big chapter", Brief: "b", TargetWords: 3000}

	tasks, err := p.DecomposeChapter(context.Background(), ch)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Contains(t, tasks[0].Title, "Opening")
	assert.Contains(t, tasks[1].Title, "Development")
	assert.Contains(t, tasks[2].Title, "Turn")
	for _, task := range tasks {
		assert.Equal(t, 2, task.ChapterID)
		assert.Equal(t, 1000, task.TargetWords)
	}
}

func TestCreateFullPlanAssignsGlobalSubtaskIDs(t *testing.T) {
	outline := `title: T
chapters:
  - title: A
    brief: a
    words: 900
  - title: B
    brief: b
    words: 900
`
	p := New(&plannerClient{}, genCfg())
	plan, err := p.CreateFullPlan(context.Background(), outline, 1800)
	require.NoError(t, err)

	require.Len(t, plan.Chapters, 2)
	require.Len(t, plan.Chapters[0].SubTasks, 1)
	require.Len(t, plan.Chapters[1].SubTasks, 1)
	assert.Equal(t, 1, plan.Chapters[0].SubTasks[0].ID)
	assert.Equal(t, 2, plan.Chapters[1].SubTasks[0].ID)
}

func TestChunkOutlineShortStaysWhole(t *testing.T) {
	chunks := chunkOutline("a short outline")
	assert.Equal(t, []string{"a short outline"}, chunks)
}

func TestChunkOutlineSplitsOnHeadings(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 4; i++ {
		fmt.Fprintf(&b, "Chapter %d\n%s\n", i, strings.Repeat("plot point. ", 60))
	}
	chunks := chunkOutline(b.String())

	require.Greater(t, len(chunks), 1)
	assert.True(t, strings.HasPrefix(chunks[0], "Chapter 1"))
	// Headings start chunks, never dangle at a chunk's end.
	for _, c := range chunks {
		assert.NotEmpty(t, strings.TrimSpace(c))
	}
}

func TestChunkOutlineForceSplitsMarkerFreeText(t *testing.T) {
	text := strings.Repeat("a long run of words without any headings here ", 120)
	chunks := chunkOutline(text)

	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c)), 3000)
	}
}

func TestExtractYAML(t *testing.T) {
	assert.Equal(t, "a: 1", extractYAML("```yaml\na: 1\n```"))
	assert.Equal(t, "a: 1", extractYAML("prefix\n```\na: 1\n```\nsuffix"))
	assert.Equal(t, "a: 1", extractYAML("a: 1"))
}
