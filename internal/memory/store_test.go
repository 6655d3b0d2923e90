// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzhang499-gif/LongTextAgent/pkg/types"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	s1, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	// Reopening an existing database must not fail on schema creation.
	s2, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s2.Close())
}

func TestSaveSectionAndRecentSummaries(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	for i := 1; i <= 7; i++ {
		_, err := s.SaveSection(ctx, SectionRecord{
			ChapterID: 1,
			SubTaskID: i,
			Title:     fmt.Sprintf("part %d", i),
			Content:   fmt.Sprintf("content %d", i),
			Summary:   fmt.Sprintf("summary %d", i),
			Words:     100,
		})
		require.NoError(t, err)
	}

	got, err := s.RecentSummaries(ctx, 3)
	require.NoError(t, err)
	// Last three, oldest first.
	assert.Equal(t, []string{"summary 5", "summary 6", "summary 7"}, got)
}

func TestRecentSummariesSkipsEmpty(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	_, err := s.SaveSection(ctx, SectionRecord{ChapterID: 1, SubTaskID: 1, Content: "c1", Summary: "s1"})
	require.NoError(t, err)
	_, err = s.SaveSection(ctx, SectionRecord{ChapterID: 1, SubTaskID: 2, Content: "c2"})
	require.NoError(t, err)

	got, err := s.RecentSummaries(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, got)
}

func TestLastSection(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	rec, err := s.LastSection(ctx)
	require.NoError(t, err)
	assert.Nil(t, rec)

	_, err = s.SaveSection(ctx, SectionRecord{ChapterID: 1, SubTaskID: 1, Content: "first"})
	require.NoError(t, err)
	_, err = s.SaveSection(ctx, SectionRecord{ChapterID: 1, SubTaskID: 2, Content: "second"})
	require.NoError(t, err)

	rec, err = s.LastSection(ctx)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "second", rec.Content)
	assert.Equal(t, 2, rec.SubTaskID)
}

func TestChapterSections(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	for _, rec := range []SectionRecord{
		{ChapterID: 1, SubTaskID: 1, Content: "a"},
		{ChapterID: 2, SubTaskID: 2, Content: "b"},
		{ChapterID: 1, SubTaskID: 3, Content: "c"},
	} {
		_, err := s.SaveSection(ctx, rec)
		require.NoError(t, err)
	}

	got, err := s.ChapterSections(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Content)
	assert.Equal(t, "c", got[1].Content)
}

func TestSearchFindsStoredContent(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	_, err := s.SaveSection(ctx, SectionRecord{ChapterID: 1, SubTaskID: 1,
		Content: "The vendor lit the charcoal brazier at dusk."})
	require.NoError(t, err)
	_, err = s.SaveSection(ctx, SectionRecord{ChapterID: 1, SubTaskID: 2,
		Content: "Rain swept the empty street."})
	require.NoError(t, err)

	got, err := s.Search(ctx, "brazier", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Content, "charcoal brazier")
}

func TestSettingsRoundTrip(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	in := map[string]any{
		"world":      "modern city",
		"characters": []any{"Gu Lingtian", "The fiancée"},
	}
	require.NoError(t, s.SaveSettings(ctx, in))

	// Upsert overwrites.
	require.NoError(t, s.SaveSettings(ctx, map[string]any{"world": "near future"}))

	got, err := s.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "near future", got["world"])
	assert.Equal(t, []any{"Gu Lingtian", "The fiancée"}, got["characters"])
}

func TestIssuesReplacePerChapter(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	first := types.CheckResult{
		ChapterID: 2,
		Issues: []types.ConsistencyIssue{
			{Type: types.IssueTimeline, Severity: types.SeverityHigh, Description: "day skips backwards"},
			{Type: types.IssueCharacterName, Severity: types.SeverityLow, Description: "name drift", Location: "para 3"},
		},
	}
	require.NoError(t, s.SaveIssues(ctx, first))

	// A re-check replaces the chapter's findings.
	second := types.CheckResult{
		ChapterID: 2,
		Issues: []types.ConsistencyIssue{
			{Type: types.IssuePlotHole, Severity: types.SeverityCritical, Description: "unexplained escape"},
		},
	}
	require.NoError(t, s.SaveIssues(ctx, second))

	got, err := s.Issues(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, types.IssuePlotHole, got[0].Type)
	assert.Equal(t, types.SeverityCritical, got[0].Severity)
}
