// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package planner parses an outline into a ContentPlan and decomposes
// chapters into engine-sized subtasks. Structured (YAML) outlines parse
// directly; natural-language outlines are chunked and parsed through
// the model in parallel.
package planner

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"

	"github.com/zhouzhang499-gif/LongTextAgent/internal/llm"
	"github.com/zhouzhang499-gif/LongTextAgent/internal/textutil"
	"github.com/zhouzhang499-gif/LongTextAgent/pkg/types"
)

const (
	// untitledWork is the fallback document title.
	untitledWork = "Untitled"

	// chunkThreshold: outlines shorter than this parse as one chunk.
	chunkThreshold = 1500

	// chunkTarget is the preferred aggregated chunk size in runes.
	chunkTarget = 2000
)

// Planner builds ContentPlans.
type Planner struct {
	client llm.Client
	cfg    types.GenerationConfig
}

// New builds a Planner.
func New(client llm.Client, cfg types.GenerationConfig) *Planner {
	cfg.Normalize()
	return &Planner{client: client, cfg: cfg}
}

// yamlOutline mirrors the accepted structured outline document.
type yamlOutline struct {
	Title    string         `yaml:"title"`
	Type     string         `yaml:"type"`
	Settings map[string]any `yaml:"settings"`
	Chapters []yaml.Node    `yaml:"chapters"`
}

// yamlChapter is the detailed chapter form inside a structured outline.
type yamlChapter struct {
	Title       string `yaml:"title"`
	Brief       string `yaml:"brief"`
	Description string `yaml:"description"`
	Words       int    `yaml:"words"`
}

// ParseOutline turns outline text into a ContentPlan. YAML outlines
// parse directly; anything else goes through model-assisted parsing.
func (p *Planner) ParseOutline(ctx context.Context, outline string, targetWords int) (*types.ContentPlan, error) {
	var doc yamlOutline
	if err := yaml.Unmarshal([]byte(outline), &doc); err == nil && len(doc.Chapters) > 0 {
		return p.fromYAMLOutline(doc, targetWords)
	}
	return p.parseNaturalOutline(ctx, outline, targetWords)
}

// CreateFullPlan parses the outline and decomposes every chapter into
// subtasks.
func (p *Planner) CreateFullPlan(ctx context.Context, outline string, targetWords int) (*types.ContentPlan, error) {
	plan, err := p.ParseOutline(ctx, outline, targetWords)
	if err != nil {
		return nil, err
	}

	nextID := 1
	for i := range plan.Chapters {
		subtasks, err := p.DecomposeChapter(ctx, plan.Chapters[i])
		if err != nil {
			return nil, fmt.Errorf("decomposing chapter %d: %w", plan.Chapters[i].ID, err)
		}
		for j := range subtasks {
			subtasks[j].ID = nextID
			nextID++
		}
		plan.Chapters[i].SubTasks = subtasks
	}
	return plan, nil
}

// fromYAMLOutline converts a structured outline. Chapters may be plain
// strings (brief only) or detailed mappings.
func (p *Planner) fromYAMLOutline(doc yamlOutline, targetWords int) (*types.ContentPlan, error) {
	title := doc.Title
	if title == "" {
		title = untitledWork
	}
	contentType := doc.Type
	if contentType == "" {
		contentType = "novel"
	}

	perChapter := targetWords
	if len(doc.Chapters) > 0 {
		perChapter = targetWords / len(doc.Chapters)
	}

	var chapters []types.Chapter
	for i, node := range doc.Chapters {
		ch := types.Chapter{ID: i + 1, TargetWords: perChapter}

		var brief string
		if node.Decode(&brief) == nil && brief != "" {
			ch.Title = fmt.Sprintf("Chapter %d", i+1)
			ch.Brief = brief
		} else {
			var detail yamlChapter
			if err := node.Decode(&detail); err != nil {
				return nil, fmt.Errorf("chapter %d: unrecognized outline entry", i+1)
			}
			ch.Title = detail.Title
			if ch.Title == "" {
				ch.Title = fmt.Sprintf("Chapter %d", i+1)
			}
			ch.Brief = detail.Brief
			if ch.Brief == "" {
				ch.Brief = detail.Description
			}
			if detail.Words > 0 {
				ch.TargetWords = detail.Words
			}
		}
		chapters = append(chapters, ch)
	}

	return &types.ContentPlan{
		Title:            title,
		TotalTargetWords: targetWords,
		ContentType:      contentType,
		Chapters:         chapters,
		Settings:         doc.Settings,
	}, nil
}

var fencedYAML = regexp.MustCompile("(?s)```(?:yaml)?\\s*(.*?)\\s*```")

// extractYAML pulls the fenced YAML block out of a model reply, or
// returns the reply itself when no fence is present.
func extractYAML(reply string) string {
	if m := fencedYAML.FindStringSubmatch(reply); m != nil {
		return m[1]
	}
	return reply
}

// parseNaturalOutline chunks a free-form outline and asks the model to
// extract structured chapters from each chunk in parallel. A chunk
// whose parse fails degrades to a single salvage chapter built from the
// chunk text, so a bad chunk never sinks the whole outline.
func (p *Planner) parseNaturalOutline(ctx context.Context, outline string, targetWords int) (*types.ContentPlan, error) {
	chunks := chunkOutline(outline)
	perChunk := targetWords
	if len(chunks) > 0 {
		perChunk = targetWords / len(chunks)
	}

	results := make([][]yamlChapter, len(chunks))
	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		go func(slot int, text string) {
			defer wg.Done()
			results[slot] = p.parseChunk(ctx, slot, text, perChunk)
		}(i, chunk)
	}
	wg.Wait()

	var chapters []types.Chapter
	id := 0
	for _, chunkChapters := range results {
		for _, cc := range chunkChapters {
			id++
			words := cc.Words
			if words <= 0 {
				words = perChunk
			}
			title := cc.Title
			if title == "" {
				title = fmt.Sprintf("Chapter %d", id)
			}
			brief := cc.Brief
			if brief == "" {
				brief = cc.Description
			}
			chapters = append(chapters, types.Chapter{
				ID:          id,
				Title:       title,
				Brief:       brief,
				TargetWords: words,
			})
		}
	}
	if len(chapters) == 0 {
		return nil, fmt.Errorf("outline yielded no chapters")
	}

	return &types.ContentPlan{
		Title:            p.extractTitle(ctx, outline),
		TotalTargetWords: targetWords,
		ContentType:      "novel",
		Chapters:         chapters,
	}, nil
}

// parseChunk asks the model to structure one outline chunk.
func (p *Planner) parseChunk(ctx context.Context, idx int, chunk string, wordsPerChunk int) []yamlChapter {
	prompt := fmt.Sprintf(`Analyze this outline fragment and extract its chapters.

== Outline fragment ==
%s

== Word budget for this fragment ==
%d words

Output strictly a YAML code block in this shape, preserving the
fragment's chapter order; construct a reasonable single chapter if the
fragment has no explicit structure:
`+"```yaml"+`
chapters:
  - title: chapter title
    brief: 50-100 word synopsis drawn from the fragment
    words: estimated word count
`+"```", chunk, wordsPerChunk)

	salvage := []yamlChapter{{
		Title: fmt.Sprintf("Recovered chapter (fragment %d)", idx+1),
		Brief: textutil.Truncate(chunk, 200),
		Words: wordsPerChunk,
	}}

	reply, err := p.client.Generate(ctx, prompt, "", 2048)
	if err != nil {
		return salvage
	}

	var doc struct {
		Chapters []yamlChapter `yaml:"chapters"`
	}
	if err := yaml.Unmarshal([]byte(extractYAML(reply)), &doc); err != nil || len(doc.Chapters) == 0 {
		return salvage
	}
	return doc.Chapters
}

// extractTitle asks the model for a document title; failures fall back
// to the default rather than aborting the plan.
func (p *Planner) extractTitle(ctx context.Context, outline string) string {
	prompt := fmt.Sprintf("Propose a title for the work described by this outline:\n%s\nOutput only the title, no quotes or commentary.",
		textutil.Truncate(outline, 1000))

	reply, err := p.client.Generate(ctx, prompt, "", 50)
	if err != nil {
		return untitledWork
	}
	title := strings.Trim(strings.TrimSpace(reply), `"“”`)
	if title == "" {
		return untitledWork
	}
	return title
}

// chapterMarker matches common chapter/volume headings used to split a
// long outline at natural boundaries.
var chapterMarker = regexp.MustCompile(`(?m)^(?:第.{1,6}[章卷回节幕]|Chapter\s*\d+|#+\s+)`)

// chunkOutline splits a long natural-language outline into model-sized
// chunks. Short outlines stay whole; marker-free walls of text fall
// back to size-based splitting at line boundaries.
func chunkOutline(outline string) []string {
	if len([]rune(outline)) < chunkThreshold {
		return []string{outline}
	}

	// Split before each chapter marker, then aggregate to target size.
	locs := chapterMarker.FindAllStringIndex(outline, -1)
	var parts []string
	prev := 0
	for _, loc := range locs {
		if loc[0] > prev {
			parts = append(parts, outline[prev:loc[0]])
		}
		prev = loc[0]
	}
	parts = append(parts, outline[prev:])

	var chunks []string
	var current strings.Builder
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		if current.Len() > 0 && len([]rune(current.String()))+len([]rune(part)) > chunkTarget {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
		current.WriteString(part)
	}
	if strings.TrimSpace(current.String()) != "" {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}

	// No markers matched: brute-force split a single oversized chunk.
	if len(chunks) == 1 && len([]rune(chunks[0])) > 3000 {
		return forceSplit(chunks[0], 2500)
	}
	return chunks
}

// forceSplit cuts text every step runes, preferring a nearby newline.
func forceSplit(text string, step int) []string {
	runes := []rune(text)
	var chunks []string
	for i := 0; i < len(runes); {
		end := i + step
		if end >= len(runes) {
			end = len(runes)
		} else {
			// Extend to the next newline when one is close.
			for j := end; j < len(runes) && j < end+500; j++ {
				if runes[j] == '\n' {
					end = j + 1
					break
				}
			}
		}
		chunk := strings.TrimSpace(string(runes[i:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		i = end
	}
	return chunks
}
