// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline orchestrates a full generation run: plan the outline,
// produce each subtask through the section engine, summarize into the
// continuity store, and assemble the output document.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/zhouzhang499-gif/LongTextAgent/internal/checker"
	"github.com/zhouzhang499-gif/LongTextAgent/internal/engine"
	"github.com/zhouzhang499-gif/LongTextAgent/internal/judge"
	"github.com/zhouzhang499-gif/LongTextAgent/internal/llm"
	"github.com/zhouzhang499-gif/LongTextAgent/internal/memory"
	"github.com/zhouzhang499-gif/LongTextAgent/internal/planner"
	"github.com/zhouzhang499-gif/LongTextAgent/internal/rubric"
	"github.com/zhouzhang499-gif/LongTextAgent/internal/writer"
	"github.com/zhouzhang499-gif/LongTextAgent/pkg/types"
)

// summaryMaxWords bounds per-section summaries in the continuity store.
const summaryMaxWords = 300

// Pipeline wires the planner, engine, writer, checker, and memory store
// into one generation run.
type Pipeline struct {
	cfg     types.PipelineConfig
	client  llm.Client
	rubric  *rubric.Rubric
	writer  *writer.Writer
	planner *planner.Planner
	store   *memory.Store
	checker *checker.Checker
	out     io.Writer
}

// New builds a Pipeline with a live API client resolved from cfg.
func New(cfg types.PipelineConfig, mode string, out io.Writer) (*Pipeline, error) {
	cfg.Normalize()
	base, err := llm.NewOpenAIClient(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("building client: %w", err)
	}
	return NewWithClient(cfg, mode, llm.WithRetry(base, cfg.LLM.MaxRetries), out)
}

// NewWithClient builds a Pipeline around an existing client. Tests and
// callers that wrap the client themselves use this entry point.
func NewWithClient(cfg types.PipelineConfig, mode string, client llm.Client, out io.Writer) (*Pipeline, error) {
	// An unset pass threshold takes the rubric's target score, so the
	// raw value must be read before Normalize fills the default.
	thresholdUnset := cfg.Engine.PassThreshold <= 0
	cfg.Normalize()
	if out == nil {
		out = io.Discard
	}

	r, err := rubric.Load(cfg.RubricPath)
	if err != nil {
		return nil, err
	}
	if thresholdUnset {
		cfg.Engine.PassThreshold = r.TargetPassScore
	}

	modes, err := writer.LoadModes(cfg.ModesPath)
	if err != nil {
		return nil, err
	}

	store, err := memory.Open(cfg.MemoryDir)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		cfg:     cfg,
		client:  client,
		rubric:  r,
		writer:  writer.New(client, modes, mode),
		planner: planner.New(client, cfg.Generation),
		store:   store,
		checker: checker.New(client),
		out:     out,
	}, nil
}

// Close releases the continuity store.
func (p *Pipeline) Close() error {
	return p.store.Close()
}

// RunResult is the outcome of a full generation run.
type RunResult struct {
	Title      string
	OutputPath string
	TotalWords int
	Sections   int
	Rejected   int
}

// Run generates the full document from an outline: plan, produce every
// subtask, and write the assembled document under the output directory.
func (p *Pipeline) Run(ctx context.Context, outline string, targetWords int, style string) (*RunResult, error) {
	plan, err := p.planner.CreateFullPlan(ctx, outline, targetWords)
	if err != nil {
		return nil, fmt.Errorf("planning: %w", err)
	}
	fmt.Fprintf(p.out, "plan: %q, %d chapter(s)\n", plan.Title, len(plan.Chapters))

	if len(plan.Settings) > 0 {
		if err := p.store.SaveSettings(ctx, plan.Settings); err != nil {
			return nil, fmt.Errorf("saving settings: %w", err)
		}
	}

	eng := p.engine()
	result := &RunResult{Title: plan.Title}
	var doc strings.Builder
	fmt.Fprintf(&doc, "# %s\n", plan.Title)

	for _, ch := range plan.Chapters {
		fmt.Fprintf(&doc, "\n---\n\n## %s\n", ch.Title)
		fmt.Fprintf(p.out, "chapter %d: %s (%d subtask(s))\n", ch.ID, ch.Title, len(ch.SubTasks))

		for _, task := range ch.SubTasks {
			section, err := p.produceSubtask(ctx, eng, plan.Settings, task, style)
			if err != nil {
				return nil, err
			}
			if section.Outcome == types.OutcomeError {
				return nil, fmt.Errorf("subtask %d (%s): no usable draft produced", task.ID, task.Title)
			}
			if section.Outcome == types.OutcomeRejectedExhausted {
				result.Rejected++
			}
			result.Sections++
			result.TotalWords += section.Length
			fmt.Fprintf(&doc, "\n%s\n", section.Text)
		}
	}

	path, err := p.writeDocument(plan.Title, doc.String())
	if err != nil {
		return nil, err
	}
	result.OutputPath = path
	fmt.Fprintf(p.out, "done: %d section(s), %d words -> %s\n",
		result.Sections, result.TotalWords, path)
	return result, nil
}

// produceSubtask runs one subtask through the engine and records the
// result in the continuity store.
func (p *Pipeline) produceSubtask(ctx context.Context, eng *engine.Engine, settings map[string]any, task types.SubTask, style string) (types.SectionResult, error) {
	summaries, err := p.store.RecentSummaries(ctx, p.cfg.Context.RecentSummaries)
	if err != nil {
		return types.SectionResult{}, fmt.Errorf("loading summaries: %w", err)
	}
	recent := ""
	if last, err := p.store.LastSection(ctx); err != nil {
		return types.SectionResult{}, fmt.Errorf("loading last section: %w", err)
	} else if last != nil {
		recent = last.Content
	}

	fmt.Fprintf(p.out, "  subtask %d: %s (%d words)\n", task.ID, task.Title, task.TargetWords)

	req := types.SectionRequest{
		Context:         p.writer.BuildContext(settings, summaries, task, recent),
		TargetLength:    task.TargetWords,
		StyleDirectives: style,
	}
	section := eng.ProduceSection(ctx, req)
	if section.Outcome == types.OutcomeError {
		return section, nil
	}

	summary, err := p.writer.Summarize(ctx, section.Text, summaryMaxWords)
	if err != nil {
		// A failed summary degrades continuity but not the run.
		fmt.Fprintf(p.out, "  warning: summary failed for subtask %d: %v\n", task.ID, err)
		summary = ""
	}

	if _, err := p.store.SaveSection(ctx, memory.SectionRecord{
		ChapterID: task.ChapterID,
		SubTaskID: task.ID,
		Title:     task.Title,
		Content:   section.Text,
		Summary:   summary,
		Words:     section.Length,
	}); err != nil {
		return types.SectionResult{}, fmt.Errorf("saving section: %w", err)
	}

	fmt.Fprintf(p.out, "  subtask %d: %s, %d words in %d round(s)\n",
		task.ID, section.Outcome, section.Length, section.RoundsUsed)
	return section, nil
}

// ProduceOne runs a single ad hoc section request through the engine,
// outside any plan. Used by the one-shot CLI path.
func (p *Pipeline) ProduceOne(ctx context.Context, contextText string, targetWords int, style string) types.SectionResult {
	return p.engine().ProduceSection(ctx, types.SectionRequest{
		Context:         contextText,
		TargetLength:    targetWords,
		StyleDirectives: style,
	})
}

// CheckAll runs the consistency checker over every stored chapter and
// writes a Markdown report next to the generated documents.
func (p *Pipeline) CheckAll(ctx context.Context, title string) ([]types.CheckResult, string, error) {
	settings, err := p.store.Settings(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("loading settings: %w", err)
	}

	var results []types.CheckResult
	var priorSummaries []string
	for chapterID := 1; ; chapterID++ {
		sections, err := p.store.ChapterSections(ctx, chapterID)
		if err != nil {
			return nil, "", fmt.Errorf("loading chapter %d: %w", chapterID, err)
		}
		if len(sections) == 0 {
			break
		}

		var content strings.Builder
		var chapterSummaries []string
		for _, sec := range sections {
			content.WriteString(sec.Content)
			content.WriteString("\n\n")
			if sec.Summary != "" {
				chapterSummaries = append(chapterSummaries, sec.Summary)
			}
		}

		fmt.Fprintf(p.out, "checking chapter %d (%d section(s))\n", chapterID, len(sections))
		result, err := p.checker.CheckChapter(ctx, checker.Input{
			ChapterID:      chapterID,
			Content:        content.String(),
			Settings:       settings,
			PriorSummaries: priorSummaries,
		})
		if err != nil {
			return nil, "", err
		}
		if err := p.store.SaveIssues(ctx, result); err != nil {
			return nil, "", fmt.Errorf("saving issues: %w", err)
		}
		results = append(results, result)
		priorSummaries = append(priorSummaries, chapterSummaries...)
	}

	if len(results) == 0 {
		return nil, "", fmt.Errorf("nothing to check: the memory store has no chapters")
	}

	path := filepath.Join(p.cfg.Output.Directory,
		fmt.Sprintf("%s-check-%s.md", sanitizeName(title), time.Now().Format("20060102-150405")))
	if err := os.MkdirAll(p.cfg.Output.Directory, 0o755); err != nil {
		return nil, "", fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, "", fmt.Errorf("creating report: %w", err)
	}
	defer f.Close()
	if err := checker.WriteReport(f, title, results); err != nil {
		return nil, "", fmt.Errorf("writing report: %w", err)
	}
	return results, path, nil
}

// CheckText runs one consistency pass over ad hoc text outside the
// store, using whatever settings the store holds (possibly none).
func (p *Pipeline) CheckText(ctx context.Context, content string) (types.CheckResult, error) {
	settings, err := p.store.Settings(ctx)
	if err != nil {
		return types.CheckResult{}, fmt.Errorf("loading settings: %w", err)
	}
	return p.checker.CheckChapter(ctx, checker.Input{
		Content:  content,
		Settings: settings,
	})
}

// engine builds a section engine carrying the current mode's persona.
// Style directives travel per-request, not in the system prompt.
func (p *Pipeline) engine() *engine.Engine {
	j := judge.New(p.client, p.rubric)
	return engine.New(p.client, j, p.cfg.Engine, p.writer.SystemPrompt(""), engine.WriterObserver{W: p.out})
}

// writeDocument writes the assembled document under the output
// directory with a timestamped name and returns the path.
func (p *Pipeline) writeDocument(title, content string) (string, error) {
	if err := os.MkdirAll(p.cfg.Output.Directory, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(p.cfg.Output.Directory,
		fmt.Sprintf("%s-%s.md", sanitizeName(title), time.Now().Format("20060102-150405")))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing document: %w", err)
	}
	return path, nil
}

var unsafeName = regexp.MustCompile(`[^\p{L}\p{N}_-]+`)

// sanitizeName makes a title safe for use in a file name.
func sanitizeName(title string) string {
	name := unsafeName.ReplaceAllString(strings.TrimSpace(title), "-")
	name = strings.Trim(name, "-")
	if name == "" {
		return "untitled"
	}
	if runes := []rune(name); len(runes) > 60 {
		name = string(runes[:60])
	}
	return name
}
