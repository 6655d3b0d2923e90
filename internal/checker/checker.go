// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package checker runs model-assisted consistency checks over generated
// chapters: character names and traits, timeline, setting, plot logic,
// and cross-chapter continuity.
package checker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/zhouzhang499-gif/LongTextAgent/internal/llm"
	"github.com/zhouzhang499-gif/LongTextAgent/pkg/types"
)

// checkCategories lists the consistency dimensions one pass covers.
var checkCategories = []types.IssueType{
	types.IssueCharacterName,
	types.IssueCharacterTrait,
	types.IssueTimeline,
	types.IssueSetting,
	types.IssuePlotHole,
	types.IssueLogic,
	types.IssueContinuity,
}

const checkerMaxTokens = 2048

// Input carries the material for one consistency pass.
type Input struct {
	// ChapterID identifies the chapter under check.
	ChapterID int

	// Content is the chapter text.
	Content string

	// Settings is the work's background (characters, world).
	Settings map[string]any

	// PriorSummaries are summaries of earlier chapters, oldest first.
	PriorSummaries []string
}

// Checker runs consistency passes.
type Checker struct {
	client llm.Client
}

// New builds a Checker.
func New(client llm.Client) *Checker {
	return &Checker{client: client}
}

// checkerReply is the model's expected JSON shape.
type checkerReply struct {
	Issues []struct {
		Type        string `json:"type"`
		Severity    string `json:"severity"`
		Description string `json:"description"`
		Location    string `json:"location"`
		Suggestion  string `json:"suggestion"`
	} `json:"issues"`
	Summary string `json:"summary"`
}

// CheckChapter runs one consistency pass. A transport failure is an
// error; an unparseable reply degrades to a passing result whose
// summary notes the parse failure.
func (c *Checker) CheckChapter(ctx context.Context, in Input) (types.CheckResult, error) {
	reply, err := c.client.Generate(ctx, c.buildPrompt(in), checkerSystemPrompt, checkerMaxTokens)
	if err != nil {
		return types.CheckResult{}, fmt.Errorf("consistency check: %w", err)
	}

	result := types.CheckResult{
		ChapterID:    in.ChapterID,
		CheckedItems: len(checkCategories),
	}

	parsed, ok := parseReply(reply)
	if !ok {
		result.Passed = true
		result.Summary = "checker reply was not parseable; no issues recorded"
		return result, nil
	}

	for _, raw := range parsed.Issues {
		issue := types.ConsistencyIssue{
			Type:        normalizeType(raw.Type),
			Severity:    normalizeSeverity(raw.Severity),
			Description: raw.Description,
			Location:    raw.Location,
			Suggestion:  raw.Suggestion,
		}
		if issue.Description == "" {
			continue
		}
		result.Issues = append(result.Issues, issue)
	}

	result.Summary = parsed.Summary
	result.Passed = true
	for _, issue := range result.Issues {
		if issue.Severity == types.SeverityHigh || issue.Severity == types.SeverityCritical {
			result.Passed = false
			break
		}
	}
	if result.Summary == "" {
		if len(result.Issues) == 0 {
			result.Summary = "no inconsistencies found"
		} else {
			result.Summary = fmt.Sprintf("%d issue(s) found", len(result.Issues))
		}
	}
	return result, nil
}

const checkerSystemPrompt = "You are a meticulous continuity editor. You find genuine inconsistencies and never invent problems that are not in the text."

func (c *Checker) buildPrompt(in Input) string {
	var b strings.Builder

	b.WriteString("Check the chapter below for consistency problems in these categories:\n")
	for _, cat := range checkCategories {
		fmt.Fprintf(&b, "- %s\n", cat)
	}

	if len(in.Settings) > 0 {
		b.WriteString("\n== Established background ==\n")
		keys := make([]string, 0, len(in.Settings))
		for k := range in.Settings {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "%s: %v\n", k, in.Settings[k])
		}
	}

	if len(in.PriorSummaries) > 0 {
		b.WriteString("\n== Earlier chapters ==\n")
		for _, s := range in.PriorSummaries {
			fmt.Fprintf(&b, "- %s\n", s)
		}
	}

	fmt.Fprintf(&b, "\n== Chapter under check ==\n%s\n", in.Content)

	b.WriteString(`
Report every genuine inconsistency. Severity: low, medium, high, or
critical. Reply with ONLY a JSON object, no other text:
{"issues": [{"type": "timeline", "severity": "high", "description": "...", "location": "...", "suggestion": "..."}], "summary": "one line"}
An empty issues array means the chapter is consistent.`)

	return b.String()
}

var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// parseReply tries the whole reply as JSON, then a fenced block, then
// the outermost brace span.
func parseReply(reply string) (checkerReply, bool) {
	candidates := []string{strings.TrimSpace(reply)}
	if m := fencedJSON.FindStringSubmatch(reply); m != nil {
		candidates = append(candidates, m[1])
	}
	if start, end := strings.Index(reply, "{"), strings.LastIndex(reply, "}"); start >= 0 && end > start {
		candidates = append(candidates, reply[start:end+1])
	}

	for _, candidate := range candidates {
		var parsed checkerReply
		if err := json.Unmarshal([]byte(candidate), &parsed); err == nil {
			return parsed, true
		}
	}
	return checkerReply{}, false
}

func normalizeType(raw string) types.IssueType {
	t := types.IssueType(strings.ToLower(strings.TrimSpace(raw)))
	for _, cat := range checkCategories {
		if t == cat {
			return t
		}
	}
	return types.IssueLogic
}

func normalizeSeverity(raw string) types.IssueSeverity {
	switch types.IssueSeverity(strings.ToLower(strings.TrimSpace(raw))) {
	case types.SeverityLow:
		return types.SeverityLow
	case types.SeverityMedium:
		return types.SeverityMedium
	case types.SeverityHigh:
		return types.SeverityHigh
	case types.SeverityCritical:
		return types.SeverityCritical
	default:
		return types.SeverityMedium
	}
}

// WriteReport renders check results as a Markdown report.
func WriteReport(w io.Writer, title string, results []types.CheckResult) error {
	if _, err := fmt.Fprintf(w, "# Consistency report: %s\n", title); err != nil {
		return err
	}

	total := 0
	for _, r := range results {
		total += len(r.Issues)
	}
	fmt.Fprintf(w, "\n%d chapter(s) checked, %d issue(s) found.\n", len(results), total)

	for _, r := range results {
		status := "PASS"
		if !r.Passed {
			status = "FAIL"
		}
		fmt.Fprintf(w, "\n## Chapter %d: %s\n\n%s\n", r.ChapterID, status, r.Summary)
		for _, issue := range r.Issues {
			fmt.Fprintf(w, "\n- **[%s/%s]** %s", issue.Type, issue.Severity, issue.Description)
			if issue.Location != "" {
				fmt.Fprintf(w, " (at: %s)", issue.Location)
			}
			if issue.Suggestion != "" {
				fmt.Fprintf(w, "\n  - Suggestion: %s", issue.Suggestion)
			}
		}
		if len(r.Issues) > 0 {
			fmt.Fprintln(w)
		}
	}
	return nil
}
