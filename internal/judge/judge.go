// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package judge scores candidate text against a configurable rubric via
// an LLM-as-a-judge call and parses the reply into a structured
// EvaluationResult. Malformed replies degrade to a zero score rather
// than an error: content is never lost, and a zero score is guaranteed
// to fail the quality gate, which is the safe default.
package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/zhouzhang499-gif/LongTextAgent/internal/llm"
	"github.com/zhouzhang499-gif/LongTextAgent/internal/rubric"
	"github.com/zhouzhang499-gif/LongTextAgent/pkg/types"
)

// judgeMaxTokens caps the judge's reply; verdicts are short.
const judgeMaxTokens = 1024

// Judge evaluates drafts against a rubric. It does not know the pass
// threshold; the caller compares Score against its own gate so one
// judge serves multiple thresholds.
type Judge struct {
	client llm.Client
	rubric *rubric.Rubric
}

// New builds a Judge from a client and a loaded rubric.
func New(client llm.Client, r *rubric.Rubric) *Judge {
	return &Judge{client: client, rubric: r}
}

// judgeReply is the JSON schema the model is instructed to return.
type judgeReply struct {
	Score           float64            `json:"score"`
	DimensionScores map[string]float64 `json:"dimension_scores"`
	Critique        string             `json:"critique"`
	RevisionPlan    string             `json:"revision_plan"`
}

// Evaluate scores content. The returned error is non-nil only when the
// judge call itself failed (transport error, cancellation); a reply that
// cannot be parsed is a data-quality failure and yields a usable
// zero-score result instead.
func (j *Judge) Evaluate(ctx context.Context, content string) (types.EvaluationResult, error) {
	reply, err := j.client.Generate(ctx, j.buildPrompt(content), "", judgeMaxTokens)
	if err != nil {
		return types.EvaluationResult{}, fmt.Errorf("judge call: %w", err)
	}

	parsed, ok := parseReply(reply)
	if !ok {
		return types.EvaluationResult{
			Score:             0,
			Critique:          "judge reply was not parseable as JSON; forcing a rewrite",
			RevisionDirective: "Follow standard prose conventions and keep the output format clean.",
		}, nil
	}

	return types.EvaluationResult{
		Score:             parsed.Score,
		DimensionScores:   parsed.DimensionScores,
		Critique:          parsed.Critique,
		RevisionDirective: parsed.RevisionPlan,
	}, nil
}

// buildPrompt renders the rubric (instructions, weighted criteria with
// score bands) around the candidate content.
func (j *Judge) buildPrompt(content string) string {
	var b strings.Builder
	b.WriteString(j.rubric.JudgeInstructions)
	b.WriteString("\n\n=== Scoring criteria ===\n")

	for _, c := range j.rubric.Criteria {
		fmt.Fprintf(&b, "\n- %s (weight: %g)\n  %s\n", c.Name, c.Weight, c.Description)

		// Sorted band order keeps the prompt stable across runs.
		bands := make([]string, 0, len(c.Levels))
		for band := range c.Levels {
			bands = append(bands, band)
		}
		sort.Strings(bands)
		for _, band := range bands {
			fmt.Fprintf(&b, "    * %s: %s\n", band, c.Levels[band])
		}
	}

	b.WriteString("\n=== Draft under evaluation ===\n\n")
	b.WriteString(content)
	b.WriteString("\n\nOutput strictly the JSON object described above, with no other text.\n")
	return b.String()
}

var fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// parseReply applies the layered fallback: (1) the whole reply as JSON,
// (2) the interior of a fenced code block, (3) the outermost
// brace-delimited span. Reports ok=false when all three fail.
func parseReply(reply string) (judgeReply, bool) {
	var out judgeReply

	if err := json.Unmarshal([]byte(strings.TrimSpace(reply)), &out); err == nil {
		return out, true
	}

	if m := fencedBlock.FindStringSubmatch(reply); m != nil {
		if err := json.Unmarshal([]byte(m[1]), &out); err == nil {
			return out, true
		}
	}

	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(reply[start:end+1]), &out); err == nil {
			return out, true
		}
	}

	return judgeReply{}, false
}
