// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine produces one document section at a time: it explores
// candidate drafts in parallel, scores them against a rubric-driven
// judge, iterates under a bounded rejection-sampling policy, and then
// sequentially inflates the accepted draft until it meets its length
// target. Every failure mode degrades to usable text plus a status
// flag; the engine never returns a silent empty result.
package engine

import (
	"context"

	"github.com/zhouzhang499-gif/LongTextAgent/internal/llm"
	"github.com/zhouzhang499-gif/LongTextAgent/internal/textutil"
	"github.com/zhouzhang499-gif/LongTextAgent/pkg/types"
)

// Evaluator scores one candidate draft. judge.Judge is the production
// implementation; tests supply mocks.
type Evaluator interface {
	Evaluate(ctx context.Context, content string) (types.EvaluationResult, error)
}

// Engine drives the branch/judge/continuation pipeline for one section
// request at a time. Safe to reuse across requests; each invocation's
// state is local to the call.
type Engine struct {
	client       llm.Client
	judge        Evaluator
	cfg          types.EngineConfig
	systemPrompt string
	obs          Observer
}

// New builds an Engine. systemPrompt carries the writing-mode persona
// (plus style directives); a nil observer discards progress events.
func New(client llm.Client, j Evaluator, cfg types.EngineConfig, systemPrompt string, obs Observer) *Engine {
	cfg.Normalize()
	if obs == nil {
		obs = NopObserver{}
	}
	return &Engine{
		client:       client,
		judge:        j,
		cfg:          cfg,
		systemPrompt: systemPrompt,
		obs:          obs,
	}
}

// ProduceSection runs the full pipeline for one request: branch rounds
// aim at FirstRoundRatio of the target, then continuation closes the
// remaining length. The result always carries text when any round
// produced a branch, even on rejection or cancellation.
func (e *Engine) ProduceSection(ctx context.Context, req types.SectionRequest) types.SectionResult {
	branchTarget := int(float64(req.TargetLength) * e.cfg.FirstRoundRatio)
	if branchTarget < 1 {
		branchTarget = req.TargetLength
	}

	roundReq := req
	roundReq.TargetLength = branchTarget

	selected, outcome, rounds, trail := e.runRounds(ctx, roundReq)

	result := types.SectionResult{
		Accepted:   outcome == types.OutcomeAccepted,
		Outcome:    outcome,
		RoundsUsed: rounds,
		Trail:      trail,
	}

	if outcome == types.OutcomeError {
		return result
	}

	text, expansions, met := e.Expand(ctx, selected.Branch.Content, req.Context, req.TargetLength, e.cfg.MaxExpansions)
	result.Text = text
	result.Length = textutil.CountWords(text)
	result.TargetMet = met
	result.Expansions = expansions
	return result
}
