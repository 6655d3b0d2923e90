// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/zhouzhang499-gif/LongTextAgent/pkg/types"
)

// runRounds executes the accept/retry loop: generate, evaluate, select,
// decide. At most cfg.MaxRetries+1 rounds run. The returned branch is
// the best-scoring one seen across all rounds, so the caller always has
// usable text unless every generation call in every round failed.
func (e *Engine) runRounds(ctx context.Context, req types.SectionRequest) (types.ScoredBranch, types.Outcome, int, []types.EvaluationResult) {
	var (
		best      types.ScoredBranch
		haveBest  bool
		trail     []types.EvaluationResult
		directive string
	)

	maxRounds := e.cfg.MaxRetries + 1
	if maxRounds < 1 {
		maxRounds = 1
	}
	rounds := 0

	for round := 0; round < maxRounds; round++ {
		rounds++

		branches := e.generateBranches(ctx, req, directive, e.cfg.BranchCount)
		scored := e.evaluateBranches(ctx, branches)

		if len(scored) == 0 {
			// Round failure: nothing generated or nothing scored.
			trail = append(trail, types.EvaluationResult{
				Critique: fmt.Sprintf("round %d produced no scorable branch", round+1),
			})
			if ctx.Err() != nil {
				break
			}
			// The next round still needs a non-empty directive.
			directive = "The previous attempt produced no usable draft. Write the section again from the task description."
			continue
		}

		selected := selectBest(scored)
		selected.Eval.Passed = selected.Eval.Score >= e.cfg.PassThreshold
		trail = append(trail, selected.Eval)

		if !haveBest || selected.Eval.Score > best.Eval.Score {
			best = selected
			haveBest = true
		}

		e.obs.RoundCompleted(round, selected, selected.Eval.Passed)

		if selected.Eval.Passed {
			return selected, types.OutcomeAccepted, rounds, trail
		}

		if ctx.Err() != nil {
			break
		}
		directive = aggregateDirective(scored)
	}

	if !haveBest {
		return types.ScoredBranch{}, types.OutcomeError, rounds, trail
	}
	return best, types.OutcomeRejectedExhausted, rounds, trail
}

// selectBest picks the highest-scoring branch; ties resolve to the
// lowest branch ID. scored is non-empty and ordered by branch ID, so a
// strict greater-than scan is deterministic.
func selectBest(scored []types.ScoredBranch) types.ScoredBranch {
	best := scored[0]
	for _, sb := range scored[1:] {
		if sb.Eval.Score > best.Eval.Score {
			best = sb
		}
	}
	return best
}

// aggregateDirective builds the next round's revision directive from
// every rejected branch's critique, tagged with its score so the model
// sees which complaints came from the strongest draft. Never returns an
// empty string for a non-empty round.
func aggregateDirective(scored []types.ScoredBranch) string {
	var parts []string
	for _, sb := range scored {
		var piece strings.Builder
		fmt.Fprintf(&piece, "[draft scored %.0f/100]", sb.Eval.Score)
		if sb.Eval.Critique != "" {
			piece.WriteString(" " + sb.Eval.Critique)
		}
		if sb.Eval.RevisionDirective != "" {
			piece.WriteString(" Revision: " + sb.Eval.RevisionDirective)
		}
		parts = append(parts, piece.String())
	}

	joined := strings.TrimSpace(strings.Join(parts, "\n"))
	if joined == "" {
		return "Raise the overall quality: make every beat concrete, escalate the stakes, and end on an open hook."
	}
	return joined
}
