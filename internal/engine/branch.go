// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/zhouzhang499-gif/LongTextAgent/pkg/types"
)

// generateBranches issues count independent generation calls
// concurrently and returns the surviving branches ordered by ID. A
// branch whose call fails is dropped, never substituted; the caller
// treats an empty result as a round failure. Branches share no mutable
// state — each worker's content stays local until the join.
func (e *Engine) generateBranches(ctx context.Context, req types.SectionRequest, directive string, count int) []types.Branch {
	if count < 1 {
		count = 1
	}

	type branchResult struct {
		id      int
		content string
		err     error
	}

	ch := make(chan branchResult, count)
	var wg sync.WaitGroup

	for i := 0; i < count; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			prompt := e.buildBranchPrompt(req, directive, id, count)
			content, err := e.client.Generate(ctx, prompt, e.systemPrompt, req.TargetLength*2)
			ch <- branchResult{id: id, content: content, err: err}
		}(i)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	var branches []types.Branch
	for br := range ch {
		if br.err != nil || strings.TrimSpace(br.content) == "" {
			continue
		}
		branches = append(branches, types.Branch{
			ID:              br.id,
			Content:         strings.TrimSpace(br.content),
			SourceDirective: directive,
		})
	}

	sort.Slice(branches, func(i, j int) bool { return branches[i].ID < branches[j].ID })
	return branches
}

// buildBranchPrompt composes one branch's user prompt: the shared
// context, the length target, a divergence instruction when siblings
// exist, and the revision directive on retry rounds.
func (e *Engine) buildBranchPrompt(req types.SectionRequest, directive string, id, count int) string {
	var b strings.Builder
	b.WriteString(req.Context)
	b.WriteString("\n\n")

	if req.StyleDirectives != "" {
		fmt.Fprintf(&b, "Style requirements: %s\n\n", req.StyleDirectives)
	}

	if count > 1 {
		fmt.Fprintf(&b, "You are draft %d of %d written independently for this section. Take a distinctly different angle, opening, or emphasis from what a sibling draft would choose.\n\n", id+1, count)
	}

	if directive != "" {
		fmt.Fprintf(&b, "A previous attempt at this section was rejected. Address these deficiencies:\n%s\n\n", directive)
	}

	fmt.Fprintf(&b, "Write the section now, about %d words. Output the content only, with no title or commentary.", req.TargetLength)
	return b.String()
}

// evaluateBranches scores every branch concurrently and pairs each
// result back to its branch. The pairing is positional, so a score can
// never attach to a different branch. Branches whose judge call failed
// are dropped; sibling evaluations proceed unaffected. The function
// joins all workers before returning — selection never sees a
// partially evaluated round.
func (e *Engine) evaluateBranches(ctx context.Context, branches []types.Branch) []types.ScoredBranch {
	evals := make([]*types.EvaluationResult, len(branches))
	var wg sync.WaitGroup

	for i, br := range branches {
		wg.Add(1)
		go func(slot int, content string) {
			defer wg.Done()
			eval, err := e.judge.Evaluate(ctx, content)
			if err != nil {
				return // branch stays unscored and is dropped below
			}
			evals[slot] = &eval
		}(i, br.Content)
	}
	wg.Wait()

	var scored []types.ScoredBranch
	for i, ev := range evals {
		if ev == nil {
			continue
		}
		scored = append(scored, types.ScoredBranch{Branch: branches[i], Eval: *ev})
	}
	return scored
}
