// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/zhouzhang499-gif/LongTextAgent/internal/textutil"
)

// expandState names the continuation state machine's phases.
type expandState int

const (
	stateExpanding expandState = iota
	stateFinalChunk
	stateDone
)

// Expand sequentially appends chunks to acceptedText until targetLength
// is reached or maxExpansions iterations have run. It returns the final
// text, the number of iterations performed, and whether the target was
// met. Strictly sequential: each chunk's prompt depends on the previous
// chunk's tail, so no parallelism applies here.
//
// An iteration whose call fails or returns only whitespace still counts
// against maxExpansions, so the loop always terminates. Cancellation
// stops the loop and returns the text accumulated so far.
func (e *Engine) Expand(ctx context.Context, acceptedText, docContext string, targetLength, maxExpansions int) (string, int, bool) {
	text := acceptedText
	length := textutil.CountWords(text)
	iterations := 0

	for {
		state := e.nextState(length, targetLength, iterations, maxExpansions)
		if state == stateDone {
			return text, iterations, length >= targetLength
		}
		if ctx.Err() != nil {
			return text, iterations, length >= targetLength
		}

		remaining := targetLength - length
		window := textutil.TailWindow(text, e.cfg.WindowSize)
		prompt := buildContinuationPrompt(docContext, window, remaining, state == stateFinalChunk)

		chunk, err := e.client.Generate(ctx, prompt, e.systemPrompt, remaining*2)
		iterations++

		if err == nil {
			chunk = strings.TrimSpace(chunk)
			if chunk != "" {
				text = text + "\n\n" + chunk
				length = textutil.CountWords(text)
			}
		}

		e.obs.ChunkAppended(iterations, textutil.CountWords(chunk), length)
	}
}

// nextState decides the transition for one iteration. FINAL_CHUNK is
// entered when the remainder is small or the iteration budget is on its
// last slot, so the model closes on a natural stopping point instead of
// continuing to expand.
func (e *Engine) nextState(length, targetLength, iterations, maxExpansions int) expandState {
	if length >= targetLength {
		return stateDone
	}
	if iterations >= maxExpansions {
		return stateDone // safety valve; caller reports the shortfall
	}
	remaining := targetLength - length
	if remaining < e.cfg.FinalChunkThreshold || iterations == maxExpansions-1 {
		return stateFinalChunk
	}
	return stateExpanding
}

// buildContinuationPrompt composes the prompt for one chunk from the
// original context plus the trailing window of accumulated text.
func buildContinuationPrompt(docContext, window string, remaining int, final bool) string {
	var b strings.Builder
	b.WriteString(docContext)
	b.WriteString("\n\n=== The passage so far ends with ===\n...")
	b.WriteString(window)
	b.WriteString("\n\n")

	if final {
		fmt.Fprintf(&b, "Continue the passage for about %d more words and bring it to a natural stopping point: close the immediate beat but leave a hook open, not a full resolution.", remaining)
	} else {
		fmt.Fprintf(&b, "Continue the passage for about %d more words. Do NOT conclude or wrap up; introduce a new complicating detail and keep the momentum going.", remaining)
	}
	b.WriteString(" Output the continuation only, with no recap or commentary.")
	return b.String()
}
