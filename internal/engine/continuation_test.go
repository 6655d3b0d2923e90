// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzhang499-gif/LongTextAgent/pkg/types"
)

// recordingObserver captures ChunkAppended totals for monotonicity checks.
type recordingObserver struct {
	NopObserver
	totals []int
}

func (r *recordingObserver) ChunkAppended(_, _, total int) {
	r.totals = append(r.totals, total)
}

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func expandEngine(client *scriptedClient, obs Observer) *Engine {
	return New(client, nil, types.EngineConfig{PassThreshold: 90}, "sys", obs)
}

// --- P3: termination ---

func TestExpandTerminatesAtSafetyValve(t *testing.T) {
	client := &scriptedClient{
		contChunk: func(int) (string, error) { return words(100), nil },
	}
	e := expandEngine(client, nil)

	text, iterations, met := e.Expand(context.Background(), "", "ctx", 1000, 8)

	assert.Equal(t, 8, iterations, "loop runs at most maxExpansions times")
	assert.False(t, met, "8 chunks of 100 fall short of 1000")
	assert.Equal(t, 800, countUnits(text))
}

func TestExpandStopsOnceTargetMet(t *testing.T) {
	client := &scriptedClient{
		contChunk: func(int) (string, error) { return words(300), nil },
	}
	e := expandEngine(client, nil)

	_, iterations, met := e.Expand(context.Background(), words(100), "ctx", 600, 8)

	assert.True(t, met)
	assert.Equal(t, 2, iterations, "100 + 300 + 300 crosses 600 after two chunks")
}

func TestExpandNoopWhenAlreadyLongEnough(t *testing.T) {
	client := &scriptedClient{}
	e := expandEngine(client, nil)

	text, iterations, met := e.Expand(context.Background(), words(500), "ctx", 400, 8)

	assert.True(t, met)
	assert.Zero(t, iterations)
	assert.Zero(t, client.contCalls)
	assert.Equal(t, 500, countUnits(text))
}

// --- P4: length monotonicity ---

func TestExpandLengthMonotonic(t *testing.T) {
	chunks := []string{words(120), "", words(40), "   \n ", words(200)}
	client := &scriptedClient{
		contChunk: func(call int) (string, error) {
			if call > len(chunks) {
				return "", fmt.Errorf("exhausted script")
			}
			return chunks[call-1], nil
		},
	}
	obs := &recordingObserver{}
	e := expandEngine(client, obs)

	e.Expand(context.Background(), words(10), "ctx", 5000, len(chunks))

	require.NotEmpty(t, obs.totals)
	prev := 0
	for i, total := range obs.totals {
		assert.GreaterOrEqual(t, total, prev, "length shrank at iteration %d", i+1)
		prev = total
	}
}

// --- stalls ---

func TestExpandCountsStalledIterations(t *testing.T) {
	client := &scriptedClient{
		contChunk: func(int) (string, error) { return "", fmt.Errorf("model unavailable") },
	}
	e := expandEngine(client, nil)

	text, iterations, met := e.Expand(context.Background(), words(50), "ctx", 1000, 4)

	assert.Equal(t, 4, iterations, "failed calls still consume iterations")
	assert.False(t, met)
	assert.Equal(t, 50, countUnits(text), "accumulated text survives stalls")
}

func TestExpandWhitespaceChunkCountsIteration(t *testing.T) {
	client := &scriptedClient{
		contChunk: func(int) (string, error) { return "\n\t  ", nil },
	}
	e := expandEngine(client, nil)

	_, iterations, met := e.Expand(context.Background(), words(50), "ctx", 1000, 3)

	assert.Equal(t, 3, iterations)
	assert.False(t, met)
}

// --- final chunk mode ---

func TestExpandSwitchesToFinalChunkNearTarget(t *testing.T) {
	client := &scriptedClient{
		contChunk: func(int) (string, error) { return words(300), nil },
	}
	e := New(client, nil, types.EngineConfig{
		PassThreshold:       90,
		FinalChunkThreshold: 500,
	}, "sys", nil)

	e.Expand(context.Background(), words(600), "ctx", 1000, 8)

	// remaining = 400 < 500 at the first iteration, so the prompt asks
	// for a close-out, not further expansion.
	require.NotEmpty(t, client.prompts)
	assert.Contains(t, client.prompts[0], "natural stopping point")
	assert.NotContains(t, client.prompts[0], "Do NOT conclude")
}

func TestExpandLastAllowedIterationIsFinalChunk(t *testing.T) {
	client := &scriptedClient{
		contChunk: func(int) (string, error) { return words(100), nil },
	}
	e := expandEngine(client, nil)

	e.Expand(context.Background(), "", "ctx", 5000, 2)

	require.Len(t, client.prompts, 2)
	assert.Contains(t, client.prompts[0], "Do NOT conclude")
	assert.Contains(t, client.prompts[1], "natural stopping point")
}

func TestExpandPromptCarriesWindowAndContext(t *testing.T) {
	client := &scriptedClient{
		contChunk: func(int) (string, error) { return words(1000), nil },
	}
	e := expandEngine(client, nil)

	e.Expand(context.Background(), "the hero crossed the bridge", "world background", 800, 8)

	require.NotEmpty(t, client.prompts)
	assert.Contains(t, client.prompts[0], "world background")
	assert.Contains(t, client.prompts[0], "the hero crossed the bridge")
}

// --- cancellation ---

func TestExpandCancellationReturnsAccumulatedText(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client := &scriptedClient{
		contChunk: func(call int) (string, error) {
			if call == 2 {
				cancel()
			}
			return words(100), nil
		},
	}
	e := expandEngine(client, nil)

	text, iterations, met := e.Expand(ctx, "", "ctx", 10000, 50)

	assert.Equal(t, 2, iterations, "loop stops at the first cancelled check")
	assert.False(t, met)
	assert.Equal(t, 200, countUnits(text), "work done before cancellation is kept")
}

func countUnits(text string) int {
	return len(strings.Fields(text))
}
