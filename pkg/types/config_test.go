// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEngineConfigNormalizeDefaults(t *testing.T) {
	var cfg EngineConfig
	cfg.Normalize()

	assert.Equal(t, 3, cfg.BranchCount)
	assert.Equal(t, 2, cfg.MaxRetries, "an unconfigured engine retries twice")
	assert.Equal(t, float64(90), cfg.PassThreshold)
	assert.Equal(t, 8, cfg.MaxExpansions)
	assert.Equal(t, 0.8, cfg.FirstRoundRatio)
	assert.Equal(t, 500, cfg.FinalChunkThreshold)
	assert.Equal(t, 1000, cfg.WindowSize)
}

func TestEngineConfigNormalizeKeepsNoRetrySentinel(t *testing.T) {
	cfg := EngineConfig{MaxRetries: -1}
	cfg.Normalize()
	assert.Equal(t, -1, cfg.MaxRetries, "negative disables retries and must survive renormalization")

	cfg.Normalize()
	assert.Equal(t, -1, cfg.MaxRetries)
}

func TestEngineConfigNormalizeIsIdempotent(t *testing.T) {
	cfg := EngineConfig{BranchCount: 1, MaxRetries: 2, PassThreshold: 50}
	cfg.Normalize()
	cfg.Normalize()

	assert.Equal(t, 1, cfg.BranchCount)
	assert.Equal(t, 2, cfg.MaxRetries)
	assert.Equal(t, float64(50), cfg.PassThreshold)
}

func TestGenerationConfigNormalizeDefaults(t *testing.T) {
	var cfg GenerationConfig
	cfg.Normalize()

	assert.Equal(t, 2500, cfg.WordsPerSection)
	assert.Equal(t, 0.8, cfg.MinTolerance)
	assert.Equal(t, 1.2, cfg.MaxTolerance)
}

func TestPipelineConfigNormalizeFillsEveryComponent(t *testing.T) {
	var cfg PipelineConfig
	cfg.Normalize()

	assert.Equal(t, "deepseek", cfg.LLM.Provider)
	assert.Equal(t, 3, cfg.LLM.MaxRetries)
	assert.Equal(t, 2, cfg.Engine.MaxRetries)
	assert.Equal(t, 5, cfg.Context.RecentSummaries)
	assert.Equal(t, "./output", cfg.Output.Directory)
	assert.Equal(t, "./memory", cfg.MemoryDir)
}
