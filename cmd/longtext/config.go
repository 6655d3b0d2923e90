package main

import (
	"github.com/spf13/viper"

	"github.com/zhouzhang499-gif/LongTextAgent/internal/secrets"
	"github.com/zhouzhang499-gif/LongTextAgent/pkg/types"
)

// buildConfig assembles the pipeline configuration from the config file
// and environment, then resolves the API key from the secrets directory
// when neither supplies one. Zero values fall to the Normalize defaults.
func buildConfig() types.PipelineConfig {
	cfg := types.PipelineConfig{
		LLM: types.LLMConfig{
			Provider:    viper.GetString("llm.provider"),
			Model:       viper.GetString("llm.model"),
			APIKey:      viper.GetString("llm.api_key"),
			BaseURL:     viper.GetString("llm.base_url"),
			Temperature: viper.GetFloat64("llm.temperature"),
			MaxTokens:   viper.GetInt("llm.max_tokens"),
			MaxRetries:  viper.GetInt("llm.max_retries"),
		},
		Engine: types.EngineConfig{
			BranchCount:         viper.GetInt("engine.branch_count"),
			MaxRetries:          viper.GetInt("engine.max_retries"),
			PassThreshold:       viper.GetFloat64("engine.pass_threshold"),
			MaxExpansions:       viper.GetInt("engine.max_expansions"),
			FirstRoundRatio:     viper.GetFloat64("engine.first_round_ratio"),
			FinalChunkThreshold: viper.GetInt("engine.final_chunk_threshold"),
			WindowSize:          viper.GetInt("engine.window_size"),
		},
		Generation: types.GenerationConfig{
			WordsPerSection: viper.GetInt("generation.words_per_section"),
			MinTolerance:    viper.GetFloat64("generation.min_tolerance"),
			MaxTolerance:    viper.GetFloat64("generation.max_tolerance"),
		},
		Context: types.ContextConfig{
			RecentSummaries: viper.GetInt("context.recent_summaries"),
		},
		Output: types.OutputConfig{
			Directory: viper.GetString("output.directory"),
		},
		RubricPath: viper.GetString("rubric_path"),
		ModesPath:  viper.GetString("modes_path"),
		MemoryDir:  viper.GetString("memory_dir"),
	}
	cfg.Normalize()

	if cfg.LLM.APIKey == "" {
		switch cfg.LLM.Provider {
		case "openai":
			cfg.LLM.APIKey = secrets.Resolve(loadedSecrets, "openai-api-key", "OPENAI_API_KEY")
		default:
			cfg.LLM.APIKey = secrets.Resolve(loadedSecrets, "deepseek-api-key", "DEEPSEEK_API_KEY")
		}
	}
	return cfg
}
