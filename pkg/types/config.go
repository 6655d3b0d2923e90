// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// LLMConfig holds shared settings for components that call a generative
// model API.
type LLMConfig struct {
	// Provider selects the API endpoint family: "deepseek", "openai",
	// or "custom" (requires BaseURL).
	Provider string `json:"provider" yaml:"provider"`

	// Model is the model identifier (e.g. "deepseek-chat").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key. Empty means: resolve from the
	// secrets directory or the provider's environment variable.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the provider's default endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// Temperature controls sampling randomness (default 0.7).
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// MaxTokens caps output tokens per call when the caller does not
	// pass its own limit (default 4096).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// MaxRetries is the number of retry attempts for failed API calls
	// (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// Normalize fills zero-valued fields with defaults. Called once at load.
func (c *LLMConfig) Normalize() {
	if c.Provider == "" {
		c.Provider = "deepseek"
	}
	if c.Model == "" {
		c.Model = "deepseek-chat"
	}
	if c.Temperature <= 0 {
		c.Temperature = 0.7
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 4096
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
}

// EngineConfig holds the section-production engine tunables. The ratio
// and threshold values are heuristics inherited from operational use,
// kept configurable rather than baked in.
type EngineConfig struct {
	// BranchCount is the number of candidate branches explored per
	// round (default 3; relaxed mode uses 1).
	BranchCount int `json:"branch_count" yaml:"branch_count"`

	// MaxRetries is the number of extra generation rounds allowed after
	// the first (default 2). Total rounds never exceed MaxRetries+1.
	// A negative value means no retry rounds at all.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// PassThreshold is the minimum score a branch must reach to be
	// accepted without further retries. Zero means: take the rubric's
	// target_pass_score (default 90).
	PassThreshold float64 `json:"pass_threshold" yaml:"pass_threshold"`

	// MaxExpansions caps continuation iterations (default 8).
	MaxExpansions int `json:"max_expansions" yaml:"max_expansions"`

	// FirstRoundRatio is the fraction of the section target the branch
	// rounds aim for; continuation closes the rest (default 0.8).
	FirstRoundRatio float64 `json:"first_round_ratio" yaml:"first_round_ratio"`

	// FinalChunkThreshold: when the remaining length drops below this,
	// continuation switches to its closing chunk (default 500).
	FinalChunkThreshold int `json:"final_chunk_threshold" yaml:"final_chunk_threshold"`

	// WindowSize is the trailing-context window continuation resends
	// each iteration, in length units (default 1000).
	WindowSize int `json:"window_size" yaml:"window_size"`
}

// Normalize fills zero-valued fields with defaults.
func (c *EngineConfig) Normalize() {
	if c.BranchCount <= 0 {
		c.BranchCount = 3
	}
	// Negative stays negative (no-retries sentinel); Normalize must be
	// idempotent because it runs at config load and again in the engine.
	if c.MaxRetries == 0 {
		c.MaxRetries = 2
	}
	if c.PassThreshold <= 0 {
		c.PassThreshold = 90
	}
	if c.MaxExpansions <= 0 {
		c.MaxExpansions = 8
	}
	if c.FirstRoundRatio <= 0 || c.FirstRoundRatio > 1 {
		c.FirstRoundRatio = 0.8
	}
	if c.FinalChunkThreshold <= 0 {
		c.FinalChunkThreshold = 500
	}
	if c.WindowSize <= 0 {
		c.WindowSize = 1000
	}
}

// GenerationConfig holds planner task-sizing settings.
type GenerationConfig struct {
	// WordsPerSection is the target size of one subtask (default 2500).
	WordsPerSection int `json:"words_per_section" yaml:"words_per_section"`

	// MinTolerance and MaxTolerance bound acceptable subtask sizes as
	// fractions of WordsPerSection (defaults 0.8 and 1.2).
	MinTolerance float64 `json:"min_tolerance" yaml:"min_tolerance"`
	MaxTolerance float64 `json:"max_tolerance" yaml:"max_tolerance"`
}

// Normalize fills zero-valued fields with defaults.
func (c *GenerationConfig) Normalize() {
	if c.WordsPerSection <= 0 {
		c.WordsPerSection = 2500
	}
	if c.MinTolerance <= 0 {
		c.MinTolerance = 0.8
	}
	if c.MaxTolerance <= 0 {
		c.MaxTolerance = 1.2
	}
}

// ContextConfig holds continuity-context settings.
type ContextConfig struct {
	// RecentSummaries is how many trailing chapter summaries are
	// included in each section's context (default 5).
	RecentSummaries int `json:"recent_summaries" yaml:"recent_summaries"`
}

// Normalize fills zero-valued fields with defaults.
func (c *ContextConfig) Normalize() {
	if c.RecentSummaries <= 0 {
		c.RecentSummaries = 5
	}
}

// OutputConfig holds output-file settings.
type OutputConfig struct {
	// Directory is where generated documents and reports are written
	// (default "./output").
	Directory string `json:"directory" yaml:"directory"`
}

// Normalize fills zero-valued fields with defaults.
func (c *OutputConfig) Normalize() {
	if c.Directory == "" {
		c.Directory = "./output"
	}
}

// PipelineConfig groups all component configurations.
type PipelineConfig struct {
	LLM        LLMConfig        `json:"llm" yaml:"llm"`
	Engine     EngineConfig     `json:"engine" yaml:"engine"`
	Generation GenerationConfig `json:"generation" yaml:"generation"`
	Context    ContextConfig    `json:"context" yaml:"context"`
	Output     OutputConfig     `json:"output" yaml:"output"`

	// RubricPath points at the judge rubric YAML. Empty means: use the
	// built-in default rubric. A non-empty path that does not exist is
	// a fatal configuration error, not a silent fallback.
	RubricPath string `json:"rubric_path,omitempty" yaml:"rubric_path,omitempty"`

	// ModesPath points at the writing-mode config YAML. A missing file
	// falls back to the built-in modes.
	ModesPath string `json:"modes_path,omitempty" yaml:"modes_path,omitempty"`

	// MemoryDir is the base directory for the SQLite memory store
	// (default "./memory").
	MemoryDir string `json:"memory_dir,omitempty" yaml:"memory_dir,omitempty"`
}

// Normalize applies defaults across every component config.
func (c *PipelineConfig) Normalize() {
	c.LLM.Normalize()
	c.Engine.Normalize()
	c.Generation.Normalize()
	c.Context.Normalize()
	c.Output.Normalize()
	if c.MemoryDir == "" {
		c.MemoryDir = "./memory"
	}
}
