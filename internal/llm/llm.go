// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm wraps the generative-model endpoint behind a small
// interface so the engine and tests can swap implementations. The
// endpoint is treated as a rate-limited, occasionally failing resource:
// every production client is decorated with bounded exponential-backoff
// retries (see retry.go).
package llm

import "context"

// Client issues one generation call. Implementations must be safe for
// concurrent use; branch workers call Generate from separate goroutines.
type Client interface {
	// Generate sends prompt (and an optional system prompt) to the
	// model and returns the generated text. maxTokens caps the output
	// length; zero means the client's configured default.
	Generate(ctx context.Context, prompt, systemPrompt string, maxTokens int) (string, error)
}

// Providers lists the supported endpoint families with a short
// description, for CLI display.
func Providers() map[string]string {
	return map[string]string{
		"deepseek": "DeepSeek chat API (OpenAI-compatible)",
		"openai":   "OpenAI chat completions API",
		"custom":   "any OpenAI-compatible endpoint (requires base_url)",
	}
}
