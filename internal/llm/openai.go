// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/zhouzhang499-gif/LongTextAgent/pkg/types"
)

const deepseekBaseURL = "https://api.deepseek.com"

// envVarFor maps a provider to the environment variable holding its key.
func envVarFor(provider string) string {
	if provider == "deepseek" {
		return "DEEPSEEK_API_KEY"
	}
	return "OPENAI_API_KEY"
}

// OpenAIClient implements Client over any OpenAI-compatible chat
// completions endpoint via the official openai-go SDK. DeepSeek exposes
// the same wire protocol, so one implementation covers both.
type OpenAIClient struct {
	client      openai.Client
	model       string
	temperature float64
	maxTokens   int
}

// NewOpenAIClient builds a client from cfg. The API key is resolved in
// order: cfg.APIKey, then the provider's environment variable. A missing
// key is a fatal configuration error surfaced immediately, not at the
// first call.
func NewOpenAIClient(cfg types.LLMConfig) (*OpenAIClient, error) {
	key := cfg.APIKey
	if key == "" || strings.HasPrefix(key, "${") {
		key = os.Getenv(envVarFor(cfg.Provider))
	}
	if key == "" {
		return nil, fmt.Errorf("no API key for provider %q: set llm.api_key or %s", cfg.Provider, envVarFor(cfg.Provider))
	}

	opts := []option.RequestOption{option.WithAPIKey(key)}
	switch {
	case cfg.BaseURL != "":
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	case cfg.Provider == "deepseek":
		opts = append(opts, option.WithBaseURL(deepseekBaseURL))
	case cfg.Provider == "custom":
		return nil, fmt.Errorf("provider %q requires llm.base_url", cfg.Provider)
	}

	return &OpenAIClient{
		client:      openai.NewClient(opts...),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

// Generate implements Client.
func (c *OpenAIClient) Generate(ctx context.Context, prompt, systemPrompt string, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	var msgs []openai.ChatCompletionMessageParamUnion
	if systemPrompt != "" {
		msgs = append(msgs, openai.SystemMessage(systemPrompt))
	}
	msgs = append(msgs, openai.UserMessage(prompt))

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    msgs,
		Temperature: openai.Float(c.temperature),
		MaxTokens:   openai.Int(int64(maxTokens)),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}
