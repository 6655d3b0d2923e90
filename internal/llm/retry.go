// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
)

// retryBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var retryBase = 2 * time.Second

// retryCap bounds a single backoff wait.
var retryCap = 60 * time.Second

const defaultMaxAttempts = 3

// retryClient decorates a Client with bounded exponential-backoff
// retries: delays of retryBase, 2x, 4x, ... capped at retryCap. An empty
// or whitespace-only reply counts as a failure and is retried; callers
// above this layer never see retry mechanics, only the final result.
type retryClient struct {
	inner       Client
	maxAttempts int
}

// WithRetry wraps inner so every Generate call is retried on failure.
// maxAttempts <= 0 selects the default (3 attempts total).
func WithRetry(inner Client, maxAttempts int) Client {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	return &retryClient{inner: inner, maxAttempts: maxAttempts}
}

func (r *retryClient) Generate(ctx context.Context, prompt, systemPrompt string, maxTokens int) (string, error) {
	var lastErr error
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * retryBase
			if backoff > retryCap {
				backoff = retryCap
			}
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		text, err := r.inner.Generate(ctx, prompt, systemPrompt, maxTokens)
		if err == nil && strings.TrimSpace(text) == "" {
			err = fmt.Errorf("model returned empty text")
		}
		if err == nil {
			return text, nil
		}
		lastErr = err

		// Cancellation is terminal; further attempts cannot succeed.
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}
	return "", fmt.Errorf("after %d attempts: %w", r.maxAttempts, lastErr)
}
