// File: internal/services/ai/retry.go
package ai

import (
	"context"
	"errors"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// retryWithTimeout runs call up to MaxRetries times, each attempt bounded by
// Timeout and derived from the caller's context.
func (p *OpenAIProvider) retryWithTimeout(ctx context.Context, operation string, call func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= p.config.MaxRetries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, p.config.Timeout)
		err := call(attemptCtx)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil || !isRetryable(err) {
			break
		}

		p.logger.Warn("model call failed, retrying",
			"operation", operation,
			"attempt", attempt,
			"max_retries", p.config.MaxRetries,
			"error", err)

		if attempt < p.config.MaxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * p.config.RetryDelay):
			}
		}
	}
	return lastErr
}

// isRetryable rejects errors a second attempt cannot fix.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return false
		}
	}
	var aiErr *AIError
	if errors.As(err, &aiErr) && aiErr.Type == ErrTypeValidation {
		return false
	}
	return true
}
