// Package intelligence wraps the generative model provider behind a
// small completion interface, plus the retry/cooldown machinery that
// keeps the chat surface responsive when the provider throttles us.
package intelligence

import (
	"context"
	"strings"

	"movebot/models"
)

// CompleteOptions are the per-call generation knobs.
type CompleteOptions struct {
	Temperature float32
	MaxTokens   int32
}

// Client produces a single completion for a conversation history. The
// last message in msgs is the turn being answered; a leading system
// message, when present, is treated as the system instruction.
type Client interface {
	Complete(ctx context.Context, model string, msgs []models.Message, opts CompleteOptions) (string, error)
}

// IsRateLimit reports whether err looks like provider throttling.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rate limit") || strings.Contains(msg, "429")
}

// IsQuota reports whether err looks like quota exhaustion, which calls
// for a longer backoff than plain throttling.
func IsQuota(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "quota") || strings.Contains(msg, "resource exhausted") || strings.Contains(msg, "resource_exhausted")
}
