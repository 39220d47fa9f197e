package intelligence

import (
	"context"
	"errors"
	"time"

	"movebot/models"
	"movebot/utils"

	"go.uber.org/zap"
)

// RetryPolicy walks an ordered list of candidate models, trying each in
// turn until one produces a completion.
type RetryPolicy struct {
	Models  []string
	Backoff time.Duration
	Timeout time.Duration

	// sleep is swappable in tests.
	sleep func(time.Duration)
}

// DefaultChatModels is the candidate order for conversational turns,
// strongest first.
var DefaultChatModels = []string{
	"gemini-2.0-flash",
	"gemini-2.0-flash-lite",
	"gemini-1.5-flash",
	"gemini-1.5-flash-8b",
}

func NewRetryPolicy(models []string) *RetryPolicy {
	return &RetryPolicy{
		Models:  models,
		Backoff: 1200 * time.Millisecond,
		Timeout: 25 * time.Second,
		sleep:   time.Sleep,
	}
}

// Do attempts the completion against each candidate model. Any error
// advances to the next model; throttling and quota errors additionally
// pause before the next attempt. The last error is returned when every
// candidate fails.
func (p *RetryPolicy) Do(ctx context.Context, client Client, msgs []models.Message, opts CompleteOptions) (string, error) {
	if len(p.Models) == 0 {
		return "", errors.New("no candidate models configured")
	}
	var lastErr error
	for i, model := range p.Models {
		attemptCtx, cancel := context.WithTimeout(ctx, p.Timeout)
		out, err := client.Complete(attemptCtx, model, msgs, opts)
		cancel()
		if err == nil {
			return out, nil
		}
		lastErr = err
		utils.GetLogger().Warn("model attempt failed",
			zap.String("model", model), zap.Error(err))
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if i < len(p.Models)-1 && (IsRateLimit(err) || IsQuota(err)) {
			p.sleep(p.Backoff)
		}
	}
	return "", lastErr
}
