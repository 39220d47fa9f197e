package intelligence

import (
	"sync"
	"time"
)

const (
	// RateLimitCooldown is applied after provider throttling.
	RateLimitCooldown = 30 * time.Second
	// QuotaCooldown is applied after quota exhaustion.
	QuotaCooldown = 60 * time.Second
)

// Cooldown is a process-wide gate tripped when every candidate model
// fails. While active, chat turns skip the provider entirely and fall
// back to canned handling.
type Cooldown struct {
	mu    sync.Mutex
	until time.Time
	now   func() time.Time
}

func NewCooldown() *Cooldown {
	return &Cooldown{now: time.Now}
}

// Active reports whether the gate is currently closed.
func (c *Cooldown) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now().Before(c.until)
}

// Trip closes the gate for the duration appropriate to err: quota
// exhaustion gets the longer window.
func (c *Cooldown) Trip(err error) {
	d := RateLimitCooldown
	if IsQuota(err) {
		d = QuotaCooldown
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	until := c.now().Add(d)
	if until.After(c.until) {
		c.until = until
	}
}
