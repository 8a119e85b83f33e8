package flipper

import (
	"sync"
	"time"
)

// RateLimiter paces serial commands so the device CLI is not flooded between
// retries and directory-creation bursts.
type RateLimiter struct {
	mu            sync.Mutex
	nextAllowedAt time.Time
	interval      time.Duration
}

func NewRateLimiter(commandsPerSecond int) *RateLimiter {
	if commandsPerSecond <= 0 {
		commandsPerSecond = 1
	}
	return &RateLimiter{interval: time.Second / time.Duration(commandsPerSecond)}
}

func (r *RateLimiter) WaitTurn() {
	r.mu.Lock()
	now := time.Now()
	scheduled := now
	if r.nextAllowedAt.After(now) {
		scheduled = r.nextAllowedAt
	}
	r.nextAllowedAt = scheduled.Add(r.interval)
	r.mu.Unlock()

	if sleep := time.Until(scheduled); sleep > 0 {
		time.Sleep(sleep)
	}
}
