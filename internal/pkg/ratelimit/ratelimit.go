package ratelimit

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a sliding-window limiter keyed by client or principal
type RateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
	now      func() time.Time
}

// New creates a limiter allowing limit requests per key within window
func New(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

// live drops timestamps outside the window and returns what is left, oldest
// first. Caller holds mu.
func (rl *RateLimiter) live(key string, now time.Time) []time.Time {
	hits := rl.requests[key]
	cutoff := now.Add(-rl.window)

	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	if i == len(hits) {
		delete(rl.requests, key)
		return nil
	}
	if i > 0 {
		hits = append(hits[:0:0], hits[i:]...)
		rl.requests[key] = hits
	}
	return hits
}

// Allow records a request for key unless the window is full
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	hits := rl.live(key, now)
	if len(hits) >= rl.limit {
		return false
	}
	rl.requests[key] = append(hits, now)
	return true
}

// GetRemaining returns how many more requests key may make in the current window
func (rl *RateLimiter) GetRemaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return max(rl.limit-len(rl.live(key, rl.now())), 0)
}

// GetResetTime returns when the oldest request of key leaves the window
func (rl *RateLimiter) GetResetTime(key string) time.Time {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	hits := rl.live(key, now)
	if len(hits) == 0 {
		return now
	}
	return hits[0].Add(rl.window)
}

// Limit returns the number of requests allowed per window
func (rl *RateLimiter) Limit() int {
	return rl.limit
}

// Reset forgets every request recorded for key
func (rl *RateLimiter) Reset(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	delete(rl.requests, key)
}

// Cleanup drops keys with no request inside the window
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key := range rl.requests {
		rl.live(key, now)
	}
}

// StartCleanup runs Cleanup every interval until ctx is done
func (rl *RateLimiter) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.Cleanup()
			}
		}
	}()
}
