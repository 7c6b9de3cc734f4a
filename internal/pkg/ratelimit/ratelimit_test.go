package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(limit int, window time.Duration) (*RateLimiter, *clock) {
	c := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	lim := New(limit, window)
	lim.now = c.now
	return lim, c
}

func TestAllowAndRemaining(t *testing.T) {
	lim, _ := newTestLimiter(2, time.Minute)

	assert.True(t, lim.Allow("k"))
	assert.Equal(t, 1, lim.GetRemaining("k"))
	assert.True(t, lim.Allow("k"))
	assert.False(t, lim.Allow("k"))
	assert.Equal(t, 0, lim.GetRemaining("k"))
	assert.Equal(t, 2, lim.GetRemaining("other"))

	lim.Reset("k")
	assert.Equal(t, 2, lim.GetRemaining("k"))
}

func TestWindowSlides(t *testing.T) {
	lim, c := newTestLimiter(2, time.Minute)
	start := c.now()

	assert.True(t, lim.Allow("k"))
	c.advance(30 * time.Second)
	assert.True(t, lim.Allow("k"))
	assert.False(t, lim.Allow("k"))
	assert.Equal(t, start.Add(time.Minute), lim.GetResetTime("k"))

	// first request leaves the window
	c.advance(31 * time.Second)
	assert.Equal(t, 1, lim.GetRemaining("k"))
	assert.True(t, lim.Allow("k"))
	assert.False(t, lim.Allow("k"))
}

func TestCleanupDropsExpiredKeys(t *testing.T) {
	lim, c := newTestLimiter(1, 10*time.Second)
	assert.True(t, lim.Allow("k"))
	assert.True(t, lim.Allow("j"))

	c.advance(5 * time.Second)
	assert.False(t, lim.Allow("j"))

	c.advance(6 * time.Second)
	lim.Cleanup()

	lim.mu.Lock()
	assert.Empty(t, lim.requests)
	lim.mu.Unlock()
	assert.True(t, lim.Allow("k"))
	assert.Equal(t, c.now(), lim.GetResetTime("j"))
}
