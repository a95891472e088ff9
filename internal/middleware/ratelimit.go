package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is a best-effort per-IP limiter backed by an in-process map.
// Counters reset on restart and are not shared across instances.
type RateLimiter struct {
	mu      sync.Mutex
	hits    map[string]*windowCounter
	limit   int
	window  time.Duration
	lastGC  time.Time
}

type windowCounter struct {
	count   int
	started time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		hits:   make(map[string]*windowCounter),
		limit:  limit,
		window: window,
		lastGC: time.Now(),
	}
}

func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()

	// Drop stale entries occasionally so the map cannot grow without bound.
	if now.Sub(rl.lastGC) > 10*rl.window {
		for k, wc := range rl.hits {
			if now.Sub(wc.started) > rl.window {
				delete(rl.hits, k)
			}
		}
		rl.lastGC = now
	}

	wc, ok := rl.hits[key]
	if !ok || now.Sub(wc.started) > rl.window {
		rl.hits[key] = &windowCounter{count: 1, started: now}
		return true
	}

	wc.count++
	return wc.count <= rl.limit
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"success": false, "error": "Too many requests"})
			return
		}
		c.Next()
	}
}
