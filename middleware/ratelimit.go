package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is a per-IP token bucket. Audits fetch and fully traverse a
// page, so they are deliberately expensive to trigger.
type RateLimiter struct {
	tokens         map[string]float64
	lastRefill     map[string]time.Time
	mu             sync.Mutex
	rate           float64 // tokens per second
	bucketSize     float64 // maximum tokens
	refillInterval time.Duration
	lastPrune      time.Time
}

// staleBucketAge is how long an idle IP keeps its bucket before pruning.
const staleBucketAge = 30 * time.Minute

func NewRateLimiter(rate float64, bucketSize float64) *RateLimiter {
	return &RateLimiter{
		tokens:         make(map[string]float64),
		lastRefill:     make(map[string]time.Time),
		rate:           rate,
		bucketSize:     bucketSize,
		refillInterval: time.Second,
		lastPrune:      time.Now(),
	}
}

// RateLimit returns the gin middleware enforcing the limiter.
func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		rl.mu.Lock()
		now := time.Now()

		if now.Sub(rl.lastPrune) > staleBucketAge {
			rl.pruneLocked(now)
		}

		// Initialize if first request
		if _, exists := rl.lastRefill[ip]; !exists {
			rl.tokens[ip] = rl.bucketSize
			rl.lastRefill[ip] = now
		}

		// Refill tokens based on time elapsed
		elapsed := now.Sub(rl.lastRefill[ip])
		newTokens := float64(elapsed) / float64(rl.refillInterval) * rl.rate
		rl.tokens[ip] = min(rl.bucketSize, rl.tokens[ip]+newTokens)
		rl.lastRefill[ip] = now

		if rl.tokens[ip] < 1 {
			rl.mu.Unlock()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			return
		}

		// Consume one token
		rl.tokens[ip]--
		rl.mu.Unlock()

		c.Next()
	}
}

// pruneLocked drops buckets for IPs that have been idle long enough to have
// fully refilled anyway. Caller holds the mutex.
func (rl *RateLimiter) pruneLocked(now time.Time) {
	for ip, last := range rl.lastRefill {
		if now.Sub(last) > staleBucketAge {
			delete(rl.tokens, ip)
			delete(rl.lastRefill, ip)
		}
	}
	rl.lastPrune = now
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
