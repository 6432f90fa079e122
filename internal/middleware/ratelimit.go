package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/metrics"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// Requests per window
	Limit int
	// Window duration
	Window time.Duration
	// KeyFunc extracts the bucket key from a request; defaults to client IP
	KeyFunc func(c *gin.Context) string
}

// DefaultRateLimitConfig limits general API traffic per client
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Limit:  100,
		Window: time.Minute,
	}
}

// AuthRateLimitConfig returns stricter limits for login/register endpoints
func AuthRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Limit:  10,
		Window: time.Minute,
	}
}

// WriteRateLimitConfig limits content creation (posts, comments, reports)
func WriteRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Limit:  30,
		Window: time.Minute,
	}
}

// VoteRateLimitConfig limits poll voting
func VoteRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Limit:  20,
		Window: time.Minute,
	}
}

// TokenBucket for rate limiting
type TokenBucket struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	mu         sync.Mutex
}

// NewTokenBucket creates a new token bucket
func NewTokenBucket(maxTokens, refillRate float64) *TokenBucket {
	return &TokenBucket{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Allow checks if a request is allowed based on token availability
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.tokens = min(tb.maxTokens, tb.tokens+elapsed*tb.refillRate)
	tb.lastRefill = now

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// GetRetryAfter returns seconds to wait before the next request
func (tb *TokenBucket) GetRetryAfter() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if tb.tokens < 1 {
		timeToToken := (1 - tb.tokens) / tb.refillRate
		return int(timeToToken) + 1
	}
	return 0
}

// RateLimiter keeps a token bucket per client key
type RateLimiter struct {
	buckets map[string]*TokenBucket
	config  RateLimitConfig
	mu      sync.Mutex
}

// NewRateLimiter creates a rate limiting middleware with per-key token buckets
func NewRateLimiter(config RateLimitConfig) gin.HandlerFunc {
	if config.KeyFunc == nil {
		config.KeyFunc = func(c *gin.Context) string {
			return c.ClientIP()
		}
	}

	rl := &RateLimiter{
		buckets: make(map[string]*TokenBucket),
		config:  config,
	}

	return func(c *gin.Context) {
		key := config.KeyFunc(c)
		if !rl.Allow(key) {
			metrics.Get().RateLimitExceededTotal.
				WithLabelValues(c.FullPath(), c.Request.Method).Inc()

			retryAfter := rl.GetRetryAfter(key)
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
			c.Header("X-RateLimit-Remaining", "0")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate_limit_exceeded",
				"retry_after": retryAfter,
			})
			return
		}
		c.Next()
	}
}

// Allow checks if a key is allowed to make a request
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	bucket, exists := rl.buckets[key]
	if !exists {
		refillRate := float64(rl.config.Limit) / rl.config.Window.Seconds()
		bucket = NewTokenBucket(float64(rl.config.Limit), refillRate)
		rl.buckets[key] = bucket
	}

	return bucket.Allow()
}

// GetRetryAfter gets retry-after seconds for a key
func (rl *RateLimiter) GetRetryAfter(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	bucket, exists := rl.buckets[key]
	if !exists {
		return 1
	}
	return bucket.GetRetryAfter()
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// Redis-backed wrappers that fall back to in-memory buckets when Redis
// is unavailable.

// RateLimitDefault returns the general-traffic limiter
func RateLimitDefault() gin.HandlerFunc {
	cfg := DefaultRateLimitConfig()
	return RedisRateLimitMiddleware("default", cfg.Limit, cfg.Window)
}

// RateLimitAuth returns the limiter for login/register endpoints
func RateLimitAuth() gin.HandlerFunc {
	cfg := AuthRateLimitConfig()
	return RedisRateLimitMiddleware("auth", cfg.Limit, cfg.Window)
}

// RateLimitWrite returns the limiter for content creation endpoints
func RateLimitWrite() gin.HandlerFunc {
	cfg := WriteRateLimitConfig()
	return RedisRateLimitMiddleware("write", cfg.Limit, cfg.Window)
}

// RateLimitVote returns the limiter for poll voting
func RateLimitVote() gin.HandlerFunc {
	cfg := VoteRateLimitConfig()
	return RedisRateLimitMiddleware("vote", cfg.Limit, cfg.Window)
}
