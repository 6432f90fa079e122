package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/cache"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/logger"
	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/metrics"
)

// RedisRateLimitMiddleware creates a fixed-window rate limiter backed by
// Redis so limits hold across instances. Without a Redis client it degrades
// to the in-memory token bucket limiter for the same scope.
func RedisRateLimitMiddleware(scope string, maxRequests int, window time.Duration) gin.HandlerFunc {
	fallback := NewRateLimiter(RateLimitConfig{Limit: maxRequests, Window: window})

	return func(c *gin.Context) {
		redisClient := cache.GetRedisClient()
		if redisClient == nil {
			fallback(c)
			return
		}

		clientIP := c.ClientIP()
		key := cache.RateLimitKey(scope, clientIP)
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		count, err := redisClient.Incr(ctx, key)
		if err != nil {
			// A broken limiter must not open the API to unmetered traffic
			logger.Log.Error("Rate limit check failed, rejecting request",
				logger.WithIP(clientIP),
				zap.String("scope", scope),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": "service_unavailable",
			})
			return
		}

		// First request in this window starts the clock
		if count == 1 {
			if err := redisClient.Expire(ctx, key, window); err != nil {
				logger.Log.Warn("Failed to set rate limit expiration",
					logger.WithIP(clientIP),
					zap.Error(err),
				)
			}
		}

		if count > int64(maxRequests) {
			metrics.Get().RateLimitExceededTotal.
				WithLabelValues(c.FullPath(), c.Request.Method).Inc()

			logger.Log.Warn("Rate limit exceeded",
				logger.WithIP(clientIP),
				zap.String("scope", scope),
				zap.Int("max_requests", maxRequests),
				zap.Int64("current_requests", count),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate_limit_exceeded",
				"retry_after": int(window.Seconds()),
			})
			return
		}

		c.Next()
	}
}
