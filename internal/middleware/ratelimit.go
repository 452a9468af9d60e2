package middleware

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taskboxhq/taskbox/internal/cache"
	apperrors "github.com/taskboxhq/taskbox/pkg/errors"
	"github.com/taskboxhq/taskbox/pkg/logger"
	"github.com/taskboxhq/taskbox/pkg/response"
)

// RateLimitConfig describes a fixed-window limit keyed by client IP.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// RateLimit rejects clients exceeding the configured request budget. Store
// errors fail open: a broken cache should not take the API down.
func RateLimit(store cache.Store, cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Requests <= 0 {
		cfg.Requests = 100
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}

	log := logger.WithModule("ratelimit")

	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		key := fmt.Sprintf("ratelimit:%s:%s", c.ClientIP(), path)

		count, ttl, err := store.IncrementWithTTL(c.Request.Context(), key, cfg.Window)
		if err != nil {
			log.Warn("rate limit store unavailable", zap.Error(err))
			c.Next()
			return
		}

		remaining := int64(cfg.Requests) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Requests))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(cfg.Requests) {
			retryAfter := int(math.Ceil(ttl.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			response.Error(c, apperrors.ErrRateLimit)
			c.Abort()
			return
		}

		c.Next()
	}
}
