package http

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xambitlan/disclosure/internal/errors"
	"github.com/xambitlan/disclosure/internal/httputil"
	"github.com/xambitlan/disclosure/internal/ratelimit"
)

// RateLimitMiddleware enforces a per-identity token bucket.
//
// MUST be used after AuthenticationMiddleware. The limiter may be process-local
// or shared through Redis; a limiter error lets the request through and is logged.
func RateLimitMiddleware(limiter ratelimit.Limiter, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c.Request.Context())
		if !ok {
			logger.Error("rate limit middleware: no authenticated identity in context")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		enforce(c, limiter, identity.ID, logger)
	}
}

// IPRateLimitMiddleware enforces a per-client-IP token bucket on unauthenticated endpoints.
//
// Uses c.ClientIP(), which honors X-Forwarded-For and X-Real-IP from trusted proxies.
func IPRateLimitMiddleware(limiter ratelimit.Limiter, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		enforce(c, limiter, c.ClientIP(), logger)
	}
}

func enforce(c *gin.Context, limiter ratelimit.Limiter, key string, logger *slog.Logger) {
	decision, err := limiter.Allow(c.Request.Context(), key)
	if err != nil {
		logger.Warn("rate limiter unavailable", slog.String("error", err.Error()))
		c.Next()
		return
	}

	if !decision.Allowed {
		retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
		logger.Debug("rate limit exceeded",
			slog.String("key", key),
			slog.Int("retry_after", retryAfter))

		c.Header("Retry-After", strconv.Itoa(retryAfter))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":   "rate_limit_exceeded",
			"message": "Too many requests. Please retry after the specified delay.",
		})
		c.Abort()
		return
	}

	c.Next()
}
