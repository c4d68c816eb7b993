package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/deppfellow/go-posts/internal/errs"
	"github.com/deppfellow/go-posts/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const (
	rateLimitKeyPrefix = "posts:ratelimit"

	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRetryAfter         = "Retry-After"
)

// RateLimitMiddleware enforces a fixed window allowance per client IP.
//
// Counters live in Redis under posts:ratelimit:<ip>:<window start>. The
// limiter is a no-op when rate limiting is disabled or Redis is not configured,
// and fails open when Redis errors.
type RateLimitMiddleware struct {
	server *server.Server
	now    func() time.Time
}

func NewRateLimitMiddleware(s *server.Server) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		server: s,
		now:    time.Now,
	}
}

// Limit returns the Echo middleware applying the configured allowance.
func (r *RateLimitMiddleware) Limit() echo.MiddlewareFunc {
	cfg := r.server.Config.RateLimit
	if !cfg.Enabled || r.server.Redis == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	window := time.Duration(cfg.WindowSeconds) * time.Second

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			now := r.now()
			windowStart := now.Truncate(window)
			key := fmt.Sprintf("%s:%s:%d", rateLimitKeyPrefix, c.RealIP(), windowStart.Unix())

			count, err := r.increment(c, key, window)
			if err != nil {
				GetLogger(c).Warn().Err(err).Str("key", key).Msg("rate limiter unavailable, allowing request")
				return next(c)
			}

			remaining := max(int64(cfg.Requests)-count, 0)
			header := c.Response().Header()
			header.Set(HeaderRateLimitLimit, strconv.Itoa(cfg.Requests))
			header.Set(HeaderRateLimitRemaining, strconv.FormatInt(remaining, 10))

			if count > int64(cfg.Requests) {
				retryAfter := int(windowStart.Add(window).Sub(now).Seconds()) + 1
				header.Set(HeaderRetryAfter, strconv.Itoa(retryAfter))

				r.RecordRateLimitHit(c.Path())
				GetLogger(c).Warn().
					Int64("count", count).
					Int("limit", cfg.Requests).
					Msg("rate limit exceeded")

				return errs.NewTooManyRequestsError("Too many requests, please slow down", retryAfter)
			}

			return next(c)
		}
	}
}

// increment bumps the window counter and sets its expiry in one round trip.
func (r *RateLimitMiddleware) increment(c echo.Context, key string, window time.Duration) (int64, error) {
	var incr *redis.IntCmd

	_, err := r.server.Redis.TxPipelined(c.Request().Context(), func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(c.Request().Context(), key)
		pipe.Expire(c.Request().Context(), key, window)
		return nil
	})
	if err != nil {
		return 0, err
	}

	return incr.Val(), nil
}

// RecordRateLimitHit emits a RateLimitHit custom event to New Relic.
func (r *RateLimitMiddleware) RecordRateLimitHit(endpoint string) {
	if r.server.LoggerService != nil && r.server.LoggerService.GetApplication() != nil {
		r.server.LoggerService.GetApplication().RecordCustomEvent("RateLimitHit", map[string]interface{}{
			"endpoint": endpoint,
		})
	}
}
