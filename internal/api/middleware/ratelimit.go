package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/order-tracking/internal/api/metrics"
	ratelimit "github.com/99minutos/order-tracking/internal/infrastructure/db/redis"
)

// limiterTimeout caps the time a request waits on the limiter store before
// it is let through.
const limiterTimeout = 250 * time.Millisecond

// Limiter counts hits for a key within a window.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (ratelimit.Decision, error)
}

// RateLimitRule configures one limiter scope.
type RateLimitRule struct {
	Scope   string
	Limit   int
	Window  time.Duration
	Message string
}

// RateLimit rejects a client IP once it exceeds rule.Limit requests per
// rule.Window. A limiter failure lets the request through.
func RateLimit(limiter Limiter, rule RateLimitRule, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if ip == "" {
				ip = "unknown"
			}
			key := rule.Scope + ":" + ip

			ctx, cancel := context.WithTimeout(c.Request().Context(), limiterTimeout)
			d, err := limiter.Allow(ctx, key, rule.Limit, rule.Window)
			cancel()
			if err != nil {
				log.Warn().Err(err).Str("scope", rule.Scope).Msg("rate limiter unavailable, allowing request")
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))

			if !d.Allowed {
				secs := int(math.Ceil(time.Until(d.ResetAt).Seconds()))
				if secs < 0 {
					secs = 0
				}
				h.Set("Retry-After", strconv.Itoa(secs))
				metrics.RateLimitRejectedTotal.WithLabelValues(rule.Scope).Inc()
				return echo.NewHTTPError(http.StatusTooManyRequests, rule.Message)
			}
			return next(c)
		}
	}
}
