package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"thriftmart/internal/infrastructure/ratelimit"
	"thriftmart/internal/infrastructure/telemetry"
	"thriftmart/pkg/errors"
	"thriftmart/pkg/logger"
	"thriftmart/pkg/response"
)

// RateLimit throttles requests per client IP under the given action name.
// Limiter failures let the request through.
func RateLimit(limiter ratelimit.Limiter, action string, metrics *telemetry.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()

			allowed, retryAfter, err := limiter.Allow(c.Request().Context(), action+":"+ip)
			if err != nil {
				logger.Warn("RATE LIMIT: limiter error for %s from %s, allowing: %v", action, ip, err)
				return next(c)
			}

			if !allowed {
				logger.Info("RATE LIMIT: blocked %s from IP %s (retry in %v)", action, ip, retryAfter)
				if metrics != nil {
					metrics.RateLimited.WithLabelValues(action).Inc()
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(retrySeconds(retryAfter)))
				return response.Error(c, errors.TooManyRequests("Rate limit exceeded", retryAfter))
			}

			return next(c)
		}
	}
}

func retrySeconds(d time.Duration) int {
	s := int((d + time.Second - 1) / time.Second)
	if s < 1 {
		s = 1
	}
	return s
}
