package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/identikit/scim-bridge/internal/config"
	"github.com/identikit/scim-bridge/internal/scim"
)

// counterScript increments the window counter and stamps the expiry on
// first use, atomically.
var counterScript = redis.NewScript(`
    local n = redis.call('INCR', KEYS[1])
    if n == 1 then
        redis.call('PEXPIRE', KEYS[1], ARGV[1])
    end
    return n
`)

// RateLimit returns a fixed-window limiter keyed by client IP and route,
// shared across instances through redis. With limiting disabled or no
// redis available it degrades to a pass-through; a redis failure at
// request time lets the request through rather than taking the SCIM
// surface down with it.
func RateLimit(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			window := time.Now().UnixMilli() / cfg.Window.Milliseconds()
			key := fmt.Sprintf("%s:%s:%s:%d", cfg.Prefix, c.RealIP(), c.Path(), window)

			n, err := counterScript.Run(c.Request().Context(), rdb,
				[]string{key}, cfg.Window.Milliseconds()).Int64()
			if err != nil {
				return next(c)
			}
			if n > int64(cfg.Limit) {
				c.Response().Header().Set(echo.HeaderContentType, scim.ContentType)
				return c.JSON(http.StatusTooManyRequests,
					scim.NewError(http.StatusTooManyRequests, "rate limit exceeded"))
			}
			return next(c)
		}
	}
}
