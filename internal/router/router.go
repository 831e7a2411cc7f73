// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/identikit/scim-bridge/internal/config"
	"github.com/identikit/scim-bridge/internal/handler"
	"github.com/identikit/scim-bridge/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check for load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterSCIM mounts the Users and Groups resources under the SCIM v2
// base path. Authentication runs before anything touches a request body;
// the rate limiter sits behind it so unauthenticated traffic cannot burn
// the window.
func RegisterSCIM(e *echo.Echo, u *handler.UserHandler, g *handler.GroupHandler, auth middleware.AuthConfig, rl config.RateLimitConfig, rdb *redis.Client) {
	v2 := e.Group("/scim/v2")
	v2.Use(middleware.BearerSecret(auth))
	v2.Use(middleware.RateLimit(rl, rdb))

	v2.GET("/Users", u.List)
	v2.POST("/Users", u.Create)
	v2.GET("/Users/:id", u.Get)
	v2.PATCH("/Users/:id", u.Patch)
	v2.PUT("/Users/:id", u.Put)
	v2.DELETE("/Users/:id", u.Delete)

	v2.GET("/Groups", g.List)
	v2.POST("/Groups", g.Create)
	v2.GET("/Groups/:id", g.Get)
	v2.PATCH("/Groups/:id", g.Patch)
	v2.PUT("/Groups/:id", g.Put)
	v2.DELETE("/Groups/:id", g.Delete)
}
