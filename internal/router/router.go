// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"purchase-desk/internal/config"
	"purchase-desk/internal/handler"
	"purchase-desk/internal/middleware"
	"purchase-desk/internal/model"
)

// Register sets up every route of the service. Login sits behind the
// rate limiter; the admin listings behind the response cache. User and
// admin groups each carry the JWT middleware plus their role guard, the
// same split the original made between /user and /admin pages.
func Register(e *echo.Echo, cfg config.Config, rdb *redis.Client,
	auth *handler.AuthHandler, apps *handler.ApplicationHandler, admin *handler.AdminHandler) {

	e.GET("/healthz", handler.Health)

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	g := e.Group("/v1/auth")
	g.POST("/login", auth.Login, limiter)
	g.POST("/refresh", auth.Refresh)
	g.POST("/logout", auth.Logout)

	protected := e.Group("/v1")
	protected.Use(middleware.JWTAuth(cfg.JWTSecret))
	protected.GET("/me", auth.Me)

	user := protected.Group("/applications")
	user.Use(middleware.RequireRole(model.RoleUser))
	user.GET("", apps.List)
	user.POST("", apps.Create)
	user.POST("/:id/cancel", apps.Cancel)
	user.POST("/:id/clone", apps.Clone)

	adm := protected.Group("/admin")
	adm.Use(middleware.RequireRole(model.RoleAdmin))
	adm.GET("/statuses", admin.Statuses)
	adm.GET("/applications", admin.List, cache)
	adm.POST("/applications/:id", admin.Update)
	adm.GET("/users", admin.ListUsers)
	adm.GET("/archive", admin.Archive, cache)
}
