// Package front registers the student-facing API.
package front

import (
	"github.com/gin-gonic/gin"
	"github.com/router-for-me/CourseMarket/internal/accounts"
	"github.com/router-for-me/CourseMarket/internal/catalog"
	"github.com/router-for-me/CourseMarket/internal/config"
	"github.com/router-for-me/CourseMarket/internal/enrollment"
	handlers "github.com/router-for-me/CourseMarket/internal/http/api/front/handlers"
	"github.com/router-for-me/CourseMarket/internal/http/api/middleware"
	"github.com/router-for-me/CourseMarket/internal/ratelimit"
	"github.com/router-for-me/CourseMarket/internal/store"
)

// Deps are the services the front API runs on.
type Deps struct {
	Store       store.Store
	Accounts    *accounts.Service
	Catalog     *catalog.Service
	Coordinator *enrollment.Coordinator
	Limiter     *ratelimit.Manager
	JWT         config.JWTConfig
}

// RegisterFrontRoutes registers front routes, middleware, and handlers.
func RegisterFrontRoutes(r *gin.Engine, deps Deps) {
	if r == nil || deps.Store == nil {
		return
	}

	frontGroup := r.Group("/v0/front")

	authHandler := handlers.NewAuthHandler(deps.Accounts, deps.JWT)
	frontGroup.POST("/login", ratelimit.Middleware(deps.Limiter, func(c *gin.Context, cfg ratelimit.SettingsConfig) ratelimit.Decision {
		return ratelimit.ResolveLogin(cfg, c.ClientIP())
	}), authHandler.Login)

	authed := frontGroup.Group("")
	authed.Use(middleware.UserAuth(deps.Store, deps.JWT))

	authed.GET("/me", authHandler.Me)

	courseHandler := handlers.NewCourseFrontHandler(deps.Catalog)
	authed.GET("/courses", courseHandler.List)
	authed.GET("/courses/available", courseHandler.Available)
	authed.GET("/courses/:id", courseHandler.Get)
	authed.GET("/courses/:id/lessons", courseHandler.Lessons)
	authed.GET("/courses/:id/groups", courseHandler.Groups)
	authed.GET("/courses/:id/students", courseHandler.Students)

	purchaseHandler := handlers.NewPurchaseHandler(deps.Coordinator)
	authed.POST("/courses/:id/purchase", ratelimit.Middleware(deps.Limiter, func(c *gin.Context, cfg ratelimit.SettingsConfig) ratelimit.Decision {
		return ratelimit.ResolvePurchase(cfg, middleware.UserID(c))
	}), purchaseHandler.Purchase)
}
