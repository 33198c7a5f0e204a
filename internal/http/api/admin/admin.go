// Package admin registers the administrative API.
package admin

import (
	"github.com/gin-gonic/gin"
	"github.com/router-for-me/CourseMarket/internal/accounts"
	"github.com/router-for-me/CourseMarket/internal/catalog"
	"github.com/router-for-me/CourseMarket/internal/config"
	handlers "github.com/router-for-me/CourseMarket/internal/http/api/admin/handlers"
	"github.com/router-for-me/CourseMarket/internal/http/api/middleware"
	"github.com/router-for-me/CourseMarket/internal/store"
	"gorm.io/gorm"
)

// Deps are the services the admin API runs on.
type Deps struct {
	DB       *gorm.DB
	Store    store.Store
	Accounts *accounts.Service
	Catalog  *catalog.Service
	JWT      config.JWTConfig
}

// RegisterAdminRoutes registers admin routes, middleware, and handlers.
func RegisterAdminRoutes(r *gin.Engine, deps Deps) {
	if r == nil || deps.DB == nil || deps.Store == nil {
		return
	}

	healthHandler := handlers.NewHealthHandler(deps.DB)
	r.GET("/healthz", healthHandler.Healthz)

	authed := r.Group("/v0/admin")
	authed.Use(middleware.UserAuth(deps.Store, deps.JWT))
	authed.Use(middleware.RequireAdmin())

	userHandler := handlers.NewUserHandler(deps.Accounts)
	authed.POST("/users", userHandler.Create)
	authed.POST("/users/:id/balance/credit", userHandler.CreditBalance)

	courseHandler := handlers.NewCourseHandler(deps.Catalog)
	authed.POST("/courses", courseHandler.Create)
	authed.PUT("/courses/:id", courseHandler.Update)
	authed.DELETE("/courses/:id", courseHandler.Delete)
	authed.POST("/courses/:id/lessons", courseHandler.CreateLesson)

	settingHandler := handlers.NewSettingHandler(deps.DB)
	authed.GET("/settings", settingHandler.List)
	authed.GET("/settings/:key", settingHandler.Get)
	authed.PUT("/settings/:key", settingHandler.Update)
}
