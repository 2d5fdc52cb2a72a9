package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/edu-leads/internal/handler"
	"github.com/iliyamo/edu-leads/internal/middleware"
)

// Deps carries everything route registration needs.
type Deps struct {
	Leads   *handler.LeadHandler
	Auth    *handler.AuthHandler
	Session middleware.SessionVerifier
	// RateLimit guards the unauthenticated write endpoints. Nil disables it.
	RateLimit echo.MiddlewareFunc
	Health    echo.HandlerFunc
	// Provisioning exposes POST /api/admin/create.
	Provisioning bool
}

// RegisterRoutes mounts the health check and the /api surface on e.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", d.Health)

	limited := []echo.MiddlewareFunc{}
	if d.RateLimit != nil {
		limited = append(limited, d.RateLimit)
	}
	adminOnly := []echo.MiddlewareFunc{middleware.SessionAuth(d.Session), middleware.RequireRole("admin")}

	api := e.Group("/api")

	// Public submission; everything else on leads is admin only.
	api.POST("/leads", d.Leads.Submit, limited...)
	leads := api.Group("/leads", adminOnly...)
	leads.GET("", d.Leads.List)
	leads.GET("/stats", d.Leads.Stats)
	leads.PATCH("/:id", d.Leads.UpdateStatus)
	leads.DELETE("/:id", d.Leads.Delete)

	admin := api.Group("/admin")
	admin.POST("/login", d.Auth.Login, limited...)
	admin.POST("/logout", d.Auth.Logout)
	admin.GET("/verify", d.Auth.Verify, adminOnly...)
	if d.Provisioning {
		admin.POST("/create", d.Auth.Create, limited...)
	}
}
