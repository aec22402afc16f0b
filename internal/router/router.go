// Package router defines how HTTP routes are registered for the API.
// Unauthenticated surfaces (health, catalog, anonymous listings,
// background checks) live alongside the JWT-protected /v1 group and
// the admin-only moderation routes.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/tucarrito/marketplace/internal/handler"
	"github.com/tucarrito/marketplace/internal/middleware"
	"github.com/tucarrito/marketplace/internal/model"
)

// RegisterRoutes registers routes that do not require authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the auth endpoints. Register and login are
// unauthenticated; /v1/me requires a session.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, loginLimit echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login, loginLimit)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the guest-facing catalog and lookup
// endpoints. No JWT or role middleware applies.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, b *handler.BackgroundHandler, t *handler.TemporaryHandler) {
	e.GET("/v1/catalog", p.Catalog)
	e.GET("/v1/catalog/:id", p.VehicleDetail)

	// Simulated registry lookups are public so buyers can vet a
	// plate before contacting the seller.
	e.GET("/v1/background/:plate", b.ByPlate)

	// Anonymous listing flow, scoped by the device session.
	e.GET("/v1/session", t.Session)
	e.POST("/v1/temp-vehicles", t.Create)
	e.GET("/v1/temp-vehicles", t.Mine)
	e.PUT("/v1/temp-vehicles/:id", t.Update)
	e.DELETE("/v1/temp-vehicles/:id", t.Delete)
}

// RegisterProtected registers the endpoints that require a session:
// listing management, purchases, conversion and messaging.
func RegisterProtected(e *echo.Echo, jwtSecret string, v *handler.VehicleHandler, t *handler.TemporaryHandler, pay *handler.PaymentHandler, b *handler.BackgroundHandler, m *handler.MessagingHandler) {
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleUser, model.RoleAdmin))

	auth.POST("/vehicles", v.Create)
	auth.GET("/vehicles", v.Mine)
	auth.GET("/vehicles/:id", v.Get)
	auth.PUT("/vehicles/:id", v.Update)
	auth.DELETE("/vehicles/:id", v.Delete)
	auth.POST("/vehicles/:id/register-for-sale", v.RegisterForSale)
	auth.GET("/vehicles/:id/background", b.ByVehicle)

	auth.POST("/temp-vehicles/:id/convert", t.Convert)

	auth.POST("/transactions", pay.Create)
	auth.GET("/transactions", pay.Mine)
	auth.GET("/transactions/:id", pay.Get)
	auth.POST("/transactions/:id/process", pay.Process)
	auth.POST("/transactions/:id/cancel", pay.Cancel)

	auth.GET("/messaging/healthz", m.Healthz)
	auth.POST("/conversations", m.Open)
	auth.GET("/conversations", m.List)
	auth.GET("/conversations/:id/messages", m.Messages)
	auth.POST("/conversations/:id/messages", m.Send)
	auth.GET("/messaging/stream", m.Stream)
	auth.GET("/messages/unread", m.Unread)
}

// RegisterAdmin registers the moderation endpoints. All routes
// require the admin role.
func RegisterAdmin(e *echo.Echo, jwtSecret string, a *handler.AdminHandler) {
	admin := e.Group("/v1/admin")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))

	admin.GET("/users", a.AllUsers)
	admin.GET("/users/pending", a.PendingUsers)
	admin.POST("/users/:id/approve", a.ApproveUser)
	admin.POST("/users/:id/reject", a.RejectUser)

	admin.GET("/vehicles/pending", a.PendingVehicles)
	admin.POST("/vehicles/:id/approve", a.ApproveVehicle)
	admin.POST("/vehicles/:id/reject", a.RejectVehicle)

	admin.POST("/temp-vehicles/clean", a.CleanTemporary)
}
