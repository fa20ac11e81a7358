// Package router wires the HTTP routes to their handlers.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/handler"
	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/middleware"
	"github.com/rishabhborn2win/enterprise-bus-booking-service/internal/model"
)

// RegisterRoutes registers routes that do not require authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints.  Register and
// login are public; /v1/me requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleAdmin, model.RoleCustomer))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated browse endpoints:
// availability queries and schedule search.
func RegisterPublic(e *echo.Echo, av *handler.AvailabilityHandler, s *handler.SearchHandler) {
	e.GET("/v1/schedules/:id/availability", av.GetAvailability)
	e.GET("/v1/search/schedules", s.Search)
}

// RegisterBooking registers the booking lifecycle endpoints.  All of
// them require an authenticated customer or admin.
func RegisterBooking(e *echo.Echo, b *handler.BookingHandler, jwtSecret string) {
	g := e.Group("/v1/bookings")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin, model.RoleCustomer))
	g.POST("", b.Reserve)
	g.GET("/:id", b.Get)
	g.POST("/:id/confirm", b.Confirm)
	g.POST("/:id/cancel", b.Cancel)
}

// RegisterAdmin registers the schedule and stop authoring endpoints.
// Only admins may call them.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin))
	g.POST("/stops", a.CreateStop)
	g.PUT("/stops/:id", a.UpdateStop)
	g.POST("/schedules", a.CreateSchedule)
	g.POST("/search/sync", a.FullSync)
}
