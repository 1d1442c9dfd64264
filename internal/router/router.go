// Package router defines how HTTP routes are registered for the API.
package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/handler"
)

// RegisterRoutes registers probes that do not require authentication.
func RegisterRoutes(e *echo.Echo, db *sql.DB) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
}

// RegisterAuth registers sign-up and sign-in.  Neither needs a session.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	e.POST("/users", a.SignUp)
	e.POST("/auth/sign-in", a.SignIn)
}
