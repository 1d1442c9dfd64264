package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/utils"
)

// SessionLookup resolves an access token to the user owning its session.
type SessionLookup interface {
	UserIDByToken(ctx context.Context, token string) (uint64, error)
}

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and requires a live session holding it.  On success the user ID is stored
// in the context under "user_id" as a uint64.
func JWTAuth(secret string, sessions SessionLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

			uid, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			owner, err := sessions.UserIDByToken(c.Request().Context(), raw)
			if err != nil || owner != uid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "session not found"})
			}

			c.Set("user_id", uid)
			return next(c)
		}
	}
}
