package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kikipackaging/backoffice/internal/core/domain"
)

// Keys under which RequireSession stores the operator on the echo context.
const (
	ContextKeyUserID = "user_id"
	ContextKeyRole   = "role"
)

// SessionSource reports who is signed in.
type SessionSource interface {
	IsAuthenticated(ctx context.Context) bool
	Current() (domain.UserProfile, bool)
}

// RequireSession rejects requests while no operator is signed in and exposes
// the operator's id and role to later middleware.
func RequireSession(src SessionSource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !src.IsAuthenticated(c.Request().Context()) {
				return echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
			}
			u, ok := src.Current()
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
			}

			c.Set(ContextKeyUserID, u.ID)
			c.Set(ContextKeyRole, u.Role)

			return next(c)
		}
	}
}
