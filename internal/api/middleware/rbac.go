package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"
)

// RBAC lets a request through only when the signed-in operator holds one of
// roles. Mount it after RequireSession; a missing role is treated as none.
func RBAC(roles ...string) echo.MiddlewareFunc {
	msg := "requires role " + strings.Join(roles, " or ")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(ContextKeyRole).(string)
			if role == "" || !slices.Contains(roles, role) {
				return echo.NewHTTPError(http.StatusForbidden, msg)
			}
			return next(c)
		}
	}
}
