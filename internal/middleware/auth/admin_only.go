package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireAdmin must run after RequireAuth. Role denial is a fixed 403 with no
// resource detail.
func (m *Middleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := CurrentUser(c)
		if user == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}
		if !user.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "admin role required")
		}
		return next(c)
	}
}
