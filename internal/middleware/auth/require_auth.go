package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	authsvc "github.com/gearsphere/motorclub-backend/internal/auth"
)

type Middleware struct {
	Auth *authsvc.Service
}

func New(svc *authsvc.Service) *Middleware {
	return &Middleware{Auth: svc}
}

// RequireAuth validates the bearer access token and re-resolves the account
// from the database before the handler runs, so banned or deleted users are
// rejected even while their token signature is still valid.
func (m *Middleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		username, err := m.Auth.VerifyAccessToken(token)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		user, err := m.Auth.ResolveUser(c.Request().Context(), username)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		setCurrentUser(c, user)
		return next(c)
	}
}
