package auth

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/gearsphere/motorclub-backend/internal/models"
)

const userContextKey = "currentUser"

func setCurrentUser(c echo.Context, user *models.User) {
	c.Set(userContextKey, user)
}

// CurrentUser returns the identity resolved by RequireAuth, or nil when the
// request is unauthenticated.
func CurrentUser(c echo.Context) *models.User {
	if v, ok := c.Get(userContextKey).(*models.User); ok {
		return v
	}
	return nil
}

// RequireOwnerOrAdmin is the ownership rule: admins pass, otherwise the
// identity must be the recorded owner.
func RequireOwnerOrAdmin(user *models.User, ownerID uint) bool {
	if user == nil {
		return false
	}
	return user.IsAdmin() || user.ID == ownerID
}

// BearerToken extracts the token from an "Authorization: Bearer <t>" header.
func BearerToken(header string) string {
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
