package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gearsphere/motorclub-backend/internal/models"
)

func TestGetAllUsers(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "root", models.RoleAdmin, false)
	env.seedUser(t, "alice", models.RoleUser, false)

	rec, c := env.doJSON(t, http.MethodGet, "/api/users/all", nil, nil)
	require.NoError(t, env.UserHandler.GetAllUsers(c))
	require.Equal(t, http.StatusOK, rec.Code)

	users := decode[[]UserDTO](t, rec)
	require.Len(t, users, 2)
	require.Equal(t, "root", users[0].Username)
	require.NotContains(t, rec.Body.String(), "password")
}

func TestLastAdmin_CannotBeBanned(t *testing.T) {
	env := newTestEnv(t)
	root := env.seedUser(t, "root", models.RoleAdmin, false)

	_, c := env.doJSON(t, http.MethodPut, "/api/users/1/ban", nil, nil)
	setParams(c, "id", "1")
	requireHTTPError(t, env.UserHandler.BanUser(c), http.StatusBadRequest)

	var user models.User
	require.NoError(t, env.DB.First(&user, root.ID).Error)
	require.False(t, user.Banned)
}

func TestLastAdmin_CannotBeDeleted(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "root", models.RoleAdmin, false)

	_, c := env.doJSON(t, http.MethodDelete, "/api/users/1", nil, nil)
	setParams(c, "id", "1")
	requireHTTPError(t, env.UserHandler.DeleteUser(c), http.StatusBadRequest)
}

func TestLastAdmin_CannotBeDowngraded(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "root", models.RoleAdmin, false)

	_, c := env.doJSON(t, http.MethodPut, "/api/users/1/role", map[string]any{"role": "USER"}, nil)
	setParams(c, "id", "1")
	requireHTTPError(t, env.UserHandler.UpdateUserRole(c), http.StatusBadRequest)
}

func TestBanUser_RevokesSession(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "root", models.RoleAdmin, false)
	alice := env.seedUser(t, "alice", models.RoleUser, false)

	refresh, err := env.Auth.IssueRefreshToken(t.Context(), alice.ID)
	require.NoError(t, err)

	rec, c := env.doJSON(t, http.MethodPut, "/api/users/2/ban", nil, nil)
	setParams(c, "id", "2")
	require.NoError(t, env.UserHandler.BanUser(c))
	require.Equal(t, http.StatusOK, rec.Code)

	// no live session survives a ban
	_, c = env.doJSON(t, http.MethodPost, "/api/auth/refresh-token", map[string]any{
		"refreshToken": refresh.Token,
	}, nil)
	requireHTTPError(t, env.AuthHandler.RefreshToken(c), http.StatusForbidden)

	_, c = env.doJSON(t, http.MethodPost, "/api/auth/signin", map[string]any{
		"username": "alice",
		"password": "pw123456",
	}, nil)
	requireHTTPError(t, env.AuthHandler.SignIn(c), http.StatusForbidden)
}

func TestUnbanUser(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "root", models.RoleAdmin, false)
	alice := env.seedUser(t, "alice", models.RoleUser, true)

	rec, c := env.doJSON(t, http.MethodPut, "/api/users/2/unban", nil, nil)
	setParams(c, "id", "2")
	require.NoError(t, env.UserHandler.UnbanUser(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var user models.User
	require.NoError(t, env.DB.First(&user, alice.ID).Error)
	require.False(t, user.Banned)
}

func TestUpdateUserRole(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "root", models.RoleAdmin, false)
	alice := env.seedUser(t, "alice", models.RoleUser, false)

	rec, c := env.doJSON(t, http.MethodPut, "/api/users/2/role", map[string]any{"role": "ADMIN"}, nil)
	setParams(c, "id", "2")
	require.NoError(t, env.UserHandler.UpdateUserRole(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var user models.User
	require.NoError(t, env.DB.First(&user, alice.ID).Error)
	require.True(t, user.IsAdmin())

	// two admins now, so the original one may step down
	rec, c = env.doJSON(t, http.MethodPut, "/api/users/1/role", map[string]any{"role": "USER"}, nil)
	setParams(c, "id", "1")
	require.NoError(t, env.UserHandler.UpdateUserRole(c))
	require.Equal(t, http.StatusOK, rec.Code)

	_, c = env.doJSON(t, http.MethodPut, "/api/users/2/role", map[string]any{"role": "OWNER"}, nil)
	setParams(c, "id", "2")
	requireHTTPError(t, env.UserHandler.UpdateUserRole(c), http.StatusBadRequest)
}

func TestDeleteUser(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "root", models.RoleAdmin, false)
	alice := env.seedUser(t, "alice", models.RoleUser, false)

	rec, c := env.doJSON(t, http.MethodDelete, "/api/users/2", nil, nil)
	setParams(c, "id", "2")
	require.NoError(t, env.UserHandler.DeleteUser(c))
	require.Equal(t, http.StatusOK, rec.Code)

	err := env.DB.First(&models.User{}, alice.ID).Error
	require.Error(t, err)

	_, c = env.doJSON(t, http.MethodDelete, "/api/users/99", nil, nil)
	setParams(c, "id", "99")
	requireHTTPError(t, env.UserHandler.DeleteUser(c), http.StatusNotFound)
}
