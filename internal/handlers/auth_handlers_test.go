package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gearsphere/motorclub-backend/internal/models"
)

func TestSignUpAndSignIn(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSON(t, http.MethodPost, "/api/auth/signup", map[string]any{
		"username": "alice",
		"email":    "alice@x.com",
		"password": "pw123456",
		"location": "Munich",
	}, nil)
	require.NoError(t, env.AuthHandler.SignUp(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "User registered successfully!", decode[MessageResponse](t, rec).Message)

	rec, c = env.doJSON(t, http.MethodPost, "/api/auth/signin", map[string]any{
		"username": "alice",
		"password": "pw123456",
	}, nil)
	require.NoError(t, env.AuthHandler.SignIn(c))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[JwtResponse](t, rec)
	require.Equal(t, "Bearer", resp.Type)
	require.Equal(t, "alice", resp.Username)
	require.Equal(t, "Munich", resp.Location)
	require.Equal(t, []string{"USER"}, resp.Roles)
	require.NotEmpty(t, resp.Token)
	require.NotEmpty(t, resp.RefreshToken)

	username, err := env.Auth.VerifyAccessToken(resp.Token)
	require.NoError(t, err)
	require.Equal(t, "alice", username)
}

func TestSignUp_DuplicateUsername(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "alice", models.RoleUser, false)

	_, c := env.doJSON(t, http.MethodPost, "/api/auth/signup", map[string]any{
		"username": "alice",
		"email":    "other@x.com",
		"password": "pw123456",
	}, nil)
	requireHTTPError(t, env.AuthHandler.SignUp(c), http.StatusBadRequest)
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "alice", models.RoleUser, false)

	_, c := env.doJSON(t, http.MethodPost, "/api/auth/signup", map[string]any{
		"username": "alice_two",
		"email":    "alice@x.com",
		"password": "pw123456",
	}, nil)
	requireHTTPError(t, env.AuthHandler.SignUp(c), http.StatusBadRequest)

	var count int64
	require.NoError(t, env.DB.Model(&models.User{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestSignUp_AdminRoleHonored(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doJSON(t, http.MethodPost, "/api/auth/signup", map[string]any{
		"username": "root",
		"email":    "root@x.com",
		"password": "pw123456",
		"role":     "admin",
	}, nil)
	require.NoError(t, env.AuthHandler.SignUp(c))

	var user models.User
	require.NoError(t, env.DB.Where("username = ?", "root").First(&user).Error)
	require.True(t, user.IsAdmin())
}

func TestSignIn_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "alice", models.RoleUser, false)

	_, c := env.doJSON(t, http.MethodPost, "/api/auth/signin", map[string]any{
		"username": "alice",
		"password": "nope",
	}, nil)
	requireHTTPError(t, env.AuthHandler.SignIn(c), http.StatusUnauthorized)
}

func TestSignIn_Banned(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "alice", models.RoleUser, true)

	_, c := env.doJSON(t, http.MethodPost, "/api/auth/signin", map[string]any{
		"username": "alice",
		"password": "pw123456",
	}, nil)
	requireHTTPError(t, env.AuthHandler.SignIn(c), http.StatusForbidden)
}

func TestRefreshToken_ReturnsSameRefresh(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice", models.RoleUser, false)

	refresh, err := env.Auth.IssueRefreshToken(t.Context(), alice.ID)
	require.NoError(t, err)

	rec, c := env.doJSON(t, http.MethodPost, "/api/auth/refresh-token", map[string]any{
		"refreshToken": refresh.Token,
	}, nil)
	require.NoError(t, env.AuthHandler.RefreshToken(c))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[map[string]string](t, rec)
	require.Equal(t, refresh.Token, resp["refreshToken"])

	username, err := env.Auth.VerifyAccessToken(resp["token"])
	require.NoError(t, err)
	require.Equal(t, "alice", username)
}

func TestSignOut_RevokesRefreshToken(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice", models.RoleUser, false)

	refresh, err := env.Auth.IssueRefreshToken(t.Context(), alice.ID)
	require.NoError(t, err)

	rec, c := env.doJSON(t, http.MethodPost, "/api/auth/signout", nil, alice)
	require.NoError(t, env.call(env.AuthHandler.SignOut, c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Log out successful!", decode[MessageResponse](t, rec).Message)

	_, c = env.doJSON(t, http.MethodPost, "/api/auth/refresh-token", map[string]any{
		"refreshToken": refresh.Token,
	}, nil)
	requireHTTPError(t, env.AuthHandler.RefreshToken(c), http.StatusForbidden)
}

func TestUpdateProfile_UsernameChangeReissuesTokens(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice", models.RoleUser, false)

	oldRefresh, err := env.Auth.IssueRefreshToken(t.Context(), alice.ID)
	require.NoError(t, err)

	rec, c := env.doJSON(t, http.MethodPut, "/api/auth/profile", map[string]any{
		"username": "alice2",
		"email":    "alice@x.com",
	}, alice)
	require.NoError(t, env.call(env.AuthHandler.UpdateProfile, c))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[JwtResponse](t, rec)
	require.Equal(t, "alice2", resp.Username)
	require.NotEqual(t, oldRefresh.Token, resp.RefreshToken)

	username, err := env.Auth.VerifyAccessToken(resp.Token)
	require.NoError(t, err)
	require.Equal(t, "alice2", username)

	// replace-on-issue: the pre-change refresh token is gone
	_, c = env.doJSON(t, http.MethodPost, "/api/auth/refresh-token", map[string]any{
		"refreshToken": oldRefresh.Token,
	}, nil)
	requireHTTPError(t, env.AuthHandler.RefreshToken(c), http.StatusForbidden)
}

func TestUpdateProfile_NoUsernameChange(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice", models.RoleUser, false)

	rec, c := env.doJSON(t, http.MethodPut, "/api/auth/profile", map[string]any{
		"username": "alice",
		"email":    "alice@x.com",
		"location": "Hamburg",
	}, alice)
	require.NoError(t, env.call(env.AuthHandler.UpdateProfile, c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Profile updated successfully!", decode[MessageResponse](t, rec).Message)

	var user models.User
	require.NoError(t, env.DB.First(&user, alice.ID).Error)
	require.Equal(t, "Hamburg", user.Location)
}
