package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	authsvc "github.com/gearsphere/motorclub-backend/internal/auth"
	"github.com/gearsphere/motorclub-backend/internal/chat"
	"github.com/gearsphere/motorclub-backend/internal/hash"
	authmw "github.com/gearsphere/motorclub-backend/internal/middleware/auth"
	"github.com/gearsphere/motorclub-backend/internal/models"
)

type testEnv struct {
	DB   *gorm.DB
	E    *echo.Echo
	Auth *authsvc.Service
	MW   *authmw.Middleware

	AuthHandler   *AuthHandler
	UserHandler   *UserHandler
	CarHandler    *CarHandler
	ForumHandler  *ForumHandler
	ChatHandler   *ChatHandler
	TuningHandler *TuningHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.RefreshToken{},
		&models.Car{}, &models.CarPhoto{}, &models.Audio{},
		&models.ChatMessage{},
		&models.ForumPost{}, &models.ForumComment{}, &models.ForumLike{}, &models.ForumPostPhoto{},
		&models.TuningRequest{},
	))

	auth := &authsvc.Service{
		DB:         db,
		JWTSecret:  []byte("test-jwt-secret"),
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}

	hub := chat.NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))

	return &testEnv{
		DB:   db,
		E:    echo.New(),
		Auth: auth,
		MW:   authmw.New(auth),

		AuthHandler:   &AuthHandler{DB: db, Auth: auth},
		UserHandler:   &UserHandler{DB: db, Auth: auth},
		CarHandler:    &CarHandler{DB: db},
		ForumHandler:  &ForumHandler{DB: db},
		ChatHandler:   NewChatHandler(db, hub, auth, nil),
		TuningHandler: &TuningHandler{DB: db},
	}
}

func (env *testEnv) seedUser(t *testing.T, username string, role models.Role, banned bool) *models.User {
	t.Helper()

	pwHash, err := hash.HashPassword("pw123456")
	require.NoError(t, err)

	user := &models.User{
		Username:     username,
		Email:        username + "@x.com",
		PasswordHash: pwHash,
		Role:         role,
		Banned:       banned,
	}
	require.NoError(t, env.DB.Create(user).Error)
	return user
}

// doJSON builds an echo context for a handler call. A non-nil user puts a
// Bearer token on the request; callers run the handler behind RequireAuth via
// env.call to exercise the full chain.
func (env *testEnv) doJSON(t *testing.T, method, path string, body any, user *models.User) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if user != nil {
		token, _, err := env.Auth.IssueAccessToken(user)
		require.NoError(t, err)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	return rec, env.E.NewContext(req, rec)
}

// call runs a handler behind RequireAuth so the identity on the context is
// resolved exactly as in production.
func (env *testEnv) call(h echo.HandlerFunc, c echo.Context) error {
	return env.MW.RequireAuth(h)(c)
}

func requireHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, code, he.Code)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func setParams(c echo.Context, pairs ...string) {
	names := make([]string, 0, len(pairs)/2)
	values := make([]string, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		names = append(names, pairs[i])
		values = append(values, pairs[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
}
