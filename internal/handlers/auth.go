package handlers

import (
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	authsvc "github.com/gearsphere/motorclub-backend/internal/auth"
	"github.com/gearsphere/motorclub-backend/internal/events"
	"github.com/gearsphere/motorclub-backend/internal/hash"
	authmw "github.com/gearsphere/motorclub-backend/internal/middleware/auth"
	"github.com/gearsphere/motorclub-backend/internal/models"
	"github.com/gearsphere/motorclub-backend/internal/service/search"
)

type AuthHandler struct {
	DB       *gorm.DB
	Auth     *authsvc.Service
	Producer *events.Producer
	ES       *elasticsearch.Client
}

type JwtResponse struct {
	Token        string   `json:"token"`
	RefreshToken string   `json:"refreshToken"`
	Type         string   `json:"type"`
	ID           uint     `json:"id"`
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	FirstName    string   `json:"firstName"`
	LastName     string   `json:"lastName"`
	PhoneNumber  string   `json:"phoneNumber"`
	Location     string   `json:"location"`
	Roles        []string `json:"roles"`
}

func jwtResponse(user *models.User, token, refreshToken string) *JwtResponse {
	return &JwtResponse{
		Token:        token,
		RefreshToken: refreshToken,
		Type:         "Bearer",
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		PhoneNumber:  user.PhoneNumber,
		Location:     user.Location,
		Roles:        user.Roles(),
	}
}

func (h *AuthHandler) SignIn(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()

	user, err := h.Auth.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return httpError(err)
	}

	token, _, err := h.Auth.IssueAccessToken(user)
	if err != nil {
		return httpError(err)
	}
	refresh, err := h.Auth.IssueRefreshToken(ctx, user.ID)
	if err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, events.TopicUserEvents, fmt.Sprint(user.ID), map[string]any{
		"type":     "user_signed_in",
		"userID":   user.ID,
		"username": user.Username,
	})

	return c.JSON(http.StatusOK, jwtResponse(user, token, refresh.Token))
}

func (h *AuthHandler) SignUp(c echo.Context) error {
	var req struct {
		Username    string `json:"username"`
		Email       string `json:"email"`
		Password    string `json:"password"`
		Role        string `json:"role"`
		FirstName   string `json:"firstName"`
		LastName    string `json:"lastName"`
		PhoneNumber string `json:"phoneNumber"`
		Location    string `json:"location"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username, email and password are required")
	}

	ctx := c.Request().Context()

	var count int64
	if err := h.DB.WithContext(ctx).Model(&models.User{}).Where("username = ?", req.Username).Count(&count).Error; err != nil {
		return httpError(err)
	}
	if count > 0 {
		return httpError(authsvc.ErrDuplicateUsername)
	}
	if err := h.DB.WithContext(ctx).Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return httpError(err)
	}
	if count > 0 {
		return httpError(authsvc.ErrDuplicateEmail)
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return httpError(err)
	}

	role := models.RoleUser
	if req.Role == "admin" {
		role = models.RoleAdmin
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: pwHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PhoneNumber:  req.PhoneNumber,
		Location:     req.Location,
		Role:         role,
	}
	if err := h.DB.WithContext(ctx).Create(&user).Error; err != nil {
		return httpError(err)
	}

	if err := search.IndexUser(ctx, h.ES, &user); err != nil {
		c.Logger().Errorf("user index error: %v", err)
	}

	publish(c, h.Producer, events.TopicUserEvents, fmt.Sprint(user.ID), map[string]any{
		"type":     "user_registered",
		"userID":   user.ID,
		"username": user.Username,
	})

	return message(c, http.StatusOK, "User registered successfully!")
}

func (h *AuthHandler) RefreshToken(c echo.Context) error {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "refreshToken is required")
	}

	token, _, err := h.Auth.RefreshAccessToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"token":        token,
		"refreshToken": req.RefreshToken,
	})
}

// SignOut revokes the caller's refresh token. Runs behind RequireAuth and
// always answers 200 for an authenticated caller.
func (h *AuthHandler) SignOut(c echo.Context) error {
	user := authmw.CurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
	}

	if err := h.Auth.RevokeAllForUser(c.Request().Context(), user.ID); err != nil {
		return httpError(err)
	}

	return message(c, http.StatusOK, "Log out successful!")
}

func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	user := authmw.CurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
	}

	var req struct {
		Username    string `json:"username"`
		Email       string `json:"email"`
		FirstName   string `json:"firstName"`
		LastName    string `json:"lastName"`
		PhoneNumber string `json:"phoneNumber"`
		Location    string `json:"location"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Username == "" || req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and email are required")
	}

	ctx := c.Request().Context()

	var count int64
	if req.Username != user.Username {
		if err := h.DB.WithContext(ctx).Model(&models.User{}).Where("username = ?", req.Username).Count(&count).Error; err != nil {
			return httpError(err)
		}
		if count > 0 {
			return httpError(authsvc.ErrDuplicateUsername)
		}
	}
	if req.Email != user.Email {
		if err := h.DB.WithContext(ctx).Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
			return httpError(err)
		}
		if count > 0 {
			return httpError(authsvc.ErrDuplicateEmail)
		}
	}

	usernameChanged := req.Username != user.Username

	user.Username = req.Username
	user.Email = req.Email
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.PhoneNumber = req.PhoneNumber
	user.Location = req.Location

	if err := h.DB.WithContext(ctx).Save(user).Error; err != nil {
		return httpError(err)
	}

	if err := search.IndexUser(ctx, h.ES, user); err != nil {
		c.Logger().Errorf("user index error: %v", err)
	}

	// the old access token carries the old username, so both tokens are
	// re-issued when it changes
	if usernameChanged {
		token, _, err := h.Auth.IssueAccessToken(user)
		if err != nil {
			return httpError(err)
		}
		refresh, err := h.Auth.IssueRefreshToken(ctx, user.ID)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, jwtResponse(user, token, refresh.Token))
	}

	return message(c, http.StatusOK, "Profile updated successfully!")
}
