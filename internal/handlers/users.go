package handlers

import (
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	authsvc "github.com/gearsphere/motorclub-backend/internal/auth"
	"github.com/gearsphere/motorclub-backend/internal/events"
	"github.com/gearsphere/motorclub-backend/internal/models"
	"github.com/gearsphere/motorclub-backend/internal/service/search"
	"github.com/gearsphere/motorclub-backend/internal/util"
)

// UserHandler is the admin user-management panel plus the authenticated
// user search.
type UserHandler struct {
	DB       *gorm.DB
	Auth     *authsvc.Service
	Producer *events.Producer
	ES       *elasticsearch.Client
}

type UserDTO struct {
	ID       uint        `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     models.Role `json:"role"`
	Banned   bool        `json:"banned"`
}

func userDTO(u *models.User) UserDTO {
	return UserDTO{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
		Banned:   u.Banned,
	}
}

func (h *UserHandler) GetAllUsers(c echo.Context) error {
	var users []models.User
	if err := h.DB.WithContext(c.Request().Context()).Order("id ASC").Find(&users).Error; err != nil {
		return httpError(err)
	}

	dtos := make([]UserDTO, len(users))
	for i := range users {
		dtos[i] = userDTO(&users[i])
	}
	return c.JSON(http.StatusOK, dtos)
}

// adminCount counts non-banned admins; the last one may not be deleted,
// banned or downgraded.
func (h *UserHandler) adminCount(c echo.Context) (int64, error) {
	var count int64
	err := h.DB.WithContext(c.Request().Context()).Model(&models.User{}).
		Where("role = ? AND banned = ?", models.RoleAdmin, false).
		Count(&count).Error
	return count, err
}

func (h *UserHandler) findUser(c echo.Context) (*models.User, error) {
	id, err := parseID(c, "id")
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := h.DB.WithContext(c.Request().Context()).First(&user, id).Error; err != nil {
		return nil, httpError(err)
	}
	return &user, nil
}

func (h *UserHandler) UpdateUserRole(c echo.Context) error {
	user, err := h.findUser(c)
	if err != nil {
		return err
	}

	var req struct {
		Role models.Role `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Role != models.RoleUser && req.Role != models.RoleAdmin {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown role")
	}

	if user.IsAdmin() && req.Role != models.RoleAdmin {
		count, err := h.adminCount(c)
		if err != nil {
			return httpError(err)
		}
		if count <= 1 {
			return httpError(authsvc.ErrLastAdmin)
		}
	}

	if err := h.DB.WithContext(c.Request().Context()).Model(user).Update("role", req.Role).Error; err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusOK)
}

func (h *UserHandler) BanUser(c echo.Context) error {
	user, err := h.findUser(c)
	if err != nil {
		return err
	}

	if user.IsAdmin() {
		count, err := h.adminCount(c)
		if err != nil {
			return httpError(err)
		}
		if count <= 1 {
			return httpError(authsvc.ErrLastAdmin)
		}
	}

	ctx := c.Request().Context()
	if err := h.DB.WithContext(ctx).Model(user).Update("banned", true).Error; err != nil {
		return httpError(err)
	}
	// a banned user keeps no live session
	if err := h.Auth.RevokeAllForUser(ctx, user.ID); err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, events.TopicUserEvents, fmt.Sprint(user.ID), map[string]any{
		"type":     "user_banned",
		"userID":   user.ID,
		"username": user.Username,
	})

	return c.NoContent(http.StatusOK)
}

func (h *UserHandler) UnbanUser(c echo.Context) error {
	user, err := h.findUser(c)
	if err != nil {
		return err
	}

	if err := h.DB.WithContext(c.Request().Context()).Model(user).Update("banned", false).Error; err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusOK)
}

func (h *UserHandler) DeleteUser(c echo.Context) error {
	user, err := h.findUser(c)
	if err != nil {
		return err
	}

	if user.IsAdmin() {
		count, err := h.adminCount(c)
		if err != nil {
			return httpError(err)
		}
		if count <= 1 {
			return httpError(authsvc.ErrLastAdmin)
		}
	}

	ctx := c.Request().Context()
	if err := h.Auth.RevokeAllForUser(ctx, user.ID); err != nil {
		return httpError(err)
	}
	if err := h.DB.WithContext(ctx).Delete(user).Error; err != nil {
		return httpError(err)
	}

	if err := search.DeleteDoc(ctx, h.ES, search.UsersIndex, user.ID); err != nil {
		c.Logger().Errorf("user deindex error: %v", err)
	}

	publish(c, h.Producer, events.TopicUserEvents, fmt.Sprint(user.ID), map[string]any{
		"type":     "user_deleted",
		"userID":   user.ID,
		"username": user.Username,
	})

	return c.NoContent(http.StatusOK)
}

func (h *UserHandler) SearchUsers(c echo.Context) error {
	if h.ES == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search is not configured")
	}

	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, size := util.Calculate(page, size)

	total, users, err := search.SearchUsers(c.Request().Context(), h.ES, q, from, size)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"total": total, "users": users})
}
