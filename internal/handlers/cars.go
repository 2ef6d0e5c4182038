package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	authmw "github.com/gearsphere/motorclub-backend/internal/middleware/auth"
	"github.com/gearsphere/motorclub-backend/internal/models"
)

// CarHandler is the garage: every car belongs to the account that created it.
type CarHandler struct {
	DB *gorm.DB
}

type carRequest struct {
	Alias      string `json:"alias"`
	Brand      string `json:"brand"`
	Model      string `json:"model"`
	HorsePower int    `json:"horsePower"`
	Torque     int    `json:"torque"`
	Bio        string `json:"bio"`
	PhotoURL   string `json:"photoUrl"`
}

func (h *CarHandler) GetMyCars(c echo.Context) error {
	user := authmw.CurrentUser(c)

	var cars []models.Car
	if err := h.DB.WithContext(c.Request().Context()).Where("user_id = ?", user.ID).Order("id ASC").Find(&cars).Error; err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, cars)
}

func (h *CarHandler) GetCar(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var car models.Car
	if err := h.DB.WithContext(c.Request().Context()).First(&car, id).Error; err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, car)
}

func (h *CarHandler) CreateCar(c echo.Context) error {
	user := authmw.CurrentUser(c)

	var req carRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Brand == "" || req.Model == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "brand and model are required")
	}

	car := models.Car{
		UserID:     user.ID,
		Alias:      req.Alias,
		Brand:      req.Brand,
		Model:      req.Model,
		HorsePower: req.HorsePower,
		Torque:     req.Torque,
		Bio:        req.Bio,
		PhotoURL:   req.PhotoURL,
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&car).Error; err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, car)
}

// loadOwnedCar fetches the car and runs the ownership check. A missing car is
// 404 before any ownership comparison, so non-owners learn nothing extra.
func (h *CarHandler) loadOwnedCar(c echo.Context) (*models.Car, error) {
	id, err := parseID(c, "id")
	if err != nil {
		return nil, err
	}

	var car models.Car
	if err := h.DB.WithContext(c.Request().Context()).First(&car, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "car not found")
		}
		return nil, httpError(err)
	}

	if !authmw.RequireOwnerOrAdmin(authmw.CurrentUser(c), car.UserID) {
		return nil, echo.NewHTTPError(http.StatusForbidden, "you can only manage your own cars")
	}
	return &car, nil
}

func (h *CarHandler) UpdateCar(c echo.Context) error {
	car, err := h.loadOwnedCar(c)
	if err != nil {
		return err
	}

	var req carRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	car.Alias = req.Alias
	car.Brand = req.Brand
	car.Model = req.Model
	car.HorsePower = req.HorsePower
	car.Torque = req.Torque
	car.Bio = req.Bio
	car.PhotoURL = req.PhotoURL

	if err := h.DB.WithContext(c.Request().Context()).Save(car).Error; err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, car)
}

func (h *CarHandler) DeleteCar(c echo.Context) error {
	car, err := h.loadOwnedCar(c)
	if err != nil {
		return err
	}

	if err := h.DB.WithContext(c.Request().Context()).Delete(car).Error; err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
