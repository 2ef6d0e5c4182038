package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	authmw "github.com/gearsphere/motorclub-backend/internal/middleware/auth"
	"github.com/gearsphere/motorclub-backend/internal/models"
)

type TuningHandler struct {
	DB *gorm.DB
}

var tuningTypes = map[models.TuningType]bool{
	models.TuningStage1:     true,
	models.TuningStage2:     true,
	models.TuningExhaust:    true,
	models.TuningSuspension: true,
}

var requestStatuses = map[models.RequestStatus]bool{
	models.StatusPending:    true,
	models.StatusInProgress: true,
	models.StatusCompleted:  true,
	models.StatusRejected:   true,
}

type tuningRequestBody struct {
	Model                 string            `json:"model"`
	Year                  int               `json:"year"`
	Engine                string            `json:"engine"`
	FuelType              string            `json:"fuelType"`
	TuningType            models.TuningType `json:"tuningType"`
	CurrentPower          string            `json:"currentPower"`
	DesiredPower          string            `json:"desiredPower"`
	RemoveEmissionControl bool              `json:"removeEmissionControl"`
	ExhaustType           string            `json:"exhaustType"`
	DownpipeType          string            `json:"downpipeType"`
	WantsSoundClip        bool              `json:"wantsSoundClip"`
	SuspensionType        string            `json:"suspensionType"`
	CurrentHeight         string            `json:"currentHeight"`
	DesiredHeight         string            `json:"desiredHeight"`
	NeedsAlignment        bool              `json:"needsAlignment"`
	AdditionalNotes       string            `json:"additionalNotes"`
}

// targetUserID resolves the user a tuning operation concerns and enforces
// that the caller is that user or an admin.
func targetUserID(c echo.Context, raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid userId")
	}
	if !authmw.RequireOwnerOrAdmin(authmw.CurrentUser(c), uint(id)) {
		return 0, echo.NewHTTPError(http.StatusForbidden, "you can only access your own tuning requests")
	}
	return uint(id), nil
}

func (h *TuningHandler) CreateRequest(c echo.Context) error {
	userID, err := targetUserID(c, c.QueryParam("userId"))
	if err != nil {
		return err
	}

	var req tuningRequestBody
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Model == "" || req.Engine == "" || req.FuelType == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "model, engine and fuelType are required")
	}
	if !tuningTypes[req.TuningType] {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid tuningType")
	}

	tr := models.TuningRequest{
		UserID:                userID,
		Model:                 req.Model,
		Year:                  req.Year,
		Engine:                req.Engine,
		FuelType:              req.FuelType,
		TuningType:            req.TuningType,
		CurrentPower:          req.CurrentPower,
		DesiredPower:          req.DesiredPower,
		RemoveEmissionControl: req.RemoveEmissionControl,
		ExhaustType:           req.ExhaustType,
		DownpipeType:          req.DownpipeType,
		WantsSoundClip:        req.WantsSoundClip,
		SuspensionType:        req.SuspensionType,
		CurrentHeight:         req.CurrentHeight,
		DesiredHeight:         req.DesiredHeight,
		NeedsAlignment:        req.NeedsAlignment,
		AdditionalNotes:       req.AdditionalNotes,
		Status:                models.StatusPending,
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&tr).Error; err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, tr)
}

func (h *TuningHandler) GetUserRequests(c echo.Context) error {
	userID, err := targetUserID(c, c.Param("userId"))
	if err != nil {
		return err
	}

	var requests []models.TuningRequest
	if err := h.DB.WithContext(c.Request().Context()).Where("user_id = ?", userID).Order("created_at DESC").Find(&requests).Error; err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, requests)
}

func (h *TuningHandler) GetUserRequestsByType(c echo.Context) error {
	userID, err := targetUserID(c, c.Param("userId"))
	if err != nil {
		return err
	}

	tt := models.TuningType(c.Param("type"))
	if !tuningTypes[tt] {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid tuningType")
	}

	var requests []models.TuningRequest
	if err := h.DB.WithContext(c.Request().Context()).Where("user_id = ? AND tuning_type = ?", userID, tt).Order("created_at DESC").Find(&requests).Error; err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, requests)
}

// UpdateStatus moves a request through the workflow. Admin only, enforced at
// the route level.
func (h *TuningHandler) UpdateStatus(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		Status models.RequestStatus `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if !requestStatuses[req.Status] {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	ctx := c.Request().Context()

	var tr models.TuningRequest
	if err := h.DB.WithContext(ctx).First(&tr, id).Error; err != nil {
		return httpError(err)
	}

	tr.Status = req.Status
	if err := h.DB.WithContext(ctx).Save(&tr).Error; err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, tr)
}
