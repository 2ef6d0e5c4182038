package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/gearsphere/motorclub-backend/internal/models"
	"github.com/gearsphere/motorclub-backend/internal/upload"
)

const carPhotoDir = "cars"

// CarPhotoHandler manages the shared gallery. Reads are public, writes are
// admin-only.
type CarPhotoHandler struct {
	DB      *gorm.DB
	Uploads *upload.Store
}

func (h *CarPhotoHandler) GetCarPhotos(c echo.Context) error {
	var photos []models.CarPhoto
	if err := h.DB.WithContext(c.Request().Context()).Order("id ASC").Find(&photos).Error; err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, photos)
}

func (h *CarPhotoHandler) GetCarPhoto(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var photo models.CarPhoto
	if err := h.DB.WithContext(c.Request().Context()).First(&photo, id).Error; err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, photo)
}

func (h *CarPhotoHandler) UploadCarPhoto(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}

	saved, err := h.Uploads.Save(carPhotoDir, fh)
	if err != nil {
		return httpError(err)
	}

	photo := models.CarPhoto{
		Filename:     saved.Filename,
		URL:          saved.URL,
		OriginalName: saved.OriginalName,
		Title:        c.FormValue("title"),
		Description:  c.FormValue("description"),
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&photo).Error; err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, photo)
}

func (h *CarPhotoHandler) UpdateCarPhoto(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var photo models.CarPhoto
	if err := h.DB.WithContext(c.Request().Context()).First(&photo, id).Error; err != nil {
		return httpError(err)
	}

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	photo.Title = req.Title
	photo.Description = req.Description
	if err := h.DB.WithContext(c.Request().Context()).Save(&photo).Error; err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, photo)
}

func (h *CarPhotoHandler) DeleteCarPhoto(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var photo models.CarPhoto
	if err := h.DB.WithContext(c.Request().Context()).First(&photo, id).Error; err != nil {
		return httpError(err)
	}

	if err := h.Uploads.Delete(carPhotoDir, photo.Filename); err != nil {
		c.Logger().Errorf("car photo file delete error: %v", err)
	}
	if err := h.DB.WithContext(c.Request().Context()).Delete(&photo).Error; err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
