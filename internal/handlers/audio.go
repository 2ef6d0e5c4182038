package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/gearsphere/motorclub-backend/internal/models"
	"github.com/gearsphere/motorclub-backend/internal/upload"
)

const audioDir = "audio"

// AudioHandler manages uploaded sound clips. Reads are public, uploads and
// deletes are admin-only; any authenticated user may save a playback position.
type AudioHandler struct {
	DB      *gorm.DB
	Uploads *upload.Store
}

func (h *AudioHandler) GetAudioList(c echo.Context) error {
	var audios []models.Audio
	if err := h.DB.WithContext(c.Request().Context()).Order("id ASC").Find(&audios).Error; err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, audios)
}

func (h *AudioHandler) GetAudio(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var audio models.Audio
	if err := h.DB.WithContext(c.Request().Context()).First(&audio, id).Error; err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, audio)
}

func (h *AudioHandler) UploadAudio(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}

	saved, err := h.Uploads.Save(audioDir, fh)
	if err != nil {
		return httpError(err)
	}

	audio := models.Audio{
		Filename:     saved.Filename,
		URL:          saved.URL,
		OriginalName: saved.OriginalName,
		Title:        c.FormValue("title"),
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&audio).Error; err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, audio)
}

func (h *AudioHandler) UpdateAudio(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var audio models.Audio
	if err := h.DB.WithContext(c.Request().Context()).First(&audio, id).Error; err != nil {
		return httpError(err)
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	audio.Title = req.Title
	if err := h.DB.WithContext(c.Request().Context()).Save(&audio).Error; err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, audio)
}

func (h *AudioHandler) SavePosition(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var audio models.Audio
	if err := h.DB.WithContext(c.Request().Context()).First(&audio, id).Error; err != nil {
		return httpError(err)
	}

	var req struct {
		Position int `json:"position"`
	}
	if err := c.Bind(&req); err != nil || req.Position < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid position")
	}

	if err := h.DB.WithContext(c.Request().Context()).Model(&audio).Update("last_position", req.Position).Error; err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusOK)
}

func (h *AudioHandler) DeleteAudio(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var audio models.Audio
	if err := h.DB.WithContext(c.Request().Context()).First(&audio, id).Error; err != nil {
		return httpError(err)
	}

	if err := h.Uploads.Delete(audioDir, audio.Filename); err != nil {
		c.Logger().Errorf("audio file delete error: %v", err)
	}
	if err := h.DB.WithContext(c.Request().Context()).Delete(&audio).Error; err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
