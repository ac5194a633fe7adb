package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/eskro/backend/internal/models"
)

type DocumentHandler struct {
	DB *gorm.DB
}

type documentInput struct {
	Title    *string `json:"title"`
	FileURL  *string `json:"file_url"`
	IsActive *bool   `json:"is_active"`
}

func (h *DocumentHandler) List(c echo.Context) error {
	var documents []models.Document
	if err := h.DB.WithContext(c.Request().Context()).Find(&documents).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list documents")
	}
	return c.JSON(http.StatusOK, documents)
}

func (h *DocumentHandler) Create(c echo.Context) error {
	var in documentInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid body")
	}
	if in.Title == nil || in.FileURL == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing required fields")
	}

	document := models.Document{Title: *in.Title, FileURL: *in.FileURL, IsActive: true}
	if in.IsActive != nil {
		document.IsActive = *in.IsActive
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&document).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create document")
	}
	return c.JSON(http.StatusOK, document)
}

func (h *DocumentHandler) Patch(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	var in documentInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid body")
	}

	var document models.Document
	if err := h.DB.WithContext(c.Request().Context()).Where("id = ?", id).First(&document).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Document not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get document")
	}

	if in.Title != nil {
		document.Title = *in.Title
	}
	if in.FileURL != nil {
		document.FileURL = *in.FileURL
	}
	if in.IsActive != nil {
		document.IsActive = *in.IsActive
	}
	if err := h.DB.WithContext(c.Request().Context()).Save(&document).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update document")
	}
	return c.JSON(http.StatusOK, document)
}

func (h *DocumentHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	result := h.DB.WithContext(c.Request().Context()).Where("id = ?", id).Delete(&models.Document{})
	if result.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete document")
	}
	if result.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Document not found")
	}
	return c.NoContent(http.StatusOK)
}
