package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/eskro/backend/internal/models"
)

type BannerHandler struct {
	DB *gorm.DB
}

type bannerInput struct {
	ImageURL    *string `json:"image_url"`
	RedirectURL *string `json:"redirect_url"`
	IsActive    *bool   `json:"is_active"`
	CountOrder  *int    `json:"count_order"`
}

func (h *BannerHandler) List(c echo.Context) error {
	var banners []models.Banner
	if err := h.DB.WithContext(c.Request().Context()).Order("count_order").Find(&banners).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list banners")
	}
	return c.JSON(http.StatusOK, banners)
}

func (h *BannerHandler) Create(c echo.Context) error {
	var in bannerInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid body")
	}
	if in.ImageURL == nil || in.RedirectURL == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing required fields")
	}

	banner := models.Banner{ImageURL: *in.ImageURL, RedirectURL: *in.RedirectURL, IsActive: true}
	if in.IsActive != nil {
		banner.IsActive = *in.IsActive
	}
	if in.CountOrder != nil {
		banner.CountOrder = *in.CountOrder
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&banner).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create banner")
	}
	return c.JSON(http.StatusOK, banner)
}

func (h *BannerHandler) Patch(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	var in bannerInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid body")
	}

	var banner models.Banner
	if err := h.DB.WithContext(c.Request().Context()).Where("id = ?", id).First(&banner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Banner not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get banner")
	}

	if in.ImageURL != nil {
		banner.ImageURL = *in.ImageURL
	}
	if in.RedirectURL != nil {
		banner.RedirectURL = *in.RedirectURL
	}
	if in.IsActive != nil {
		banner.IsActive = *in.IsActive
	}
	if in.CountOrder != nil {
		banner.CountOrder = *in.CountOrder
	}
	if err := h.DB.WithContext(c.Request().Context()).Save(&banner).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update banner")
	}
	return c.JSON(http.StatusOK, banner)
}

func (h *BannerHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	result := h.DB.WithContext(c.Request().Context()).Where("id = ?", id).Delete(&models.Banner{})
	if result.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete banner")
	}
	if result.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Banner not found")
	}
	return c.NoContent(http.StatusOK)
}
