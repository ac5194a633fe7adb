package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/eskro/backend/internal/models"
)

type PartnerHandler struct {
	DB *gorm.DB
}

type partnerInput struct {
	LogoURL     *string `json:"logo_url"`
	PartnerName *string `json:"partner_name"`
	PartnerURL  *string `json:"partner_url"`
	CountOrder  *int    `json:"count_order"`
}

func (h *PartnerHandler) List(c echo.Context) error {
	var partners []models.Partner
	if err := h.DB.WithContext(c.Request().Context()).Order("count_order").Find(&partners).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list partners")
	}
	return c.JSON(http.StatusOK, partners)
}

func (h *PartnerHandler) Create(c echo.Context) error {
	var in partnerInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid body")
	}
	if in.LogoURL == nil || in.PartnerName == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing required fields")
	}

	partner := models.Partner{LogoURL: *in.LogoURL, PartnerName: *in.PartnerName, PartnerURL: in.PartnerURL}
	if in.CountOrder != nil {
		partner.CountOrder = *in.CountOrder
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&partner).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create partner")
	}
	return c.JSON(http.StatusOK, partner)
}

func (h *PartnerHandler) Patch(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	var in partnerInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid body")
	}

	var partner models.Partner
	if err := h.DB.WithContext(c.Request().Context()).Where("id = ?", id).First(&partner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Partner not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get partner")
	}

	if in.LogoURL != nil {
		partner.LogoURL = *in.LogoURL
	}
	if in.PartnerName != nil {
		partner.PartnerName = *in.PartnerName
	}
	if in.PartnerURL != nil {
		partner.PartnerURL = in.PartnerURL
	}
	if in.CountOrder != nil {
		partner.CountOrder = *in.CountOrder
	}
	if err := h.DB.WithContext(c.Request().Context()).Save(&partner).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update partner")
	}
	return c.JSON(http.StatusOK, partner)
}

func (h *PartnerHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	result := h.DB.WithContext(c.Request().Context()).Where("id = ?", id).Delete(&models.Partner{})
	if result.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete partner")
	}
	if result.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Partner not found")
	}
	return c.NoContent(http.StatusOK)
}
