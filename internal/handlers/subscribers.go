package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/eskro/backend/internal/mail"
	"github.com/eskro/backend/internal/models"
	"github.com/eskro/backend/internal/token"
)

type SubscriberHandler struct {
	DB     *gorm.DB
	Issuer *token.Issuer
	Codec  *token.Codec
	Mailer mail.Sender
}

func (h *SubscriberHandler) List(c echo.Context) error {
	var subscribers []models.Subscriber
	if err := h.DB.WithContext(c.Request().Context()).Preload("Type").Find(&subscribers).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list subscribers")
	}
	return c.JSON(http.StatusOK, subscribers)
}

// Subscribe creates an unconfirmed subscriber and mails a confirmation
// link. The link token never expires, matching the original sign-up flow.
func (h *SubscriberHandler) Subscribe(c echo.Context) error {
	typeID, err := strconv.ParseUint(c.QueryParam("type_id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid type_id")
	}
	var in struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&in); err != nil || in.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid body")
	}

	subscriber := models.Subscriber{Email: in.Email, TypeID: uint(typeID)}
	if err := h.DB.WithContext(c.Request().Context()).Create(&subscriber).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to subscribe")
	}

	confirmation, err := h.Issuer.UnscopedToken(map[string]any{"sub": strconv.FormatUint(uint64(subscriber.ID), 10)}, 0)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to subscribe")
	}
	if err := h.Mailer.SendSubscriptionConfirmation(subscriber.Email, confirmation); err != nil {
		c.Logger().Errorf("subscription mail error: %v", err)
	}
	return c.JSON(http.StatusOK, subscriber)
}

func (h *SubscriberHandler) Confirm(c echo.Context) error {
	claims, err := h.Codec.Decode(c.QueryParam("token"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid token")
	}
	sub, _ := claims["sub"].(string)
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid token")
	}

	var subscriber models.Subscriber
	if err := h.DB.WithContext(c.Request().Context()).Where("id = ?", id).First(&subscriber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Subscriber not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to confirm subscription")
	}

	subscriber.IsConfirmed = true
	if err := h.DB.WithContext(c.Request().Context()).Save(&subscriber).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to confirm subscription")
	}
	return c.JSON(http.StatusOK, subscriber)
}

func (h *SubscriberHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	result := h.DB.WithContext(c.Request().Context()).Where("id = ?", id).Delete(&models.Subscriber{})
	if result.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete subscriber")
	}
	if result.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Subscriber not found")
	}
	return c.NoContent(http.StatusOK)
}
