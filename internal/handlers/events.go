package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/eskro/backend/internal/models"
)

type EventHandler struct {
	DB *gorm.DB
}

type eventInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	EventDate   *string `json:"event_date"`
	ImageURL    *string `json:"image_url"`
	IsActive    *bool   `json:"is_active"`
	Location    *string `json:"location"`
}

func (h *EventHandler) List(c echo.Context) error {
	var events []models.Event
	if err := h.DB.WithContext(c.Request().Context()).Order("event_date DESC").Find(&events).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list events")
	}
	return c.JSON(http.StatusOK, events)
}

func (h *EventHandler) Get(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	var event models.Event
	if err := h.DB.WithContext(c.Request().Context()).Where("id = ?", id).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Event not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get event")
	}
	return c.JSON(http.StatusOK, event)
}

func (h *EventHandler) Create(c echo.Context) error {
	var in eventInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid body")
	}
	if in.Title == nil || in.Description == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing required fields")
	}

	event := models.Event{Title: *in.Title, Description: *in.Description, IsActive: true, Location: in.Location}
	if in.ImageURL != nil {
		event.ImageURL = *in.ImageURL
	}
	if in.IsActive != nil {
		event.IsActive = *in.IsActive
	}
	if in.EventDate != nil {
		d, err := parseDate(*in.EventDate)
		if err != nil {
			return err
		}
		event.EventDate = &d
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&event).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create event")
	}
	return c.JSON(http.StatusOK, event)
}

func (h *EventHandler) Patch(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	var in eventInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid body")
	}

	var event models.Event
	if err := h.DB.WithContext(c.Request().Context()).Where("id = ?", id).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Event not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get event")
	}

	if in.Title != nil {
		event.Title = *in.Title
	}
	if in.Description != nil {
		event.Description = *in.Description
	}
	if in.ImageURL != nil {
		event.ImageURL = *in.ImageURL
	}
	if in.IsActive != nil {
		event.IsActive = *in.IsActive
	}
	if in.Location != nil {
		event.Location = in.Location
	}
	if in.EventDate != nil {
		d, err := parseDate(*in.EventDate)
		if err != nil {
			return err
		}
		event.EventDate = &d
	}

	if err := h.DB.WithContext(c.Request().Context()).Save(&event).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update event")
	}
	return c.JSON(http.StatusOK, event)
}

func (h *EventHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	result := h.DB.WithContext(c.Request().Context()).Where("id = ?", id).Delete(&models.Event{})
	if result.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete event")
	}
	if result.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Event not found")
	}
	return c.NoContent(http.StatusOK)
}
