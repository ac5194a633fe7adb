package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/eskro/backend/internal/mail"
	"github.com/eskro/backend/internal/models"
	"github.com/eskro/backend/internal/mykafka"
)

type FeedbackHandler struct {
	DB       *gorm.DB
	Mailer   mail.Sender
	Producer *mykafka.Producer
}

func (h *FeedbackHandler) List(c echo.Context) error {
	var feedbacks []models.Feedback
	if err := h.DB.WithContext(c.Request().Context()).Order("id DESC").Find(&feedbacks).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list feedback")
	}
	return c.JSON(http.StatusOK, feedbacks)
}

// Create is public: anyone can leave a message through the site form.
func (h *FeedbackHandler) Create(c echo.Context) error {
	var in struct {
		FirstName  string  `json:"first_name"`
		LastName   string  `json:"last_name"`
		MiddleName string  `json:"middle_name"`
		Email      *string `json:"email"`
		Message    string  `json:"message"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid body")
	}
	if in.FirstName == "" || in.LastName == "" || in.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing required fields")
	}

	feedback := models.Feedback{
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		MiddleName: in.MiddleName,
		Email:      in.Email,
		Message:    in.Message,
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&feedback).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create feedback")
	}

	publishEvent(c, h.Producer, "content_events", fmt.Sprint(feedback.ID), map[string]any{
		"type": "feedback_created", "id": feedback.ID,
	})
	return c.JSON(http.StatusOK, feedback)
}

// Respond stores the admin's answer and mails it when the author left an
// email. A failed mail does not undo the stored response.
func (h *FeedbackHandler) Respond(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	var in struct {
		Response string `json:"response"`
	}
	if err := c.Bind(&in); err != nil || in.Response == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid body")
	}

	var feedback models.Feedback
	if err := h.DB.WithContext(c.Request().Context()).Where("id = ?", id).First(&feedback).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Feedback not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get feedback")
	}

	feedback.Response = &in.Response
	feedback.IsAnswered = true
	if err := h.DB.WithContext(c.Request().Context()).Save(&feedback).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save response")
	}

	if feedback.Email != nil {
		if err := h.Mailer.SendFeedbackResponse(*feedback.Email, feedback.FirstName, in.Response); err != nil {
			c.Logger().Errorf("feedback response mail error: %v", err)
		}
	}
	return c.JSON(http.StatusOK, feedback)
}

func (h *FeedbackHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	result := h.DB.WithContext(c.Request().Context()).Where("id = ?", id).Delete(&models.Feedback{})
	if result.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete feedback")
	}
	if result.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Feedback not found")
	}
	return c.NoContent(http.StatusOK)
}
