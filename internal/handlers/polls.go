package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/eskro/backend/internal/models"
)

type PollHandler struct {
	DB *gorm.DB
}

type pollInput struct {
	Theme     string `json:"theme"`
	IsActive  *bool  `json:"is_active"`
	Questions []struct {
		QuestionText string   `json:"question_text"`
		Answers      []string `json:"answers"`
	} `json:"questions"`
}

func (h *PollHandler) List(c echo.Context) error {
	var polls []models.Poll
	if err := h.DB.WithContext(c.Request().Context()).
		Preload("Questions.Answers").
		Find(&polls).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list polls")
	}
	return c.JSON(http.StatusOK, polls)
}

func (h *PollHandler) Get(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	var poll models.Poll
	if err := h.DB.WithContext(c.Request().Context()).
		Preload("Questions.Answers").
		Where("id = ?", id).
		First(&poll).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Poll not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get poll")
	}
	return c.JSON(http.StatusOK, poll)
}

// Create inserts the poll with its question and answer tree in one go.
func (h *PollHandler) Create(c echo.Context) error {
	var in pollInput
	if err := c.Bind(&in); err != nil || in.Theme == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid body")
	}

	poll := models.Poll{Theme: in.Theme, IsActive: true}
	if in.IsActive != nil {
		poll.IsActive = *in.IsActive
	}
	for _, q := range in.Questions {
		question := models.PollQuestion{QuestionText: q.QuestionText}
		for _, a := range q.Answers {
			question.Answers = append(question.Answers, models.PollAnswer{AnswerText: a})
		}
		poll.Questions = append(poll.Questions, question)
	}

	if err := h.DB.WithContext(c.Request().Context()).Create(&poll).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create poll")
	}
	return c.JSON(http.StatusOK, poll)
}

func (h *PollHandler) Patch(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	var in struct {
		Theme    *string `json:"theme"`
		IsActive *bool   `json:"is_active"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid body")
	}

	var poll models.Poll
	if err := h.DB.WithContext(c.Request().Context()).Where("id = ?", id).First(&poll).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Poll not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get poll")
	}

	if in.Theme != nil {
		poll.Theme = *in.Theme
	}
	if in.IsActive != nil {
		poll.IsActive = *in.IsActive
	}
	if err := h.DB.WithContext(c.Request().Context()).Save(&poll).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update poll")
	}
	return c.JSON(http.StatusOK, poll)
}

func (h *PollHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	err = h.DB.WithContext(c.Request().Context()).Transaction(func(tx *gorm.DB) error {
		var questionIDs []uint
		if err := tx.Model(&models.PollQuestion{}).Where("poll_id = ?", id).Pluck("id", &questionIDs).Error; err != nil {
			return err
		}
		if len(questionIDs) > 0 {
			if err := tx.Where("question_id IN ?", questionIDs).Delete(&models.PollAnswer{}).Error; err != nil {
				return err
			}
			if err := tx.Where("poll_id = ?", id).Delete(&models.PollQuestion{}).Error; err != nil {
				return err
			}
		}
		result := tx.Where("id = ?", id).Delete(&models.Poll{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Poll not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete poll")
	}
	return c.NoContent(http.StatusOK)
}
