package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/eskro/backend/internal/es"
	"github.com/eskro/backend/internal/models"
	"github.com/eskro/backend/internal/mykafka"
)

type NewsHandler struct {
	DB       *gorm.DB
	ES       *elasticsearch.Client
	Index    string
	Producer *mykafka.Producer
}

type newsInput struct {
	Title    *string  `json:"title"`
	Body     *string  `json:"body"`
	Keywords []string `json:"keywords"`
	ImageURL *string  `json:"image_url"`
	MinText  *string  `json:"min_text"`
	NewsDate *string  `json:"news_date"`
	TypeID   *uint    `json:"type_id"`
}

func (h *NewsHandler) List(c echo.Context) error {
	var news []models.News
	if err := h.DB.WithContext(c.Request().Context()).
		Preload("Type").
		Order("news_date DESC").
		Find(&news).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list news")
	}
	return c.JSON(http.StatusOK, news)
}

func (h *NewsHandler) Get(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	var news models.News
	if err := h.DB.WithContext(c.Request().Context()).
		Preload("Type").
		Where("id = ?", id).
		First(&news).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "News not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get news")
	}
	return c.JSON(http.StatusOK, news)
}

func (h *NewsHandler) Create(c echo.Context) error {
	var in newsInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid body")
	}
	if in.Title == nil || in.Body == nil || in.NewsDate == nil || in.TypeID == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing required fields")
	}
	newsDate, err := parseDate(*in.NewsDate)
	if err != nil {
		return err
	}

	news := models.News{
		Title:    *in.Title,
		Body:     *in.Body,
		Keywords: in.Keywords,
		NewsDate: newsDate,
		TypeID:   *in.TypeID,
	}
	if in.ImageURL != nil {
		news.ImageURL = *in.ImageURL
	}
	if in.MinText != nil {
		news.MinText = *in.MinText
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&news).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create news")
	}

	h.index(c, &news)
	publishEvent(c, h.Producer, "content_events", fmt.Sprint(news.ID), map[string]any{
		"type": "news_created", "id": news.ID, "title": news.Title,
	})
	return c.JSON(http.StatusOK, news)
}

func (h *NewsHandler) Patch(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	var in newsInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid body")
	}

	var news models.News
	if err := h.DB.WithContext(c.Request().Context()).Where("id = ?", id).First(&news).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "News not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get news")
	}

	if in.Title != nil {
		news.Title = *in.Title
	}
	if in.Body != nil {
		news.Body = *in.Body
	}
	if in.Keywords != nil {
		news.Keywords = in.Keywords
	}
	if in.ImageURL != nil {
		news.ImageURL = *in.ImageURL
	}
	if in.MinText != nil {
		news.MinText = *in.MinText
	}
	if in.NewsDate != nil {
		newsDate, err := parseDate(*in.NewsDate)
		if err != nil {
			return err
		}
		news.NewsDate = newsDate
	}
	if in.TypeID != nil {
		news.TypeID = *in.TypeID
	}

	if err := h.DB.WithContext(c.Request().Context()).Save(&news).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update news")
	}

	h.index(c, &news)
	publishEvent(c, h.Producer, "content_events", fmt.Sprint(news.ID), map[string]any{
		"type": "news_updated", "id": news.ID, "title": news.Title,
	})
	return c.JSON(http.StatusOK, news)
}

func (h *NewsHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	result := h.DB.WithContext(c.Request().Context()).Where("id = ?", id).Delete(&models.News{})
	if result.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete news")
	}
	if result.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "News not found")
	}

	if h.ES != nil {
		if err := es.DeleteNews(c.Request().Context(), h.ES, h.Index, id); err != nil {
			c.Logger().Errorf("es delete error: %v", err)
		}
	}
	publishEvent(c, h.Producer, "content_events", fmt.Sprint(id), map[string]any{
		"type": "news_deleted", "id": id,
	})
	return c.NoContent(http.StatusOK)
}

func (h *NewsHandler) ListTypes(c echo.Context) error {
	var types []models.NewsType
	if err := h.DB.WithContext(c.Request().Context()).Find(&types).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list news types")
	}
	return c.JSON(http.StatusOK, types)
}

func (h *NewsHandler) CreateType(c echo.Context) error {
	var in models.NewsType
	if err := c.Bind(&in); err != nil || in.Type == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid body")
	}
	in.ID = 0
	if err := h.DB.WithContext(c.Request().Context()).Create(&in).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create news type")
	}
	return c.JSON(http.StatusOK, in)
}

func (h *NewsHandler) DeleteType(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	result := h.DB.WithContext(c.Request().Context()).Where("id = ?", id).Delete(&models.NewsType{})
	if result.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete news type")
	}
	if result.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "News type not found")
	}
	return c.NoContent(http.StatusOK)
}

// index keeps the search index in sync, best effort: the row is the source
// of truth, a failed index write only degrades search freshness.
func (h *NewsHandler) index(c echo.Context, news *models.News) {
	if h.ES == nil {
		return
	}
	if err := es.IndexNews(c.Request().Context(), h.ES, h.Index, es.NewsDocFrom(news)); err != nil {
		c.Logger().Errorf("es index error: %v", err)
	}
}
