package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/eskro/backend/internal/models"
)

type ProjectHandler struct {
	DB *gorm.DB
}

type projectInput struct {
	Title    *string  `json:"title"`
	Body     *string  `json:"body"`
	IsActive *bool    `json:"is_active"`
	Keywords []string `json:"keywords"`
	Theme    *string  `json:"theme"`
	Category *string  `json:"category"`
}

func (h *ProjectHandler) List(c echo.Context) error {
	q := h.DB.WithContext(c.Request().Context()).Model(&models.Project{})
	if theme := c.QueryParam("theme"); theme != "" {
		q = q.Where("theme = ?", theme)
	}
	if category := c.QueryParam("category"); category != "" {
		q = q.Where("category = ?", category)
	}

	var projects []models.Project
	if err := q.Find(&projects).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list projects")
	}
	return c.JSON(http.StatusOK, projects)
}

func (h *ProjectHandler) Get(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	var project models.Project
	if err := h.DB.WithContext(c.Request().Context()).Where("id = ?", id).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Project not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get project")
	}
	return c.JSON(http.StatusOK, project)
}

func (h *ProjectHandler) Create(c echo.Context) error {
	var in projectInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid body")
	}
	if in.Title == nil || in.Body == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing required fields")
	}

	project := models.Project{Title: *in.Title, Body: *in.Body, Keywords: in.Keywords, IsActive: true}
	if in.IsActive != nil {
		project.IsActive = *in.IsActive
	}
	if in.Theme != nil {
		project.Theme = *in.Theme
	}
	if in.Category != nil {
		project.Category = *in.Category
	}
	if err := h.DB.WithContext(c.Request().Context()).Create(&project).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create project")
	}
	return c.JSON(http.StatusOK, project)
}

func (h *ProjectHandler) Patch(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	var in projectInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid body")
	}

	var project models.Project
	if err := h.DB.WithContext(c.Request().Context()).Where("id = ?", id).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Project not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get project")
	}

	if in.Title != nil {
		project.Title = *in.Title
	}
	if in.Body != nil {
		project.Body = *in.Body
	}
	if in.IsActive != nil {
		project.IsActive = *in.IsActive
	}
	if in.Keywords != nil {
		project.Keywords = in.Keywords
	}
	if in.Theme != nil {
		project.Theme = *in.Theme
	}
	if in.Category != nil {
		project.Category = *in.Category
	}

	if err := h.DB.WithContext(c.Request().Context()).Save(&project).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update project")
	}
	return c.JSON(http.StatusOK, project)
}

func (h *ProjectHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	result := h.DB.WithContext(c.Request().Context()).Where("id = ?", id).Delete(&models.Project{})
	if result.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete project")
	}
	if result.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "Project not found")
	}
	return c.NoContent(http.StatusOK)
}
