package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	mwauth "github.com/eskro/backend/internal/middleware/auth"
	"github.com/eskro/backend/internal/repo"
	"github.com/eskro/backend/internal/service"
)

type UserHandler struct {
	Repo    *repo.GormRepo
	Service *service.AuthService
}

func (h *UserHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, mwauth.CurrentUser(c))
}

func (h *UserHandler) List(c echo.Context) error {
	skip, _ := strconv.Atoi(c.QueryParam("skip"))
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 100
	}

	var isActive *bool
	if v := c.QueryParam("is_active"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid is_active")
		}
		isActive = &b
	}

	users, err := h.Repo.ListUsers(c.Request().Context(), skip, limit, isActive)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list users")
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHandler) Activate(c echo.Context) error {
	return h.setActive(c, true)
}

func (h *UserHandler) Deactivate(c echo.Context) error {
	return h.setActive(c, false)
}

func (h *UserHandler) Update(c echo.Context) error {
	var in struct {
		Email    *string `json:"email"`
		Username *string `json:"username"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid body")
	}

	user, err := h.Repo.UpdateUser(c.Request().Context(), mwauth.CurrentUser(c).ID, in.Email, in.Username)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update user")
	}
	return c.JSON(http.StatusOK, user)
}

// ChangePassword is the authenticated self-service entry point, verified by
// the access token rather than a mailed link.
func (h *UserHandler) ChangePassword(c echo.Context) error {
	var in struct {
		Password string `json:"password"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid body")
	}

	user, err := h.Service.ChangePassword(c.Request().Context(), mwauth.CurrentUser(c).ID, in.Password)
	switch {
	case errors.Is(err, service.ErrSamePassword):
		return echo.NewHTTPError(http.StatusBadRequest, "New password cannot be the same as the old one")
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "Password change failed")
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid id")
	}

	deleted, err := h.Repo.DeleteUser(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete user")
	}
	if !deleted {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	return c.NoContent(http.StatusOK)
}

func (h *UserHandler) setActive(c echo.Context, active bool) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid id")
	}

	ok, err := h.Repo.SetUserActive(c.Request().Context(), id, active)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update user")
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	return c.NoContent(http.StatusOK)
}
