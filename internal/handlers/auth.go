package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eskro/backend/internal/repo"
	"github.com/eskro/backend/internal/service"
	"github.com/eskro/backend/internal/token"
)

type AuthHandler struct {
	Service       *service.AuthService
	RefreshHeader string
	PublicKeyPEM  []byte
}

func (h *AuthHandler) PublicKey(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"public_key": string(h.PublicKeyPEM)})
}

func (h *AuthHandler) Register(c echo.Context) error {
	var in service.RegisterInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid body")
	}

	user, err := h.Service.Register(c.Request().Context(), c.QueryParam("token"), in)
	switch {
	case errors.Is(err, token.ErrExpiredToken):
		return echo.NewHTTPError(http.StatusBadRequest, "Confirmation token expired")
	case errors.Is(err, token.ErrInvalidToken):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid token")
	case errors.Is(err, repo.ErrUserAlreadyExists):
		return echo.NewHTTPError(http.StatusConflict, "User already exists")
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "Registration failed")
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) ConfirmRegistration(c echo.Context) error {
	_, err := h.Service.ConfirmRegistration(c.Request().Context(), c.QueryParam("token"))
	switch {
	case errors.Is(err, token.ErrExpiredToken):
		return echo.NewHTTPError(http.StatusBadRequest, "Confirmation token expired")
	case errors.Is(err, token.ErrInvalidToken):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid token")
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "Confirmation failed")
	}
	return c.NoContent(http.StatusOK)
}

func (h *AuthHandler) Login(c echo.Context) error {
	username := c.FormValue("username")
	password := c.FormValue("password")

	pair, err := h.Service.Login(
		c.Request().Context(),
		username, password,
		c.Request().UserAgent(), c.RealIP(),
	)
	switch {
	case errors.Is(err, repo.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, service.ErrUserNotActive):
		return echo.NewHTTPError(http.StatusBadRequest, "User not active")
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "Login failed")
	}
	return c.JSON(http.StatusOK, pair)
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	pair, err := h.Service.Refresh(
		c.Request().Context(),
		h.refreshToken(c),
		c.Request().UserAgent(), c.RealIP(),
	)
	if err != nil {
		return h.refreshError(err)
	}
	return c.JSON(http.StatusOK, pair)
}

func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.Service.Logout(c.Request().Context(), h.refreshToken(c)); err != nil {
		return h.refreshError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHandler) LogoutAll(c echo.Context) error {
	if err := h.Service.LogoutAll(c.Request().Context(), h.refreshToken(c)); err != nil {
		return h.refreshError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out everywhere"})
}

func (h *AuthHandler) SendRegisterInvitation(c echo.Context) error {
	email := c.QueryParam("email")
	if email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email required")
	}
	err := h.Service.SendRegisterInvitation(c.Request().Context(), email)
	switch {
	case errors.Is(err, repo.ErrUserAlreadyExists):
		return echo.NewHTTPError(http.StatusBadRequest, "User already exists")
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "Invitation failed")
	}
	return c.NoContent(http.StatusOK)
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	email := c.QueryParam("email")
	if email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email required")
	}
	err := h.Service.RequestPasswordChange(c.Request().Context(), email)
	switch {
	case errors.Is(err, service.ErrUserNotFoundOrInactive):
		return echo.NewHTTPError(http.StatusBadRequest, "User not found or inactive")
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "Password change request failed")
	}
	return c.NoContent(http.StatusOK)
}

func (h *AuthHandler) ConfirmChangingPassword(c echo.Context) error {
	var in struct {
		Password string `json:"password"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid body")
	}

	user, err := h.Service.ConfirmPasswordChange(c.Request().Context(), c.QueryParam("token"), in.Password)
	switch {
	case errors.Is(err, service.ErrSamePassword):
		// The only case where the internal message is surfaced verbatim.
		return echo.NewHTTPError(http.StatusBadRequest, "New password cannot be the same as the old one")
	case errors.Is(err, token.ErrExpiredToken):
		return echo.NewHTTPError(http.StatusBadRequest, "Password change token expired")
	case errors.Is(err, token.ErrInvalidToken), errors.Is(err, repo.ErrNotFound):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid token")
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "Password change failed")
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) refreshToken(c echo.Context) string {
	return c.Request().Header.Get(h.RefreshHeader)
}

func (h *AuthHandler) refreshError(err error) error {
	switch {
	case errors.Is(err, token.ErrNotRefreshToken):
		return echo.NewHTTPError(http.StatusBadRequest, "Not a refresh token")
	case errors.Is(err, token.ErrExpiredToken), errors.Is(err, token.ErrInvalidToken):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid refresh token")
	case errors.Is(err, service.ErrTokenRevoked):
		return echo.NewHTTPError(http.StatusUnauthorized, "Token revoked")
	case errors.Is(err, service.ErrSuspiciousActivity):
		return echo.NewHTTPError(http.StatusUnauthorized, "Suspicious activity detected")
	case errors.Is(err, service.ErrUserNotFoundOrInactive):
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found or inactive")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Refresh failed")
	}
}
