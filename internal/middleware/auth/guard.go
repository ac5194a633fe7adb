package auth

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/eskro/backend/internal/models"
	"github.com/eskro/backend/internal/repo"
	"github.com/eskro/backend/internal/token"
)

const userContextKey = "currentUser"

type Guard struct {
	Codec *token.Codec
	Repo  *repo.GormRepo
}

// RequireUser authenticates the bearer access token and loads the user.
// Unscoped and refresh tokens fail the typed decode and are rejected here.
func (g *Guard) RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := bearerToken(c)
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Missing access token")
		}

		claims, err := g.Codec.DecodeAccess(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		}
		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		}

		user, err := g.Repo.UserByID(c.Request().Context(), userID)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		}
		if !user.IsActive {
			return echo.NewHTTPError(http.StatusBadRequest, "User not active")
		}

		c.Set(userContextKey, user)
		return next(c)
	}
}

func (g *Guard) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return g.RequireUser(func(c echo.Context) error {
		if CurrentUser(c).Role != models.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "Permission denied")
		}
		return next(c)
	})
}

func CurrentUser(c echo.Context) *models.User {
	user, _ := c.Get(userContextKey).(*models.User)
	return user
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}
	return ""
}
