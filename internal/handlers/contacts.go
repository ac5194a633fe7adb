package handlers

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
)

// ContactsHandler serves the organization's contact card, stored as a JSON
// document on disk rather than in the database.
type ContactsHandler struct {
	Path string
}

func (h *ContactsHandler) Get(c echo.Context) error {
	data, err := os.ReadFile(h.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return echo.NewHTTPError(http.StatusNotFound, "Contacts not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read contacts")
	}

	var contacts map[string]any
	if err := json.Unmarshal(data, &contacts); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Invalid contacts file format")
	}
	return c.JSON(http.StatusOK, contacts)
}

func (h *ContactsHandler) Put(c echo.Context) error {
	var contacts map[string]any
	if err := c.Bind(&contacts); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid body")
	}

	data, err := json.MarshalIndent(contacts, "", "    ")
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save contacts")
	}
	if err := os.WriteFile(h.Path, data, 0o644); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save contacts")
	}
	return c.JSON(http.StatusOK, contacts)
}
