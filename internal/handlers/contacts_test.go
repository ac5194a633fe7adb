package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContacts_GetMissingFile(t *testing.T) {
	t.Parallel()

	h := &ContactsHandler{Path: filepath.Join(t.TempDir(), "contacts.json")}
	_, c := jsonContext(echo.New(), http.MethodGet, "/api/v1/contacts", nil)

	err := h.Get(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestContacts_GetInvalidJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "contacts.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	h := &ContactsHandler{Path: path}
	_, c := jsonContext(echo.New(), http.MethodGet, "/api/v1/contacts", nil)

	err := h.Get(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.Code)
}

func TestContacts_PutThenGet(t *testing.T) {
	t.Parallel()

	e := echo.New()
	h := &ContactsHandler{Path: filepath.Join(t.TempDir(), "contacts.json")}

	rec, c := jsonContext(e, http.MethodPut, "/api/v1/contacts", map[string]any{
		"phone": "+7 123 456-78-90",
		"email": "info@example.com",
	})
	require.NoError(t, h.Put(c))
	require.Equal(t, http.StatusOK, rec.Code)

	rec, c = jsonContext(e, http.MethodGet, "/api/v1/contacts", nil)
	require.NoError(t, h.Get(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var contacts map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &contacts))
	assert.Equal(t, "+7 123 456-78-90", contacts["phone"])
	assert.Equal(t, "info@example.com", contacts["email"])
}
