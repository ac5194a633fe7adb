package auth

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/eskro/backend/internal/models"
	"github.com/eskro/backend/internal/repo"
	"github.com/eskro/backend/internal/token"
)

func newTestGuard(t *testing.T) (*Guard, *token.Issuer) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.RefreshToken{}))

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	privDER, err := x509.MarshalPKCS8PrivateKey(priv)
	require.NoError(t, err)
	pubDER, err := x509.MarshalPKIXPublicKey(pub)
	require.NoError(t, err)
	codec, err := token.NewCodec("EdDSA",
		pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER}),
		pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER}),
	)
	require.NoError(t, err)

	guard := &Guard{Codec: codec, Repo: repo.NewGormRepo(db)}
	return guard, token.NewIssuer(codec, 15*time.Minute, 24*time.Hour)
}

func createGuardUser(t *testing.T, g *Guard, role string, active bool) *models.User {
	t.Helper()

	user := &models.User{
		Email:        role + "@example.com",
		Username:     role,
		Role:         role,
		PasswordHash: []byte("x"),
		IsActive:     active,
	}
	require.NoError(t, g.Repo.CreateUser(context.Background(), user))
	return user
}

func guardContext(bearer string) echo.Context {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func okHandler(c echo.Context) error { return c.NoContent(http.StatusOK) }

func TestRequireUser_LoadsCurrentUser(t *testing.T) {
	t.Parallel()

	guard, issuer := newTestGuard(t)
	user := createGuardUser(t, guard, models.RoleUser, true)

	access, err := issuer.AccessToken(user.ID)
	require.NoError(t, err)

	called := false
	err = guard.RequireUser(func(c echo.Context) error {
		called = true
		require.NotNil(t, CurrentUser(c))
		assert.Equal(t, user.ID, CurrentUser(c).ID)
		return nil
	})(guardContext(access))
	require.NoError(t, err)
	assert.True(t, called)
}

func TestRequireUser_MissingToken(t *testing.T) {
	t.Parallel()

	guard, _ := newTestGuard(t)
	err := guard.RequireUser(okHandler)(guardContext(""))

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestRequireUser_RejectsRefreshToken(t *testing.T) {
	t.Parallel()

	guard, issuer := newTestGuard(t)
	user := createGuardUser(t, guard, models.RoleUser, true)

	refresh, _, _, err := issuer.RefreshToken(user.ID)
	require.NoError(t, err)

	err = guard.RequireUser(okHandler)(guardContext(refresh))
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestRequireUser_InactiveUser(t *testing.T) {
	t.Parallel()

	guard, issuer := newTestGuard(t)
	user := createGuardUser(t, guard, models.RoleUser, false)

	access, err := issuer.AccessToken(user.ID)
	require.NoError(t, err)

	err = guard.RequireUser(okHandler)(guardContext(access))
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()

	guard, issuer := newTestGuard(t)
	admin := createGuardUser(t, guard, models.RoleAdmin, true)
	user := createGuardUser(t, guard, models.RoleUser, true)

	adminToken, err := issuer.AccessToken(admin.ID)
	require.NoError(t, err)
	userToken, err := issuer.AccessToken(user.ID)
	require.NoError(t, err)

	require.NoError(t, guard.RequireAdmin(okHandler)(guardContext(adminToken)))

	err = guard.RequireAdmin(okHandler)(guardContext(userToken))
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)
}
