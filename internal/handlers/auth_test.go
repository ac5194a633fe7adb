package handlers

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/eskro/backend/internal/hash"
	"github.com/eskro/backend/internal/models"
	"github.com/eskro/backend/internal/repo"
	"github.com/eskro/backend/internal/service"
	"github.com/eskro/backend/internal/token"
)

type noopMailer struct{}

func (noopMailer) SendRegistrationConfirmation(email, username, tok string) error { return nil }
func (noopMailer) SendRegisterInvitation(email, tok string) error                 { return nil }
func (noopMailer) SendPasswordChange(email, tok string) error                     { return nil }
func (noopMailer) SendSubscriptionConfirmation(email, tok string) error           { return nil }
func (noopMailer) SendFeedbackResponse(email, firstName, response string) error   { return nil }

type authTestEnv struct {
	E       *echo.Echo
	H       *AuthHandler
	Service *service.AuthService
}

func newAuthTestEnv(t *testing.T) *authTestEnv {
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
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})
	codec, err := token.NewCodec("EdDSA",
		pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER}),
		pubPEM,
	)
	require.NoError(t, err)

	svc := &service.AuthService{
		Repo:              repo.NewGormRepo(db),
		Codec:             codec,
		Issuer:            token.NewIssuer(codec, 15*time.Minute, 24*time.Hour),
		Mailer:            noopMailer{},
		RegistrationTTL:   time.Hour,
		PasswordChangeTTL: 15 * time.Minute,
	}
	return &authTestEnv{
		E: echo.New(),
		H: &AuthHandler{
			Service:       svc,
			RefreshHeader: "X-Refresh-Token",
			PublicKeyPEM:  pubPEM,
		},
		Service: svc,
	}
}

func (env *authTestEnv) createUser(t *testing.T, username, password string, active bool) *models.User {
	t.Helper()

	pwHash, err := hash.HashPassword(password)
	require.NoError(t, err)
	user := &models.User{
		Email:        username + "@example.com",
		Username:     username,
		Role:         models.RoleUser,
		PasswordHash: pwHash,
		IsActive:     active,
	}
	require.NoError(t, env.Service.Repo.CreateUser(context.Background(), user))
	return user
}

func (env *authTestEnv) loginRequest(username, password, userAgent string) (*httptest.ResponseRecorder, echo.Context) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.Header.Set("User-Agent", userAgent)
	rec := httptest.NewRecorder()
	return rec, env.E.NewContext(req, rec)
}

func (env *authTestEnv) refreshRequest(refreshToken, userAgent string) (*httptest.ResponseRecorder, echo.Context) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.Header.Set(env.H.RefreshHeader, refreshToken)
	req.Header.Set("User-Agent", userAgent)
	rec := httptest.NewRecorder()
	return rec, env.E.NewContext(req, rec)
}

func (env *authTestEnv) login(t *testing.T, username, password, userAgent string) service.TokenPair {
	t.Helper()

	rec, c := env.loginRequest(username, password, userAgent)
	require.NoError(t, env.H.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var pair service.TokenPair
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	return pair
}

func requireHTTPError(t *testing.T, err error, code int, message string) {
	t.Helper()

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, code, httpErr.Code)
	assert.Equal(t, message, httpErr.Message)
}

func TestLoginHandler_ReturnsBearerPair(t *testing.T) {
	t.Parallel()

	env := newAuthTestEnv(t)
	env.createUser(t, "alice", "pw", true)

	pair := env.login(t, "alice", "pw", "test-agent")
	assert.Equal(t, "Bearer", pair.TokenType)

	claims, err := env.Service.Codec.DecodeAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.Subject)
}

func TestLoginHandler_InvalidCredentials(t *testing.T) {
	t.Parallel()

	env := newAuthTestEnv(t)
	env.createUser(t, "alice", "pw", true)

	_, c := env.loginRequest("alice", "wrong", "test-agent")
	requireHTTPError(t, env.H.Login(c), http.StatusUnauthorized, "Invalid credentials")

	_, c = env.loginRequest("nobody", "pw", "test-agent")
	requireHTTPError(t, env.H.Login(c), http.StatusUnauthorized, "Invalid credentials")
}

func TestLoginHandler_InactiveUser(t *testing.T) {
	t.Parallel()

	env := newAuthTestEnv(t)
	env.createUser(t, "alice", "pw", false)

	_, c := env.loginRequest("alice", "pw", "test-agent")
	requireHTTPError(t, env.H.Login(c), http.StatusBadRequest, "User not active")
}

func TestRefreshHandler_RotatesAndRejectsReplay(t *testing.T) {
	t.Parallel()

	env := newAuthTestEnv(t)
	env.createUser(t, "alice", "pw", true)
	pair := env.login(t, "alice", "pw", "test-agent")

	rec, c := env.refreshRequest(pair.RefreshToken, "test-agent")
	require.NoError(t, env.H.Refresh(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var rotated service.TokenPair
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rotated))
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	_, c = env.refreshRequest(pair.RefreshToken, "test-agent")
	requireHTTPError(t, env.H.Refresh(c), http.StatusUnauthorized, "Token revoked")
}

func TestRefreshHandler_NotARefreshToken(t *testing.T) {
	t.Parallel()

	env := newAuthTestEnv(t)
	env.createUser(t, "alice", "pw", true)
	pair := env.login(t, "alice", "pw", "test-agent")

	_, c := env.refreshRequest(pair.AccessToken, "test-agent")
	requireHTTPError(t, env.H.Refresh(c), http.StatusBadRequest, "Not a refresh token")
}

func TestRefreshHandler_SuspiciousActivity(t *testing.T) {
	t.Parallel()

	env := newAuthTestEnv(t)
	env.createUser(t, "alice", "pw", true)
	pair := env.login(t, "alice", "pw", "test-agent")

	_, c := env.refreshRequest(pair.RefreshToken, "other-agent")
	requireHTTPError(t, env.H.Refresh(c), http.StatusUnauthorized, "Suspicious activity detected")

	_, c = env.refreshRequest(pair.RefreshToken, "test-agent")
	requireHTTPError(t, env.H.Refresh(c), http.StatusUnauthorized, "Token revoked")
}

func TestLogoutHandler_RevokesToken(t *testing.T) {
	t.Parallel()

	env := newAuthTestEnv(t)
	env.createUser(t, "alice", "pw", true)
	pair := env.login(t, "alice", "pw", "test-agent")

	rec, c := env.refreshRequest(pair.RefreshToken, "test-agent")
	require.NoError(t, env.H.Logout(c))
	require.Equal(t, http.StatusOK, rec.Code)

	_, c = env.refreshRequest(pair.RefreshToken, "test-agent")
	requireHTTPError(t, env.H.Refresh(c), http.StatusUnauthorized, "Token revoked")
}

func TestPublicKeyHandler(t *testing.T) {
	t.Parallel()

	env := newAuthTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/public-key", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, env.H.PublicKey(env.E.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["public_key"], "BEGIN PUBLIC KEY")
}
