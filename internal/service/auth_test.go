package service

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/eskro/backend/internal/hash"
	"github.com/eskro/backend/internal/models"
	"github.com/eskro/backend/internal/repo"
	"github.com/eskro/backend/internal/token"
)

// mailLog implements mail.Sender and captures the tokens the flows would
// have mailed, so tests can follow the links.
type mailLog struct {
	confirmationToken string
	invitationToken   string
	passwordToken     string
}

func (m *mailLog) SendRegistrationConfirmation(email, username, tok string) error {
	m.confirmationToken = tok
	return nil
}

func (m *mailLog) SendRegisterInvitation(email, tok string) error {
	m.invitationToken = tok
	return nil
}

func (m *mailLog) SendPasswordChange(email, tok string) error {
	m.passwordToken = tok
	return nil
}

func (m *mailLog) SendSubscriptionConfirmation(email, tok string) error { return nil }

func (m *mailLog) SendFeedbackResponse(email, firstName, response string) error { return nil }

func newTestService(t *testing.T) (*AuthService, *mailLog) {
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

	mailer := &mailLog{}
	svc := &AuthService{
		Repo:              repo.NewGormRepo(db),
		Codec:             codec,
		Issuer:            token.NewIssuer(codec, 15*time.Minute, 24*time.Hour),
		Mailer:            mailer,
		RegistrationTTL:   time.Hour,
		PasswordChangeTTL: 15 * time.Minute,
	}
	return svc, mailer
}

func registerActiveUser(t *testing.T, svc *AuthService, email, username, password string) *models.User {
	t.Helper()

	pwHash, err := hash.HashPassword(password)
	require.NoError(t, err)
	user := &models.User{
		Email:        email,
		Username:     username,
		Role:         models.RoleUser,
		PasswordHash: pwHash,
		IsActive:     true,
	}
	require.NoError(t, svc.Repo.CreateUser(context.Background(), user))
	return user
}

func unrevokedTokenCount(t *testing.T, svc *AuthService) int64 {
	t.Helper()

	var count int64
	require.NoError(t, svc.Repo.DB.Model(&models.RefreshToken{}).
		Where("revoked = ?", false).Count(&count).Error)
	return count
}

func TestRegister_CreatesInactiveUser(t *testing.T) {
	t.Parallel()

	svc, mailer := newTestService(t)
	ctx := context.Background()

	invitation, err := svc.Issuer.UnscopedToken(map[string]any{"email": "a@example.com"}, time.Hour)
	require.NoError(t, err)

	user, err := svc.Register(ctx, invitation, RegisterInput{
		Email: "a@example.com", Username: "alice", Password: "pw",
	})
	require.NoError(t, err)
	assert.False(t, user.IsActive)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEmpty(t, mailer.confirmationToken)
}

func TestRegister_RejectsBadInvitation(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	_, err := svc.Register(context.Background(), "garbage", RegisterInput{
		Email: "a@example.com", Username: "alice", Password: "pw",
	})
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestConfirmRegistration_Activates(t *testing.T) {
	t.Parallel()

	svc, mailer := newTestService(t)
	ctx := context.Background()

	invitation, err := svc.Issuer.UnscopedToken(map[string]any{"email": "a@example.com"}, time.Hour)
	require.NoError(t, err)
	user, err := svc.Register(ctx, invitation, RegisterInput{
		Email: "a@example.com", Username: "alice", Password: "pw",
	})
	require.NoError(t, err)

	ok, err := svc.ConfirmRegistration(ctx, mailer.confirmationToken)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := svc.Repo.UserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
}

func TestLogin_InactiveUserGetsNoTokens(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	pwHash, err := hash.HashPassword("pw")
	require.NoError(t, err)
	require.NoError(t, svc.Repo.CreateUser(ctx, &models.User{
		Email: "a@example.com", Username: "alice", PasswordHash: pwHash,
	}))

	pair, err := svc.Login(ctx, "alice", "pw", "ua", "10.0.0.1")
	assert.ErrorIs(t, err, ErrUserNotActive)
	assert.Nil(t, pair)
	assert.Zero(t, unrevokedTokenCount(t, svc))
}

func TestLogin_NoAccountEnumeration(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	registerActiveUser(t, svc, "a@example.com", "alice", "right-password")

	_, wrongPassword := svc.Login(ctx, "alice", "wrong", "ua", "ip")
	_, unknownUser := svc.Login(ctx, "nobody", "wrong", "ua", "ip")

	assert.ErrorIs(t, wrongPassword, repo.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword, unknownUser)
}

func TestLogin_ByEmailOrUsername(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	registerActiveUser(t, svc, "a@example.com", "alice", "pw")

	pair, err := svc.Login(ctx, "a@example.com", "pw", "ua", "ip")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)

	_, err = svc.Login(ctx, "alice", "pw", "ua", "ip")
	require.NoError(t, err)
}

func TestRefresh_RotatesToken(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	registerActiveUser(t, svc, "a@example.com", "alice", "pw")

	pair, err := svc.Login(ctx, "alice", "pw", "ua", "10.0.0.1")
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, pair.RefreshToken, "ua", "10.0.0.1")
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)
	assert.EqualValues(t, 1, unrevokedTokenCount(t, svc))

	_, err = svc.Refresh(ctx, pair.RefreshToken, "ua", "10.0.0.1")
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	registerActiveUser(t, svc, "a@example.com", "alice", "pw")

	pair, err := svc.Login(ctx, "alice", "pw", "ua", "ip")
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, pair.AccessToken, "ua", "ip")
	assert.ErrorIs(t, err, token.ErrNotRefreshToken)
}

func TestRefresh_FingerprintMismatchBurnsToken(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	registerActiveUser(t, svc, "a@example.com", "alice", "pw")

	pair, err := svc.Login(ctx, "alice", "pw", "ua", "10.0.0.1")
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, pair.RefreshToken, "other-ua", "10.0.0.1")
	assert.ErrorIs(t, err, ErrSuspiciousActivity)

	_, err = svc.Refresh(ctx, pair.RefreshToken, "ua", "10.0.0.1")
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestRefresh_DeactivatedUser(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	user := registerActiveUser(t, svc, "a@example.com", "alice", "pw")

	pair, err := svc.Login(ctx, "alice", "pw", "ua", "ip")
	require.NoError(t, err)

	_, err = svc.Repo.SetUserActive(ctx, user.ID, false)
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, pair.RefreshToken, "ua", "ip")
	assert.ErrorIs(t, err, ErrUserNotFoundOrInactive)
}

func TestLogout_RevokesOnlyThatToken(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	registerActiveUser(t, svc, "a@example.com", "alice", "pw")

	first, err := svc.Login(ctx, "alice", "pw", "ua", "ip")
	require.NoError(t, err)
	second, err := svc.Login(ctx, "alice", "pw", "ua", "ip")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, first.RefreshToken))

	_, err = svc.Refresh(ctx, first.RefreshToken, "ua", "ip")
	assert.ErrorIs(t, err, ErrTokenRevoked)
	_, err = svc.Refresh(ctx, second.RefreshToken, "ua", "ip")
	assert.NoError(t, err)
}

func TestLogoutAll_RevokesEverySession(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	registerActiveUser(t, svc, "a@example.com", "alice", "pw")

	first, err := svc.Login(ctx, "alice", "pw", "ua", "ip")
	require.NoError(t, err)
	second, err := svc.Login(ctx, "alice", "pw", "ua", "ip")
	require.NoError(t, err)

	require.NoError(t, svc.LogoutAll(ctx, first.RefreshToken))
	assert.Zero(t, unrevokedTokenCount(t, svc))

	_, err = svc.Refresh(ctx, second.RefreshToken, "ua", "ip")
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestChangePassword_RejectsSamePassword(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	user := registerActiveUser(t, svc, "a@example.com", "alice", "pw")

	_, err := svc.ChangePassword(ctx, user.ID, "pw")
	assert.ErrorIs(t, err, ErrSamePassword)

	_, err = svc.ChangePassword(ctx, user.ID, "new-pw")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice", "new-pw", "ua", "ip")
	require.NoError(t, err)
	_, err = svc.Login(ctx, "alice", "pw", "ua", "ip")
	assert.ErrorIs(t, err, repo.ErrInvalidCredentials)
}

func TestPasswordChange_MailedTokenFlow(t *testing.T) {
	t.Parallel()

	svc, mailer := newTestService(t)
	ctx := context.Background()
	registerActiveUser(t, svc, "a@example.com", "alice", "pw")

	require.NoError(t, svc.RequestPasswordChange(ctx, "a@example.com"))
	require.NotEmpty(t, mailer.passwordToken)

	_, err := svc.ConfirmPasswordChange(ctx, mailer.passwordToken, "new-pw")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice", "new-pw", "ua", "ip")
	require.NoError(t, err)
}

func TestSendRegisterInvitation_ExistingUser(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	registerActiveUser(t, svc, "a@example.com", "alice", "pw")

	err := svc.SendRegisterInvitation(ctx, "a@example.com")
	assert.ErrorIs(t, err, repo.ErrUserAlreadyExists)
}

func TestFullAuthFlow(t *testing.T) {
	t.Parallel()

	svc, mailer := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SendRegisterInvitation(ctx, "a@example.com"))
	require.NotEmpty(t, mailer.invitationToken)

	user, err := svc.Register(ctx, mailer.invitationToken, RegisterInput{
		Email: "a@example.com", Username: "alice", Password: "pw",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice", "pw", "ua", "ip")
	require.ErrorIs(t, err, ErrUserNotActive)

	ok, err := svc.ConfirmRegistration(ctx, mailer.confirmationToken)
	require.NoError(t, err)
	require.True(t, ok)

	pair, err := svc.Login(ctx, "alice", "pw", "ua", "ip")
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, pair.RefreshToken, "ua", "ip")
	require.NoError(t, err)

	claims, err := svc.Codec.DecodeAccess(rotated.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.Subject)

	require.NoError(t, svc.LogoutAll(ctx, rotated.RefreshToken))
	_, err = svc.Refresh(ctx, rotated.RefreshToken, "ua", "ip")
	assert.ErrorIs(t, err, ErrTokenRevoked)
}
