package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/eskro/backend/internal/hash"
	"github.com/eskro/backend/internal/logging"
	"github.com/eskro/backend/internal/mail"
	"github.com/eskro/backend/internal/models"
	"github.com/eskro/backend/internal/mykafka"
	"github.com/eskro/backend/internal/repo"
	"github.com/eskro/backend/internal/token"
)

// AuthService orchestrates the refresh-token lifecycle: issuance on login,
// rotation-on-use, revocation on logout or anomaly. Every validation rereads
// the store, token state is never cached in process.
type AuthService struct {
	Repo     *repo.GormRepo
	Codec    *token.Codec
	Issuer   *token.Issuer
	Mailer   mail.Sender
	Producer *mykafka.Producer

	RegistrationTTL   time.Duration
	PasswordChangeTTL time.Duration
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type RegisterInput struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates an inactive user gated by a single-use invitation token
// and mails a confirmation link. A failed confirmation mail does not undo
// the created user.
func (s *AuthService) Register(ctx context.Context, invitationToken string, in RegisterInput) (*models.User, error) {
	if _, err := s.Codec.Decode(invitationToken); err != nil {
		return nil, err
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:        in.Email,
		Username:     in.Username,
		Role:         models.RoleUser,
		PasswordHash: pwHash,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	confirmation, err := s.Issuer.UnscopedToken(map[string]any{"sub": user.ID.String()}, s.RegistrationTTL)
	if err != nil {
		return nil, err
	}
	if err := s.Mailer.SendRegistrationConfirmation(user.Email, user.Username, confirmation); err != nil {
		logging.FromContext(ctx).Error("confirmation mail failed", "email", user.Email, "error", err)
	}

	s.publish(ctx, "user_registered", user)
	return user, nil
}

// ConfirmRegistration activates the user named by the token's sub claim.
// Returns false for an unknown id without differentiating the error, so the
// endpoint does not leak which ids exist.
func (s *AuthService) ConfirmRegistration(ctx context.Context, confirmationToken string) (bool, error) {
	claims, err := s.Codec.Decode(confirmationToken)
	if err != nil {
		return false, err
	}
	userID, err := subjectID(claims["sub"])
	if err != nil {
		return false, err
	}
	return s.Repo.SetUserActive(ctx, userID, true)
}

func (s *AuthService) Login(ctx context.Context, identifier, password, userAgent, ipAddress string) (*TokenPair, error) {
	user, err := s.Repo.UserByCredentials(ctx, identifier, password)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserNotActive
	}

	pair, err := s.issuePair(ctx, user.ID, userAgent, ipAddress)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "user_logged_in", user)
	return pair, nil
}

// Refresh exchanges a refresh token for a fresh pair. Order matters:
// validate everything first, then revoke the spent token, then issue. A
// failed refresh never destroys a still-valid token, except the anomaly
// tripwire which burns the token as a side effect of detecting the mismatch.
func (s *AuthService) Refresh(ctx context.Context, rawRefresh, userAgent, ipAddress string) (*TokenPair, error) {
	claims, err := s.Codec.DecodeRefresh(rawRefresh)
	if err != nil {
		return nil, err
	}
	jti, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, token.ErrInvalidToken
	}

	record, err := s.Repo.RefreshTokenByJTI(ctx, jti)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrTokenRevoked
		}
		return nil, err
	}
	if record.Revoked {
		return nil, ErrTokenRevoked
	}

	if deref(record.UserAgent) != userAgent || deref(record.IPAddress) != ipAddress {
		if err := s.Repo.RevokeRefreshToken(ctx, jti); err != nil {
			logging.FromContext(ctx).Error("anomaly revoke failed", "jti", jti, "error", err)
		}
		return nil, ErrSuspiciousActivity
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, token.ErrInvalidToken
	}
	user, err := s.Repo.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFoundOrInactive
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserNotFoundOrInactive
	}

	if err := s.Repo.RevokeRefreshToken(ctx, jti); err != nil {
		return nil, err
	}
	return s.issuePair(ctx, user.ID, userAgent, ipAddress)
}

func (s *AuthService) Logout(ctx context.Context, rawRefresh string) error {
	claims, err := s.Codec.DecodeRefresh(rawRefresh)
	if err != nil {
		return err
	}
	jti, err := uuid.Parse(claims.ID)
	if err != nil {
		return token.ErrInvalidToken
	}
	if err := s.Repo.RevokeRefreshToken(ctx, jti); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrTokenRevoked
		}
		return err
	}
	return nil
}

func (s *AuthService) LogoutAll(ctx context.Context, rawRefresh string) error {
	claims, err := s.Codec.DecodeRefresh(rawRefresh)
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return token.ErrInvalidToken
	}
	return s.Repo.RevokeAllRefreshTokens(ctx, userID)
}

// SendRegisterInvitation mails a self-registration link for a pre-approved
// email. Admin only at the transport layer.
func (s *AuthService) SendRegisterInvitation(ctx context.Context, email string) error {
	if _, err := s.Repo.UserByEmail(ctx, email); err == nil {
		return repo.ErrUserAlreadyExists
	} else if !errors.Is(err, repo.ErrNotFound) {
		return err
	}

	invitation, err := s.Issuer.UnscopedToken(map[string]any{"email": email}, s.RegistrationTTL)
	if err != nil {
		return err
	}
	return s.Mailer.SendRegisterInvitation(email, invitation)
}

// RequestPasswordChange mails a single-use password-change link.
func (s *AuthService) RequestPasswordChange(ctx context.Context, email string) error {
	user, err := s.Repo.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFoundOrInactive
		}
		return err
	}
	if !user.IsActive {
		return ErrUserNotFoundOrInactive
	}

	changeToken, err := s.Issuer.UnscopedToken(
		map[string]any{"sub": user.ID.String(), "email": user.Email},
		s.PasswordChangeTTL,
	)
	if err != nil {
		return err
	}
	return s.Mailer.SendPasswordChange(user.Email, changeToken)
}

// ConfirmPasswordChange is the token-gated entry point of password change.
func (s *AuthService) ConfirmPasswordChange(ctx context.Context, changeToken, newPassword string) (*models.User, error) {
	claims, err := s.Codec.Decode(changeToken)
	if err != nil {
		return nil, err
	}
	userID, err := subjectID(claims["sub"])
	if err != nil {
		return nil, err
	}
	return s.ChangePassword(ctx, userID, newPassword)
}

// ChangePassword rejects a new password equal to the current one before
// committing anything.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, newPassword string) (*models.User, error) {
	user, err := s.Repo.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if hash.CheckPassword(user.PasswordHash, newPassword) {
		return nil, ErrSamePassword
	}

	pwHash, err := hash.HashPassword(newPassword)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.SetUserPassword(ctx, userID, pwHash); err != nil {
		return nil, err
	}
	user.PasswordHash = pwHash
	return user, nil
}

func (s *AuthService) issuePair(ctx context.Context, userID uuid.UUID, userAgent, ipAddress string) (*TokenPair, error) {
	access, err := s.Issuer.AccessToken(userID)
	if err != nil {
		return nil, err
	}
	refresh, jti, expiresAt, err := s.Issuer.RefreshToken(userID)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.AddRefreshToken(ctx, jti, userID, optional(userAgent), optional(ipAddress), expiresAt); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "Bearer"}, nil
}

func (s *AuthService) publish(ctx context.Context, eventType string, user *models.User) {
	if s.Producer == nil {
		return
	}
	event := map[string]any{
		"type":     eventType,
		"user_id":  user.ID.String(),
		"username": user.Username,
	}
	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Producer.PublishEvent(cctx, "user_events", user.ID.String(), event); err != nil {
		logging.FromContext(ctx).Error("kafka publish failed", "type", eventType, "error", err)
	}
}

func subjectID(sub any) (uuid.UUID, error) {
	str, ok := sub.(string)
	if !ok {
		return uuid.Nil, token.ErrInvalidToken
	}
	id, err := uuid.Parse(str)
	if err != nil {
		return uuid.Nil, token.ErrInvalidToken
	}
	return id, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
