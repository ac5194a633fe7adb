package service

import (
	"context"

	"github.com/eskro/backend/internal/hash"
	"github.com/eskro/backend/internal/logging"
	"github.com/eskro/backend/internal/models"
)

// EnsureAdmin seeds the configured administrator account on first start.
// Returns false when an admin already exists.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, username, password string) (bool, error) {
	exists, err := s.Repo.HasAdmin(ctx)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return false, err
	}
	admin := &models.User{
		Email:        email,
		Username:     username,
		Role:         models.RoleAdmin,
		PasswordHash: pwHash,
		IsActive:     true,
	}
	if err := s.Repo.CreateUser(ctx, admin); err != nil {
		return false, err
	}

	invitation, err := s.Issuer.UnscopedToken(map[string]any{"email": email}, s.RegistrationTTL)
	if err != nil {
		logging.FromContext(ctx).Error("admin invitation token failed", "error", err)
		return true, nil
	}
	if err := s.Mailer.SendRegisterInvitation(email, invitation); err != nil {
		logging.FromContext(ctx).Error("admin invitation mail failed", "email", email, "error", err)
	}
	return true, nil
}
