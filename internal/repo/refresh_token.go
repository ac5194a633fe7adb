package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eskro/backend/internal/models"
)

// AddRefreshToken inserts exactly one record per issued refresh token. A
// duplicate jti means UUID generation went wrong somewhere and is surfaced
// as an integrity fault rather than silently overwritten.
func (r *GormRepo) AddRefreshToken(ctx context.Context, jti, userID uuid.UUID, userAgent, ipAddress *string, expiresAt time.Time) error {
	record := models.RefreshToken{
		JTI:       jti,
		UserID:    userID,
		UserAgent: userAgent,
		IPAddress: ipAddress,
		ExpiresAt: expiresAt,
	}
	if err := r.DB.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateToken
		}
		return err
	}
	return nil
}

func (r *GormRepo) RefreshTokenByJTI(ctx context.Context, jti uuid.UUID) (*models.RefreshToken, error) {
	var record models.RefreshToken
	if err := r.DB.WithContext(ctx).Where("jti = ?", jti).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// RevokeRefreshToken is idempotent: revoking an already revoked token
// succeeds, revoking a missing one signals ErrNotFound.
func (r *GormRepo) RevokeRefreshToken(ctx context.Context, jti uuid.UUID) error {
	result := r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("jti = ?", jti).
		Update("revoked", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RevokeAllRefreshTokens backs "log out everywhere".
func (r *GormRepo) RevokeAllRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ?", userID).
		Update("revoked", true).Error
}

// PurgeExpiredRefreshTokens deletes every record past its expiry, revoked or
// not, and reports how many rows went away. Safe to run next to live
// traffic: it only touches rows no flow can accept anymore.
func (r *GormRepo) PurgeExpiredRefreshTokens(ctx context.Context) (int64, error) {
	result := r.DB.WithContext(ctx).
		Where("expires_at < ?", time.Now().UTC()).
		Delete(&models.RefreshToken{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
