package repo

import (
	"context"
	"errors"
	"net/mail"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eskro/backend/internal/hash"
	"github.com/eskro/backend/internal/models"
)

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("email = ? OR username = ?", u.Email, u.Username).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrUserAlreadyExists
	}
	// The count is advisory: two concurrent registrations can both pass it,
	// and the loser hits the unique constraint instead.
	if err := r.DB.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

func (r *GormRepo) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.userBy(ctx, "email = ?", email)
}

func (r *GormRepo) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.userBy(ctx, "username = ?", username)
}

// UserByUsernameOrEmail resolves the identifier by email when it parses as a
// syntactically valid address, by username otherwise.
func (r *GormRepo) UserByUsernameOrEmail(ctx context.Context, identifier string) (*models.User, error) {
	if _, err := mail.ParseAddress(identifier); err == nil {
		return r.UserByEmail(ctx, identifier)
	}
	return r.UserByUsername(ctx, identifier)
}

// UserByCredentials returns ErrInvalidCredentials for both an unknown
// identifier and a wrong password, so callers cannot enumerate accounts.
func (r *GormRepo) UserByCredentials(ctx context.Context, identifier, password string) (*models.User, error) {
	user, err := r.UserByUsernameOrEmail(ctx, identifier)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (r *GormRepo) ListUsers(ctx context.Context, skip, limit int, isActive *bool) ([]models.User, error) {
	q := r.DB.WithContext(ctx).Model(&models.User{})
	if isActive != nil {
		q = q.Where("is_active = ?", *isActive)
	}
	var users []models.User
	if err := q.Order("created_at DESC").Offset(skip).Limit(limit).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *GormRepo) SetUserActive(ctx context.Context, id uuid.UUID, active bool) (bool, error) {
	result := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("is_active", active)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpdateUser patches email and/or username field by field.
func (r *GormRepo) UpdateUser(ctx context.Context, id uuid.UUID, email, username *string) (*models.User, error) {
	user, err := r.UserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if email != nil {
		updates["email"] = *email
	}
	if username != nil {
		updates["username"] = *username
	}
	if len(updates) > 0 {
		if err := r.DB.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return user, nil
}

func (r *GormRepo) SetUserPassword(ctx context.Context, id uuid.UUID, passwordHash []byte) error {
	result := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("password_hash", passwordHash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser removes the user together with their refresh tokens.
func (r *GormRepo) DeleteUser(ctx context.Context, id uuid.UUID) (bool, error) {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.User{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *GormRepo) HasAdmin(ctx context.Context) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepo) userBy(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}
