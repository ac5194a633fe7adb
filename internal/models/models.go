package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"          json:"id"`
	Email        string    `gorm:"size:320;unique;not null"      json:"email"`
	Username     string    `gorm:"size:20;unique;not null"       json:"username"`
	Role         string    `gorm:"size:20;not null;default:user" json:"role"`
	PasswordHash []byte    `gorm:"not null"                      json:"-"`
	IsActive     bool      `gorm:"not null;default:false"        json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`

	RefreshTokens []RefreshToken `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// RefreshToken shadows one issued refresh token. The jti claim of the signed
// token is the primary key, so the signed token itself is never stored.
// UserAgent and IPAddress capture the client fingerprint recorded at issuance.
type RefreshToken struct {
	JTI       uuid.UUID `gorm:"type:uuid;primaryKey;column:jti" json:"jti"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"        json:"user_id"`
	UserAgent *string   `gorm:"size:500"                        json:"user_agent"`
	IPAddress *string   `gorm:"size:45"                         json:"ip_address"`
	ExpiresAt time.Time `gorm:"not null"                        json:"expires_at"`
	Revoked   bool      `gorm:"not null;default:false"          json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}
