package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Issuer struct {
	codec      *Codec
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewIssuer(codec *Codec, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{codec: codec, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

func (i *Issuer) AccessToken(userID uuid.UUID) (string, error) {
	now := time.Now().UTC()
	claims := AccessClaims{
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.accessTTL)),
		},
	}
	return i.codec.Sign(claims)
}

// RefreshToken issues a refresh token with a fresh random jti. The caller is
// responsible for persisting the matching store record.
func (i *Issuer) RefreshToken(userID uuid.UUID) (string, uuid.UUID, time.Time, error) {
	jti := uuid.New()
	now := time.Now().UTC()
	expiresAt := now.Add(i.refreshTTL)
	claims := RefreshClaims{
		TokenType: TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ID:        jti.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := i.codec.Sign(claims)
	return signed, jti, expiresAt, err
}

// UnscopedToken signs a single-purpose payload (confirmation, invitation,
// password change, subscription). No type claim, so it is rejected wherever
// a typed access or refresh token is required.
func (i *Issuer) UnscopedToken(payload map[string]any, ttl time.Duration) (string, error) {
	return i.codec.Encode(payload, ttl)
}
