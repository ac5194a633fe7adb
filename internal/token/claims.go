package token

import "github.com/golang-jwt/jwt/v5"

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claim sets are typed per token kind so a structurally wrong token is
// rejected before any business logic inspects it. Unscoped tokens (mailed
// links) carry no type claim and fail both decoders.

type AccessClaims struct {
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

func (c *Codec) DecodeAccess(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, c.keyfunc, jwt.WithValidMethods([]string{c.method.Alg()})); err != nil {
		return nil, translate(err)
	}
	if claims.TokenType != TokenTypeAccess {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (c *Codec) DecodeRefresh(token string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, c.keyfunc, jwt.WithValidMethods([]string{c.method.Alg()})); err != nil {
		return nil, translate(err)
	}
	if claims.TokenType != TokenTypeRefresh {
		return nil, ErrNotRefreshToken
	}
	return claims, nil
}
