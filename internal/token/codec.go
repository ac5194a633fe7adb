package token

import (
	"crypto"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrExpiredToken    = errors.New("token expired")
	ErrInvalidToken    = errors.New("invalid token")
	ErrNotRefreshToken = errors.New("not a refresh token")
)

// Codec signs tokens with a private key and verifies them with the matching
// public key, so other services holding only the public key can verify
// without being able to forge.
type Codec struct {
	method  jwt.SigningMethod
	private crypto.PrivateKey
	public  crypto.PublicKey
}

func NewCodec(algorithm string, privateKeyPEM, publicKeyPEM []byte) (*Codec, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm %q", algorithm)
	}

	c := &Codec{method: method}
	var err error
	switch method.(type) {
	case *jwt.SigningMethodEd25519:
		if c.private, err = jwt.ParseEdPrivateKeyFromPEM(privateKeyPEM); err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		if c.public, err = jwt.ParseEdPublicKeyFromPEM(publicKeyPEM); err != nil {
			return nil, fmt.Errorf("parse public key: %w", err)
		}
	case *jwt.SigningMethodRSA:
		if c.private, err = jwt.ParseRSAPrivateKeyFromPEM(privateKeyPEM); err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		if c.public, err = jwt.ParseRSAPublicKeyFromPEM(publicKeyPEM); err != nil {
			return nil, fmt.Errorf("parse public key: %w", err)
		}
	default:
		return nil, fmt.Errorf("algorithm %q is not asymmetric", algorithm)
	}

	return c, nil
}

// Sign signs an already built claim set.
func (c *Codec) Sign(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(c.method, claims).SignedString(c.private)
}

// Encode signs an arbitrary payload without a type claim. iat is always set,
// exp only when ttl is positive.
func (c *Codec) Encode(payload map[string]any, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{}
	for k, v := range payload {
		claims[k] = v
	}
	now := time.Now().UTC()
	claims["iat"] = jwt.NewNumericDate(now)
	if ttl > 0 {
		claims["exp"] = jwt.NewNumericDate(now.Add(ttl))
	}
	return c.Sign(claims)
}

// Decode verifies signature and expiry and returns the raw claim set.
func (c *Codec) Decode(token string) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(token, c.keyfunc, jwt.WithValidMethods([]string{c.method.Alg()}))
	if err != nil {
		return nil, translate(err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (c *Codec) keyfunc(*jwt.Token) (any, error) { return c.public, nil }

func translate(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return ErrExpiredToken
	}
	return ErrInvalidToken
}
