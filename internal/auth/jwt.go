// Package auth issues and verifies the bearer tokens that protect the API,
// and hashes the operator account password.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// issuer identifies tokens minted by this service.
const issuer = "autolote"

// Claims is the JWT payload carried by every authenticated request.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Manager signs and verifies HS256 tokens with a fixed secret and TTL.
// It is constructed once at startup and safe for concurrent use.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager returns a Manager. ttl is how long issued tokens stay valid.
func NewManager(secret []byte, ttl time.Duration) (*Manager, error) {
	if len(secret) == 0 {
		return nil, errors.New("auth: empty JWT secret")
	}
	if ttl <= 0 {
		return nil, errors.New("auth: non-positive token TTL")
	}
	return &Manager{secret: secret, ttl: ttl}, nil
}

// Issue mints a signed token for the given user.
func (m *Manager) Issue(userID uuid.UUID, username string) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("auth.Manager.Issue: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token string, returning its claims.
// Rejects tokens signed with a different method, an unknown secret, a
// different issuer, or an expired validity window.
func (m *Manager) Verify(tokenStr string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenStr, &claims,
		func(t *jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("auth.Manager.Verify: %w", err)
	}
	return claims, nil
}
