// Package token issues and validates admin access tokens.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "parishbook/pkg/domain-errors"
)

// Claims represents the JWT claims for admin access tokens.
type Claims struct {
	AdminID  string `json:"admin_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Manager handles JWT creation and validation.
type Manager struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
}

func NewManager(signingKey string, ttl time.Duration) *Manager {
	return &Manager{
		signingKey: []byte(signingKey),
		issuer:     "parishbook",
		ttl:        ttl,
	}
}

// Issue signs a token for the given admin.
func (m *Manager) Issue(adminID uuid.UUID, username string) (string, error) {
	now := time.Now()
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		AdminID:  adminID.String(),
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			ID:        uuid.NewString(),
		},
	})
	return newToken.SignedString(m.signingKey)
}

// Validate parses a token and returns the admin it identifies.
func (m *Manager) Validate(tokenString string) (uuid.UUID, string, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return m.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, "", dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return uuid.Nil, "", dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return uuid.Nil, "", dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	adminID, err := uuid.Parse(claims.AdminID)
	if err != nil {
		return uuid.Nil, "", dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return adminID, claims.Username, nil
}
