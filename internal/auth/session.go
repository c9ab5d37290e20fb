package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ynl8015/LinguaLetter-sub000/internal/domain"
	apperrors "github.com/ynl8015/LinguaLetter-sub000/pkg/errors"
)

// Claims are the session token claims.
type Claims struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Picture  string `json:"picture,omitempty"`
	Provider string `json:"provider"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenID returns the revocation denylist key for these claims.
func (c *Claims) TokenID() string {
	return domain.TokenID(c.UserID, c.IssuedAt.Time)
}

// SessionManager issues and validates signed session tokens.
type SessionManager struct {
	secret []byte
	expiry time.Duration
	issuer string
	now    func() time.Time
}

// NewSessionManager creates a manager signing HS256 tokens with the given
// lifetime.
func NewSessionManager(secret string, expiry time.Duration) *SessionManager {
	return &SessionManager{
		secret: []byte(secret),
		expiry: expiry,
		issuer: "lingualetter",
		now:    time.Now,
	}
}

// WithClock overrides the time source. Tests use it to simulate expiry.
func (m *SessionManager) WithClock(now func() time.Time) *SessionManager {
	m.now = now
	return m
}

// Issue creates a signed session token for the user who just authenticated
// via provider.
func (m *SessionManager) Issue(user *domain.User, provider string) (string, error) {
	now := m.now().UTC()
	claims := &Claims{
		UserID:   user.ID,
		Email:    user.Email,
		Name:     user.Name,
		Picture:  user.PictureURL,
		Provider: provider,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
			Issuer:    m.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Validate parses the token and verifies signature and expiry. Revocation is
// checked separately by the caller.
func (m *SessionManager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired session token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperrors.Unauthorized("invalid session token claims")
	}
	return claims, nil
}

// ParseUnverified extracts claims without checking expiry, verifying only
// the signature. Revocation needs this: a token presented for logout moments
// before its natural expiry must still be parseable.
func (m *SessionManager) ParseUnverified(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, fmt.Errorf("parse session token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, fmt.Errorf("invalid session token claims")
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil || claims.UserID == "" {
		return nil, fmt.Errorf("session token missing required claims")
	}
	return claims, nil
}
