package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the payload of a signed session cookie. The session id travels in the jti claim.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// SessionSigner signs and verifies session cookie values
type SessionSigner struct {
	secretKey string
}

// NewSessionSigner creates a new SessionSigner
func NewSessionSigner(secretKey string) *SessionSigner {
	return &SessionSigner{secretKey: secretKey}
}

// Sign returns the cookie value binding sessionID until expiresAt
func (s *SessionSigner) Sign(sessionID string, expiresAt time.Time) (string, error) {
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign session cookie: %w", err)
	}
	return tokenString, nil
}

// Verify checks the signature and expiry of a cookie value and returns the session id
func (s *SessionSigner) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return "", fmt.Errorf("failed to parse session cookie: %w", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.ID == "" {
		return "", fmt.Errorf("invalid session cookie")
	}
	return claims.ID, nil
}
