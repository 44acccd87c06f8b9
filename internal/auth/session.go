package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidSession is returned for tampered, expired or malformed tokens.
var ErrInvalidSession = errors.New("invalid or expired session")

// SessionManager issues and validates the signed session tokens persisted
// in the meta collection after a successful passkey verification.
type SessionManager struct {
	secretKey []byte
	ttl       time.Duration
}

// Claims are the session token claims for a verified profile.
type Claims struct {
	ProfileID string `json:"profile_id"`
	jwt.RegisteredClaims
}

// NewSessionManager creates a session manager. secretKey should be a strong
// random value; ttl is how long an issued session stays valid.
func NewSessionManager(secretKey string, ttl time.Duration) *SessionManager {
	return &SessionManager{
		secretKey: []byte(secretKey),
		ttl:       ttl,
	}
}

// Issue creates a signed session token for the given profile.
func (m *SessionManager) Issue(profileID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		ProfileID: profileID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a session token, returning the profile ID it
// was issued for.
func (m *SessionManager) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ProfileID == "" {
		return "", ErrInvalidSession
	}
	return claims.ProfileID, nil
}
