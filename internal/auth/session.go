package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// SessionVerifier validates session tokens minted by the identity provider
// and extracts the authenticated principal.
type SessionVerifier struct {
	secret []byte
}

// NewSessionVerifier creates a verifier for HS256 session tokens signed with
// the given shared secret.
func NewSessionVerifier(secret string) (*SessionVerifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("session secret is required")
	}

	return &SessionVerifier{secret: []byte(secret)}, nil
}

// VerifyToken parses and validates a session token and returns the principal
// id carried in its subject claim.
func (v *SessionVerifier) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", fmt.Errorf("failed to parse session token: %w", err)
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", fmt.Errorf("session token has no subject")
	}

	return subject, nil
}
