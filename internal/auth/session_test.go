package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, method jwt.SigningMethod, secret string, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	return token
}

func TestSessionVerifier_VerifyToken(t *testing.T) {
	verifier, err := NewSessionVerifier("secret")
	require.NoError(t, err)

	token := signToken(t, jwt.SigningMethodHS256, "secret", jwt.MapClaims{"sub": "user_123"})

	principalID, err := verifier.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user_123", principalID)
}

func TestSessionVerifier_VerifyToken_Rejections(t *testing.T) {
	verifier, err := NewSessionVerifier("secret")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{
			name:  "wrong secret",
			token: signToken(t, jwt.SigningMethodHS256, "other-secret", jwt.MapClaims{"sub": "user_123"}),
		},
		{
			name:  "wrong signing method",
			token: signToken(t, jwt.SigningMethodHS384, "secret", jwt.MapClaims{"sub": "user_123"}),
		},
		{
			name:  "missing subject",
			token: signToken(t, jwt.SigningMethodHS256, "secret", jwt.MapClaims{"iss": "droply"}),
		},
		{
			name:  "garbage",
			token: "not.a.token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := verifier.VerifyToken(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestNewSessionVerifier_RequiresSecret(t *testing.T) {
	_, err := NewSessionVerifier("")
	assert.Error(t, err)
}
