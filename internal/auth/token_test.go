package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/escalation-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 15)
	token, err := tm.GenerateToken("user-42", domain.RoleCoordinator)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, token.ExpiresAt.Sub(token.IssuedAt))

	claims, err := tm.ParseToken(token.Value)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.Subject)
	assert.Equal(t, domain.RoleCoordinator, claims.Role)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret", 15).GenerateToken("user-42", domain.RoleAdmin)
	require.NoError(t, err)

	_, err = NewTokenManager("other", 15).ParseToken(token.Value)
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	tm := NewTokenManager("secret", 1)
	tm.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := tm.GenerateToken("user-42", domain.RoleAdmin)
	require.NoError(t, err)

	_, err = tm.ParseToken(token.Value)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseTokenRejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{Role: domain.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewTokenManager("secret", 15).ParseToken(raw)
	assert.Error(t, err)
}
