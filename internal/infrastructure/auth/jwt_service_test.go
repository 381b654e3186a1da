package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ranjith-devop/smart-medication/domain"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", "smart-medication-test", time.Hour)

	token, err := svc.Generate("66f0c1d2a3b4c5d6e7f80910", domain.RoleDoctor)
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "66f0c1d2a3b4c5d6e7f80910", claims.UserID)
	assert.Equal(t, domain.RoleDoctor, claims.Role)
	assert.Greater(t, claims.ExpiresAt, claims.IssuedAt)
}

func TestJWTService_TokensAreUnique(t *testing.T) {
	svc := NewJWTService("test-secret", "smart-medication-test", time.Hour)

	a, err := svc.Generate("user1", domain.RolePatient)
	require.NoError(t, err)
	b, err := svc.Generate("user1", domain.RolePatient)
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "expected distinct jti per token")
}

func TestJWTService_Expired(t *testing.T) {
	svc := NewJWTService("test-secret", "smart-medication-test", -time.Minute)

	token, err := svc.Generate("user1", domain.RolePatient)
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestJWTService_WrongSecret(t *testing.T) {
	issuer := NewJWTService("secret-a", "smart-medication-test", time.Hour)
	verifier := NewJWTService("secret-b", "smart-medication-test", time.Hour)

	token, err := issuer.Generate("user1", domain.RolePatient)
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestJWTService_Garbage(t *testing.T) {
	svc := NewJWTService("test-secret", "smart-medication-test", time.Hour)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		_, err := svc.Validate(token)
		assert.ErrorIs(t, err, domain.ErrTokenInvalid, "token %q", token)
	}
}
