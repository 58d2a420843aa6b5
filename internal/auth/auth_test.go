package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotContains(t, hash, "correct horse")

	assert.True(t, CheckPasswordHash("correct horse battery staple", hash))
	assert.False(t, CheckPasswordHash("wrong password", hash))
	assert.False(t, CheckPasswordHash("", hash))
}

func TestHashesAreSalted(t *testing.T) {
	first, err := HashPassword("same password")
	require.NoError(t, err)
	second, err := HashPassword("same password")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestCheckPasswordHashRejectsGarbage(t *testing.T) {
	assert.False(t, CheckPasswordHash("anything", "not-a-modular-crypt-string"))
	assert.False(t, CheckPasswordHash("anything", ""))
}

func TestJWTRoundTrip(t *testing.T) {
	secret := "test-secret"

	token, err := GenerateJWT("0b906e8a-8d3c-4a1e-9c0f-7f31c1e9dc55", true, secret)
	require.NoError(t, err)

	claims, err := ValidateJWT(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "0b906e8a-8d3c-4a1e-9c0f-7f31c1e9dc55", claims.UserID)
	assert.True(t, claims.IsAdmin)
}

func TestJWTWrongSecretRejected(t *testing.T) {
	token, err := GenerateJWT("0b906e8a-8d3c-4a1e-9c0f-7f31c1e9dc55", false, "secret-a")
	require.NoError(t, err)

	_, err = ValidateJWT(token, "secret-b")
	assert.Error(t, err)
}

func TestJWTGarbageRejected(t *testing.T) {
	_, err := ValidateJWT("definitely.not.ajwt", "secret")
	assert.Error(t, err)
}
