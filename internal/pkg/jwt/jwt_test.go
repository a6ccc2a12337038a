package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-signing-key"

func TestSessionTokenRoundTrip(t *testing.T) {
	token, err := GenerateSessionToken("user-001", "user@company.com", "General User", false, false, testSecret, 24)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateSessionToken(token, testSecret)
	require.NoError(t, err)

	assert.Equal(t, "user-001", claims.UserID)
	assert.Equal(t, "user@company.com", claims.Email)
	assert.Equal(t, "General User", claims.Name)
	assert.False(t, claims.IsAdmin)
	assert.False(t, claims.IsTempUser)
}

func TestSessionTokenAdminClaims(t *testing.T) {
	token, err := GenerateSessionToken("admin-001", "admin@company.com", "IT Manager", true, true, testSecret, 24)
	require.NoError(t, err)

	claims, err := ValidateSessionToken(token, testSecret)
	require.NoError(t, err)

	assert.True(t, claims.IsAdmin)
	assert.True(t, claims.IsTempUser)
}

func TestSessionTokenExpired(t *testing.T) {
	// negative lifetime puts the expiry in the past
	token, err := GenerateSessionToken("user-001", "user@company.com", "User", false, false, testSecret, -1)
	require.NoError(t, err)

	_, err = ValidateSessionToken(token, testSecret)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestSessionTokenWrongSecret(t *testing.T) {
	token, err := GenerateSessionToken("user-001", "user@company.com", "User", false, false, testSecret, 24)
	require.NoError(t, err)

	_, err = ValidateSessionToken(token, "a-different-secret")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestSessionTokenGarbage(t *testing.T) {
	_, err := ValidateSessionToken("not.a.token", testSecret)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
