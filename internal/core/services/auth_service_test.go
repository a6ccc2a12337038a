package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capex-approval/internal/config"
)

func devConfig() *config.Config {
	return &config.Config{
		AppMode: "dev",
		Session: config.SessionConfig{
			Secret:      config.DevSessionSecret,
			LifetimeHrs: 24,
		},
	}
}

func TestTempLoginSelectsByEmail(t *testing.T) {
	svc := NewAuthService(nil, devConfig())

	resp, err := svc.TempLogin("admin@company.com", "")
	require.NoError(t, err)

	assert.True(t, resp.IsTempLogin)
	assert.Equal(t, "temp-admin-001", resp.User.ID)
	assert.Equal(t, "IT Manager", resp.User.Name)
	assert.True(t, resp.User.IsAdmin)
	assert.True(t, resp.User.IsTempUser)
	assert.NotEmpty(t, resp.Token)
}

func TestTempLoginSelectsByRole(t *testing.T) {
	svc := NewAuthService(nil, devConfig())

	resp, err := svc.TempLogin("whoever@example.com", "admin")
	require.NoError(t, err)
	assert.Equal(t, "temp-admin-001", resp.User.ID)
}

func TestTempLoginDefaultsToUser(t *testing.T) {
	svc := NewAuthService(nil, devConfig())

	resp, err := svc.TempLogin("", "")
	require.NoError(t, err)
	assert.Equal(t, "temp-user-001", resp.User.ID)
	assert.False(t, resp.User.IsAdmin)
}

func TestTempLoginBlockedInProd(t *testing.T) {
	cfg := devConfig()
	cfg.AppMode = "prod"
	svc := NewAuthService(nil, cfg)

	_, err := svc.TempLogin("admin@company.com", "")
	assert.ErrorIs(t, err, ErrTempLoginClosed)
}

func TestVerifyRoundTrip(t *testing.T) {
	svc := NewAuthService(nil, devConfig())

	resp, err := svc.TempLogin("admin@company.com", "")
	require.NoError(t, err)

	user, err := svc.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, user.ID)
	assert.Equal(t, resp.User.Email, user.Email)
	assert.True(t, user.IsAdmin)
	assert.True(t, user.IsTempUser)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc := NewAuthService(nil, devConfig())

	_, err := svc.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewAuthService(nil, devConfig())
	resp, err := issuer.TempLogin("user@company.com", "")
	require.NoError(t, err)

	other := devConfig()
	other.Session.Secret = "a-completely-different-secret"
	verifier := NewAuthService(nil, other)

	_, err = verifier.Verify(resp.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
