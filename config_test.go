package identity_test

import (
	"testing"
	"time"

	"github.com/goliatone/go-identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	t.Run("a complete config validates", func(t *testing.T) {
		assert.NoError(t, testConfig().Validate())
	})

	t.Run("short signing keys are a startup error", func(t *testing.T) {
		cfg := testConfig()
		cfg.SigningKey = "too-short"

		assert.Error(t, cfg.Validate())
	})

	t.Run("issuer and audience are required", func(t *testing.T) {
		cfg := testConfig()
		cfg.Issuer = ""
		assert.Error(t, cfg.Validate())

		cfg = testConfig()
		cfg.Audience = nil
		assert.Error(t, cfg.Validate())
	})

	t.Run("token expiration must be positive", func(t *testing.T) {
		cfg := testConfig()
		cfg.TokenExpiration = 0

		assert.Error(t, cfg.Validate())
	})

	t.Run("max login attempts must be positive", func(t *testing.T) {
		cfg := testConfig()
		cfg.MaxLoginAttempts = 0

		assert.Error(t, cfg.Validate())
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("reads settings from the environment", func(t *testing.T) {
		t.Setenv("IDENTITY_SIGNING_KEY", "0123456789abcdef0123456789abcdef")
		t.Setenv("IDENTITY_ISSUER", "identity-test")
		t.Setenv("IDENTITY_AUDIENCE", "api,admin")
		t.Setenv("IDENTITY_LOCKOUT_DURATION", "30m")

		cfg, err := identity.LoadConfig()

		require.NoError(t, err)
		assert.Equal(t, "identity-test", cfg.Issuer)
		assert.Equal(t, []string{"api", "admin"}, cfg.Audience)
		assert.Equal(t, identity.DefaultTokenExpiration, cfg.TokenExpiration)
		assert.Equal(t, 5, cfg.MaxLoginAttempts)
		assert.Equal(t, 30*time.Minute, cfg.LockoutDuration)
		assert.Equal(t, identity.DefaultEventBuffer, cfg.EventBuffer)
	})

	t.Run("missing signing key fails at startup", func(t *testing.T) {
		t.Setenv("IDENTITY_SIGNING_KEY", "")
		t.Setenv("IDENTITY_ISSUER", "identity-test")
		t.Setenv("IDENTITY_AUDIENCE", "api")

		_, err := identity.LoadConfig()

		assert.Error(t, err)
	})
}

func TestConfigLockoutPolicy(t *testing.T) {
	cfg := testConfig()
	cfg.MaxLoginAttempts = 3
	cfg.LockoutDuration = time.Hour

	policy := cfg.LockoutPolicy()

	assert.Equal(t, 3, policy.MaxAttempts)
	assert.Equal(t, time.Hour, policy.LockoutDuration)
}
