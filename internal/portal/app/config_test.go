package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigRequiresBackend(t *testing.T) {
	t.Setenv("BILLYBUDDY_BACKEND_URL", "")
	t.Setenv("BILLYBUDDY_BACKEND_KEY", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BILLYBUDDY_BACKEND_URL")
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("BILLYBUDDY_BACKEND_URL", "http://clinic:8080")
	t.Setenv("BILLYBUDDY_BACKEND_KEY", "key")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://clinic:8080", cfg.BackendURL)
	assert.True(t, cfg.ForcePasswordChange)
	assert.Equal(t, 5*time.Second, cfg.ProfileTimeout)
	assert.Equal(t, 5*time.Second, cfg.InitTimeout)
	assert.Equal(t, 30*time.Minute, cfg.VisitorIdleTTL)
	assert.Equal(t, 8081, cfg.Port)
	assert.Empty(t, cfg.Redis.URL)
	assert.Equal(t, 168*time.Hour, cfg.Redis.TTL)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("BILLYBUDDY_BACKEND_URL", "http://clinic:8080")
	t.Setenv("BILLYBUDDY_BACKEND_KEY", "key")
	t.Setenv("PORTAL_FORCE_PASSWORD_CHANGE", "false")
	t.Setenv("PORTAL_PROFILE_TIMEOUT", "250ms")
	t.Setenv("REDIS_URL", "redis://localhost:6379/1")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.False(t, cfg.ForcePasswordChange)
	assert.Equal(t, 250*time.Millisecond, cfg.ProfileTimeout)
	assert.Equal(t, "redis://localhost:6379/1", cfg.Redis.URL)

	cc := cfg.controllerConfig()
	assert.False(t, cc.ForcePasswordChange)
	assert.Equal(t, 250*time.Millisecond, cc.ProfileTimeout)
}
