package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "freight_quotes", cfg.Database.Name)
	assert.Equal(t, "6000", cfg.Engine.DefaultVolumetricFactor.String())
	assert.Equal(t, 3*time.Second, cfg.Engine.RateLockWait)
	assert.False(t, cfg.Redis.Enabled)
	assert.Contains(t, cfg.Database.DSN(), "dbname=freight_quotes")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_NAME", "freight_staging")
	t.Setenv("ENGINE_VOLUMETRIC_FACTOR", "5000")
	t.Setenv("ENGINE_RATE_LOCK_WAIT", "500ms")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "freight_staging", cfg.Database.Name)
	assert.Equal(t, "5000", cfg.Engine.DefaultVolumetricFactor.String())
	assert.Equal(t, 500*time.Millisecond, cfg.Engine.RateLockWait)
}

func TestLoadRejectsBadVolumetricFactor(t *testing.T) {
	t.Setenv("ENGINE_VOLUMETRIC_FACTOR", "-6000")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Engine.RateLockWait = 0
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = ""
	assert.Error(t, cfg.Validate())
}
