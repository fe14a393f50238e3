package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", "token")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "token", cfg.BotToken)
	assert.Equal(t, "meatball.db", cfg.DatabasePath)
	assert.Equal(t, 10*time.Second, cfg.ReconcileInterval)
	assert.Equal(t, 24*time.Hour, cfg.GrantRetention)
	assert.Empty(t, cfg.TestingGuildID)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("DATABASE_PATH", "/tmp/test.db")
	t.Setenv("RECONCILE_INTERVAL", "24h")
	t.Setenv("GRANT_RETENTION", "6h")
	t.Setenv("TESTING_GUILD", "100200300400500600")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/test.db", cfg.DatabasePath)
	assert.Equal(t, 24*time.Hour, cfg.ReconcileInterval)
	assert.Equal(t, 6*time.Hour, cfg.GrantRetention)
	assert.Equal(t, "100200300400500600", cfg.TestingGuildID)
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadDurations(t *testing.T) {
	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("RECONCILE_INTERVAL", "not-a-duration")

	_, err := Load()
	assert.Error(t, err)
}
