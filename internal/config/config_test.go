package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultsAndEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "jwt-secret")
	t.Setenv("TICKET_HASH_SECRET", "hash-secret")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("EVENT_CACHE_TTL", "1m")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "postgres", cfg.StoreDriver)
	assert.Equal(t, 6543, cfg.DBPort)
	assert.Equal(t, time.Minute, cfg.EventCacheTTL)
	assert.Equal(t, 5, cfg.TxMaxAttempt)
	assert.Equal(t, "usd", cfg.Currency)
}

func TestLoadConfig_RequiresSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("TICKET_HASH_SECRET", "")

	_, err := LoadConfig(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "TICKET_HASH_SECRET")
}
