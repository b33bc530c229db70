package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDoesNotInjectWeakAuthDefaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.AuthSecret)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("DASHBOARD_CACHE_TTL_SECONDS", "0")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("DATABASE_AUTO_MIGRATE", "false")
	t.Setenv("AUTH_SECRET", "  padded-secret  ")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Address())
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 30*time.Second, cfg.DashboardCacheTTL())
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Brokers())
	assert.False(t, cfg.DatabaseAutoMigrate)
	assert.Equal(t, "padded-secret", cfg.AuthSecret)
	assert.Equal(t, "main-store", cfg.DefaultLocationID)
}

func TestProductionFlag(t *testing.T) {
	assert.True(t, Config{Env: "Production"}.IsProduction())
	assert.False(t, Config{Env: "development"}.IsProduction())
}
