package testsupport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setIntegrationEnv(t *testing.T) {
	t.Helper()
	t.Setenv("POSTGRES_HOST", "localhost")
	t.Setenv("POSTGRES_USER", "insideredge")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "earnings")
	t.Setenv("CLICKHOUSE_HOST", "click")
	t.Setenv("CLICKHOUSE_DB", "options")
	t.Setenv("REDIS_HOST", "redis")
}

func TestLoadDatabaseConfigsFromEnv(t *testing.T) {
	setIntegrationEnv(t)
	t.Setenv("POSTGRES_PORT", "5543")
	t.Setenv("CLICKHOUSE_PORT", "9440")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_DB", "2")

	cfg := LoadDatabaseConfigsFromEnv(t)

	assert.Equal(t, "localhost", cfg.Postgres.Host)
	assert.Equal(t, 5543, cfg.Postgres.Port)
	assert.Equal(t, "disable", cfg.Postgres.SSLMode)
	assert.Equal(t, "click", cfg.ClickHouse.Host)
	assert.Equal(t, 9440, cfg.ClickHouse.Port)
	assert.Equal(t, "default", cfg.ClickHouse.User)
	assert.Equal(t, "options", cfg.ClickHouse.Database)
	assert.Equal(t, 6380, cfg.Redis.Port)
	assert.Equal(t, 2, cfg.Redis.DB)
}

func TestLoadDatabaseConfigsFromEnv_Defaults(t *testing.T) {
	setIntegrationEnv(t)
	t.Setenv("POSTGRES_PORT", "not-a-port")
	t.Setenv("REDIS_DB", "")

	cfg := LoadDatabaseConfigsFromEnv(t)

	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.Equal(t, 9000, cfg.ClickHouse.Port)
	assert.Equal(t, 0, cfg.Redis.DB)
}

func TestLoadDatabaseConfigsFromEnv_SkipsWhenIncomplete(t *testing.T) {
	setIntegrationEnv(t)
	t.Setenv("CLICKHOUSE_DB", "")
	t.Setenv("REDIS_HOST", "")

	assert.Equal(t, []string{"CLICKHOUSE_DB", "REDIS_HOST"}, missingEnv())

	var sub *testing.T
	t.Run("integration", func(t *testing.T) {
		sub = t
		LoadDatabaseConfigsFromEnv(t)
		t.Error("expected the helper to skip")
	})
	require.NotNil(t, sub)
	assert.True(t, sub.Skipped())
}
