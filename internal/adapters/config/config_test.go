package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("POSTGRES_HOST", "localhost")
	t.Setenv("POSTGRES_USER", "edge")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "edge")
	t.Setenv("CLICKHOUSE_HOST", "localhost")
	t.Setenv("REDIS_HOST", "localhost")
}

func TestLoadAnalyticsDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	a := cfg.Analytics
	assert.Equal(t, 100000.0, a.MinClusterPremium)
	assert.Equal(t, 20000.0, a.MinRowPremium)
	assert.Equal(t, 72*time.Hour, a.AlertLookback)
	assert.Equal(t, 500, a.AlertLimit)
	assert.Equal(t, 30*24*time.Hour, a.DarkPoolWindow)
	assert.Equal(t, 24*time.Hour, a.CacheTTL)
	assert.NotEmpty(t, a.Tickers)
	assert.False(t, cfg.Telegram.Enabled())
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("ANALYTICS_MIN_CLUSTER_PREMIUM", "250000")
	t.Setenv("ANALYTICS_TICKERS", "AMD,MSFT")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_ALERT_CHAT_IDS", "1,2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 250000.0, cfg.Analytics.MinClusterPremium)
	assert.Equal(t, []string{"AMD", "MSFT"}, cfg.Analytics.Tickers)
	assert.Equal(t, []int64{1, 2}, cfg.Telegram.ChatIDs)
	assert.True(t, cfg.Telegram.Enabled())
}

func TestLoadMissingRequired(t *testing.T) {
	for _, key := range []string{"POSTGRES_HOST", "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB", "CLICKHOUSE_HOST", "REDIS_HOST"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	_, err := Load()
	assert.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	c := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=d sslmode=disable", c.DSN())
}
