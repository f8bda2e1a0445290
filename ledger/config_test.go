package ledger

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmomarket/marketd/ledger/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[log]
level = "debug"

[db]
driver = "postgres"
host = "db"
port = 5432

[market]
offer_duration = 3600
check_expired_offers_each_minutes = 5
max_offers_per_player = 20

[catalog]
path = "items.yaml"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, cfg.Log.Level)
	assert.Equal(t, "db", cfg.DB.Host)
	assert.Equal(t, time.Hour, cfg.Market.OfferDurationTime())
	assert.Equal(t, 5*time.Minute, cfg.Market.ExpiryCheckInterval())
	assert.Equal(t, time.Duration(config.DefaultStatisticsRefreshMinutes)*time.Minute, cfg.Market.StatisticsRefreshInterval())
	assert.Equal(t, 20, cfg.Market.MaxOffersPerPlayer)
	assert.Equal(t, "items.yaml", cfg.Catalog.Path)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "[db]\ndriver = \"sqlite\"\n"))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultSQLitePath, cfg.DB.Path)
	assert.Equal(t, int64(config.DefaultOfferDuration), cfg.Market.OfferDuration)
	assert.Zero(t, cfg.Market.ExpiryCheckInterval())

	cfg, err = LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, config.DriverPostgres, cfg.DB.Driver)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "[market\n"))
	assert.Error(t, err)
}

func TestWebConfig(t *testing.T) {
	assert.False(t, WebConfig{}.Enabled())

	web := WebConfig{Host: "127.0.0.1", Port: 8088}
	assert.True(t, web.Enabled())
	assert.Equal(t, "127.0.0.1:8088", web.Address())
}
