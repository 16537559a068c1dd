package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
environment: test
server:
  port: 8080
  read_timeout: 10s
  write_timeout: 10s
  shutdown_timeout: 10s
logging:
  level: error
  format: json
  output: stderr
quotes:
  watchlist: [TSLA, NVDA]
  interval: 1min
  timeout: 5s
  cache_ttl: 15s
journal:
  path: data/signal_log.json
  max_entries: 1000
scanner:
  enabled: true
  interval: 1m
backend:
  type: clickhouse
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))

	require.NoError(t, err)
	assert.Equal(t, "test", cfg.Environment)
	assert.Equal(t, []string{"TSLA", "NVDA"}, cfg.Quotes.Watchlist)
	assert.Equal(t, 5*time.Second, cfg.Quotes.Timeout)
	assert.Equal(t, time.Minute, cfg.Scanner.Interval)
	assert.Equal(t, "clickhouse", cfg.Backend.Type)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	body := `
environment: test
quotes:
  watchlist: [TSLA]
  timeout: 5s
journal:
  path: data/signal_log.json
backend:
  type: postgres
`
	_, err := Load(writeConfig(t, body))
	assert.ErrorContains(t, err, "backend.type")
}

func TestLoadRejectsEmptyWatchlist(t *testing.T) {
	body := `
environment: test
quotes:
  timeout: 5s
journal:
  path: data/signal_log.json
backend:
  type: kafka
`
	_, err := Load(writeConfig(t, body))
	assert.ErrorContains(t, err, "watchlist")
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("WATCHLIST", "AMD,PLTR")
	t.Setenv("BACKEND", "kafka")
	t.Setenv("ALPHAVANTAGE_API_KEY", "demo")

	cfg, err := LoadWithEnv(writeConfig(t, validYAML))

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"AMD", "PLTR"}, cfg.Quotes.Watchlist)
	assert.Equal(t, "kafka", cfg.Backend.Type)
	assert.Equal(t, "demo", cfg.Quotes.AlphaVantage.APIKey)
}
