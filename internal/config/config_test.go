package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "data/riftbound.db", cfg.Database.Path)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, CatalogFile, cfg.Catalog.Source)
	assert.Equal(t, 2048, cfg.Catalog.CacheSize)
	assert.Equal(t, time.Hour, cfg.Catalog.CacheTTL)
	assert.False(t, cfg.Catalog.Watch)
	assert.Zero(t, cfg.Match.Seed)
	assert.Empty(t, cfg.Runes.Table)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
  format: json
database:
  driver: postgres
  url: postgres://riftbound@localhost/riftbound
  max_conns: 4
catalog:
  source: postgres
  cache_ttl: 10m
match:
  seed: 1234
  record_replays: true
  replay_dir: /tmp/replays
runes:
  table:
    Fury: OGN-001
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, int32(4), cfg.Database.MaxConns)
	assert.Equal(t, CatalogPostgres, cfg.Catalog.Source)
	assert.Equal(t, 10*time.Minute, cfg.Catalog.CacheTTL)
	assert.Equal(t, int64(1234), cfg.Match.Seed)
	assert.True(t, cfg.Match.RecordReplays)
	// viper lower-cases map keys
	assert.Equal(t, "OGN-001", cfg.Runes.Table["fury"])
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("RIFTBOUND_LOGGING_LEVEL", "warn")
	t.Setenv("RIFTBOUND_MATCH_SEED", "99")
	t.Setenv("RIFTBOUND_DATABASE_PATH", "/var/lib/riftbound.db")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, int64(99), cfg.Match.Seed)
	assert.Equal(t, "/var/lib/riftbound.db", cfg.Database.Path)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"postgres without url", "database:\n  driver: postgres\n", "database.url"},
		{"unknown driver", "database:\n  driver: mysql\n", "unknown database.driver"},
		{"postgres catalog on sqlite", "catalog:\n  source: postgres\n", "requires database.driver postgres"},
		{"unknown source", "catalog:\n  source: http\n", "unknown catalog.source"},
		{"replays without dir", "match:\n  record_replays: true\n  replay_dir: \"\"\n", "match.replay_dir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
