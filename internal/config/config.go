// Package config loads runtime configuration from a YAML file and
// RIFTBOUND_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "RIFTBOUND"

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Catalog sources.
const (
	CatalogPostgres = "postgres"
	CatalogFile     = "file"
)

// Config is the full runtime configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Match    MatchConfig    `mapstructure:"match"`
	Runes    RunesConfig    `mapstructure:"runes"`
}

// LoggingConfig selects the log level and encoder.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json or console
}

// DatabaseConfig configures the deck store.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	URL             string        `mapstructure:"url"`  // postgres connection string
	Path            string        `mapstructure:"path"` // sqlite file, or ":memory:"
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	BusyTimeout     time.Duration `mapstructure:"busy_timeout"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// CatalogConfig configures the card catalog gateway.
type CatalogConfig struct {
	Source    string        `mapstructure:"source"`
	File      string        `mapstructure:"file"`
	CacheSize int           `mapstructure:"cache_size"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
	Watch     bool          `mapstructure:"watch"` // reload the file source on change
}

// MatchConfig configures sessions.
type MatchConfig struct {
	Seed          int64  `mapstructure:"seed"` // 0 picks a random seed per session
	RecordReplays bool   `mapstructure:"record_replays"`
	ReplayDir     string `mapstructure:"replay_dir"`
}

// RunesConfig overrides the color to rune base id table.
type RunesConfig struct {
	Table map[string]string `mapstructure:"table"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.url", "")
	v.SetDefault("database.path", "data/riftbound.db")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", time.Hour)
	v.SetDefault("database.busy_timeout", 5*time.Second)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("catalog.source", CatalogFile)
	v.SetDefault("catalog.file", "data/cards.json")
	v.SetDefault("catalog.cache_size", 2048)
	v.SetDefault("catalog.cache_ttl", time.Hour)
	v.SetDefault("catalog.watch", false)

	v.SetDefault("match.seed", 0)
	v.SetDefault("match.record_replays", false)
	v.SetDefault("match.replay_dir", "data/replays")
}

// Load reads the configuration at path. A missing file is not an error when
// path is empty; defaults and environment variables still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Validate checks field combinations that defaults cannot fix.
func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.URL == "" {
			errs = append(errs, errors.New("database.url is required for the postgres driver"))
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			errs = append(errs, errors.New("database.path is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown database.driver %q", c.Database.Driver))
	}

	switch c.Catalog.Source {
	case CatalogPostgres:
		if c.Database.Driver != DriverPostgres {
			errs = append(errs, errors.New("catalog.source postgres requires database.driver postgres"))
		}
	case CatalogFile:
		if c.Catalog.File == "" {
			errs = append(errs, errors.New("catalog.file is required for the file source"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown catalog.source %q", c.Catalog.Source))
	}

	if c.Catalog.CacheSize < 0 {
		errs = append(errs, errors.New("catalog.cache_size must not be negative"))
	}
	if c.Match.RecordReplays && c.Match.ReplayDir == "" {
		errs = append(errs, errors.New("match.replay_dir is required when record_replays is set"))
	}

	return errors.Join(errs...)
}
