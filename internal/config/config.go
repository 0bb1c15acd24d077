// Package config loads querydoc settings from a YAML file.
//
//	driver: postgres
//	dsn: "postgres://localhost/app?sslmode=disable"
//	default_schema: public
//	query_timeout: 10s
//	log_level: debug
//
// Every key is optional. CLI flags override file values.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/querydoc/internal/ident"
	"github.com/roach88/querydoc/internal/queryir"
	"github.com/roach88/querydoc/internal/store"
)

// Config holds backend and translation settings.
type Config struct {
	// DefaultSchema qualifies unqualified tables and sequences. Empty means
	// the driver's default: public on postgres, main on sqlite.
	DefaultSchema string `yaml:"default_schema,omitempty"`

	// Driver is sqlite3 or postgres.
	Driver string `yaml:"driver,omitempty"`

	// DSN is a file path for sqlite or a connection string for postgres.
	DSN string `yaml:"dsn,omitempty"`

	// Dialect overrides the SQL dialect derived from Driver. Useful for
	// translating without a database.
	Dialect string `yaml:"dialect,omitempty"`

	// QueryTimeout bounds every backend call.
	QueryTimeout time.Duration `yaml:"query_timeout,omitempty"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level,omitempty"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Driver:       string(store.DriverSQLite),
		QueryTimeout: store.DefaultQueryTimeout,
		LogLevel:     "warn",
	}
}

// Load reads path over the defaults. Unknown keys are rejected so typos
// surface instead of being ignored.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks every set field.
func (c *Config) Validate() error {
	if _, err := store.ParseDriver(c.Driver); err != nil {
		return err
	}
	if c.Dialect != "" {
		if _, ok := queryir.ParseDialect(c.Dialect); !ok {
			return fmt.Errorf("unknown dialect %q: must be postgres or sqlite", c.Dialect)
		}
	}
	if c.DefaultSchema != "" {
		if _, err := ident.ReadPgID(c.DefaultSchema); err != nil {
			return fmt.Errorf("default_schema: %w", err)
		}
	}
	if c.QueryTimeout < 0 {
		return fmt.Errorf("query_timeout must not be negative, got %s", c.QueryTimeout)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// DriverName returns the parsed driver. Call Validate first.
func (c *Config) DriverName() store.Driver {
	d, err := store.ParseDriver(c.Driver)
	if err != nil {
		return store.DriverSQLite
	}
	return d
}

// SQLDialect returns Dialect when set, otherwise the driver's dialect.
func (c *Config) SQLDialect() queryir.Dialect {
	if c.Dialect != "" {
		if d, ok := queryir.ParseDialect(c.Dialect); ok {
			return d
		}
	}
	return c.DriverName().Dialect()
}

// Schema returns DefaultSchema or the driver's default schema.
func (c *Config) Schema() string {
	if c.DefaultSchema != "" {
		return c.DefaultSchema
	}
	return c.DriverName().DefaultSchema()
}

// Level parses LogLevel. Empty means warn.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelWarn, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelWarn, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}
