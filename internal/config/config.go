// Package config holds the startup configuration of herocheck.
//
// Configuration is read once from the environment and then overridden by
// command-line flags. The resulting Config is passed explicitly to every
// component; nothing reads the environment after startup.
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-sql-driver/mysql"
	"github.com/spf13/pflag"

	"github.com/roach88/herocheck/internal/mode"
)

// Supported database drivers.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
)

// Config holds herocheck configuration.
type Config struct {
	BaseURL          string        `env:"HEROCHECK_BASE_URL"  envDefault:"http://localhost:9997"`
	UseMockAPI       bool          `env:"USE_MOCK_API"`
	AllowAPIFallback bool          `env:"ALLOW_API_FALLBACK"`
	UseMockDB        bool          `env:"USE_MOCK_DB"`
	AllowDBFallback  bool          `env:"ALLOW_DB_FALLBACK"`
	HTTPTimeout      time.Duration `env:"HTTP_TIMEOUT"        envDefault:"10s"`
	DB               DBConfig
}

// DBConfig holds the live database connection settings.
type DBConfig struct {
	Driver         string        `env:"DB_DRIVER"          envDefault:"mysql"`
	Host           string        `env:"DB_HOST"            envDefault:"localhost"`
	Port           int           `env:"DB_PORT"            envDefault:"3306"`
	User           string        `env:"DB_USER"            envDefault:"user"`
	Password       string        `env:"DB_PASSWORD"        envDefault:"userpassword"`
	Name           string        `env:"DB_NAME"            envDefault:"testdb"`
	Path           string        `env:"DB_PATH"            envDefault:"herocheck.db"`
	ConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"10s"`
}

// Load parses configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFrom parses configuration from the given variables instead of the
// process environment. Used by tests.
func LoadFrom(vars map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// BindFlags registers flags on fs that override the values already in cfg.
// Call after Load and before fs is parsed.
func (cfg *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "hero API base URL")
	fs.BoolVar(&cfg.UseMockAPI, "mock-api", cfg.UseMockAPI, "simulate the hero API")
	fs.BoolVar(&cfg.AllowAPIFallback, "api-fallback", cfg.AllowAPIFallback, "fall back to the simulated API when the live API is unreachable")
	fs.BoolVar(&cfg.UseMockDB, "mock-db", cfg.UseMockDB, "simulate the database")
	fs.BoolVar(&cfg.AllowDBFallback, "db-fallback", cfg.AllowDBFallback, "fall back to the simulated database when the live database is unreachable")
	fs.DurationVar(&cfg.HTTPTimeout, "http-timeout", cfg.HTTPTimeout, "timeout per API request")
	fs.StringVar(&cfg.DB.Driver, "db-driver", cfg.DB.Driver, "database driver (mysql|sqlite3)")
	fs.StringVar(&cfg.DB.Path, "db-path", cfg.DB.Path, "sqlite database file")
}

// Validate checks values env parsing cannot.
func (cfg Config) Validate() error {
	switch cfg.DB.Driver {
	case DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("invalid DB_DRIVER %q: must be %s or %s", cfg.DB.Driver, DriverMySQL, DriverSQLite)
	}
	if cfg.HTTPTimeout <= 0 {
		return fmt.Errorf("invalid HTTP_TIMEOUT %s: must be positive", cfg.HTTPTimeout)
	}
	return nil
}

// APIMode returns the mode configuration of the hero API surface.
func (cfg Config) APIMode() mode.Config {
	return mode.Config{Simulate: cfg.UseMockAPI, AllowFallback: cfg.AllowAPIFallback}
}

// DBMode returns the mode configuration of the database surface.
func (cfg Config) DBMode() mode.Config {
	return mode.Config{Simulate: cfg.UseMockDB, AllowFallback: cfg.AllowDBFallback}
}

// DSN builds the data source name for the configured driver.
func (c DBConfig) DSN() string {
	if c.Driver == DriverSQLite {
		return "file:" + c.Path + "?_foreign_keys=on&_busy_timeout=5000"
	}

	m := mysql.NewConfig()
	m.User = c.User
	m.Passwd = c.Password
	m.Net = "tcp"
	m.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	m.DBName = c.Name
	m.Timeout = c.ConnectTimeout
	return m.FormatDSN()
}
