package config

import (
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/herocheck/internal/mode"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9997", cfg.BaseURL)
	assert.False(t, cfg.UseMockAPI)
	assert.False(t, cfg.AllowAPIFallback)
	assert.False(t, cfg.UseMockDB)
	assert.False(t, cfg.AllowDBFallback)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, DBConfig{
		Driver:         "mysql",
		Host:           "localhost",
		Port:           3306,
		User:           "user",
		Password:       "userpassword",
		Name:           "testdb",
		Path:           "herocheck.db",
		ConnectTimeout: 10 * time.Second,
	}, cfg.DB)
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"USE_MOCK_API":       "true",
		"ALLOW_DB_FALLBACK":  "true",
		"DB_DRIVER":          "sqlite3",
		"DB_PATH":            "/tmp/heroes.db",
		"DB_PORT":            "3307",
		"HTTP_TIMEOUT":       "250ms",
		"HEROCHECK_BASE_URL": "http://api.internal:8080",
	})
	require.NoError(t, err)

	assert.Equal(t, mode.Config{Simulate: true}, cfg.APIMode())
	assert.Equal(t, mode.Config{AllowFallback: true}, cfg.DBMode())
	assert.Equal(t, "sqlite3", cfg.DB.Driver)
	assert.Equal(t, 3307, cfg.DB.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.HTTPTimeout)
	assert.Equal(t, "http://api.internal:8080", cfg.BaseURL)
}

func TestLoadFrom_Invalid(t *testing.T) {
	_, err := LoadFrom(map[string]string{"DB_DRIVER": "postgres"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid DB_DRIVER "postgres"`)

	_, err = LoadFrom(map[string]string{"DB_PORT": "not-a-port"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")

	_, err = LoadFrom(map[string]string{"HTTP_TIMEOUT": "0s"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP_TIMEOUT")
}

func TestBindFlags_OverrideEnv(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{"USE_MOCK_DB": "false"})
	require.NoError(t, err)

	fs := pflag.NewFlagSet("herocheck", pflag.ContinueOnError)
	cfg.BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"--mock-db", "--api-fallback", "--db-driver=sqlite3", "--base-url=http://127.0.0.1:1"}))

	assert.True(t, cfg.UseMockDB)
	assert.True(t, cfg.AllowAPIFallback)
	assert.Equal(t, "sqlite3", cfg.DB.Driver)
	assert.Equal(t, "http://127.0.0.1:1", cfg.BaseURL)
}

func TestBindFlags_KeepsEnvWhenUnset(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{"USE_MOCK_API": "true"})
	require.NoError(t, err)

	fs := pflag.NewFlagSet("herocheck", pflag.ContinueOnError)
	cfg.BindFlags(fs)
	require.NoError(t, fs.Parse(nil))

	assert.True(t, cfg.UseMockAPI)
}

func TestDSN_MySQL(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	parsed, err := mysql.ParseDSN(cfg.DB.DSN())
	require.NoError(t, err)
	assert.Equal(t, "user", parsed.User)
	assert.Equal(t, "userpassword", parsed.Passwd)
	assert.Equal(t, "tcp", parsed.Net)
	assert.Equal(t, "localhost:3306", parsed.Addr)
	assert.Equal(t, "testdb", parsed.DBName)
	assert.Equal(t, 10*time.Second, parsed.Timeout)
}

func TestDSN_SQLite(t *testing.T) {
	c := DBConfig{Driver: DriverSQLite, Path: "/tmp/h.db"}
	assert.Equal(t, "file:/tmp/h.db?_foreign_keys=on&_busy_timeout=5000", c.DSN())
}
