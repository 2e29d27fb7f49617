package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a config that passes Validate.
func validConfig() *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Server: ServerConfig{RateLimit: 20, RateBurst: 40},
		Store:  StoreConfig{Backend: BackendSQLite, DataPath: "/some/path"},
	}
}

// noEnvFile points Load at a file that does not exist.
func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"log level", func(c *Config) { c.Logger.Level = "verbose" }, "invalid log level"},
		{"backend", func(c *Config) { c.Store.Backend = "mysql" }, "invalid store backend"},
		{"empty data path", func(c *Config) { c.Store.DataPath = "" }, "data path"},
		{"postgres without url", func(c *Config) { c.Store.Backend = BackendPostgres }, "POSTGRES_URL"},
		{"negative rate", func(c *Config) { c.Server.RateLimit = -1 }, "invalid rate limit"},
		{"zero burst", func(c *Config) { c.Server.RateBurst = 0 }, "invalid rate burst"},
		{"watch without path", func(c *Config) { c.Schema.Watch = true }, "schema watch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_RateLimitDisabled(t *testing.T) {
	cfg := validConfig()
	cfg.Server.RateLimit = 0
	cfg.Server.RateBurst = 0
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"ENV", "LOG_LEVEL", "SERVER_PORT", "STORE_BACKEND", "DATA_PATH", "SCHEMA_PATH", "SCHEMA_WATCH", "RATE_LIMIT", "RATE_BURST", "CORS_ORIGINS", "TRUST_PROXY"} {
		t.Setenv(key, "")
	}
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(Values{EnvFile: noEnvFile(t)})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.InDelta(t, 20.0, cfg.Server.RateLimit, 0)
	assert.Equal(t, 40, cfg.Server.RateBurst)
	assert.Empty(t, cfg.Server.CORSOrigins)
	assert.False(t, cfg.Server.TrustProxy)
	assert.Equal(t, BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, filepath.Join(home, "FieldCodec", "data"), cfg.Store.DataPath)
	assert.Equal(t, filepath.Join(home, "FieldCodec", "data", "fieldcodec.db"), cfg.Store.SQLitePath())
	assert.Empty(t, cfg.Schema.Path)
	assert.False(t, cfg.Schema.Watch)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"# comment\nLOG_LEVEL=debug\nSERVER_PORT=7000\nSTORE_BACKEND=badger\nCORS_ORIGINS=\"https://a.example, https://b.example\"\n",
	), 0o600))

	// The .env file never overrides the environment, and flags beat both.
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("DATA_PATH", dir)

	cfg, err := Load(Values{EnvFile: envFile, StoreBackend: BackendSQLite})
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, dir, cfg.Store.DataPath)
}

func TestLoadConfig_Flags(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "fields.yaml")
	t.Setenv("ENV", "")
	t.Setenv("TRUST_PROXY", "")

	cfg, err := LoadConfig("test", []string{
		"-env-file", noEnvFile(t),
		"-env", "production",
		"-store", "badger",
		"-data-path", dir,
		"-schema", schemaPath,
		"-schema-watch", "yes",
		"-rate-limit", "0",
		"-read-timeout", "3s",
		"-trust-proxy", "true",
	})
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.App.Environment)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, filepath.Join(dir, "badger"), cfg.Store.BadgerPath())
	assert.Equal(t, schemaPath, cfg.Schema.Path)
	assert.True(t, cfg.Schema.Watch)
	assert.Zero(t, cfg.Server.RateLimit)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.True(t, cfg.Server.TrustProxy)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		values Values
		want   string
	}{
		{"duration", Values{ReadTimeout: "soon"}, "invalid server_read_timeout"},
		{"rate", Values{RateLimit: "fast"}, "invalid rate limit"},
		{"burst", Values{RateBurst: "lots"}, "invalid rate burst"},
		{"backend", Values{StoreBackend: "mysql"}, "invalid store backend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.values.EnvFile = noEnvFile(t)
			tt.values.DataPath = t.TempDir()
			_, err := Load(tt.values)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/data", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "data"), got)

	got, err = expandPath("", "/fallback")
	require.NoError(t, err)
	assert.Equal(t, "/fallback", got)

	got, err = expandPath("/a/../b", "")
	require.NoError(t, err)
	assert.Equal(t, "/b", got)
}
