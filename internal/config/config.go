// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	BackendSQLite   = "sqlite"
	BackendBadger   = "badger"
	BackendPostgres = "postgres"
)

// Config holds the application configuration.
type Config struct {
	App    AppConfig
	Logger LoggerConfig
	Server ServerConfig
	Store  StoreConfig
	Schema SchemaConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port            string        // Server port (default: 8080)
	ReadTimeout     time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout    time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout     time.Duration // HTTP idle timeout (default: 60s)
	ShutdownTimeout time.Duration // Graceful shutdown budget (default: 10s)
	RateLimit       float64       // Requests per second per client IP; 0 disables (default: 20)
	RateBurst       int           // Burst per client IP (default: 40)
	CORSOrigins     []string      // Allowed origins; empty allows any
	TrustProxy      bool          // Take the client IP from X-Forwarded-For/X-Real-IP (default: false)
}

// StoreConfig selects and locates the contact store.
type StoreConfig struct {
	Backend     string // sqlite, badger or postgres (default: sqlite)
	DataPath    string // Directory for sqlite and badger files
	PostgresURL string // Required for the postgres backend
}

// SQLitePath returns the sqlite database file.
func (c StoreConfig) SQLitePath() string {
	return filepath.Join(c.DataPath, "fieldcodec.db")
}

// BadgerPath returns the badger database directory.
func (c StoreConfig) BadgerPath() string {
	return filepath.Join(c.DataPath, "badger")
}

// SchemaConfig locates the field schema.
type SchemaConfig struct {
	Path  string // YAML field schema; empty uses the built-in schema
	Watch bool   // Reload the schema when the file changes
}

// Values holds raw settings taken from command-line flags. Empty means unset.
type Values struct {
	Env      string
	LogLevel string
	EnvFile  string

	Port            string
	ReadTimeout     string
	WriteTimeout    string
	IdleTimeout     string
	ShutdownTimeout string
	RateLimit       string
	RateBurst       string
	CORSOrigins     string
	TrustProxy      string

	StoreBackend string
	DataPath     string
	PostgresURL  string

	SchemaPath  string
	SchemaWatch string
}

// Bind registers every setting as a flag on fs.
func (v *Values) Bind(fs *flag.FlagSet) {
	fs.StringVar(&v.Env, "env", "", "Environment (development, staging, production)")
	fs.StringVar(&v.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&v.EnvFile, "env-file", ".env", "Path to .env file")

	fs.StringVar(&v.Port, "port", "", "Server port (default: 8080)")
	fs.StringVar(&v.ReadTimeout, "read-timeout", "", "HTTP read timeout (default: 15s)")
	fs.StringVar(&v.WriteTimeout, "write-timeout", "", "HTTP write timeout (default: 15s)")
	fs.StringVar(&v.IdleTimeout, "idle-timeout", "", "HTTP idle timeout (default: 60s)")
	fs.StringVar(&v.ShutdownTimeout, "shutdown-timeout", "", "Graceful shutdown timeout (default: 10s)")
	fs.StringVar(&v.RateLimit, "rate-limit", "", "Requests per second per client, 0 disables (default: 20)")
	fs.StringVar(&v.RateBurst, "rate-burst", "", "Request burst per client (default: 40)")
	fs.StringVar(&v.CORSOrigins, "cors-origins", "", "Comma-separated allowed CORS origins")
	fs.StringVar(&v.TrustProxy, "trust-proxy", "", "Trust X-Forwarded-For and X-Real-IP from a reverse proxy (default: false)")

	fs.StringVar(&v.StoreBackend, "store", "", "Store backend (sqlite, badger, postgres)")
	fs.StringVar(&v.DataPath, "data-path", "", "Directory for sqlite and badger data")
	fs.StringVar(&v.PostgresURL, "postgres-url", "", "Postgres connection URL")

	fs.StringVar(&v.SchemaPath, "schema", "", "Path to the YAML field schema")
	fs.StringVar(&v.SchemaWatch, "schema-watch", "", "Reload the schema file on change (default: false)")
}

// LoadConfig parses args as flags and loads the configuration.
func LoadConfig(name string, args []string) (*Config, error) {
	var v Values
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	v.Bind(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return Load(v)
}

// Load builds configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(v Values) (*Config, error) {
	if v.EnvFile != "" {
		// godotenv never overrides variables that are already set. A missing
		// file is fine.
		if err := godotenv.Load(v.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", v.EnvFile, err)
		}
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(v.Env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(v.LogLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port:        getConfigValue(v.Port, "SERVER_PORT", "8080"),
			CORSOrigins: splitList(getConfigValue(v.CORSOrigins, "CORS_ORIGINS", "")),
			TrustProxy:  getBoolConfigValue(v.TrustProxy, "TRUST_PROXY", false),
		},
		Store: StoreConfig{
			Backend:     getConfigValue(v.StoreBackend, "STORE_BACKEND", BackendSQLite),
			DataPath:    getConfigValue(v.DataPath, "DATA_PATH", ""),
			PostgresURL: getConfigValue(v.PostgresURL, "POSTGRES_URL", ""),
		},
		Schema: SchemaConfig{
			Path:  getConfigValue(v.SchemaPath, "SCHEMA_PATH", ""),
			Watch: getBoolConfigValue(v.SchemaWatch, "SCHEMA_WATCH", false),
		},
	}

	var err error
	durations := []struct {
		dst      *time.Duration
		flag     string
		envKey   string
		fallback string
	}{
		{&cfg.Server.ReadTimeout, v.ReadTimeout, "SERVER_READ_TIMEOUT", "15s"},
		{&cfg.Server.WriteTimeout, v.WriteTimeout, "SERVER_WRITE_TIMEOUT", "15s"},
		{&cfg.Server.IdleTimeout, v.IdleTimeout, "SERVER_IDLE_TIMEOUT", "60s"},
		{&cfg.Server.ShutdownTimeout, v.ShutdownTimeout, "SERVER_SHUTDOWN_TIMEOUT", "10s"},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flag, d.envKey, d.fallback)
		if *d.dst, err = time.ParseDuration(raw); err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", strings.ToLower(d.envKey), raw, err)
		}
	}

	rate := getConfigValue(v.RateLimit, "RATE_LIMIT", "20")
	if cfg.Server.RateLimit, err = strconv.ParseFloat(rate, 64); err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", rate, err)
	}
	burst := getConfigValue(v.RateBurst, "RATE_BURST", "40")
	if cfg.Server.RateBurst, err = strconv.Atoi(burst); err != nil {
		return nil, fmt.Errorf("invalid rate burst %q: %w", burst, err)
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	switch c.Store.Backend {
	case BackendSQLite, BackendBadger:
		if c.Store.DataPath == "" {
			return errors.New("data path cannot be empty after expansion")
		}
	case BackendPostgres:
		if c.Store.PostgresURL == "" {
			return errors.New("POSTGRES_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("invalid store backend: %s (must be sqlite, badger, or postgres)", c.Store.Backend)
	}

	if c.Server.RateLimit < 0 {
		return fmt.Errorf("invalid rate limit: %g (must not be negative)", c.Server.RateLimit)
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
		return fmt.Errorf("invalid rate burst: %d (must be at least 1)", c.Server.RateBurst)
	}

	if c.Schema.Watch && c.Schema.Path == "" {
		return errors.New("schema watch requires a schema path")
	}

	return nil
}

// IsDevelopment reports whether the app runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

func (c *Config) expandPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	if c.Store.DataPath, err = expandPath(c.Store.DataPath, filepath.Join(homeDir, "FieldCodec", "data")); err != nil {
		return fmt.Errorf("invalid data path: %w", err)
	}
	if c.Schema.Path, err = expandPath(c.Schema.Path, ""); err != nil {
		return fmt.Errorf("invalid schema path: %w", err)
	}
	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, returns defaultPath unchanged.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
