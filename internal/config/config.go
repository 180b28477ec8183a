// Package config provides application configuration management with support for command-line flags, environment variables, a YAML config file, and .env files.
package config

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverBadger   = "badger"
)

// Config holds the application configuration.
type Config struct {
	App    AppConfig
	Logger LoggerConfig
	Server ServerConfig
	Store  StoreConfig
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
	Port           string        // Server port (default: 8080)
	ReadTimeout    time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout   time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout    time.Duration // HTTP idle timeout (default: 60s)
	PublicURL      string        // Base URL of the redemption page
	AllowedOrigins []string      // CORS origins (default: any)
}

// StoreConfig selects and configures the link store.
type StoreConfig struct {
	Driver      string        // sqlite, postgres, or badger (default: sqlite)
	DataPath    string        // Directory for sqlite and badger data
	DatabaseURL string        // Postgres connection string
	Timeout     time.Duration // Per-operation store deadline (default: 5s)
}

// SQLitePath is the database file used by the sqlite driver.
func (s StoreConfig) SQLitePath() string {
	return filepath.Join(s.DataPath, "testimonials.db")
}

// BadgerDir is the directory used by the badger driver.
func (s StoreConfig) BadgerDir() string {
	return filepath.Join(s.DataPath, "badger")
}

// fileConfig is the YAML config file layout.
type fileConfig struct {
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`
	Server   struct {
		Port           string   `yaml:"port"`
		ReadTimeout    string   `yaml:"read_timeout"`
		WriteTimeout   string   `yaml:"write_timeout"`
		IdleTimeout    string   `yaml:"idle_timeout"`
		PublicURL      string   `yaml:"public_url"`
		AllowedOrigins []string `yaml:"cors_allowed_origins"`
	} `yaml:"server"`
	Store struct {
		Driver      string `yaml:"driver"`
		DataPath    string `yaml:"data_path"`
		DatabaseURL string `yaml:"database_url"`
		Timeout     string `yaml:"timeout"`
	} `yaml:"store"`
}

// values flattens the file into the same keys the environment uses.
func (f *fileConfig) values() map[string]string {
	return map[string]string{
		"ENV":                  f.Env,
		"LOG_LEVEL":            f.LogLevel,
		"SERVER_PORT":          f.Server.Port,
		"SERVER_READ_TIMEOUT":  f.Server.ReadTimeout,
		"SERVER_WRITE_TIMEOUT": f.Server.WriteTimeout,
		"SERVER_IDLE_TIMEOUT":  f.Server.IdleTimeout,
		"PUBLIC_URL":           f.Server.PublicURL,
		"CORS_ALLOWED_ORIGINS": strings.Join(f.Server.AllowedOrigins, ","),
		"STORE_DRIVER":         f.Store.Driver,
		"DATA_PATH":            f.Store.DataPath,
		"DATABASE_URL":         f.Store.DatabaseURL,
		"STORE_TIMEOUT":        f.Store.Timeout,
	}
}

// sources resolves a key across the non-flag layers.
type sources struct {
	file   map[string]string
	dotenv map[string]string
}

func (s sources) lookup(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	if v := s.file[key]; v != "" {
		return v
	}
	return s.dotenv[key]
}

// LoadConfig loads configuration from the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. YAML config file (-config).
// 4. .env file.
// 5. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("testimonial-server", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")

	// Server flags
	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	publicURL := fs.String("public-url", "", "Base URL of the testimonial page")
	corsOrigins := fs.String("cors-allowed-origins", "", "Comma-separated CORS origins (default: *)")

	// Store flags
	storeDriver := fs.String("store-driver", "", "Store driver: sqlite, postgres, badger (default: sqlite)")
	dataPath := fs.String("data-path", "", "Directory for local store data")
	databaseURL := fs.String("database-url", "", "Postgres connection string")
	storeTimeout := fs.String("store-timeout", "", "Per-operation store timeout (default: 5s)")

	configFile := fs.String("config", "", "Path to YAML config file")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// A missing .env file is fine.
	dotenv, err := readEnvFile(*envFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read env file: %w", err)
	}

	src := sources{dotenv: dotenv}
	if *configFile != "" {
		fc, err := readConfigFile(*configFile)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		src.file = fc.values()
	}

	cfg := &Config{
		App: AppConfig{
			Environment: src.get(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: src.get(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port:           src.get(*serverPort, "SERVER_PORT", "8080"),
			PublicURL:      strings.TrimRight(src.get(*publicURL, "PUBLIC_URL", "http://localhost:3000"), "/"),
			AllowedOrigins: splitList(src.get(*corsOrigins, "CORS_ALLOWED_ORIGINS", "")),
		},
		Store: StoreConfig{
			Driver:      strings.ToLower(src.get(*storeDriver, "STORE_DRIVER", DriverSQLite)),
			DataPath:    src.get(*dataPath, "DATA_PATH", ""),
			DatabaseURL: src.get(*databaseURL, "DATABASE_URL", ""),
		},
	}

	durations := []struct {
		flag, key, def string
		dst            *time.Duration
	}{
		{*readTimeout, "SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		{*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s", &cfg.Server.WriteTimeout},
		{*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
		{*storeTimeout, "STORE_TIMEOUT", "5s", &cfg.Store.Timeout},
	}
	for _, d := range durations {
		raw := src.get(d.flag, d.key, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.key, raw, err)
		}
		*d.dst = parsed
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
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

	if c.Server.Port == "" {
		return errors.New("SERVER_PORT is required")
	}

	u, err := url.Parse(c.Server.PublicURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid public url: %q (must be an absolute http or https URL)", c.Server.PublicURL)
	}

	switch c.Store.Driver {
	case DriverSQLite, DriverBadger:
		if c.Store.DataPath == "" {
			return errors.New("data path cannot be empty after expansion")
		}
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("invalid store driver: %s (must be sqlite, postgres, or badger)", c.Store.Driver)
	}

	if c.Store.Timeout <= 0 {
		return fmt.Errorf("invalid store timeout: %s (must be positive)", c.Store.Timeout)
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	// Expand tilde.
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	// Make absolute if needed.
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath expands ~ and makes the path absolute.
// Defaults to ~/Testimonials/data.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "Testimonials", "data")

	expanded, err := expandPath(c.Store.DataPath, defaultPath)
	if err != nil {
		return err
	}
	c.Store.DataPath = expanded
	return nil
}

// get returns the first non-empty value from flag, the other sources, or default.
func (s sources) get(flagValue, key, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2-4: environment, config file, .env.
	if v := s.lookup(key); v != "" {
		return v
	}

	return defaultValue
}

// splitList splits a comma-separated list, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// readConfigFile parses a YAML config file.
func readConfigFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return nil, err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &fc, nil
}

// readEnvFile reads KEY=value pairs from a .env file without touching the
// process environment.
func readEnvFile(path string) (map[string]string, error) {
	return godotenv.Read(path)
}
