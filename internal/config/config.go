// Package config provides configuration management for the catalog
// server.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Default configuration values.
const (
	DefaultServerPort      = 8080
	DefaultLogLevel        = "info"
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMetricsEnabled  = true
	DefaultStoreBackend    = "memory"
	DefaultCacheCapacity   = 25
	DefaultImportPolicy    = "skip"
	DefaultBackupDir       = "data"
)

// Environment variable names.
const (
	EnvServerPort      = "APP_SERVER_PORT"
	EnvLogLevel        = "APP_LOG_LEVEL"
	EnvShutdownTimeout = "APP_SHUTDOWN_TIMEOUT"
	EnvMetricsEnabled  = "APP_METRICS_ENABLED"
	EnvStoreBackend    = "APP_STORE_BACKEND"
	EnvDatabaseURL     = "APP_DATABASE_URL"
	EnvCacheCapacity   = "APP_CACHE_CAPACITY"
	EnvImportPolicy    = "APP_IMPORT_POLICY"
	EnvImportPath      = "APP_IMPORT_PATH"
	EnvBackupDir       = "APP_BACKUP_DIR"
	EnvBasicAuthUsers  = "APP_BASIC_AUTH_USERS"
)

// Config holds the application configuration.
type Config struct {
	// Server settings.
	ServerPort      int
	LogLevel        string
	ShutdownTimeout time.Duration
	MetricsEnabled  bool

	// Catalog settings.
	StoreBackend  string // memory or postgres
	DatabaseURL   string
	CacheCapacity int
	ImportPolicy  string // skip or abort
	ImportPath    string // optional CSV loaded at startup
	BackupDir     string

	// Basic auth users for mutating endpoints
	// (format: "user1:bcrypt_hash,user2:bcrypt_hash"; empty disables).
	BasicAuthUsers string
}

// Validation errors.
var (
	ErrInvalidServerPort      = errors.New("server port must be between 1 and 65535")
	ErrInvalidLogLevel        = errors.New("log level must be one of: debug, info, warn, error")
	ErrInvalidShutdownTimeout = errors.New("shutdown timeout must be positive")
	ErrInvalidStoreBackend    = errors.New("store backend must be one of: memory, postgres")
	ErrMissingDatabaseURL     = errors.New("database URL must be set when store backend is postgres")
	ErrInvalidCacheCapacity   = errors.New("cache capacity must be positive")
	ErrInvalidImportPolicy    = errors.New("import policy must be one of: skip, abort")
)

// Load reads configuration from environment variables with defaults.
// Environment variables have priority over default values.
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:      DefaultServerPort,
		LogLevel:        DefaultLogLevel,
		ShutdownTimeout: DefaultShutdownTimeout,
		MetricsEnabled:  DefaultMetricsEnabled,
		StoreBackend:    DefaultStoreBackend,
		CacheCapacity:   DefaultCacheCapacity,
		ImportPolicy:    DefaultImportPolicy,
		BackupDir:       DefaultBackupDir,
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("loading config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadFromEnv loads configuration values from environment variables.
func (c *Config) loadFromEnv() error {
	if val := os.Getenv(EnvServerPort); val != "" {
		port, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvServerPort, err)
		}
		c.ServerPort = port
	}

	if val := os.Getenv(EnvLogLevel); val != "" {
		c.LogLevel = val
	}

	if val := os.Getenv(EnvShutdownTimeout); val != "" {
		timeout, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvShutdownTimeout, err)
		}
		c.ShutdownTimeout = timeout
	}

	if val := os.Getenv(EnvMetricsEnabled); val != "" {
		enabled, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvMetricsEnabled, err)
		}
		c.MetricsEnabled = enabled
	}

	if val := os.Getenv(EnvStoreBackend); val != "" {
		c.StoreBackend = val
	}

	if val := os.Getenv(EnvDatabaseURL); val != "" {
		c.DatabaseURL = val
	}

	if val := os.Getenv(EnvCacheCapacity); val != "" {
		capacity, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvCacheCapacity, err)
		}
		c.CacheCapacity = capacity
	}

	if val := os.Getenv(EnvImportPolicy); val != "" {
		c.ImportPolicy = val
	}

	if val := os.Getenv(EnvImportPath); val != "" {
		c.ImportPath = val
	}

	if val := os.Getenv(EnvBackupDir); val != "" {
		c.BackupDir = val
	}

	if val := os.Getenv(EnvBasicAuthUsers); val != "" {
		c.BasicAuthUsers = val
	}

	return nil
}

// Validate checks if the configuration values are valid.
func (c *Config) Validate() error {
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return ErrInvalidServerPort
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return ErrInvalidLogLevel
	}

	if c.ShutdownTimeout <= 0 {
		return ErrInvalidShutdownTimeout
	}

	switch c.StoreBackend {
	case "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			return ErrMissingDatabaseURL
		}
	default:
		return ErrInvalidStoreBackend
	}

	if c.CacheCapacity < 1 {
		return ErrInvalidCacheCapacity
	}

	if c.ImportPolicy != "skip" && c.ImportPolicy != "abort" {
		return ErrInvalidImportPolicy
	}

	return nil
}

// Address returns the server address in host:port format.
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}
