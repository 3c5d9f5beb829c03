package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// Act
	cfg, err := Load()

	// Assert
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.ServerPort != DefaultServerPort {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, DefaultServerPort)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %s, want %s", cfg.LogLevel, DefaultLogLevel)
	}
	if cfg.StoreBackend != DefaultStoreBackend {
		t.Errorf("StoreBackend = %s, want %s", cfg.StoreBackend, DefaultStoreBackend)
	}
	if cfg.CacheCapacity != DefaultCacheCapacity {
		t.Errorf("CacheCapacity = %d, want %d", cfg.CacheCapacity, DefaultCacheCapacity)
	}
	if cfg.ImportPolicy != DefaultImportPolicy {
		t.Errorf("ImportPolicy = %s, want %s", cfg.ImportPolicy, DefaultImportPolicy)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	// Arrange
	t.Setenv(EnvServerPort, "9191")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvShutdownTimeout, "5s")
	t.Setenv(EnvCacheCapacity, "50")
	t.Setenv(EnvImportPolicy, "abort")
	t.Setenv(EnvImportPath, "data/funkos.csv")
	t.Setenv(EnvBackupDir, "backups")

	// Act
	cfg, err := Load()

	// Assert
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.ServerPort != 9191 {
		t.Errorf("ServerPort = %d, want 9191", cfg.ServerPort)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", cfg.LogLevel)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 5s", cfg.ShutdownTimeout)
	}
	if cfg.CacheCapacity != 50 {
		t.Errorf("CacheCapacity = %d, want 50", cfg.CacheCapacity)
	}
	if cfg.ImportPolicy != "abort" {
		t.Errorf("ImportPolicy = %s, want abort", cfg.ImportPolicy)
	}
	if cfg.ImportPath != "data/funkos.csv" {
		t.Errorf("ImportPath = %s, want data/funkos.csv", cfg.ImportPath)
	}
	if cfg.BackupDir != "backups" {
		t.Errorf("BackupDir = %s, want backups", cfg.BackupDir)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		envKey  string
		envVal  string
		wantErr error
	}{
		{name: "port too large", envKey: EnvServerPort, envVal: "70000", wantErr: ErrInvalidServerPort},
		{name: "port zero", envKey: EnvServerPort, envVal: "0", wantErr: ErrInvalidServerPort},
		{name: "bad log level", envKey: EnvLogLevel, envVal: "verbose", wantErr: ErrInvalidLogLevel},
		{name: "negative timeout", envKey: EnvShutdownTimeout, envVal: "-1s", wantErr: ErrInvalidShutdownTimeout},
		{name: "unknown backend", envKey: EnvStoreBackend, envVal: "redis", wantErr: ErrInvalidStoreBackend},
		{name: "postgres without url", envKey: EnvStoreBackend, envVal: "postgres", wantErr: ErrMissingDatabaseURL},
		{name: "zero cache capacity", envKey: EnvCacheCapacity, envVal: "0", wantErr: ErrInvalidCacheCapacity},
		{name: "unknown import policy", envKey: EnvImportPolicy, envVal: "retry", wantErr: ErrInvalidImportPolicy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			t.Setenv(tt.envKey, tt.envVal)

			// Act
			_, err := Load()

			// Assert
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_UnparsableValues(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
	}{
		{name: "port not a number", envKey: EnvServerPort, envVal: "eighty"},
		{name: "timeout not a duration", envKey: EnvShutdownTimeout, envVal: "soon"},
		{name: "metrics not a bool", envKey: EnvMetricsEnabled, envVal: "maybe"},
		{name: "capacity not a number", envKey: EnvCacheCapacity, envVal: "lots"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envKey, tt.envVal)

			if _, err := Load(); err == nil {
				t.Error("Load() expected parse error")
			}
		})
	}
}

func TestConfig_Address(t *testing.T) {
	cfg := &Config{ServerPort: 8081}

	if got := cfg.Address(); got != ":8081" {
		t.Errorf("Address() = %s, want :8081", got)
	}
}
