// Package main is the entry point for the Funko catalog server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Madirex/Funkos-Rest-Synchronous/internal/cache"
	"github.com/Madirex/Funkos-Rest-Synchronous/internal/config"
	"github.com/Madirex/Funkos-Rest-Synchronous/internal/controller"
	"github.com/Madirex/Funkos-Rest-Synchronous/internal/server"
	"github.com/Madirex/Funkos-Rest-Synchronous/internal/service"
	"github.com/Madirex/Funkos-Rest-Synchronous/internal/store"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Use a basic logger for startup errors
		basicLogger, _ := zap.NewProduction()
		basicLogger.Fatal("failed to load configuration", zap.Error(err))
	}

	// Initialize logger
	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		basicLogger, _ := zap.NewProduction()
		basicLogger.Fatal("failed to initialize logger", zap.Error(err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("configuration loaded",
		zap.Int("server_port", cfg.ServerPort),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("shutdown_timeout", cfg.ShutdownTimeout),
		zap.Bool("metrics_enabled", cfg.MetricsEnabled),
		zap.String("store_backend", cfg.StoreBackend),
		zap.Int("cache_capacity", cfg.CacheCapacity),
		zap.String("import_policy", cfg.ImportPolicy),
	)

	// Create the store backend
	catalogStore, cleanup, err := createStore(cfg, logger)
	if err != nil {
		logger.Error("failed to create store", zap.Error(err))
		return 1
	}
	defer cleanup()

	// Assemble the catalog
	svc := service.NewCatalogService(catalogStore, cache.New(cfg.CacheCapacity), logger)
	ctrl := controller.NewFunkoController(svc, logger)

	srv, err := server.New(cfg, logger, ctrl)
	if err != nil {
		logger.Error("failed to create server", zap.Error(err))
		return 1
	}

	// Mutations are broadcast to websocket clients
	svc.SetNotifier(srv.Notifier())

	// Optionally preload the catalog from a CSV file
	if cfg.ImportPath != "" {
		if err := importStartupData(cfg, ctrl, logger); err != nil {
			logger.Error("startup import failed", zap.Error(err))
			return 1
		}
	}

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	// Wait for shutdown signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("server error", zap.Error(err))
		return 1
	case sig := <-shutdown:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))

		// Create shutdown context with timeout
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		// Graceful shutdown
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
			return 1
		}
	}

	logger.Info("server stopped")
	return 0
}

// createStore builds the configured store backend. The returned
// cleanup function releases backend resources on shutdown.
func createStore(cfg *config.Config, logger *zap.Logger) (store.Store, func(), error) {
	switch cfg.StoreBackend {
	case "memory", "":
		logger.Info("using in-memory store")
		return store.NewMemStore(), func() {}, nil
	case "postgres":
		logger.Info("using postgres store")
		ctx := context.Background()
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, nil, fmt.Errorf("migrating postgres schema: %w", err)
		}
		return pg, pg.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend: %s", cfg.StoreBackend)
	}
}

// importStartupData loads the configured CSV file into the catalog
// before the server starts accepting requests.
func importStartupData(cfg *config.Config, ctrl *controller.FunkoController, logger *zap.Logger) error {
	policy, err := service.ParseImportPolicy(cfg.ImportPolicy)
	if err != nil {
		return err
	}

	report, err := ctrl.ImportCSV(context.Background(), cfg.ImportPath, policy)
	if err != nil {
		return err
	}

	logger.Info("startup import complete",
		zap.String("path", cfg.ImportPath),
		zap.Int("rows", report.Rows),
		zap.Int("saved", report.Saved),
		zap.Bool("failed", report.Failed),
	)
	return nil
}

// initLogger initializes a zap logger with the specified log level.
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	zapConfig := zap.Config{
		Level:       zap.NewAtomicLevelAt(zapLevel),
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding: "json",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "timestamp",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return zapConfig.Build()
}
