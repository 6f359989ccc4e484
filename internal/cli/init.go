// Package cli provides common initialization shared by cmd/finreport,
// cmd/finreport-server and cmd/finreport-worker.
package cli

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"finreport/internal/backend"
	"finreport/internal/config"
	applog "finreport/internal/log"
	"finreport/internal/quotes/alphavantage"
	"finreport/internal/report"
	"finreport/internal/storage"
)

// SetupLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and
// installs it as the slog default.
func SetupLogger(component string) *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Component = component
	cfg.Format = os.Getenv("LOG_FORMAT")
	level, err := applog.ParseLevel(os.Getenv("LOG_LEVEL"))
	cfg.Level = level

	logger := applog.New(cfg)
	applog.SetDefault(logger)
	if err != nil {
		logger.Warn("Falling back to info level", "error", err)
	}
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitSQLite opens the SQLite repository at dbPath and applies migrations.
// Returns the repository or exits the process on failure.
func InitSQLite(logger *applog.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", dbPath)
		os.Exit(1)
	}
	if version, dirty, err := storage.SchemaVersion(dbPath); err != nil {
		logger.Warn("Could not read schema version", "error", err, "path", dbPath)
	} else {
		logger.Info("SQLite repository ready", "path", dbPath, "schema_version", version, "dirty", dirty)
	}
	return repo
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(logger *applog.Logger) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received", applog.FieldOperation, applog.OpShutdown)
	}()
	return ctx, stop
}

// CreateBackend builds the operations table selected by DATA_BACKEND.
// Returns the backend or exits the process on failure.
func CreateBackend(ctx context.Context, logger *applog.Logger, cfg *config.Config) *backend.BackendResult {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	return result
}

// NewQuoteClient builds the Alpha Vantage client from the configuration.
func NewQuoteClient(cfg *config.Config) *alphavantage.Client {
	return alphavantage.New(alphavantage.Config{
		APIKey:         cfg.AlphaVantageAPIKey,
		BaseURL:        cfg.AlphaVantageBaseURL,
		TargetCurrency: cfg.QuoteTargetCurrency,
		Timeout:        cfg.HTTPClientTimeout,
	})
}

// LoadSymbols reads the settings file. A missing file means no quotes;
// a malformed one exits the process.
func LoadSymbols(logger *applog.Logger, path string) report.Symbols {
	settings, err := config.LoadSettings(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Settings file not found, reporting without quotes", "path", path)
		return report.Symbols{}
	}
	if err != nil {
		logger.Error("Failed to load settings", "error", err, "path", path)
		os.Exit(1)
	}
	logger.Info("Settings loaded",
		"path", path,
		"currencies", len(settings.Currencies),
		"stocks", len(settings.Stocks))
	return report.Symbols(settings)
}
