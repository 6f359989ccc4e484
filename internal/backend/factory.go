package backend

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"finreport/internal/cache"
	"finreport/internal/core"
	applog "finreport/internal/log"
	"finreport/internal/sheets"
	"finreport/internal/sheets/excel"
	gsheet "finreport/internal/sheets/google"
	"finreport/internal/sheets/memory"
	"finreport/internal/storage"

	goption "google.golang.org/api/option"
)

const tableCacheKey = "operations"

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger        *applog.Logger
	googleOptions []goption.ClientOption
}

// NewFactory creates a new backend factory. Google client options are
// passed through to the Sheets client.
func NewFactory(logger *applog.Logger, googleOptions ...goption.ClientOption) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{
		logger:        logger.WithComponent(applog.ComponentBackend),
		googleOptions: googleOptions,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		result *BackendResult
		err    error
	)
	switch config.Type {
	case ExcelBackend:
		result, err = f.createExcelBackend(config)
	case SheetsBackend:
		result, err = f.createSheetsBackend(ctx, config)
	case SQLiteBackend:
		result, err = f.createSQLiteBackend(config)
	case MemoryBackend:
		result, err = f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	if config.CacheTTL > 0 {
		f.wrapWithCache(result, config.CacheSize, config.CacheTTL)
	}
	return result, nil
}

func (f *DefaultFactory) createExcelBackend(config Config) (*BackendResult, error) {
	src, err := excel.New(config.OperationsFile, config.OperationsSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize excel source: %w", err)
	}

	f.logger.Info("Initialized excel backend",
		"file", config.OperationsFile,
		"sheet", config.OperationsSheet)

	return &BackendResult{Source: src}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:      config.GoogleSpreadsheetID,
		SheetName:          config.GoogleSheetName,
		ServiceAccountJSON: config.GoogleServiceAccountJSON,
		ServiceAccountFile: config.GoogleServiceAccountFile,
	}, f.googleOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend",
		"spreadsheet_id", config.GoogleSpreadsheetID,
		"sheet", config.GoogleSheetName)

	return &BackendResult{Source: cli}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Source:   repo,
		Importer: repo,
		Archive:  repo,
		Cleanup:  repo.Close,
	}, nil
}

// createMemoryBackend seeds the in-memory table from a CSV export when the
// operations file is one; anything else starts empty.
func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	var store *memory.Store
	if strings.EqualFold(filepath.Ext(config.OperationsFile), ".csv") {
		s, err := memory.NewFromCSV(config.OperationsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load memory backend: %w", err)
		}
		store = s
	} else {
		store = memory.New()
	}

	rows, _ := store.Transactions(context.Background())
	f.logger.Info("Initialized memory backend",
		"file", config.OperationsFile,
		applog.FieldCount, len(rows))

	return &BackendResult{
		Source:   store,
		Importer: store,
	}, nil
}

func (f *DefaultFactory) wrapWithCache(result *BackendResult, size int, ttl time.Duration) {
	lru := cache.NewLRUCache[[]core.Transaction](size, ttl)
	manager := cache.NewManager()
	manager.Register(lru)
	manager.StartCleanup(ttl)

	result.Cached = sheets.NewCachedSource(result.Source, lru, tableCacheKey)
	result.Source = result.Cached

	inner := result.Cleanup
	result.Cleanup = func() error {
		manager.Stop()
		if inner != nil {
			return inner()
		}
		return nil
	}

	f.logger.Info("Table cache enabled", "ttl", ttl, "size", size)
}
