package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	applog "finreport/internal/log"
	"finreport/internal/sheets"
)

// ImportProcessorConfig holds configuration for the import processor
type ImportProcessorConfig struct {
	// Interval is how often the snapshot is refreshed (default: 15m)
	Interval time.Duration

	// MaxFailures is how many consecutive failures are tolerated before the
	// processor stops itself (default: 5, 0 means never)
	MaxFailures int
}

// DefaultImportProcessorConfig returns sensible defaults
func DefaultImportProcessorConfig() ImportProcessorConfig {
	return ImportProcessorConfig{
		Interval:    15 * time.Minute,
		MaxFailures: 5,
	}
}

// ImportProcessor copies the operations table from a source into a stored
// snapshot, once or on a fixed interval.
type ImportProcessor struct {
	source   sheets.TransactionSource
	importer sheets.TransactionImporter
	config   ImportProcessorConfig

	// Lifecycle management
	mu       sync.Mutex
	running  bool
	failures int
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewImportProcessor(source sheets.TransactionSource, importer sheets.TransactionImporter, config ImportProcessorConfig) *ImportProcessor {
	return &ImportProcessor{
		source:   source,
		importer: importer,
		config:   config,
	}
}

// ImportOnce reads the whole source and replaces the snapshot. It returns
// the number of imported rows.
func (p *ImportProcessor) ImportOnce(ctx context.Context) (int, error) {
	txs, err := p.source.Transactions(ctx)
	if err != nil {
		return 0, fmt.Errorf("read source: %w", err)
	}
	if err := p.importer.ReplaceTransactions(ctx, txs); err != nil {
		return 0, fmt.Errorf("replace snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Operations table imported",
		applog.NewFields().
			WithComponent(applog.ComponentWorker).
			WithOperation(applog.OpImport).
			WithCount(len(txs)).
			ToSlice()...)
	return len(txs), nil
}

// Start begins the import loop. Returns an error if already running.
func (p *ImportProcessor) Start(ctx context.Context) error {
	if p.config.Interval <= 0 {
		return fmt.Errorf("import interval must be positive, got %v", p.config.Interval)
	}

	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("import processor is already running")
	}
	p.running = true
	p.failures = 0
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Import processor started", "interval", p.config.Interval)
	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *ImportProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	select {
	case <-stopCh:
	default:
		close(stopCh)
	}

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Import processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Import processor stop timed out")
		return ctx.Err()
	}
	return nil
}

// IsRunning returns whether the processor is currently running
func (p *ImportProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *ImportProcessor) runLoop(ctx context.Context) {
	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
		close(p.doneCh)
	}()

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	// Import immediately on startup
	if !p.tick(ctx) {
		return
	}

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !p.tick(ctx) {
				return
			}
		}
	}
}

// tick runs one import and reports whether the loop should continue.
func (p *ImportProcessor) tick(ctx context.Context) bool {
	if _, err := p.ImportOnce(ctx); err != nil {
		p.mu.Lock()
		p.failures++
		failures := p.failures
		p.mu.Unlock()

		slog.WarnContext(ctx, "Import failed",
			applog.FieldError, err,
			"consecutive_failures", failures)

		if p.config.MaxFailures > 0 && failures >= p.config.MaxFailures {
			slog.ErrorContext(ctx, "Import processor giving up after repeated failures",
				"consecutive_failures", failures)
			return false
		}
		return true
	}

	p.mu.Lock()
	p.failures = 0
	p.mu.Unlock()
	return true
}
