package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"finreport/internal/core"

	_ "modernc.org/sqlite"
)

// ErrReportNotFound is returned by GetReport for an unknown id.
var ErrReportNotFound = errors.New("report not found")

// generatedAtLayout is fixed-width so that text ordering matches time ordering.
const generatedAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ArchivedReport is a generated report kept for later retrieval.
type ArchivedReport struct {
	ID          string          `json:"id"`
	GeneratedAt time.Time       `json:"generated_at"`
	ReferenceAt time.Time       `json:"reference_at"`
	Report      json.RawMessage `json:"report"`
}

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Transactions implements sheets.TransactionSource. Rows come back in import order.
func (r *SQLiteRepository) Transactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	txs := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		at, err := time.Parse(time.RFC3339, row.OperatedAt)
		if err != nil {
			return nil, &core.ParseError{Field: "operated_at", Value: row.OperatedAt, Layout: time.RFC3339, Err: err}
		}
		txs = append(txs, core.Transaction{
			OperatedAt:  at.UTC(),
			CardID:      row.CardID,
			Category:    row.Category,
			Description: row.Description,
			Amount:      core.Money{Cents: row.AmountCents},
		})
	}
	return txs, nil
}

// ReplaceTransactions implements sheets.TransactionImporter. The previous
// snapshot is dropped and txs inserted in one database transaction.
func (r *SQLiteRepository) ReplaceTransactions(ctx context.Context, txs []core.Transaction) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	q := r.queries.WithTx(dbTx)
	if err := q.DeleteTransactions(ctx); err != nil {
		return fmt.Errorf("delete transactions: %w", err)
	}
	for i, t := range txs {
		err := q.CreateTransaction(ctx, CreateTransactionParams{
			OperatedAt:  t.OperatedAt.UTC().Format(time.RFC3339),
			CardID:      t.CardID,
			Category:    t.Category,
			Description: t.Description,
			AmountCents: t.Amount.Cents,
		})
		if err != nil {
			return fmt.Errorf("insert transaction %d: %w", i+1, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transactions imported to SQLite", "count", len(txs))
	return nil
}

// SaveReport stores a report; saving the same id again overwrites it.
func (r *SQLiteRepository) SaveReport(ctx context.Context, rep ArchivedReport) error {
	if rep.ID == "" {
		return errors.New("save report: empty id")
	}
	if !json.Valid(rep.Report) {
		return fmt.Errorf("save report %s: payload is not valid JSON", rep.ID)
	}

	err := r.queries.CreateReport(ctx, ReportRow{
		ID:          rep.ID,
		GeneratedAt: rep.GeneratedAt.UTC().Format(generatedAtLayout),
		ReferenceAt: rep.ReferenceAt.UTC().Format(time.RFC3339),
		Payload:     string(rep.Report),
	})
	if err != nil {
		return fmt.Errorf("save report %s: %w", rep.ID, err)
	}

	slog.InfoContext(ctx, "Report archived", "report_id", rep.ID)
	return nil
}

func (r *SQLiteRepository) GetReport(ctx context.Context, id string) (ArchivedReport, error) {
	row, err := r.queries.GetReport(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ArchivedReport{}, ErrReportNotFound
	}
	if err != nil {
		return ArchivedReport{}, fmt.Errorf("get report %s: %w", id, err)
	}
	return toArchived(row)
}

// ListReports returns up to limit reports, newest first.
func (r *SQLiteRepository) ListReports(ctx context.Context, limit int) ([]ArchivedReport, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.queries.ListReports(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}

	out := make([]ArchivedReport, 0, len(rows))
	for _, row := range rows {
		rep, err := toArchived(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, nil
}

func toArchived(row ReportRow) (ArchivedReport, error) {
	generated, err := time.Parse(time.RFC3339Nano, row.GeneratedAt)
	if err != nil {
		return ArchivedReport{}, fmt.Errorf("report %s: parse generated_at: %w", row.ID, err)
	}
	reference, err := time.Parse(time.RFC3339, row.ReferenceAt)
	if err != nil {
		return ArchivedReport{}, fmt.Errorf("report %s: parse reference_at: %w", row.ID, err)
	}
	return ArchivedReport{
		ID:          row.ID,
		GeneratedAt: generated.UTC(),
		ReferenceAt: reference.UTC(),
		Report:      json.RawMessage(row.Payload),
	}, nil
}
