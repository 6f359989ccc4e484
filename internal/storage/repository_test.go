package storage

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"finreport/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestReplaceAndListTransactions(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	txs := []core.Transaction{
		{
			OperatedAt:  time.Date(2024, 8, 1, 10, 0, 0, 0, time.UTC),
			CardID:      "*5091",
			Category:    "Супермаркеты",
			Description: "Магнит",
			Amount:      core.MustAmount("-586.92"),
		},
		{
			OperatedAt:  time.Date(2024, 7, 30, 18, 30, 5, 0, time.UTC),
			CardID:      "*7197",
			Category:    "Пополнения",
			Description: "Перевод",
			Amount:      core.MustAmount("1000"),
		},
	}
	if err := repo.ReplaceTransactions(ctx, txs); err != nil {
		t.Fatalf("ReplaceTransactions: %v", err)
	}

	got, err := repo.Transactions(ctx)
	if err != nil {
		t.Fatalf("Transactions: %v", err)
	}
	if len(got) != len(txs) {
		t.Fatalf("expected %d rows, got %d", len(txs), len(got))
	}
	for i := range txs {
		if got[i] != txs[i] {
			t.Fatalf("row %d: got %+v, want %+v", i, got[i], txs[i])
		}
	}

	// A second import replaces the snapshot.
	if err := repo.ReplaceTransactions(ctx, txs[:1]); err != nil {
		t.Fatalf("ReplaceTransactions: %v", err)
	}
	got, err = repo.Transactions(ctx)
	if err != nil {
		t.Fatalf("Transactions: %v", err)
	}
	if len(got) != 1 || got[0].CardID != "*5091" {
		t.Fatalf("expected only the first row after replace, got %+v", got)
	}
}

func TestTransactionsEmpty(t *testing.T) {
	repo := newTestRepo(t)
	got, err := repo.Transactions(context.Background())
	if err != nil {
		t.Fatalf("Transactions: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no rows, got %d", len(got))
	}
}

func TestReportArchive(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	base := time.Date(2024, 8, 8, 12, 0, 0, 0, time.UTC)
	reports := []ArchivedReport{
		{ID: "a", GeneratedAt: base, ReferenceAt: base, Report: json.RawMessage(`{"greeting":"Добрый день!"}`)},
		{ID: "b", GeneratedAt: base.Add(500 * time.Millisecond), ReferenceAt: base, Report: json.RawMessage(`{"greeting":"Добрый вечер!"}`)},
		{ID: "c", GeneratedAt: base.Add(time.Hour), ReferenceAt: base, Report: json.RawMessage(`{}`)},
	}
	for _, r := range reports {
		if err := repo.SaveReport(ctx, r); err != nil {
			t.Fatalf("SaveReport(%s): %v", r.ID, err)
		}
	}

	got, err := repo.GetReport(ctx, "b")
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if !got.GeneratedAt.Equal(reports[1].GeneratedAt) {
		t.Fatalf("GeneratedAt = %v, want %v", got.GeneratedAt, reports[1].GeneratedAt)
	}
	if string(got.Report) != string(reports[1].Report) {
		t.Fatalf("payload = %s", got.Report)
	}

	list, err := repo.ListReports(ctx, 10)
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	var ids []string
	for _, r := range list {
		ids = append(ids, r.ID)
	}
	if len(ids) != 3 || ids[0] != "c" || ids[1] != "b" || ids[2] != "a" {
		t.Fatalf("expected newest first [c b a], got %v", ids)
	}

	limited, err := repo.ListReports(ctx, 1)
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected 1 report, got %d", len(limited))
	}
}

func TestGetReportNotFound(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.GetReport(context.Background(), "missing")
	if !errors.Is(err, ErrReportNotFound) {
		t.Fatalf("expected ErrReportNotFound, got %v", err)
	}
}

func TestSaveReportValidation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tests := []struct {
		name string
		rep  ArchivedReport
	}{
		{"empty id", ArchivedReport{Report: json.RawMessage(`{}`)}},
		{"invalid payload", ArchivedReport{ID: "x", Report: json.RawMessage(`{`)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := repo.SaveReport(ctx, tt.rep); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	if err := RunMigrations(path); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := RunMigrations(path); err != nil {
		t.Fatalf("second run: %v", err)
	}
}

func TestSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "version.db")

	version, dirty, err := SchemaVersion(path)
	if err != nil {
		t.Fatalf("SchemaVersion before migrating: %v", err)
	}
	if version != 0 || dirty {
		t.Fatalf("fresh database version = %d dirty = %v, want 0 false", version, dirty)
	}

	if err := RunMigrations(path); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	version, dirty, err = SchemaVersion(path)
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if version != 1 || dirty {
		t.Fatalf("version = %d dirty = %v, want 1 false", version, dirty)
	}
}
