package worker

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"finreport/internal/amqp"
	"finreport/internal/storage"
)

type failingArchive struct{}

func (failingArchive) SaveReport(context.Context, storage.ArchivedReport) error {
	return errors.New("disk full")
}

func TestArchiveWorker_HandleReportMessage(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	defer repo.Close()

	w := NewArchiveWorker(repo)
	ctx := context.Background()
	msg := &amqp.ReportGeneratedMessage{
		ID:          "r-1",
		GeneratedAt: time.Date(2024, 8, 8, 12, 35, 0, 0, time.UTC),
		ReferenceAt: time.Date(2024, 8, 8, 12, 34, 56, 0, time.UTC),
		Report:      json.RawMessage(`{"greeting":"Добрый день!"}`),
	}

	// Redelivery must not fail.
	for i := 0; i < 2; i++ {
		if err := w.HandleReportMessage(ctx, msg); err != nil {
			t.Fatalf("HandleReportMessage (delivery %d): %v", i+1, err)
		}
	}

	got, err := repo.GetReport(ctx, "r-1")
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if string(got.Report) != string(msg.Report) {
		t.Fatalf("payload = %s", got.Report)
	}
	list, err := repo.ListReports(ctx, 10)
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected one archived report, got %d", len(list))
	}
}

type recordingArchive struct {
	saved []storage.ArchivedReport
}

func (a *recordingArchive) SaveReport(_ context.Context, rep storage.ArchivedReport) error {
	a.saved = append(a.saved, rep)
	return nil
}

func TestArchiveWorker_RejectsNonObjectPayloads(t *testing.T) {
	for _, payload := range []string{`{`, `null`, `[]`, `"report"`, `42`, `{"top_transactions": {}}`} {
		t.Run(payload, func(t *testing.T) {
			archive := &recordingArchive{}
			w := NewArchiveWorker(archive)
			err := w.HandleReportMessage(context.Background(), &amqp.ReportGeneratedMessage{
				ID:     "r-2",
				Report: json.RawMessage(payload),
			})
			if !errors.Is(err, amqp.ErrInvalidPayload) {
				t.Fatalf("error = %v, want ErrInvalidPayload", err)
			}
			if len(archive.saved) != 0 {
				t.Fatalf("payload %s was archived", payload)
			}
		})
	}
}

func TestArchiveWorker_ArchiveFailure(t *testing.T) {
	w := NewArchiveWorker(failingArchive{})
	err := w.HandleReportMessage(context.Background(), &amqp.ReportGeneratedMessage{
		ID:     "r-3",
		Report: json.RawMessage(`{}`),
	})
	if err == nil || errors.Is(err, amqp.ErrInvalidPayload) {
		t.Fatalf("expected a retryable archive error, got %v", err)
	}
}
