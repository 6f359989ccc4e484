package worker

import (
	"context"
	"fmt"
	"log/slog"

	"finreport/internal/amqp"
	applog "finreport/internal/log"
	"finreport/internal/storage"
)

// ReportArchive is satisfied by *storage.SQLiteRepository.
type ReportArchive interface {
	SaveReport(ctx context.Context, rep storage.ArchivedReport) error
}

// ArchiveWorker stores report messages consumed from AMQP
type ArchiveWorker struct {
	archive ReportArchive
}

func NewArchiveWorker(archive ReportArchive) *ArchiveWorker {
	return &ArchiveWorker{archive: archive}
}

// HandleReportMessage persists a single report message. Redelivered
// messages overwrite the stored copy, so handling is idempotent.
func (w *ArchiveWorker) HandleReportMessage(ctx context.Context, msg *amqp.ReportGeneratedMessage) error {
	slog.InfoContext(ctx, "Processing report message",
		applog.FieldReportID, msg.ID,
		"reference_at", msg.ReferenceAt)

	// Messages built outside ReportGeneratedMessageFromJSON skip its checks.
	rep, err := msg.DecodeReport()
	if err != nil {
		return err
	}

	err = w.archive.SaveReport(ctx, storage.ArchivedReport{
		ID:          msg.ID,
		GeneratedAt: msg.GeneratedAt,
		ReferenceAt: msg.ReferenceAt,
		Report:      msg.Report,
	})
	if err != nil {
		return fmt.Errorf("archive report: %w", err)
	}

	slog.InfoContext(ctx, "Report archived",
		applog.NewFields().
			WithComponent(applog.ComponentWorker).
			WithOperation(applog.OpArchive).
			WithCount(len(rep.Cards)).
			ToSlice()...)
	return nil
}
