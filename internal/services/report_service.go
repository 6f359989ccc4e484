package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"finreport/internal/amqp"
	"finreport/internal/core"
	applog "finreport/internal/log"
	"finreport/internal/report"
)

// ReportBuilder is satisfied by *report.Assembler.
type ReportBuilder interface {
	Build(ctx context.Context, ref time.Time, symbols report.Symbols) (core.Report, error)
}

// ReportPublisher is satisfied by *amqp.Client.
type ReportPublisher interface {
	PublishReport(ctx context.Context, msg *amqp.ReportGeneratedMessage) error
}

// GeneratedReport is a built report with the id it was published under.
type GeneratedReport struct {
	ID          string      `json:"id"`
	ReferenceAt time.Time   `json:"reference_at"`
	Report      core.Report `json:"report"`
}

// ReportService builds reports and announces them on the message bus
type ReportService struct {
	builder   ReportBuilder
	publisher ReportPublisher
	newID     func() string
}

// NewReportService wires a builder with an optional publisher; pass nil to
// run without AMQP.
func NewReportService(builder ReportBuilder, publisher ReportPublisher) *ReportService {
	return &ReportService{
		builder:   builder,
		publisher: publisher,
		newID:     func() string { return uuid.NewString() },
	}
}

// Generate builds the report for ref and publishes it. A publish failure is
// logged but does not fail the call since the report itself is complete.
func (s *ReportService) Generate(ctx context.Context, ref time.Time, symbols report.Symbols) (GeneratedReport, error) {
	rep, err := s.builder.Build(ctx, ref, symbols)
	if err != nil {
		return GeneratedReport{}, fmt.Errorf("build report: %w", err)
	}

	out := GeneratedReport{
		ID:          s.newID(),
		ReferenceAt: ref,
		Report:      rep.Normalize(),
	}

	if err := s.publish(ctx, out); err != nil {
		slog.ErrorContext(ctx, "Failed to publish report message",
			applog.FieldReportID, out.ID,
			applog.FieldError, err)
	}

	return out, nil
}

func (s *ReportService) publish(ctx context.Context, gen GeneratedReport) error {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP publisher not available, skipping report message",
			applog.FieldReportID, gen.ID)
		return nil
	}

	msg, err := amqp.NewReportGeneratedMessage(gen.ID, gen.ReferenceAt, gen.Report)
	if err != nil {
		return err
	}
	return s.publisher.PublishReport(ctx, msg)
}
