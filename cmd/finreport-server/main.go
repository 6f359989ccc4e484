package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"finreport/internal/amqp"
	"finreport/internal/cli"
	apphttp "finreport/internal/http"
	applog "finreport/internal/log"
	"finreport/internal/report"
	"finreport/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentHTTP)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	result := cli.CreateBackend(ctx, logger, cfg)
	defer result.Close()

	// The worker archives published reports in SQLite; read them back from
	// the same database when the bus is configured.
	archive := result.Archive
	if archive == nil && cfg.AMQPURL != "" {
		archive = cli.InitSQLite(logger, cfg.SQLiteDBPath)
		defer archive.Close()
	}

	var publisher services.ReportPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		publisher = client
		logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("AMQP disabled - reports will not be published")
	}

	clock := report.SystemClock{}
	assembler := report.NewAssembler(result.Source, cli.NewQuoteClient(cfg), clock)

	deps := apphttp.Deps{
		Reports:            services.NewReportService(assembler, publisher),
		Source:             result.Source,
		Symbols:            cli.LoadSymbols(logger, cfg.SettingsFile),
		Clock:              clock,
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
	}
	if archive != nil {
		deps.Archive = archive
	}
	srv, err := apphttp.NewServer(":"+cfg.Port, deps)
	if err != nil {
		logger.Error("Failed to create HTTP server", "error", err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting finreport server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"archive", deps.Archive != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
