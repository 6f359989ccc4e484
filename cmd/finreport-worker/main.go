package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"finreport/internal/amqp"
	"finreport/internal/backend"
	"finreport/internal/cli"
	applog "finreport/internal/log"
	"finreport/internal/services"
	"finreport/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	archive := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer archive.Close()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	archiveWorker := worker.NewArchiveWorker(archive)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Consuming report messages", "queue", cfg.AMQPQueue)
		err := client.ConsumeReports(gctx, archiveWorker.HandleReportMessage)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if cfg.ImportInterval > 0 {
		bcfg, err := backend.FromAppConfig(cfg)
		if err != nil {
			logger.Error("Invalid backend configuration", "error", err)
			os.Exit(1)
		}
		source, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg.ImportSource())
		if err != nil {
			logger.Error("Failed to initialize import source", "error", err)
			os.Exit(1)
		}
		defer source.Close()

		processorCfg := services.DefaultImportProcessorConfig()
		processorCfg.Interval = cfg.ImportInterval
		processor := services.NewImportProcessor(source.Source, archive, processorCfg)
		if err := processor.Start(gctx); err != nil {
			logger.Error("Failed to start import processor", "error", err)
			os.Exit(1)
		}
		logger.Info("Periodic import started",
			"interval", cfg.ImportInterval,
			"source", bcfg.ImportSource().Type)

		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return processor.Stop(shutdownCtx)
		})
	} else {
		logger.Info("Periodic import disabled - IMPORT_INTERVAL not set")
	}

	logger.Info("Worker started", applog.FieldOperation, applog.OpStartup)
	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
