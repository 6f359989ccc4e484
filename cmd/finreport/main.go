package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"finreport/internal/analysis"
	"finreport/internal/backend"
	"finreport/internal/cli"
	"finreport/internal/config"
	"finreport/internal/core"
	applog "finreport/internal/log"
	"finreport/internal/report"
	"finreport/internal/services"
)

const usage = `Usage: finreport <command> [flags]

Commands:
  report    build the finance report and write it to a JSON file
  spending  list a category's expenses over the last 90 days
  search    list operations whose category or description contains a query
  import    copy the configured operations table into SQLite
  help      show this message

Run "finreport <command> -h" for command flags.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cmd, args := os.Args[1], os.Args[2:]
	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		fmt.Fprint(os.Stdout, usage)
		return
	}

	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	var err error
	switch cmd {
	case "report":
		err = runReport(ctx, logger, cfg, args)
	case "spending":
		err = runSpending(ctx, logger, cfg, args, os.Stdout)
	case "search":
		err = runSearch(ctx, logger, cfg, args, os.Stdout)
	case "import":
		err = runImport(ctx, logger, cfg, args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Error("Command failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

func runReport(ctx context.Context, logger *applog.Logger, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	at := fs.String("at", "", "reference time, YYYY-MM-DD HH:MM:SS (default now)")
	out := fs.String("out", cfg.ReportFile, "output file")
	fs.Parse(args)

	clock := report.SystemClock{}
	ref := clock.Now()
	if strings.TrimSpace(*at) != "" {
		var err error
		if ref, err = core.ParseReportTime(*at); err != nil {
			return err
		}
	}

	result := cli.CreateBackend(ctx, logger, cfg)
	defer result.Close()

	assembler := report.NewAssembler(result.Source, cli.NewQuoteClient(cfg), clock)
	gen, err := services.NewReportService(assembler, nil).Generate(ctx, ref, cli.LoadSymbols(logger, cfg.SettingsFile))
	if err != nil {
		return err
	}

	if err := report.WriteFile(*out, gen.Report); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}
	logger.Info("Report written",
		applog.FieldReportID, gen.ID,
		"path", *out,
		"reference", ref.Format(core.ReportTimeLayout))
	return nil
}

func runSpending(ctx context.Context, logger *applog.Logger, cfg *config.Config, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("spending", flag.ExitOnError)
	category := fs.String("category", "", "category name, matched exactly (required)")
	date := fs.String("date", "", "reference date, dd.mm.yyyy (default today)")
	fs.Parse(args)

	if strings.TrimSpace(*category) == "" {
		return fmt.Errorf("-category is required")
	}
	ref, err := analysis.ReferenceDate(*date, time.Now())
	if err != nil {
		return err
	}

	result := cli.CreateBackend(ctx, logger, cfg)
	defer result.Close()

	txs, err := result.Source.Transactions(ctx)
	if err != nil {
		return err
	}
	return report.Encode(w, analysis.SpendingByCategory(ctx, txs, *category, ref))
}

func runSearch(ctx context.Context, logger *applog.Logger, cfg *config.Config, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	query := fs.String("q", "", "text to look for in category and description (required)")
	fs.Parse(args)

	if strings.TrimSpace(*query) == "" {
		return fmt.Errorf("-q is required")
	}

	result := cli.CreateBackend(ctx, logger, cfg)
	defer result.Close()

	txs, err := result.Source.Transactions(ctx)
	if err != nil {
		return err
	}
	return report.Encode(w, analysis.Search(ctx, txs, *query))
}

func runImport(ctx context.Context, logger *applog.Logger, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	fs.Parse(args)

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	source, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg.ImportSource())
	if err != nil {
		return fmt.Errorf("open import source: %w", err)
	}
	defer source.Close()

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	n, err := services.NewImportProcessor(source.Source, repo, services.DefaultImportProcessorConfig()).ImportOnce(ctx)
	if err != nil {
		return err
	}
	logger.Info("Import complete",
		applog.FieldOperation, applog.OpImport,
		applog.FieldCount, n,
		"source", bcfg.ImportSource().Type,
		"path", cfg.SQLiteDBPath)
	return nil
}
