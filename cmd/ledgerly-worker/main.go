package main

import (
	"context"
	"os"
	"time"

	"ledgerly/internal/backend"
	"ledgerly/internal/cli"
	"ledgerly/internal/config"
	"ledgerly/internal/log"
	"ledgerly/internal/sheets"
	gsheet "ledgerly/internal/sheets/google"
	memsheet "ledgerly/internal/sheets/memory"
	"ledgerly/internal/summary"
	"ledgerly/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting ledgerly-worker", log.FieldOperation, log.OpStartup)

	cfg := cli.LoadAndValidateConfig(logger, nil)
	if cfg.DataBackend == string(backend.MemoryBackend) {
		logger.Warn("Worker is using the memory backend; it cannot see ledgers written by the API process")
	}

	ctx := context.Background()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	backendCfg.AMQPRequired = true
	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", log.FieldError, err)
		os.Exit(1)
	}

	writer, err := snapshotWriter(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		_ = result.Cleanup()
		os.Exit(1)
	}

	snapshots := worker.NewSnapshotWorker(summary.NewService(result.Store, cfg.SummaryTimeout), writer, logger)

	runCtx, done := cli.GracefulShutdown(logger, 15*time.Second, func(context.Context) {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	if err := snapshots.Run(runCtx, result.AMQP); err != nil {
		logger.Error("Message consumption failed", log.FieldError, err)
		_ = result.Cleanup()
		os.Exit(1)
	}

	cli.WaitForShutdown(runCtx, done)
	logger.Info("Worker stopped gracefully")
}

// snapshotWriter returns the Google Sheets exporter when a spreadsheet is
// configured and the logging in-memory writer otherwise.
func snapshotWriter(ctx context.Context, cfg *config.Config, logger *log.Logger) (sheets.SnapshotWriter, error) {
	if !cfg.SnapshotsEnabled() {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided, snapshots are logged only")
		return memsheet.New(memsheet.DefaultCapacity, logger), nil
	}
	client, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		SheetName:          cfg.GoogleSnapshotSheet,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
	}, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSnapshotSheet)
	return client, nil
}
