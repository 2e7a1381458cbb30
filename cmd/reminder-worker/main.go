package main

import (
	"context"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"ledgerly/internal/backend"
	"ledgerly/internal/cli"
	"ledgerly/internal/config"
	"ledgerly/internal/log"
	"ledgerly/internal/notify"
	"ledgerly/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentReminder)
	logger.Info("Starting reminder-worker", log.FieldOperation, log.OpStartup)

	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).ValidateReminders)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	// Reminders never publish ledger events.
	backendCfg.AMQPURL = ""
	result, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", log.FieldError, err)
		os.Exit(1)
	}

	sender := notify.NewEmailSender(notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SenderEmail,
	}, logger)

	processor, err := services.NewReminderProcessor(result.Store, sender, cfg.ReminderFrequency, cfg.ReminderLeadDays, logger)
	if err != nil {
		logger.Error("Failed to create reminder processor", log.FieldError, err)
		_ = result.Cleanup()
		os.Exit(1)
	}

	var scheduler *cron.Cron
	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		if scheduler != nil {
			// Wait for a run in progress.
			<-scheduler.Stop().Done()
		}
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	run := func() {
		start := time.Now()
		stats, err := processor.ProcessDueReminders(ctx, start.UTC())
		if err != nil {
			logger.Error("Reminder run failed", log.FieldError, err, log.FieldOperation, log.OpRemind)
			return
		}
		logger.Info("Reminder run completed",
			log.FieldOperation, log.OpRemind,
			"checked", stats.Checked,
			"sent", stats.Sent,
			"failed", stats.Failed,
			log.FieldDuration, time.Since(start).Milliseconds())
	}

	cronLog := cronLogger{logger}
	scheduler = cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)
	if _, err := scheduler.AddFunc(cfg.ReminderSchedule, run); err != nil {
		logger.Error("Invalid reminder schedule", log.FieldError, err, "schedule", cfg.ReminderSchedule)
		_ = result.Cleanup()
		os.Exit(1)
	}

	logger.Info("Invoice reminders scheduled",
		"schedule", cfg.ReminderSchedule,
		"frequency", cfg.ReminderFrequency,
		"lead_days", cfg.ReminderLeadDays,
		"backend", cfg.DataBackend)

	// Catch up on startup; reminders already sent this period are skipped.
	run()
	scheduler.Start()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Reminder worker stopped gracefully")
}

// cronLogger routes cron's own logging through the application logger.
type cronLogger struct {
	logger *log.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, log.FieldError, err)...)
}
