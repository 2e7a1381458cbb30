package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"ledgerly/internal/advisor"
	"ledgerly/internal/backend"
	"ledgerly/internal/cache"
	"ledgerly/internal/cli"
	"ledgerly/internal/config"
	apphttp "ledgerly/internal/http"
	"ledgerly/internal/log"
	"ledgerly/internal/middleware/auth"
	"ledgerly/internal/middleware/ratelimit"
	"ledgerly/internal/services"
	"ledgerly/internal/summary"
	"ledgerly/internal/vault"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).ValidateAPI)

	ctx := context.Background()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	summaries := summary.NewService(result.Store, cfg.SummaryTimeout)

	var generator advisor.Generator
	if cfg.GeminiAPIKey != "" {
		gen, err := advisor.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("Failed to initialize Gemini client", log.FieldError, err)
			os.Exit(1)
		}
		generator = gen
		logger.Info("Advisor enabled", "model", cfg.GeminiModel)
	} else {
		logger.Info("Advisor disabled - no GEMINI_API_KEY provided")
	}

	caches := cache.NewManager(logger)
	answers := cache.NewLRUCache[advisor.Answer](cfg.AdvisorCacheSize, cfg.AdvisorCacheTTL)
	caches.Register(answers)
	caches.StartCleanup(cfg.AdvisorCacheTTL)
	adv := advisor.New(summaries, generator, answers, logger)

	var cipher *vault.Cipher
	if cfg.EncryptionKey != "" {
		cipher, err = vault.New(cfg.EncryptionKey)
		if err != nil {
			logger.Error("Invalid encryption key", log.FieldError, err)
			os.Exit(1)
		}
	} else {
		logger.Warn("Bank details storage disabled - no ENCRYPTION_KEY provided")
	}

	// A nil *amqp.Client must stay a nil interface.
	var publisher services.Publisher
	if result.AMQP != nil {
		publisher = result.AMQP
	}
	ledgerService := services.NewLedgerService(result.Store, publisher, adv, logger)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Ledger:      ledgerService,
		Summaries:   summaries,
		Advisor:     adv,
		BankDetails: vault.NewBankDetailsService(result.Store, cipher),
		Verifier:    auth.NewVerifier(cfg.JWTSecret),
		Ping:        result.Ping,
		Caches:      caches,
		RateLimit:   ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute},
		Logger:      logger,
	})
	srv.MaxHeaderBytes = 1 << 16

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	logger.Info("Starting ledgerly server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"amqp_enabled", result.AMQP != nil,
		"advisor_enabled", adv.Enabled(),
		log.FieldOperation, log.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}
