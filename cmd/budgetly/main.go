package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"budgetly/internal/amqp"
	"budgetly/internal/cache"
	"budgetly/internal/config"
	"budgetly/internal/export"
	apphttp "budgetly/internal/http"
	"budgetly/internal/identity"
	applog "budgetly/internal/log"
	"budgetly/internal/services"
	"budgetly/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// AMQP is optional: without a broker, advice requests are still stored and
	// the worker's periodic sweep picks them up.
	var publisher services.Publisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, advice refinement deferred to sweep", "error", err)
		} else {
			publisher = amqpClient
			defer amqpClient.Close()
		}
	}

	var adviceCache *cache.AdviceCache
	if cfg.RedisAddr != "" {
		adviceCache, err = cache.NewAdviceCache(cfg.RedisAddr, cfg.AdviceCacheTTL)
		if err != nil {
			logger.Warn("Redis unavailable, advice served without shared cache", "error", err)
			adviceCache = nil
		} else {
			defer adviceCache.Close()
		}
	}

	var exporter apphttp.ReportExporter
	if cfg.GoogleSpreadsheetID != "" {
		sheets, err := export.NewSheetsExporter(context.Background(),
			cfg.GoogleSpreadsheetID, cfg.GoogleReportSheet, logger)
		if err != nil {
			logger.Error("Failed to initialize Sheets exporter", "error", err)
			os.Exit(1)
		}
		exporter = sheets
		logger.Info("Report export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Report export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	verifier := identity.NewVerifier(cfg.IdentitySecret, logger)
	ledgerService := services.NewLedgerService(repo, logger)
	adviceService := services.NewAdviceService(repo, publisher, adviceCache, logger)

	srv := apphttp.NewServer(apphttp.Config{
		Addr:            ":" + cfg.Port,
		RateLimitPerMin: cfg.RateLimitPerMinute,
	}, ledgerService, adviceService, exporter, verifier, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting budgetly server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
