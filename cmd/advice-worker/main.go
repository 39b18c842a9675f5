package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"budgetly/internal/advisor"
	"budgetly/internal/amqp"
	"budgetly/internal/config"
	applog "budgetly/internal/log"
	"budgetly/internal/storage"
	"budgetly/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	logger.Info("Starting advice-worker")

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

	refiner := advisor.NewClient(cfg.AdviceAPIKey, cfg.AdviceAPIURL)
	if refiner.Enabled() {
		logger.Info("Generative refinement enabled")
	} else {
		logger.Info("Generative refinement disabled - no ADVICE_API_KEY provided, rule wording is kept")
	}

	adviceWorker := worker.NewAdviceWorker(repo, refiner, cfg.RefineBatchSize, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Catch up on suggestions created while the worker was down.
	if n, err := adviceWorker.ProcessPending(ctx); err != nil {
		logger.Error("Startup sweep failed", "error", err)
	} else if n > 0 {
		logger.Info("Startup sweep complete", "processed", n)
	}

	g, gctx := errgroup.WithContext(ctx)

	// AMQP consumption is optional; the periodic sweep alone keeps the
	// pipeline moving when no broker is configured.
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, relying on periodic sweep only", "error", err)
		} else {
			defer amqpClient.Close()
			g.Go(func() error {
				err := amqpClient.ConsumeAdviceRequests(gctx, func(msg *amqp.AdviceRequestMessage) error {
					return adviceWorker.HandleAdviceRequest(gctx, msg)
				})
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
		}
	}

	g.Go(func() error {
		ticker := time.NewTicker(cfg.RefineInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if _, err := adviceWorker.ProcessPending(gctx); err != nil {
					logger.Error("Periodic sweep failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
